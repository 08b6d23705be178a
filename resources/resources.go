// Package resources holds the versioned genesis input data shipped with the
// binary: external chain anchors, trustee candidates, published authority
// and governance keys, the asset list, and the frozen snapshots of the
// public networks.
package resources

import (
	"embed"
	"fmt"
	"path"
	"sync"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
)

// Version is the only resource format version this build understands.
const Version = 1

//go:embed data
var data embed.FS

// parserFor picks the koanf parser from the file extension.
func parserFor(name string) (koanf.Parser, error) {
	switch path.Ext(name) {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	default:
		return nil, fmt.Errorf("resource %s: unsupported format", name)
	}
}

// load parses one embedded resource into out, after checking its format
// version.
func load(name string, out interface{}) error {
	raw, err := data.ReadFile(path.Join("data", name))
	if err != nil {
		return fmt.Errorf("resource %s: %w", name, err)
	}
	parser, err := parserFor(name)
	if err != nil {
		return err
	}
	k := koanf.New(".")
	if err = k.Load(rawbytes.Provider(raw), parser); err != nil {
		return fmt.Errorf("resource %s: %w", name, err)
	}
	if v := k.Int("version"); v != Version {
		return fmt.Errorf("resource %s: unsupported version %d", name, v)
	}
	if err = k.UnmarshalWithConf("", out, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return fmt.Errorf("resource %s: %w", name, err)
	}
	return nil
}

// cached parses a resource on first use. Callers convert the parsed file
// into fresh values on every call, so nothing handed out is shared.
type cached[T any] struct {
	name string
	once sync.Once
	val  T
	err  error
}

func (c *cached[T]) get() (*T, error) {
	c.once.Do(func() {
		c.err = load(c.name, &c.val)
	})
	if c.err != nil {
		return nil, c.err
	}
	return &c.val, nil
}

var (
	cacheMu sync.Mutex
	files   = map[string]interface{}{}
)

// file returns the loaded-once entry of a resource.
func file[T any](name string) *cached[T] {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	if f, ok := files[name]; ok {
		return f.(*cached[T])
	}
	f := &cached[T]{name: name}
	files[name] = f
	return f
}
