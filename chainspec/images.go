package chainspec

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/zihgir1/BEVM/common"
)

// ErrMissingRuntimeImage is returned when the code image backing a dynamic
// profile is unavailable.
var ErrMissingRuntimeImage = errors.New("missing runtime image")

// RuntimeImages provides the runtime code images genesis states embed.
type RuntimeImages interface {
	// Image returns the non-empty code image of a runtime.
	Image(runtime string) ([]byte, error)
}

// Snapshots provides the frozen snapshots of published profiles.
type Snapshots interface {
	Snapshot(profile common.Profile) ([]byte, error)
}

// DirImages reads `<dir>/<runtime>.wasm`.
type DirImages struct {
	Dir string
}

var _ RuntimeImages = DirImages{}

// Image implements RuntimeImages.
func (d DirImages) Image(runtime string) ([]byte, error) {
	if d.Dir == "" {
		return nil, fmt.Errorf("%w: %s: no runtime directory configured", ErrMissingRuntimeImage, runtime)
	}
	path := filepath.Join(d.Dir, runtime+".wasm")
	code, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("%w: %s", ErrMissingRuntimeImage, path)
	case err != nil:
		return nil, fmt.Errorf("%w: %s: %v", ErrMissingRuntimeImage, path, err)
	case len(code) == 0:
		return nil, fmt.Errorf("%w: %s is empty", ErrMissingRuntimeImage, path)
	}
	return code, nil
}

// StaticImages serves code images from memory.
type StaticImages map[string][]byte

var _ RuntimeImages = StaticImages{}

// Image implements RuntimeImages.
func (s StaticImages) Image(runtime string) ([]byte, error) {
	code := s[runtime]
	if len(code) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingRuntimeImage, runtime)
	}
	return append([]byte{}, code...), nil
}

// DirSnapshots reads `<dir>/<profile>.json`.
type DirSnapshots struct {
	Dir string
}

var _ Snapshots = DirSnapshots{}

// Snapshot implements Snapshots.
func (d DirSnapshots) Snapshot(profile common.Profile) ([]byte, error) {
	return os.ReadFile(filepath.Join(d.Dir, profile.String()+".json"))
}
