// Package config enables config file parsing.
package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"

	"github.com/zihgir1/BEVM/common"
	"github.com/zihgir1/BEVM/log"
)

// Config contains the CLI configuration.
type Config struct {
	Build   *BuildConfig   `koanf:"build"`
	Server  *ServerConfig  `koanf:"server"`
	Log     *LogConfig     `koanf:"log"`
	Metrics *MetricsConfig `koanf:"metrics"`
}

// Validate performs config validation.
func (cfg *Config) Validate() error {
	if cfg.Build != nil {
		if err := cfg.Build.Validate(); err != nil {
			return fmt.Errorf("build: %w", err)
		}
	}
	if cfg.Server != nil {
		if err := cfg.Server.Validate(); err != nil {
			return fmt.Errorf("server: %w", err)
		}
	}
	if cfg.Log != nil {
		if err := cfg.Log.Validate(); err != nil {
			return fmt.Errorf("log: %w", err)
		}
	}
	if cfg.Metrics != nil {
		if err := cfg.Metrics.Validate(); err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
	}

	return nil
}

// BuildConfig is the configuration for chain spec builds.
type BuildConfig struct {
	// RuntimeDir is the directory holding the `<runtime>.wasm` code images.
	RuntimeDir string `koanf:"runtime_dir"`

	// SnapshotDir overrides the embedded frozen snapshots with
	// `<snapshot_dir>/<profile>.json` files.
	SnapshotDir string `koanf:"snapshot_dir"`

	// OutputDir is where `build-spec --all` writes the chain specs.
	OutputDir string `koanf:"output_dir"`

	// FromSource rebuilds published profiles instead of reading their frozen
	// snapshot.
	FromSource bool `koanf:"from_source"`

	// Profiles to build. Empty means all of them.
	Profiles []common.Profile `koanf:"profiles"`

	// Cache holds the configuration for the anchor verification cache.
	Cache *CacheConfig `koanf:"cache"`

	// Storage is the publication registry `build-spec --record` writes to.
	Storage *StorageConfig `koanf:"storage"`
}

// Validate validates the build configuration.
func (cfg *BuildConfig) Validate() error {
	if cfg.RuntimeDir == "" {
		return fmt.Errorf("no runtime_dir provided")
	}
	seen := map[common.Profile]struct{}{}
	for _, p := range cfg.Profiles {
		if !p.Valid() {
			return fmt.Errorf("%w: %d", common.ErrUnknownProfile, uint8(p))
		}
		if _, dup := seen[p]; dup {
			return fmt.Errorf("profile %s listed twice", p)
		}
		seen[p] = struct{}{}
	}
	if cfg.Cache != nil {
		if err := cfg.Cache.Validate(); err != nil {
			return fmt.Errorf("cache: %w", err)
		}
	}
	if cfg.Storage != nil {
		if err := cfg.Storage.Validate(false /* requireMigrations */); err != nil {
			return fmt.Errorf("storage: %w", err)
		}
	}
	return nil
}

// SelectedProfiles returns the profiles to build, in declaration order if
// none are configured.
func (cfg *BuildConfig) SelectedProfiles() []common.Profile {
	if len(cfg.Profiles) == 0 {
		return common.AllProfiles()
	}
	return append([]common.Profile{}, cfg.Profiles...)
}

type CacheConfig struct {
	// CacheDir is the directory where the cache data is stored
	CacheDir string `koanf:"cache_dir"`
}

func (cfg *CacheConfig) Validate() error {
	if cfg.CacheDir == "" {
		return fmt.Errorf("invalid cache filepath")
	}
	return nil
}

// ServerConfig contains the API server configuration.
type ServerConfig struct {
	// Endpoint is the service endpoint from which to serve the API.
	Endpoint string `koanf:"endpoint"`

	// CORSOrigins are the allowed cross-origin request origins. Empty
	// allows all origins.
	CORSOrigins []string `koanf:"cors_origins"`

	// Build configures the specs the server distributes.
	Build *BuildConfig `koanf:"build"`

	// Storage is optional. Without it publications are not recorded.
	Storage *StorageConfig `koanf:"storage"`
}

// Validate validates the server configuration.
func (cfg *ServerConfig) Validate() error {
	if cfg.Endpoint == "" {
		return fmt.Errorf("malformed server endpoint '%s'", cfg.Endpoint)
	}
	if cfg.Build == nil {
		return fmt.Errorf("no build config provided")
	}
	if err := cfg.Build.Validate(); err != nil {
		return fmt.Errorf("build: %w", err)
	}
	if cfg.Storage != nil {
		return cfg.Storage.Validate(false /* requireMigrations */)
	}
	return nil
}

// StorageBackend is a storage backend.
type StorageBackend uint

const (
	// BackendPostgres is the PostgreSQL storage backend.
	BackendPostgres StorageBackend = iota
)

// String returns the string representation of a StorageBackend.
func (sb *StorageBackend) String() string {
	switch *sb {
	case BackendPostgres:
		return "postgres"
	default:
		panic("config: unsupported storage backend")
	}
}

// Set sets the StorageBackend to the value specified by the provided string.
func (sb *StorageBackend) Set(s string) error {
	switch strings.ToLower(s) {
	case "postgres":
		*sb = BackendPostgres
	default:
		return fmt.Errorf("config: invalid storage backend: '%s'", s)
	}

	return nil
}

// Type returns the list of supported StorageBackends.
func (sb *StorageBackend) Type() string {
	return "[postgres]"
}

// StorageConfig contains the storage layer configuration.
type StorageConfig struct {
	// Endpoint is the storage endpoint of the publication registry.
	Endpoint string `koanf:"endpoint"`

	// Backend is the storage backend to select.
	Backend string `koanf:"backend"`

	// Migrations is the directory containing schema migrations.
	Migrations string `koanf:"migrations"`
}

// Validate validates the storage configuration.
func (cfg *StorageConfig) Validate(requireMigrations bool) error {
	if cfg.Endpoint == "" {
		return fmt.Errorf("malformed storage endpoint '%s'", cfg.Endpoint)
	}
	if cfg.Migrations == "" && requireMigrations {
		return fmt.Errorf("invalid path to migrations '%s'", cfg.Migrations)
	}
	var sb StorageBackend
	return sb.Set(cfg.Backend)
}

// LogConfig contains the logging configuration.
type LogConfig struct {
	Format string `koanf:"format"`
	Level  string `koanf:"level"`
	File   string `koanf:"file"`
}

// Validate validates the logging configuration.
func (cfg *LogConfig) Validate() error {
	var format log.Format
	if err := format.Set(cfg.Format); err != nil {
		return err
	}
	var level log.Level
	return level.Set(cfg.Level)
}

// MetricsConfig contains the metrics configuration. Long running services
// expose a pull endpoint; one-shot builds write a textfile for the node
// exporter.
type MetricsConfig struct {
	PullEndpoint string `koanf:"pull_endpoint"`
	Textfile     string `koanf:"textfile"`

	// PprofEndpoint optionally serves the Go profiler.
	PprofEndpoint string `koanf:"pprof_endpoint"`
}

// Validate validates the metrics configuration.
func (cfg *MetricsConfig) Validate() error {
	switch {
	case cfg.PullEndpoint == "" && cfg.Textfile == "":
		return fmt.Errorf("one of pull_endpoint and textfile is required")
	case cfg.PullEndpoint != "" && cfg.Textfile != "":
		return fmt.Errorf("pull_endpoint and textfile specified, can only use one")
	}
	return nil
}

// InitConfig initializes configuration from file.
func InitConfig(f string) (*Config, error) {
	return initConfig(file.Provider(f))
}

func initConfig(p koanf.Provider) (*Config, error) {
	var config Config
	k := koanf.New(".")

	// Load configuration from the yaml config.
	if err := k.Load(p, yaml.Parser()); err != nil {
		return nil, err
	}

	// Load environment variables and merge into the loaded config.
	if err := k.Load(env.Provider("", ".", func(s string) string {
		// `__` is used as a hierarchy delimiter.
		return strings.ReplaceAll(strings.ToLower(s), "__", ".")
	}), nil); err != nil {
		return nil, err
	}

	// Unmarshal into config.
	if err := k.Unmarshal("", &config); err != nil {
		return nil, err
	}

	// Validate config.
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}
