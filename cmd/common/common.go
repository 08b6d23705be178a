// Package common implements common chainspec command options.
package common

import (
	"context"
	"fmt"
	"io"
	stdLog "log"
	"os"

	"github.com/akrylysov/pogreb"
	coreLogging "github.com/oasisprotocol/oasis-core/go/common/logging"

	"github.com/zihgir1/BEVM/bridge"
	"github.com/zihgir1/BEVM/cache/kvstore"
	"github.com/zihgir1/BEVM/chainspec"
	"github.com/zihgir1/BEVM/common"
	"github.com/zihgir1/BEVM/config"
	"github.com/zihgir1/BEVM/log"
	"github.com/zihgir1/BEVM/metrics"
	"github.com/zihgir1/BEVM/storage"
	"github.com/zihgir1/BEVM/storage/postgres"
)

var rootLogger = log.NewDefaultLogger("chainspec")

// Init initializes the common environment.
func Init(cfg *config.Config) error {
	// Stdout is reserved for chain specs.
	var w io.Writer = os.Stderr
	format := log.FmtJSON
	level := log.LevelInfo
	coreFormat := coreLogging.FmtJSON  // For oasis-core.
	coreLevel := coreLogging.LevelWarn // For oasis-core.

	if cfg.Log != nil {
		var err error
		if w, err = getLoggingStream(cfg.Log); err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		if err := format.Set(cfg.Log.Format); err != nil {
			return err
		}
		if err := level.Set(cfg.Log.Level); err != nil {
			return err
		}
	}
	logger, err := log.NewLogger("chainspec", w, format, level)
	if err != nil {
		return err
	}
	rootLogger = logger

	// Key derivation and signing go through oasis-core, which logs on its own.
	if err := coreLogging.Initialize(w, coreFormat, coreLevel, nil); err != nil {
		logger.Error("failed to initialize oasis-core logging", "err", err)
		return err
	}

	// Initialize pogreb logging.
	pogrebLogger := RootLogger().WithModule("pogreb").WithCallerUnwind(7)
	pogreb.SetLogger(stdLog.New(log.WriterIntoLogger(pogrebLogger), "", 0))

	if cfg.Metrics != nil && cfg.Metrics.PprofEndpoint != "" {
		startPprof(cfg.Metrics.PprofEndpoint)
	}
	return nil
}

// RootLogger returns the logger defined by logging flags.
func RootLogger() *log.Logger {
	return rootLogger
}

func getLoggingStream(cfg *config.LogConfig) (io.Writer, error) {
	if cfg == nil || cfg.File == "" {
		return os.Stderr, nil
	}
	w, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, err
	}
	return w, nil
}

// StartMetrics starts the Prometheus pull service if one is configured. It
// stops when ctx is done.
func StartMetrics(ctx context.Context, cfg *config.MetricsConfig) {
	if cfg == nil || cfg.PullEndpoint == "" {
		return
	}
	promServer, err := metrics.NewPullService(cfg.PullEndpoint, rootLogger)
	if err != nil {
		rootLogger.Error("failed to initialize metrics", "err", err)
		os.Exit(1)
	}
	go func() {
		if err := promServer.Run(ctx); err != nil {
			rootLogger.Error("metrics service stopped", "err", err)
		}
	}()
}

// FlushMetrics writes the metrics textfile if one is configured.
func FlushMetrics(cfg *config.MetricsConfig) {
	if cfg == nil || cfg.Textfile == "" {
		return
	}
	if err := metrics.WriteTextfile(cfg.Textfile); err != nil {
		rootLogger.Warn("failed to write metrics textfile", "path", cfg.Textfile, "err", err)
	}
}

// NewBuilder creates a chain spec builder from the build configuration. The
// returned cleanup closes the anchor verification cache, if any.
func NewBuilder(cfg *config.BuildConfig, logger *log.Logger) (*chainspec.Builder, func(), error) {
	m := metrics.NewDefaultBuildMetrics("chainspec")
	b := chainspec.NewBuilder(chainspec.DirImages{Dir: cfg.RuntimeDir}, logger, &m)
	if cfg.SnapshotDir != "" {
		b.Snapshots = chainspec.DirSnapshots{Dir: cfg.SnapshotDir}
	}

	cleanup := func() {}
	if cfg.Cache != nil {
		cache, err := kvstore.OpenKVStore(logger, cfg.Cache.CacheDir, &m)
		if err != nil {
			return nil, nil, fmt.Errorf("opening cache: %w", err)
		}
		b.Verifier = &bridge.CachingVerifier{Inner: b.Verifier, Cache: cache}
		cleanup = func() { common.CloseOrLog(cache, logger) }
	}
	return b, cleanup, nil
}

// NewPublicationStore creates a new client to the publication registry,
// applying schema migrations first if configured.
func NewPublicationStore(cfg *config.StorageConfig, logger *log.Logger) (storage.PublicationStore, error) {
	var backend config.StorageBackend
	if err := backend.Set(cfg.Backend); err != nil {
		return nil, err
	}

	switch backend {
	case config.BackendPostgres:
		if cfg.Migrations != "" {
			if err := postgres.Migrate(cfg.Migrations, cfg.Endpoint, logger); err != nil {
				return nil, err
			}
		}
		client, err := postgres.NewClient(cfg.Endpoint, logger)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		panic(fmt.Sprintf("unsupported storage backend: %v", backend))
	}
}

// LoadConfig reads the configuration file, or returns an empty
// configuration when no file is given so that flags alone can drive a
// command.
func LoadConfig(path string) (*config.Config, error) {
	if path == "" {
		return &config.Config{}, nil
	}
	return config.InitConfig(path)
}

// NewPublication describes a chain spec about to be handed out.
func NewPublication(s *chainspec.Summary) *storage.Publication {
	return &storage.Publication{
		Profile:     s.Profile,
		ChainID:     s.ID,
		GenesisHash: s.GenesisHash,
		SpecHash:    s.SpecHash,
		Frozen:      s.Frozen,
		Size:        s.Size,
	}
}
