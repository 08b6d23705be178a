// Package serve implements the serve sub-command.
package serve

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/zihgir1/BEVM/api"
	"github.com/zihgir1/BEVM/chainspec"
	cmdCommon "github.com/zihgir1/BEVM/cmd/common"
	"github.com/zihgir1/BEVM/config"
	"github.com/zihgir1/BEVM/log"
	"github.com/zihgir1/BEVM/metrics"
	"github.com/zihgir1/BEVM/storage"
)

const (
	moduleName = "api"
)

var (
	// Path to the configuration file.
	configFile string

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve chain specs over HTTP",
		Run:   runServer,
	}
)

func runServer(cmd *cobra.Command, args []string) {
	cfg, err := config.InitConfig(configFile)
	if err != nil {
		log.NewDefaultLogger("init").Error("init failed",
			"error", err,
		)
		os.Exit(1)
	}
	if err = cmdCommon.Init(cfg); err != nil {
		log.NewDefaultLogger("init").Error("init failed",
			"error", err,
		)
		os.Exit(1)
	}
	logger := cmdCommon.RootLogger()

	if cfg.Server == nil {
		logger.Error("server config not provided")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	cmdCommon.StartMetrics(ctx, cfg.Metrics)

	service, err := NewService(ctx, cfg.Server)
	if err != nil {
		logger.Error("service failed to start",
			"error", err,
		)
		os.Exit(1)
	}
	defer service.Shutdown()

	if err = service.Run(ctx); err != nil {
		logger.Error("service stopped",
			"error", err,
		)
		os.Exit(1)
	}
}

// Service is the chain spec distribution service.
type Service struct {
	server  *http.Server
	cleanup func()
	// store is optional.
	store  storage.PublicationStore
	logger *log.Logger
}

// NewService builds every configured profile and prepares the API. Every
// served spec is recorded as a publication if storage is configured.
func NewService(ctx context.Context, cfg *config.ServerConfig) (*Service, error) {
	logger := cmdCommon.RootLogger().WithModule(moduleName)

	b, cleanup, err := cmdCommon.NewBuilder(cfg.Build, logger)
	if err != nil {
		return nil, err
	}
	catalog, err := api.NewCatalog(ctx, b, cfg.Build.SelectedProfiles(), chainspec.BuildOptions{FromSource: cfg.Build.FromSource})
	if err != nil {
		cleanup()
		return nil, err
	}

	var store storage.PublicationStore
	if cfg.Storage != nil {
		if store, err = cmdCommon.NewPublicationStore(cfg.Storage, logger); err != nil {
			cleanup()
			return nil, err
		}
		for _, e := range catalog.Entries() {
			if err = store.RecordPublication(ctx, cmdCommon.NewPublication(e.Summary)); err != nil {
				store.Close()
				cleanup()
				return nil, err
			}
		}
	}

	a := api.NewChainSpecAPI(catalog, store, cfg.CORSOrigins, metrics.NewDefaultRequestMetrics(moduleName), logger)
	return &Service{
		server: &http.Server{
			Addr:           cfg.Endpoint,
			Handler:        a.Router(),
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   10 * time.Second,
			MaxHeaderBytes: 1 << 20,
		},
		cleanup: cleanup,
		store:   store,
		logger:  logger,
	}, nil
}

// Run serves the API until ctx is done.
func (s *Service) Run(ctx context.Context) error {
	s.logger.Info("starting api service at " + s.server.Addr)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	}
}

// Shutdown releases the service's resources.
func (s *Service) Shutdown() {
	if s.store != nil {
		s.store.Close()
	}
	s.cleanup()
}

// Register registers the serve sub-command.
func Register(parentCmd *cobra.Command) {
	serveCmd.Flags().StringVar(&configFile, "config", "./config/server.yml", "path to the config.yml file")
	parentCmd.AddCommand(serveCmd)
}
