package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan-r-thorpe/nmos-js/internal/api"
	"github.com/jonathan-r-thorpe/nmos-js/internal/config"
	"github.com/jonathan-r-thorpe/nmos-js/internal/console"
	"github.com/jonathan-r-thorpe/nmos-js/internal/models"
	"github.com/jonathan-r-thorpe/nmos-js/internal/registry"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web console",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

// newServer wires the stores, providers and console service from the
// loaded configuration.
func newServer(cfg *config.Config, logger *zap.Logger) (*api.Server, error) {
	store := models.NewRegistryStore()
	for _, rc := range cfg.Registries {
		reg := &models.Registry{Name: rc.Name, QueryAPI: rc.QueryAPI, Insecure: rc.Insecure}
		if rc.CACert != "" {
			pem, err := os.ReadFile(rc.CACert)
			if err != nil {
				return nil, fmt.Errorf("registry %s: reading ca_cert: %w", rc.Name, err)
			}
			reg.CACert = string(pem)
		}
		store.Create(reg)
	}

	providers := registry.NewProviders(store, cfg.PageSize, logger)
	svc := console.NewService(
		console.ProviderFunc(func(queryAPI string) console.Provider { return providers.For(queryAPI) }),
		models.NewJobStore(), cfg.CacheTTL, logger)

	return &api.Server{
		Registries:      store,
		Providers:       providers,
		Console:         svc,
		BasePath:        cfg.BasePath,
		DefaultQueryAPI: cfg.DefaultQueryAPI(),
		Logger:          logger,
	}, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	server, err := newServer(&cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Verify connectivity early so the dashboard shows registry health.
	for _, reg := range server.Registries.List() {
		checkCtx, cancel := context.WithTimeout(ctx, registry.DefaultTimeout)
		server.CheckRegistry(checkCtx, reg)
		cancel()
	}

	httpServer := &http.Server{
		Addr:              cfg.Listen,
		Handler:           api.NewRouter(server),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("nmos-console starting",
			zap.String("version", version),
			zap.String("listen", cfg.Listen),
			zap.String("base_path", cfg.BasePath),
			zap.String("query_api", server.DefaultQueryAPI))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
