package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xkilldash9x/phishguard/internal/config"
	"github.com/xkilldash9x/phishguard/internal/httpapi"
	"github.com/xkilldash9x/phishguard/internal/observability"
	"github.com/xkilldash9x/phishguard/internal/service"
)

// newComponents builds the service graph. Tests replace it to inject mocks.
var newComponents = func(ctx context.Context, cfg config.Interface, logger *zap.Logger) (*service.Components, error) {
	return service.NewComponents(ctx, cfg, logger)
}

func newServeCmd() *cobra.Command {
	var addr string

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis and explorer API",
		Long: `Seeds the threat history from the database (when configured), then serves
the JSON API until interrupted. In-flight requests are drained on shutdown.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := getConfigFromContext(ctx)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.SetServerAddr(addr)
			}
			return runServe(ctx, cfg, observability.GetLogger(), nil)
		},
	}

	serveCmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (overrides server.addr)")
	serveCmd.Flags().Bool("migrate", false, "apply pending schema migrations before seeding")
	annotateFlag(serveCmd.Flags(), "migrate", "database.migrate_on_start")
	serveCmd.Flags().Bool("seed", true, "seed the threat history from the database")
	annotateFlag(serveCmd.Flags(), "seed", "seed.enabled")

	return serveCmd
}

// runServe blocks until ctx is done or the listener fails. ready, when not
// nil, receives the bound address once the server accepts connections.
func runServe(ctx context.Context, cfg config.Interface, logger *zap.Logger, ready chan<- net.Addr) error {
	components, err := newComponents(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize components: %w", err)
	}
	defer components.Shutdown()

	srvCfg := cfg.Server()
	api := httpapi.New(components.Analyzer, components.History, components.Metrics, cfg, logger)
	srv := &http.Server{
		Addr:              srvCfg.Addr,
		Handler:           api.Routes(),
		ReadTimeout:       srvCfg.ReadTimeout,
		ReadHeaderTimeout: srvCfg.ReadTimeout,
		WriteTimeout:      srvCfg.WriteTimeout,
		ErrorLog:          zap.NewStdLog(logger.Named("http")),
	}

	ln, err := net.Listen("tcp", srvCfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", srvCfg.Addr, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("PhishGuard API listening", zap.String("addr", ln.Addr().String()),
			zap.Int("records", components.History.Len()))
		if ready != nil {
			ready <- ln.Addr()
		}
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), srvCfg.ShutdownTimeout)
		defer cancel()
		logger.Info("Shutting down the API server.")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("API server stopped.")
	return nil
}
