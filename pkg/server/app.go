package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"RateSim/internal/usecase"
	pkgch "RateSim/pkg/clickhouse"
	"RateSim/pkg/config"
	xhttp "RateSim/pkg/http"
	applogger "RateSim/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg         *config.Config
	refresher   *usecase.Refresher
	proc        *usecase.SnapshotProcessor
	chClient    *pkgch.Client
	httpServer  *xhttp.Server
	httpHandler xhttp.Handler
	log         *applogger.Logger
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	refresher *usecase.Refresher,
	proc *usecase.SnapshotProcessor,
	chClient *pkgch.Client,
	handler xhttp.Handler,
	log *applogger.Logger,
) *App {
	return &App{
		cfg:         cfg,
		refresher:   refresher,
		proc:        proc,
		chClient:    chClient,
		httpHandler: handler,
		log:         log,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	// Start background refresher
	if err := a.refresher.Start(ctx); err != nil {
		a.log.Error("refresher start error", applogger.Error(err))
		return err
	}
	a.log.Info("refresher started",
		applogger.Duration("interval", a.cfg.Feed.RefreshInterval),
		applogger.String("sink", a.cfg.Sink.Type),
	)

	// Start HTTP server
	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	a.refresher.Stop()

	// Shutdown HTTP server
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	// Close sink resources (publisher/storage)
	if a.proc != nil {
		a.proc.Close()
	}

	// Close infrastructure clients
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
