package service

import (
	"context"
	"fmt"
	"time"

	"dtdash/src/internal/api"
	"dtdash/src/internal/domain"
	"dtdash/src/internal/service/watcher"
)

// ShutdownTimeout bounds how long in-flight requests get to finish.
const ShutdownTimeout = 10 * time.Second

type Orchestrator struct {
	ctx *domain.Context
}

func CreateOrchestrator(ctx *domain.Context) *Orchestrator {
	return &Orchestrator{
		ctx: ctx,
	}
}

// Run starts the HTTP server and, when enabled, the asset watcher. It blocks
// until ctx is cancelled or the server fails, then shuts everything down.
func (o *Orchestrator) Run(ctx context.Context) error {
	logger := o.ctx.Logger
	cfg := o.ctx.Config
	logger.Info("Starting dtdash", "version", cfg.Version)

	server, err := api.Create(o.ctx)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Run()
	}()

	var w *watcher.Watcher
	if hub := server.Hub(); hub != nil {
		w = watcher.New(watcher.DefaultConfig(cfg.AssetsDir), logger, hub.Publish)
		if err := w.Start(); err != nil {
			// Live reload stays reachable, it just never fires.
			logger.Warn("Asset watcher not started", "error", err)
			w = nil
		}
	}

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown requested", "reason", context.Cause(ctx))
	case err := <-errCh:
		if err != nil {
			runErr = fmt.Errorf("API server failed: %w", err)
		}
	}

	if w != nil {
		if err := w.Stop(); err != nil {
			logger.Warn("Asset watcher stop failed", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = err
	}

	logger.Info("Stopped")
	return runErr
}
