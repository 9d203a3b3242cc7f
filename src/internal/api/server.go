package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"dtdash/src/internal/domain"
	"dtdash/src/internal/render"
	"dtdash/src/internal/web"
)

type Api struct {
	ctx       *domain.Context
	dashboard *render.Template
	router    *Router
	hub       *Hub
	handler   http.Handler
	server    *http.Server
}

// Create compiles the dashboard template and wires routes and middleware.
// A template that fails to compile is returned as an error; the server must
// not start with it.
func Create(ctx *domain.Context) (*Api, error) {
	source, err := web.TemplatesFS.ReadFile(web.DashboardTemplate)
	if err != nil {
		return nil, fmt.Errorf("read dashboard template: %w", err)
	}

	dashboard, err := render.Compile("dt-dashboard", string(source))
	if err != nil {
		return nil, fmt.Errorf("compile dashboard template: %w", err)
	}

	return newApi(ctx, dashboard)
}

func newApi(ctx *domain.Context, dashboard *render.Template) (*Api, error) {
	a := &Api{
		ctx:       ctx,
		dashboard: dashboard,
	}
	a.router = NewRouter(a.handleNotFound)

	if ctx.Config.WatchAssets {
		a.hub = NewHub(ctx.Logger)
	}

	if err := a.registerRoutes(); err != nil {
		return nil, err
	}

	a.handler = a.applyMiddleware(a.router)
	a.server = &http.Server{
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ErrorLog:          slog.NewLogLogger(ctx.Logger.Handler(), slog.LevelWarn),
	}

	return a, nil
}

func (a *Api) registerRoutes() error {
	routes := []struct {
		pattern string
		handler HandlerFunc
	}{
		{"/", a.handleRoot},
		{"/handle", a.handleDashboard},
		{"/handle/:name", a.handleDashboard},
	}
	for _, r := range routes {
		if err := a.router.Get(r.pattern, r.handler); err != nil {
			return err
		}
	}

	if err := a.registerAssets(); err != nil {
		return err
	}

	if a.hub != nil {
		if err := a.router.Get(domain.LiveReloadPath, a.hub.ServeWS); err != nil {
			return err
		}
		a.ctx.Logger.Info("Live reload enabled", "path", domain.LiveReloadPath)
	}

	return nil
}

// applyMiddleware wraps the handler with middleware in the correct order
func (a *Api) applyMiddleware(handler http.Handler) http.Handler {
	cfg := a.ctx.Config

	// Apply middleware in reverse order (last one wraps first)
	handler = StripPrefixMiddleware(cfg.BasePath)(handler)
	if cfg.Compress {
		handler = CompressMiddleware()(handler)
	}
	handler = RecoveryMiddleware(a.ctx.Logger)(handler)
	handler = LoggingMiddleware(a.ctx.Logger)(handler)
	handler = RequestIDMiddleware()(handler)
	return handler
}

// Handler returns the full middleware chain. Used by tests and embedders.
func (a *Api) Handler() http.Handler {
	return a.handler
}

// Hub returns the live-reload hub, or nil when live reload is off.
func (a *Api) Hub() *Hub {
	return a.hub
}

// Run binds the configured address and serves until Shutdown.
func (a *Api) Run() error {
	cfg := a.ctx.Config
	if cfg.Hostname != domain.DefaultHostname {
		a.ctx.Logger.Info("Binding to configured hostname", "hostname", cfg.Hostname)
	}

	addr := cfg.ListenAddr()
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return a.Serve(ln)
}

// Serve accepts connections on ln until Shutdown.
func (a *Api) Serve(ln net.Listener) error {
	a.ctx.Logger.Info("Listening", "addr", ln.Addr().String(), "url", a.ctx.Config.URL())

	if err := a.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (a *Api) Shutdown(ctx context.Context) error {
	a.ctx.Logger.Info("Shutting down HTTP server")

	// Hijacked live-reload connections are not tracked by http.Server.
	if a.hub != nil {
		a.hub.Close()
	}

	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}

func (a *Api) requestLogger(r *http.Request) *slog.Logger {
	return a.ctx.Logger.With("requestID", GetRequestID(r.Context()))
}
