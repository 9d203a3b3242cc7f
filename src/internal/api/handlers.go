package api

import (
	"io"
	"net/http"

	"dtdash/src/internal/domain"
	"dtdash/src/internal/render"
)

const (
	rootPage     = "<h1>ROOT</h1>"
	notFoundBody = "nothing to see here"
)

func (a *Api) handleRoot(w http.ResponseWriter, r *http.Request, _ Param) {
	writeHTML(w, http.StatusOK, rootPage)
}

// handleDashboard renders the dashboard for /handle and /handle/:name.
func (a *Api) handleDashboard(w http.ResponseWriter, r *http.Request, p Param) {
	logger := a.requestLogger(r)
	cfg := a.ctx.Config

	name := p.Or(domain.AnonymousName)
	logger.Debug("Rendering dashboard", "name", name, "hostname", cfg.Hostname)

	body, err := a.dashboard.Render(render.Context{
		"url":  cfg.URL(),
		"name": name,
	})
	if err != nil {
		logger.Error("Dashboard render failed",
			"template", a.dashboard.Name(),
			"missingVariable", render.IsMissingVariable(err),
			"error", err)
		internalError(w)
		return
	}

	// Rendered output is never cached.
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
	writeHTML(w, http.StatusOK, body)
}

func (a *Api) handleNotFound(w http.ResponseWriter, r *http.Request, _ Param) {
	writeText(w, http.StatusNotFound, notFoundBody)
}

func writeHTML(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

// internalError writes a generic 500. Details stay in the log.
func internalError(w http.ResponseWriter) {
	writeText(w, http.StatusInternalServerError, "internal server error")
}
