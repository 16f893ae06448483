package ui

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	uimw "gtdash/ui/middleware"
)

// AdminApp is the operator-facing listener: liveness plus optional profiling
type AdminApp struct {
	router *chi.Mux
	source uimw.DatasetSource
}

// AdminConfig holds admin listener configuration
type AdminConfig struct {
	Profiling bool
}

// NewAdminApp creates the admin mux
func NewAdminApp(source uimw.DatasetSource, config AdminConfig) *AdminApp {
	app := &AdminApp{
		router: chi.NewRouter(),
		source: source,
	}

	app.router.Use(middleware.Recoverer)
	app.router.Get("/healthz", app.handleHealthz)
	if config.Profiling {
		app.router.Mount("/debug", middleware.Profiler())
	}
	return app
}

// Handler exposes the router for http.Server and tests
func (a *AdminApp) Handler() http.Handler {
	return a.router
}

func (a *AdminApp) handleHealthz(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	body := map[string]interface{}{"status": "ok"}

	ds, err := a.source.Dataset(r.Context())
	if err != nil {
		status = http.StatusServiceUnavailable
		body["status"] = "unavailable"
		body["error"] = err.Error()
	} else {
		body["dataset"] = ds.ID().String()
		body["rows"] = ds.Len()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("[Admin] Failed to write healthz response: %v", err)
	}
}
