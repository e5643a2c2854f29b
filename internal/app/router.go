package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/tramita/tramita/internal/catalog/acts"
	"github.com/tramita/tramita/internal/catalog/dependencies"
	"github.com/tramita/tramita/internal/catalog/faqs"
	"github.com/tramita/tramita/internal/catalog/procedures"
	"github.com/tramita/tramita/internal/presets"
	"github.com/tramita/tramita/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger              *slog.Logger
	Config              *Config
	DependenciesHandler *dependencies.Handler
	ProceduresHandler   *procedures.Handler
	ActsHandler         *acts.Handler
	FAQsHandler         *faqs.Handler
	PresetsHandler      *presets.Handler
	JobHandler          *jobs.Handler
}

// NewRouter constructs the chi.Router with portal defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/dependencies", params.DependenciesHandler.MountRoutes)
		r.Route("/procedures", params.ProceduresHandler.MountRoutes)
		r.Route("/acts", params.ActsHandler.MountRoutes)
		r.Route("/faqs", params.FAQsHandler.MountRoutes)
		r.Route("/presets", params.PresetsHandler.MountRoutes)
	})

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	return r
}
