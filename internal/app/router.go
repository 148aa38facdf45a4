package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/bodycraft-erp/bodycraft-erp/internal/auth"
	"github.com/bodycraft-erp/bodycraft-erp/internal/catalog"
	"github.com/bodycraft-erp/bodycraft-erp/internal/observability"
	"github.com/bodycraft-erp/bodycraft-erp/internal/quotation"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	Auth             auth.Middleware
	QuotationHandler *quotation.Handler
	CatalogHandler   *catalog.Handler
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router. /healthz and /metrics stay outside the
// token guard; the business surface requires a bearer token.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(params.Auth.RequireToken)

		r.Route("/quotations", params.QuotationHandler.MountRoutes)
		r.Route("/catalog", params.CatalogHandler.MountRoutes)
	})

	return r
}
