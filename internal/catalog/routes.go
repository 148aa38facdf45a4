package catalog

import (
	"github.com/go-chi/chi/v5"
)

// MountRoutes attaches catalog admin routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Put("/prices", h.UpsertPrice)
}
