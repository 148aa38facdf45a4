package quotation

import "github.com/go-chi/chi/v5"

// MountRoutes attaches the quotation surface under the given router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Get("/print", h.Print)

		r.Post("/features", h.AddFeature)
		r.Delete("/features/{line_id}", h.RemoveFeature)

		r.Get("/discounts", h.ListDiscounts)
		r.Post("/discounts", h.AddDiscount)
		r.Post("/discounts/{discount_id}/approve", h.ApproveDiscount)
		r.Post("/discounts/{discount_id}/reject", h.RejectDiscount)

		r.Get("/versions", h.ListVersions)
		r.Post("/versions", h.CreateVersion)

		r.Post("/submit_for_review", h.SubmitForReview)
		r.Post("/approve", h.Approve)
		r.Post("/reject", h.Reject)
		r.Post("/manual_override", h.Override)
		r.Get("/overrides", h.ListOverrides)
		r.Post("/convert", h.Convert)
	})
}
