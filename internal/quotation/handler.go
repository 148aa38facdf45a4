package quotation

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/bodycraft-erp/bodycraft-erp/internal/platform/httpx"
	"github.com/bodycraft-erp/bodycraft-erp/internal/shared"
)

// Handler exposes the quotation engine over JSON.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

func urlID(r *http.Request, param string) (int64, error) {
	raw := chi.URLParam(r, param)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, shared.E(shared.KindValidation, "invalid identifier").With("param", param)
	}
	return id, nil
}

// Create handles POST /quotations.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateQuotationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.Wrap(shared.KindValidation, "malformed request body", err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, shared.Wrap(shared.KindValidation, "invalid quotation", err))
		return
	}
	view, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.respondErr(w, r, "create quotation", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, view)
}

// Get handles GET /quotations/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	view, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondErr(w, r, "get quotation", err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

// List handles GET /quotations.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := shared.ParsePagination(r)
	req := ListRequest{Limit: page.Limit, Offset: page.Offset}
	if v := r.URL.Query().Get("customer_ref"); v != "" {
		req.CustomerRef = &v
	}
	if v := r.URL.Query().Get("status"); v != "" {
		status := Status(v)
		req.Status = &status
	}
	items, total, err := h.service.List(r.Context(), req)
	if err != nil {
		h.respondErr(w, r, "list quotations", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"items": items,
		"total": total,
	})
}

// AddFeature handles POST /quotations/{id}/features.
func (h *Handler) AddFeature(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req AddFeatureRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.Wrap(shared.KindValidation, "malformed request body", err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, shared.Wrap(shared.KindValidation, "invalid line item", err))
		return
	}
	view, err := h.service.AddFeature(r.Context(), id, req)
	if err != nil {
		h.respondErr(w, r, "add feature", err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

// RemoveFeature handles DELETE /quotations/{id}/features/{line_id}.
func (h *Handler) RemoveFeature(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	lineID, err := urlID(r, "line_id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	view, err := h.service.RemoveFeature(r.Context(), id, lineID)
	if err != nil {
		h.respondErr(w, r, "remove feature", err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

// AddDiscount handles POST /quotations/{id}/discounts.
func (h *Handler) AddDiscount(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req AddDiscountRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.Wrap(shared.KindValidation, "malformed request body", err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, shared.Wrap(shared.KindValidation, "invalid discount", err))
		return
	}
	view, err := h.service.AddDiscount(r.Context(), id, req)
	if err != nil {
		h.respondErr(w, r, "add discount", err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

// ListDiscounts handles GET /quotations/{id}/discounts.
func (h *Handler) ListDiscounts(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	view, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondErr(w, r, "list discounts", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"items":            view.Discounts,
		"discount_total":   view.DiscountTotal,
		"discounted_total": view.DiscountedTotal,
	})
}

// ApproveDiscount handles POST /quotations/{id}/discounts/{discount_id}/approve.
func (h *Handler) ApproveDiscount(w http.ResponseWriter, r *http.Request) {
	h.resolveDiscount(w, r, true)
}

// RejectDiscount handles POST /quotations/{id}/discounts/{discount_id}/reject.
func (h *Handler) RejectDiscount(w http.ResponseWriter, r *http.Request) {
	h.resolveDiscount(w, r, false)
}

func (h *Handler) resolveDiscount(w http.ResponseWriter, r *http.Request, approve bool) {
	id, err := urlID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	discountID, err := urlID(r, "discount_id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	view, err := h.service.ResolveDiscount(r.Context(), id, discountID, approve)
	if err != nil {
		h.respondErr(w, r, "resolve discount", err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

// CreateVersion handles POST /quotations/{id}/versions.
func (h *Handler) CreateVersion(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req CreateVersionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.Wrap(shared.KindValidation, "malformed request body", err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, shared.Wrap(shared.KindValidation, "invalid version request", err))
		return
	}
	snapshot, err := h.service.CreateVersion(r.Context(), id, req)
	if err != nil {
		h.respondErr(w, r, "create version", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, snapshot)
}

// ListVersions handles GET /quotations/{id}/versions.
func (h *Handler) ListVersions(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	versions, err := h.service.ListVersions(r.Context(), id)
	if err != nil {
		h.respondErr(w, r, "list versions", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": versions})
}

// SubmitForReview handles POST /quotations/{id}/submit_for_review.
func (h *Handler) SubmitForReview(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "submit for review", func(id int64) (*View, error) {
		return h.service.SubmitForReview(r.Context(), id)
	})
}

// Approve handles POST /quotations/{id}/approve.
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req ApproveRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.Wrap(shared.KindValidation, "malformed request body", err))
		return
	}
	view, err := h.service.Approve(r.Context(), id, req)
	if err != nil {
		h.respondErr(w, r, "approve quotation", err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

// Reject handles POST /quotations/{id}/reject.
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "reject quotation", func(id int64) (*View, error) {
		return h.service.Reject(r.Context(), id)
	})
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, op string, fn func(int64) (*View, error)) {
	id, err := urlID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	view, err := fn(id)
	if err != nil {
		h.respondErr(w, r, op, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

// Override handles POST /quotations/{id}/manual_override.
func (h *Handler) Override(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req OverrideRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.Wrap(shared.KindValidation, "malformed request body", err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, shared.Wrap(shared.KindValidation, "invalid override", err))
		return
	}
	view, err := h.service.Override(r.Context(), id, req)
	if err != nil {
		h.respondErr(w, r, "manual override", err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

// ListOverrides handles GET /quotations/{id}/overrides.
func (h *Handler) ListOverrides(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	records, err := h.service.ListOverrides(r.Context(), id)
	if err != nil {
		h.respondErr(w, r, "list overrides", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": records})
}

// Convert handles POST /quotations/{id}/convert.
func (h *Handler) Convert(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req ConvertRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.Wrap(shared.KindValidation, "malformed request body", err))
		return
	}
	view, err := h.service.Convert(r.Context(), id, req)
	if err != nil {
		h.respondErr(w, r, "convert quotation", err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

// Print handles GET /quotations/{id}/print?version_id=.
func (h *Handler) Print(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var versionID *int64
	if raw := r.URL.Query().Get("version_id"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v <= 0 {
			httpx.RespondError(w, shared.E(shared.KindValidation, "invalid version_id"))
			return
		}
		versionID = &v
	}
	doc, err := h.service.Print(r.Context(), id, versionID)
	if err != nil {
		h.respondErr(w, r, "print quotation", err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(doc))
}

func (h *Handler) respondErr(w http.ResponseWriter, r *http.Request, op string, err error) {
	if shared.KindOf(err) == shared.KindInternal {
		h.logger.Error(op, slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
