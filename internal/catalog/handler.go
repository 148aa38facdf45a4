package catalog

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/bodycraft-erp/bodycraft-erp/internal/platform/httpx"
	"github.com/bodycraft-erp/bodycraft-erp/internal/shared"
)

// UpsertPriceRequest is the admin payload for a catalog entry.
type UpsertPriceRequest struct {
	VehicleModelID    int64           `json:"vehicle_model_id" validate:"required,gt=0"`
	FeatureCategoryID *int64          `json:"feature_category_id,omitempty" validate:"omitempty,gt=0"`
	FeatureTypeID     *int64          `json:"feature_type_id,omitempty" validate:"omitempty,gt=0"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
}

// Handler exposes the minimal pricing-admin surface.
type Handler struct {
	logger   *slog.Logger
	resolver *Resolver
	validate *validator.Validate
}

// NewHandler constructs the catalog handler.
func NewHandler(logger *slog.Logger, resolver *Resolver) *Handler {
	return &Handler{logger: logger, resolver: resolver, validate: validator.New()}
}

// UpsertPrice handles PUT /catalog/prices.
func (h *Handler) UpsertPrice(w http.ResponseWriter, r *http.Request) {
	var req UpsertPriceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.Wrap(shared.KindValidation, "malformed request body", err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, shared.Wrap(shared.KindValidation, "invalid catalog entry", err))
		return
	}

	id, err := h.resolver.UpsertPrice(r.Context(), PriceEntry{
		VehicleModelID:    req.VehicleModelID,
		FeatureCategoryID: req.FeatureCategoryID,
		FeatureTypeID:     req.FeatureTypeID,
		UnitPrice:         req.UnitPrice,
		UpdatedBy:         shared.ActorFromContext(r.Context()),
	})
	if err != nil {
		h.logger.Error("upsert catalog price", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"id": id})
}
