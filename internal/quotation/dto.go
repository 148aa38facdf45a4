package quotation

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateQuotationRequest is the configurator submission payload.
type CreateQuotationRequest struct {
	CustomerRef    string              `json:"customer_ref" validate:"required,max=120"`
	VehicleModelID int64               `json:"vehicle_model_id" validate:"required,gt=0"`
	Notes          *string             `json:"notes,omitempty"`
	Lines          []AddFeatureRequest `json:"lines,omitempty" validate:"omitempty,dive"`
}

// AddFeatureRequest adds one line item. Catalog lines reference a feature
// type (optionally through a category); custom lines carry a free-text name
// and must supply a manual unit price. A manual unit price always wins over
// the catalog.
type AddFeatureRequest struct {
	FeatureTypeID     *int64           `json:"feature_type_id,omitempty" validate:"omitempty,gt=0"`
	FeatureCategoryID *int64           `json:"feature_category_id,omitempty" validate:"omitempty,gt=0"`
	CustomName        *string          `json:"custom_name,omitempty" validate:"omitempty,max=200"`
	Quantity          int64            `json:"quantity" validate:"required,gte=1"`
	UnitPrice         *decimal.Decimal `json:"unit_price,omitempty"`
}

// AddDiscountRequest proposes a price reduction; it is created PENDING.
type AddDiscountRequest struct {
	Mode  DiscountMode    `json:"mode" validate:"required,oneof=AMOUNT PERCENT"`
	Value decimal.Decimal `json:"value"`
	Note  *string         `json:"note,omitempty" validate:"omitempty,max=500"`
}

// CreateVersionRequest snapshots the totals after one hypothetical
// adjustment.
type CreateVersionRequest struct {
	Mode  DiscountMode    `json:"mode" validate:"required,oneof=AMOUNT PERCENT"`
	Value decimal.Decimal `json:"value"`
	Note  *string         `json:"note,omitempty" validate:"omitempty,max=500"`
}

// ApproveRequest carries the optional explicit final total.
type ApproveRequest struct {
	FinalTotal *decimal.Decimal `json:"final_total,omitempty"`
}

// OverrideRequest replaces the final total directly.
type OverrideRequest struct {
	FinalTotal decimal.Decimal `json:"final_total"`
	Note       *string         `json:"note,omitempty" validate:"omitempty,max=500"`
}

// ConvertRequest carries the work order parameters for the handoff.
type ConvertRequest struct {
	ScheduledStart *time.Time `json:"scheduled_start,omitempty"`
	Notes          *string    `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// ListRequest filters the quotation listing.
type ListRequest struct {
	CustomerRef *string `json:"customer_ref,omitempty"`
	Status      *Status `json:"status,omitempty"`
	Limit       int     `json:"limit" validate:"gte=0,lte=1000"`
	Offset      int     `json:"offset" validate:"gte=0"`
}
