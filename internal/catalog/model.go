package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceEntry is one row of the pricing catalog. Entries are keyed either by
// (vehicle model, feature type) or by (vehicle model, feature category); the
// feature-type key is the more specific and wins on lookup.
type PriceEntry struct {
	ID                int64           `json:"id" db:"id"`
	VehicleModelID    int64           `json:"vehicle_model_id" db:"vehicle_model_id"`
	FeatureCategoryID *int64          `json:"feature_category_id,omitempty" db:"feature_category_id"`
	FeatureTypeID     *int64          `json:"feature_type_id,omitempty" db:"feature_type_id"`
	UnitPrice         decimal.Decimal `json:"unit_price" db:"unit_price"`
	UpdatedBy         string          `json:"updated_by" db:"updated_by"`
	UpdatedAt         time.Time       `json:"updated_at" db:"updated_at"`
}

// PriceKey identifies a lookup request.
type PriceKey struct {
	VehicleModelID    int64
	FeatureCategoryID *int64
	FeatureTypeID     *int64
}
