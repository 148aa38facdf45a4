package quotation

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the quotation life cycle state. REJECTED and CONVERTED are
// terminal; quotations are never physically deleted.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusReview    Status = "REVIEW"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
	StatusConverted Status = "CONVERTED"
)

// Terminal reports whether no further mutation is allowed.
func (s Status) Terminal() bool {
	return s == StatusRejected || s == StatusConverted
}

// DiscountMode selects the discount arithmetic.
type DiscountMode string

const (
	DiscountAmount  DiscountMode = "AMOUNT"
	DiscountPercent DiscountMode = "PERCENT"
)

// DiscountStatus is the resolution state of a ledger entry. Resolution is
// one-way and happens exactly once.
type DiscountStatus string

const (
	DiscountPending  DiscountStatus = "PENDING"
	DiscountApproved DiscountStatus = "APPROVED"
	DiscountRejected DiscountStatus = "REJECTED"
)

// Quotation is a priced configuration of vehicle plus features. BaseTotal is
// a cached derivation over line items; FinalTotal is set by approval or by a
// manual override and tracked separately from the computed totals so drift
// stays visible.
type Quotation struct {
	ID             int64            `json:"id" db:"id"`
	DocNumber      string           `json:"doc_number" db:"doc_number"`
	CustomerRef    string           `json:"customer_ref" db:"customer_ref"`
	VehicleModelID int64            `json:"vehicle_model_id" db:"vehicle_model_id"`
	Status         Status           `json:"status" db:"status"`
	BaseTotal      decimal.Decimal  `json:"base_total" db:"base_total"`
	FinalTotal     *decimal.Decimal `json:"final_total,omitempty" db:"final_total"`
	WorkOrderID    *string          `json:"work_order_id,omitempty" db:"work_order_id"`
	Notes          *string          `json:"notes,omitempty" db:"notes"`
	LockVersion    int64            `json:"lock_version" db:"lock_version"`
	CreatedBy      string           `json:"created_by" db:"created_by"`
	ApprovedBy     *string          `json:"approved_by,omitempty" db:"approved_by"`
	ApprovedAt     *time.Time       `json:"approved_at,omitempty" db:"approved_at"`
	CreatedAt      time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at" db:"updated_at"`
	Lines          []LineItem       `json:"lines,omitempty" db:"-"`
}

// LineItem is one quoted feature. Either the catalog reference or CustomName
// is set, never both. TotalPrice is always quantity times unit price.
type LineItem struct {
	ID                int64           `json:"id" db:"id"`
	QuotationID       int64           `json:"quotation_id" db:"quotation_id"`
	FeatureTypeID     *int64          `json:"feature_type_id,omitempty" db:"feature_type_id"`
	FeatureCategoryID *int64          `json:"feature_category_id,omitempty" db:"feature_category_id"`
	CustomName        *string         `json:"custom_name,omitempty" db:"custom_name"`
	Quantity          int64           `json:"quantity" db:"quantity"`
	UnitPrice         decimal.Decimal `json:"unit_price" db:"unit_price"`
	TotalPrice        decimal.Decimal `json:"total_price" db:"total_price"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
}

// DiscountEntry is an append-only ledger record. Entries are never deleted,
// only resolved; pending and rejected entries stay out of the computation but
// remain for audit.
type DiscountEntry struct {
	ID          int64           `json:"id" db:"id"`
	QuotationID int64           `json:"quotation_id" db:"quotation_id"`
	Mode        DiscountMode    `json:"mode" db:"mode"`
	Value       decimal.Decimal `json:"value" db:"value"`
	Status      DiscountStatus  `json:"status" db:"status"`
	Note        *string         `json:"note,omitempty" db:"note"`
	CreatedBy   string          `json:"created_by" db:"created_by"`
	ResolvedBy  *string         `json:"resolved_by,omitempty" db:"resolved_by"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	ResolvedAt  *time.Time      `json:"resolved_at,omitempty" db:"resolved_at"`
}

// VersionSnapshot freezes the totals triple for historical reprint. Snapshots
// are immutable once written; version numbers start at 1 per quotation,
// increase without gaps, and are never reused.
type VersionSnapshot struct {
	ID              int64            `json:"id" db:"id"`
	QuotationID     int64            `json:"quotation_id" db:"quotation_id"`
	VersionNumber   int32            `json:"version_number" db:"version_number"`
	BaseTotal       decimal.Decimal  `json:"base_total" db:"base_total"`
	DiscountTotal   decimal.Decimal  `json:"discount_total" db:"discount_total"`
	DiscountedTotal decimal.Decimal  `json:"discounted_total" db:"discounted_total"`
	Mode            *DiscountMode    `json:"mode,omitempty" db:"mode"`
	Value           *decimal.Decimal `json:"value,omitempty" db:"value"`
	Note            *string          `json:"note,omitempty" db:"note"`
	CreatedBy       string           `json:"created_by" db:"created_by"`
	CreatedAt       time.Time        `json:"created_at" db:"created_at"`
}

// OverrideRecord is the audit trail of manual final-total replacements.
type OverrideRecord struct {
	ID            int64            `json:"id" db:"id"`
	QuotationID   int64            `json:"quotation_id" db:"quotation_id"`
	OldFinalTotal *decimal.Decimal `json:"old_final_total,omitempty" db:"old_final_total"`
	NewFinalTotal decimal.Decimal  `json:"new_final_total" db:"new_final_total"`
	Note          *string          `json:"note,omitempty" db:"note"`
	Actor         string           `json:"actor" db:"actor"`
	CreatedAt     time.Time        `json:"created_at" db:"created_at"`
}

// View is a quotation plus its derived discount totals, the read-side shape
// for GET responses.
type View struct {
	Quotation
	DiscountTotal   decimal.Decimal `json:"discount_total"`
	DiscountedTotal decimal.Decimal `json:"discounted_total"`
	Discounts       []DiscountEntry `json:"discounts,omitempty"`
}
