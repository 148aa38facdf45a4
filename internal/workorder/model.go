package workorder

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status of a work order. The engine only opens work orders; scheduling and
// execution live elsewhere.
type Status string

const (
	StatusOpen Status = "OPEN"
)

// WorkOrder is the production handoff created from a converted quotation.
type WorkOrder struct {
	ID             int64            `json:"id" db:"id"`
	DocNumber      string           `json:"doc_number" db:"doc_number"`
	QuotationID    int64            `json:"quotation_id" db:"quotation_id"`
	CustomerRef    string           `json:"customer_ref" db:"customer_ref"`
	VehicleModelID int64            `json:"vehicle_model_id" db:"vehicle_model_id"`
	Status         Status           `json:"status" db:"status"`
	TotalAmount    *decimal.Decimal `json:"total_amount,omitempty" db:"total_amount"`
	ScheduledStart *time.Time       `json:"scheduled_start,omitempty" db:"scheduled_start"`
	Notes          *string          `json:"notes,omitempty" db:"notes"`
	CreatedBy      string           `json:"created_by" db:"created_by"`
	CreatedAt      time.Time        `json:"created_at" db:"created_at"`
}
