package workorder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/bodycraft-erp/bodycraft-erp/internal/platform/db"
	"github.com/bodycraft-erp/bodycraft-erp/internal/shared"
)

// Repository persists work orders. Writes join a caller's transaction when
// the context carries one, so conversion stays atomic with the quotation
// status change.
type Repository interface {
	Create(ctx context.Context, wo WorkOrder) (int64, error)
	GetByDocNumber(ctx context.Context, docNumber string) (*WorkOrder, error)
	GenerateNumber(ctx context.Context, date time.Time) (string, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// pgxpool.Pool and pgx.Tx share the query methods we need; resolve through
// the context so nested calls reuse the surrounding transaction.
func (r *repository) q(ctx context.Context) interface {
	QueryRow(context.Context, string, ...interface{}) pgx.Row
} {
	if tx, ok := db.TxFromContext(ctx); ok {
		return tx
	}
	return r.pool
}

func (r *repository) Create(ctx context.Context, wo WorkOrder) (int64, error) {
	var totalArg interface{}
	if wo.TotalAmount != nil {
		totalArg = wo.TotalAmount.String()
	}
	var id int64
	err := r.q(ctx).QueryRow(ctx, `
		INSERT INTO work_orders (doc_number, quotation_id, customer_ref, vehicle_model_id, status, total_amount, scheduled_start, notes, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		RETURNING id`,
		wo.DocNumber, wo.QuotationID, wo.CustomerRef, wo.VehicleModelID, wo.Status,
		totalArg, wo.ScheduledStart, wo.Notes, wo.CreatedBy).Scan(&id)
	return id, err
}

func (r *repository) GetByDocNumber(ctx context.Context, docNumber string) (*WorkOrder, error) {
	row := r.q(ctx).QueryRow(ctx, `
		SELECT id, doc_number, quotation_id, customer_ref, vehicle_model_id, status, total_amount, scheduled_start, notes, created_by, created_at
		FROM work_orders WHERE doc_number = $1`, docNumber)

	var wo WorkOrder
	var total pgtype.Numeric
	var scheduled pgtype.Timestamptz
	var notes pgtype.Text
	err := row.Scan(&wo.ID, &wo.DocNumber, &wo.QuotationID, &wo.CustomerRef, &wo.VehicleModelID,
		&wo.Status, &total, &scheduled, &notes, &wo.CreatedBy, &wo.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.E(shared.KindNotFound, "work order not found").With("doc_number", docNumber)
		}
		return nil, err
	}
	if total.Valid && total.Int != nil {
		d := decimal.NewFromBigInt(total.Int, total.Exp)
		wo.TotalAmount = &d
	}
	if scheduled.Valid {
		t := scheduled.Time
		wo.ScheduledStart = &t
	}
	if notes.Valid {
		n := notes.String
		wo.Notes = &n
	}
	return &wo, nil
}

func (r *repository) GenerateNumber(ctx context.Context, date time.Time) (string, error) {
	// WO-{YY}{MM}-{SEQ}
	var seq int64
	period := date.Format("200601")
	err := r.q(ctx).QueryRow(ctx, `
		INSERT INTO document_sequences (doc_type, period, seq)
		VALUES ($1, $2, 1)
		ON CONFLICT (doc_type, period)
		DO UPDATE SET seq = document_sequences.seq + 1
		RETURNING seq
	`, "WO", period).Scan(&seq)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("WO-%s-%04d", date.Format("0601"), seq), nil
}
