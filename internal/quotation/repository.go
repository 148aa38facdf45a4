package quotation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/bodycraft-erp/bodycraft-erp/internal/platform/db"
	"github.com/bodycraft-erp/bodycraft-erp/internal/shared"
)

// Repository is the persistence contract for the quotation engine. Every
// mutating service operation runs inside WithTx so reads, guards and writes
// commit or fail as one unit.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error

	Get(ctx context.Context, id int64) (*Quotation, error)
	// GetForUpdate locks the quotation row for the current transaction,
	// serializing concurrent mutations of the same quotation.
	GetForUpdate(ctx context.Context, id int64) (*Quotation, error)
	List(ctx context.Context, req ListRequest) ([]Quotation, int, error)
	Create(ctx context.Context, q Quotation) (int64, error)
	// BumpLockVersion is the optimistic row check: it fails with CONFLICT when
	// another transaction already advanced the version.
	BumpLockVersion(ctx context.Context, id, expected int64) error

	InsertLine(ctx context.Context, line LineItem) (int64, error)
	DeleteLine(ctx context.Context, quotationID, lineID int64) error
	UpdateBaseTotal(ctx context.Context, id int64, base decimal.Decimal) error

	// UpdateStatus performs a check-and-set on the status column; zero rows
	// affected means a concurrent transition won and yields CONFLICT.
	UpdateStatus(ctx context.Context, id int64, from, to Status, actor string, final *decimal.Decimal) error
	SetFinalTotal(ctx context.Context, id int64, final decimal.Decimal) error
	SetWorkOrder(ctx context.Context, id int64, workOrderID string) error

	InsertDiscount(ctx context.Context, e DiscountEntry) (int64, error)
	GetDiscount(ctx context.Context, quotationID, discountID int64) (*DiscountEntry, error)
	ListDiscounts(ctx context.Context, quotationID int64) ([]DiscountEntry, error)
	// ResolveDiscount is a check-and-set on PENDING; exactly one of two racing
	// resolutions can succeed.
	ResolveDiscount(ctx context.Context, quotationID, discountID int64, status DiscountStatus, actor string) error

	// InsertVersion assigns the next gapless version number inside the insert.
	InsertVersion(ctx context.Context, v VersionSnapshot) (*VersionSnapshot, error)
	GetVersion(ctx context.Context, quotationID, versionID int64) (*VersionSnapshot, error)
	ListVersions(ctx context.Context, quotationID int64) ([]VersionSnapshot, error)

	InsertOverride(ctx context.Context, rec OverrideRecord) (int64, error)
	ListOverrides(ctx context.Context, quotationID int64) ([]OverrideRecord, error)

	GenerateNumber(ctx context.Context, date time.Time) (string, error)
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

// NewRepository returns the pgx-backed quotation repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	err := db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
	return translateErr(err)
}

// translateErr maps serialization failures and unique violations onto the
// CONFLICT kind so callers can retry deliberately.
func translateErr(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01":
			return shared.Wrap(shared.KindConflict, "concurrent update detected", err)
		case "23505":
			return shared.Wrap(shared.KindConflict, "duplicate write detected", err)
		}
	}
	return err
}

const quotationColumns = `id, doc_number, customer_ref, vehicle_model_id, status, base_total,
	final_total, work_order_id, notes, lock_version, created_by, approved_by, approved_at,
	created_at, updated_at`

func (r *repository) Get(ctx context.Context, id int64) (*Quotation, error) {
	return r.get(ctx, id, "")
}

func (r *repository) GetForUpdate(ctx context.Context, id int64) (*Quotation, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

func (r *repository) get(ctx context.Context, id int64, suffix string) (*Quotation, error) {
	row := r.db.QueryRow(ctx, `SELECT `+quotationColumns+` FROM quotations WHERE id = $1`+suffix, id)
	q, err := scanQuotation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("quotation", id)
		}
		return nil, err
	}

	lines, err := r.listLines(ctx, id)
	if err != nil {
		return nil, err
	}
	q.Lines = lines
	return q, nil
}

func (r *repository) listLines(ctx context.Context, quotationID int64) ([]LineItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, quotation_id, feature_type_id, feature_category_id, custom_name,
		       quantity, unit_price, total_price, created_at
		FROM quotation_line_items WHERE quotation_id = $1 ORDER BY id`, quotationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []LineItem
	for rows.Next() {
		var l LineItem
		var featureType, category pgtype.Int8
		var custom pgtype.Text
		var unitPrice, totalPrice pgtype.Numeric
		if err := rows.Scan(&l.ID, &l.QuotationID, &featureType, &category, &custom,
			&l.Quantity, &unitPrice, &totalPrice, &l.CreatedAt); err != nil {
			return nil, err
		}
		if featureType.Valid {
			v := featureType.Int64
			l.FeatureTypeID = &v
		}
		if category.Valid {
			v := category.Int64
			l.FeatureCategoryID = &v
		}
		if custom.Valid {
			v := custom.String
			l.CustomName = &v
		}
		l.UnitPrice = numericToDecimal(unitPrice)
		l.TotalPrice = numericToDecimal(totalPrice)
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *repository) List(ctx context.Context, req ListRequest) ([]Quotation, int, error) {
	var conditions []string
	var args []interface{}
	argPos := 1

	if req.CustomerRef != nil {
		conditions = append(conditions, fmt.Sprintf("customer_ref = $%d", argPos))
		args = append(args, *req.CustomerRef)
		argPos++
	}
	if req.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, *req.Status)
		argPos++
	}

	whereClause := ""
	for i, c := range conditions {
		if i == 0 {
			whereClause = "WHERE " + c
		} else {
			whereClause += " AND " + c
		}
	}

	var total int
	if err := r.db.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM quotations %s", whereClause), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM quotations %s ORDER BY id DESC LIMIT $%d OFFSET $%d`,
		quotationColumns, whereClause, argPos, argPos+1)
	args = append(args, req.Limit, req.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var quotations []Quotation
	for rows.Next() {
		q, err := scanQuotation(rows)
		if err != nil {
			return nil, 0, err
		}
		quotations = append(quotations, *q)
	}
	return quotations, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, q Quotation) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO quotations (doc_number, customer_ref, vehicle_model_id, status, base_total, notes, lock_version, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, 1, $7, NOW(), NOW())
		RETURNING id`,
		q.DocNumber, q.CustomerRef, q.VehicleModelID, q.Status, q.BaseTotal.String(), q.Notes, q.CreatedBy).Scan(&id)
	return id, err
}

func (r *repository) BumpLockVersion(ctx context.Context, id, expected int64) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE quotations SET lock_version = lock_version + 1, updated_at = NOW()
		WHERE id = $1 AND lock_version = $2`, id, expected)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.E(shared.KindConflict, "quotation was modified concurrently").
			With("quotation_id", id)
	}
	return nil
}

func (r *repository) InsertLine(ctx context.Context, line LineItem) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO quotation_line_items (quotation_id, feature_type_id, feature_category_id, custom_name, quantity, unit_price, total_price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING id`,
		line.QuotationID, line.FeatureTypeID, line.FeatureCategoryID, line.CustomName,
		line.Quantity, line.UnitPrice.String(), line.TotalPrice.String()).Scan(&id)
	return id, err
}

func (r *repository) DeleteLine(ctx context.Context, quotationID, lineID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM quotation_line_items WHERE id = $1 AND quotation_id = $2`, lineID, quotationID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return notFound("line item", lineID)
	}
	return nil
}

func (r *repository) UpdateBaseTotal(ctx context.Context, id int64, base decimal.Decimal) error {
	_, err := r.db.Exec(ctx, `UPDATE quotations SET base_total = $2, updated_at = NOW() WHERE id = $1`, id, base.String())
	return err
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, from, to Status, actor string, final *decimal.Decimal) error {
	var finalArg interface{}
	if final != nil {
		finalArg = final.String()
	}
	var approvedBy interface{}
	var approvedAt interface{}
	if to == StatusApproved {
		approvedBy = actor
		approvedAt = time.Now().UTC()
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE quotations
		SET status = $3,
		    final_total = COALESCE($4::numeric, final_total),
		    approved_by = COALESCE($5, approved_by),
		    approved_at = COALESCE($6, approved_at),
		    updated_at = NOW()
		WHERE id = $1 AND status = $2`,
		id, from, to, finalArg, approvedBy, approvedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.E(shared.KindConflict, "quotation status changed concurrently").
			With("quotation_id", id).
			With("expected_status", string(from))
	}
	return nil
}

func (r *repository) SetFinalTotal(ctx context.Context, id int64, final decimal.Decimal) error {
	_, err := r.db.Exec(ctx, `UPDATE quotations SET final_total = $2, updated_at = NOW() WHERE id = $1`, id, final.String())
	return err
}

func (r *repository) SetWorkOrder(ctx context.Context, id int64, workOrderID string) error {
	_, err := r.db.Exec(ctx, `UPDATE quotations SET work_order_id = $2, updated_at = NOW() WHERE id = $1`, id, workOrderID)
	return err
}

func (r *repository) InsertDiscount(ctx context.Context, e DiscountEntry) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO quotation_discounts (quotation_id, mode, value, status, note, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id`,
		e.QuotationID, e.Mode, e.Value.String(), e.Status, e.Note, e.CreatedBy).Scan(&id)
	return id, err
}

func (r *repository) GetDiscount(ctx context.Context, quotationID, discountID int64) (*DiscountEntry, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, quotation_id, mode, value, status, note, created_by, resolved_by, created_at, resolved_at
		FROM quotation_discounts WHERE id = $1 AND quotation_id = $2`, discountID, quotationID)
	e, err := scanDiscount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("discount", discountID)
		}
		return nil, err
	}
	return e, nil
}

func (r *repository) ListDiscounts(ctx context.Context, quotationID int64) ([]DiscountEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, quotation_id, mode, value, status, note, created_by, resolved_by, created_at, resolved_at
		FROM quotation_discounts WHERE quotation_id = $1 ORDER BY id`, quotationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []DiscountEntry
	for rows.Next() {
		e, err := scanDiscount(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

func (r *repository) ResolveDiscount(ctx context.Context, quotationID, discountID int64, status DiscountStatus, actor string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE quotation_discounts
		SET status = $3, resolved_by = $4, resolved_at = NOW()
		WHERE id = $1 AND quotation_id = $2 AND status = 'PENDING'`,
		discountID, quotationID, status, actor)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Distinguish "absent" from "already resolved" for the error contract.
		existing, err := r.GetDiscount(ctx, quotationID, discountID)
		if err != nil {
			return err
		}
		return shared.E(shared.KindInvalidState, "discount entry is already resolved").
			With("discount_id", discountID).
			With("status", string(existing.Status))
	}
	return nil
}

func (r *repository) InsertVersion(ctx context.Context, v VersionSnapshot) (*VersionSnapshot, error) {
	// The per-quotation row lock held by the surrounding transaction
	// serializes snapshot creation, keeping version numbers gapless.
	var valueArg interface{}
	if v.Value != nil {
		valueArg = v.Value.String()
	}
	row := r.db.QueryRow(ctx, `
		INSERT INTO quotation_versions (quotation_id, version_number, base_total, discount_total, discounted_total, mode, value, note, created_by, created_at)
		SELECT $1, COALESCE(MAX(version_number), 0) + 1, $2, $3, $4, $5, $6, $7, $8, NOW()
		FROM quotation_versions WHERE quotation_id = $1
		RETURNING id, version_number, created_at`,
		v.QuotationID, v.BaseTotal.String(), v.DiscountTotal.String(), v.DiscountedTotal.String(),
		v.Mode, valueArg, v.Note, v.CreatedBy)
	if err := row.Scan(&v.ID, &v.VersionNumber, &v.CreatedAt); err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *repository) GetVersion(ctx context.Context, quotationID, versionID int64) (*VersionSnapshot, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, quotation_id, version_number, base_total, discount_total, discounted_total, mode, value, note, created_by, created_at
		FROM quotation_versions WHERE id = $1 AND quotation_id = $2`, versionID, quotationID)
	v, err := scanVersion(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("version", versionID)
		}
		return nil, err
	}
	return v, nil
}

func (r *repository) ListVersions(ctx context.Context, quotationID int64) ([]VersionSnapshot, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, quotation_id, version_number, base_total, discount_total, discounted_total, mode, value, note, created_by, created_at
		FROM quotation_versions WHERE quotation_id = $1 ORDER BY version_number`, quotationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []VersionSnapshot
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, err
		}
		versions = append(versions, *v)
	}
	return versions, rows.Err()
}

func (r *repository) InsertOverride(ctx context.Context, rec OverrideRecord) (int64, error) {
	var oldArg interface{}
	if rec.OldFinalTotal != nil {
		oldArg = rec.OldFinalTotal.String()
	}
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO quotation_overrides (quotation_id, old_final_total, new_final_total, note, actor, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id`,
		rec.QuotationID, oldArg, rec.NewFinalTotal.String(), rec.Note, rec.Actor).Scan(&id)
	return id, err
}

func (r *repository) ListOverrides(ctx context.Context, quotationID int64) ([]OverrideRecord, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, quotation_id, old_final_total, new_final_total, note, actor, created_at
		FROM quotation_overrides WHERE quotation_id = $1 ORDER BY id`, quotationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []OverrideRecord
	for rows.Next() {
		var rec OverrideRecord
		var oldTotal, newTotal pgtype.Numeric
		var note pgtype.Text
		if err := rows.Scan(&rec.ID, &rec.QuotationID, &oldTotal, &newTotal, &note, &rec.Actor, &rec.CreatedAt); err != nil {
			return nil, err
		}
		if oldTotal.Valid {
			d := numericToDecimal(oldTotal)
			rec.OldFinalTotal = &d
		}
		rec.NewFinalTotal = numericToDecimal(newTotal)
		if note.Valid {
			v := note.String
			rec.Note = &v
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *repository) GenerateNumber(ctx context.Context, date time.Time) (string, error) {
	// QT-{YY}{MM}-{SEQ}
	var seq int64
	period := date.Format("200601")
	err := r.db.QueryRow(ctx, `
		INSERT INTO document_sequences (doc_type, period, seq)
		VALUES ($1, $2, 1)
		ON CONFLICT (doc_type, period)
		DO UPDATE SET seq = document_sequences.seq + 1
		RETURNING seq
	`, "QT", period).Scan(&seq)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("QT-%s-%04d", date.Format("0601"), seq), nil
}

func notFound(entity string, id int64) error {
	return shared.E(shared.KindNotFound, entity+" not found").With("id", id)
}

func scanQuotation(row pgx.Row) (*Quotation, error) {
	var q Quotation
	var baseTotal, finalTotal pgtype.Numeric
	var workOrderID, notes, approvedBy pgtype.Text
	var approvedAt pgtype.Timestamptz
	err := row.Scan(&q.ID, &q.DocNumber, &q.CustomerRef, &q.VehicleModelID, &q.Status,
		&baseTotal, &finalTotal, &workOrderID, &notes, &q.LockVersion,
		&q.CreatedBy, &approvedBy, &approvedAt, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}
	q.BaseTotal = numericToDecimal(baseTotal)
	if finalTotal.Valid {
		d := numericToDecimal(finalTotal)
		q.FinalTotal = &d
	}
	if workOrderID.Valid {
		v := workOrderID.String
		q.WorkOrderID = &v
	}
	if notes.Valid {
		v := notes.String
		q.Notes = &v
	}
	if approvedBy.Valid {
		v := approvedBy.String
		q.ApprovedBy = &v
	}
	if approvedAt.Valid {
		v := approvedAt.Time
		q.ApprovedAt = &v
	}
	return &q, nil
}

func scanDiscount(row pgx.Row) (*DiscountEntry, error) {
	var e DiscountEntry
	var value pgtype.Numeric
	var note, resolvedBy pgtype.Text
	var resolvedAt pgtype.Timestamptz
	err := row.Scan(&e.ID, &e.QuotationID, &e.Mode, &value, &e.Status, &note,
		&e.CreatedBy, &resolvedBy, &e.CreatedAt, &resolvedAt)
	if err != nil {
		return nil, err
	}
	e.Value = numericToDecimal(value)
	if note.Valid {
		v := note.String
		e.Note = &v
	}
	if resolvedBy.Valid {
		v := resolvedBy.String
		e.ResolvedBy = &v
	}
	if resolvedAt.Valid {
		v := resolvedAt.Time
		e.ResolvedAt = &v
	}
	return &e, nil
}

func scanVersion(row pgx.Row) (*VersionSnapshot, error) {
	var v VersionSnapshot
	var base, discount, discounted, value pgtype.Numeric
	var mode, note pgtype.Text
	err := row.Scan(&v.ID, &v.QuotationID, &v.VersionNumber, &base, &discount, &discounted,
		&mode, &value, &note, &v.CreatedBy, &v.CreatedAt)
	if err != nil {
		return nil, err
	}
	v.BaseTotal = numericToDecimal(base)
	v.DiscountTotal = numericToDecimal(discount)
	v.DiscountedTotal = numericToDecimal(discounted)
	if mode.Valid {
		m := DiscountMode(mode.String)
		v.Mode = &m
	}
	if value.Valid {
		d := numericToDecimal(value)
		v.Value = &d
	}
	if note.Valid {
		n := note.String
		v.Note = &n
	}
	return &v, nil
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}
