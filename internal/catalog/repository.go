package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ErrNoEntry signals a catalog miss at the repository level. The resolver
// converts it into a MissingPriceError naming the full lookup tuple.
var ErrNoEntry = errors.New("catalog: no matching price entry")

// Repository reads and writes the pricing catalog.
type Repository interface {
	// Lookup returns the unit price for the most specific match: an entry keyed
	// by (model, feature type) beats one keyed by (model, category).
	Lookup(ctx context.Context, key PriceKey) (decimal.Decimal, error)
	Upsert(ctx context.Context, entry PriceEntry) (int64, error)
	ListByModel(ctx context.Context, vehicleModelID int64) ([]PriceEntry, error)
	ListModelIDs(ctx context.Context) ([]int64, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository returns the pgx-backed catalog repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Lookup(ctx context.Context, key PriceKey) (decimal.Decimal, error) {
	if key.FeatureTypeID != nil {
		price, err := r.scanPrice(ctx, `
			SELECT unit_price FROM catalog_prices
			WHERE vehicle_model_id = $1 AND feature_type_id = $2`,
			key.VehicleModelID, *key.FeatureTypeID)
		if err == nil {
			return price, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, err
		}
	}
	if key.FeatureCategoryID != nil {
		price, err := r.scanPrice(ctx, `
			SELECT unit_price FROM catalog_prices
			WHERE vehicle_model_id = $1 AND feature_category_id = $2 AND feature_type_id IS NULL`,
			key.VehicleModelID, *key.FeatureCategoryID)
		if err == nil {
			return price, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, err
		}
	}
	return decimal.Zero, ErrNoEntry
}

func (r *repository) scanPrice(ctx context.Context, query string, args ...any) (decimal.Decimal, error) {
	var raw pgtype.Numeric
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&raw); err != nil {
		return decimal.Zero, err
	}
	return numericToDecimal(raw)
}

func (r *repository) Upsert(ctx context.Context, entry PriceEntry) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO catalog_prices (vehicle_model_id, feature_category_id, feature_type_id, unit_price, updated_by, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (vehicle_model_id, COALESCE(feature_category_id, 0), COALESCE(feature_type_id, 0))
		DO UPDATE SET unit_price = EXCLUDED.unit_price, updated_by = EXCLUDED.updated_by, updated_at = NOW()
		RETURNING id`,
		entry.VehicleModelID, entry.FeatureCategoryID, entry.FeatureTypeID,
		entry.UnitPrice.String(), entry.UpdatedBy).Scan(&id)
	return id, err
}

func (r *repository) ListByModel(ctx context.Context, vehicleModelID int64) ([]PriceEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, vehicle_model_id, feature_category_id, feature_type_id, unit_price, updated_by, updated_at
		FROM catalog_prices WHERE vehicle_model_id = $1
		ORDER BY feature_type_id NULLS LAST, feature_category_id`, vehicleModelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []PriceEntry
	for rows.Next() {
		var e PriceEntry
		var category, featureType pgtype.Int8
		var price pgtype.Numeric
		if err := rows.Scan(&e.ID, &e.VehicleModelID, &category, &featureType, &price, &e.UpdatedBy, &e.UpdatedAt); err != nil {
			return nil, err
		}
		if category.Valid {
			v := category.Int64
			e.FeatureCategoryID = &v
		}
		if featureType.Valid {
			v := featureType.Int64
			e.FeatureTypeID = &v
		}
		if e.UnitPrice, err = numericToDecimal(price); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *repository) ListModelIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT vehicle_model_id FROM catalog_prices ORDER BY vehicle_model_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func numericToDecimal(n pgtype.Numeric) (decimal.Decimal, error) {
	if !n.Valid || n.Int == nil {
		return decimal.Zero, nil
	}
	return decimal.NewFromBigInt(n.Int, n.Exp), nil
}
