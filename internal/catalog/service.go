// Package catalog resolves line-item unit prices from the pricing catalog
// maintained by the external pricing-admin surface.
package catalog

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/bodycraft-erp/bodycraft-erp/internal/shared"
)

// WarmupEnqueuer schedules a cache warmup after catalog changes.
type WarmupEnqueuer interface {
	EnqueueCatalogWarmup(ctx context.Context) error
}

// Resolver answers price lookups through a read-through versioned cache.
// Concurrent lookups of the same key are collapsed via singleflight; within
// one request the resolved price is point-in-time consistent.
type Resolver struct {
	repo   Repository
	cache  *Cache
	warmup WarmupEnqueuer
	logger *slog.Logger
	sf     singleflight.Group
}

// NewResolver wires the resolver. warmup may be nil.
func NewResolver(repo Repository, cache *Cache, warmup WarmupEnqueuer, logger *slog.Logger) *Resolver {
	return &Resolver{repo: repo, cache: cache, warmup: warmup, logger: logger}
}

// Resolve returns the catalog unit price for the key, preferring the
// feature-type entry over the category entry. A miss yields a MISSING_PRICE
// error carrying the full lookup tuple.
func (s *Resolver) Resolve(ctx context.Context, key PriceKey) (decimal.Decimal, error) {
	cacheKey, err := s.cache.BuildKey(ctx, priceKeyParts(key)...)
	if err != nil {
		return decimal.Zero, err
	}

	raw, err, _ := s.sf.Do(cacheKey, func() (any, error) {
		return s.cache.Fetch(ctx, cacheKey, func(ctx context.Context) (string, error) {
			price, err := s.repo.Lookup(ctx, key)
			if err != nil {
				return "", err
			}
			return price.String(), nil
		})
	})
	if err != nil {
		if err == ErrNoEntry {
			return decimal.Zero, shared.E(shared.KindMissingPrice, "no catalog price for selection").
				With("vehicle_model_id", key.VehicleModelID).
				With("feature_category_id", key.FeatureCategoryID).
				With("feature_type_id", key.FeatureTypeID)
		}
		return decimal.Zero, err
	}

	price, err := decimal.NewFromString(raw.(string))
	if err != nil {
		return decimal.Zero, shared.Wrap(shared.KindInternal, "corrupt cached price", err)
	}
	return price, nil
}

// UpsertPrice writes a catalog entry, invalidates the cache, and schedules a
// warmup so hot keys repopulate before the next quote is priced.
func (s *Resolver) UpsertPrice(ctx context.Context, entry PriceEntry) (int64, error) {
	if entry.VehicleModelID <= 0 {
		return 0, shared.E(shared.KindValidation, "vehicle_model_id is required")
	}
	if entry.FeatureCategoryID == nil && entry.FeatureTypeID == nil {
		return 0, shared.E(shared.KindValidation, "a feature category or feature type key is required")
	}
	if entry.UnitPrice.IsNegative() {
		return 0, shared.E(shared.KindValidation, "unit_price must not be negative")
	}

	id, err := s.repo.Upsert(ctx, entry)
	if err != nil {
		return 0, err
	}
	if err := s.cache.Bump(ctx); err != nil {
		s.log().Warn("catalog cache bump failed", slog.Any("error", err))
	}
	if s.warmup != nil {
		if err := s.warmup.EnqueueCatalogWarmup(ctx); err != nil {
			s.log().Warn("enqueue catalog warmup failed", slog.Any("error", err))
		}
	}
	return id, nil
}

// Warm primes cache keys for every catalog entry. Called by the worker.
func (s *Resolver) Warm(ctx context.Context) (int, error) {
	modelIDs, err := s.repo.ListModelIDs(ctx)
	if err != nil {
		return 0, err
	}
	primed := 0
	for _, modelID := range modelIDs {
		entries, err := s.repo.ListByModel(ctx, modelID)
		if err != nil {
			return primed, err
		}
		for _, e := range entries {
			key := PriceKey{
				VehicleModelID:    e.VehicleModelID,
				FeatureCategoryID: e.FeatureCategoryID,
				FeatureTypeID:     e.FeatureTypeID,
			}
			cacheKey, err := s.cache.BuildKey(ctx, priceKeyParts(key)...)
			if err != nil {
				return primed, err
			}
			if err := s.cache.Put(ctx, cacheKey, e.UnitPrice.String()); err != nil {
				return primed, err
			}
			primed++
		}
	}
	s.log().Info("catalog cache warmed",
		slog.Int("models", len(modelIDs)),
		slog.Int("entries", primed))
	return primed, nil
}

func (s *Resolver) log() *slog.Logger {
	if s != nil && s.logger != nil {
		return s.logger.With(slog.String("component", "catalog"))
	}
	return slog.Default().With(slog.String("component", "catalog"))
}

// DescribeKey renders a lookup key for logs and error messages.
func DescribeKey(key PriceKey) string {
	return strings.Join(priceKeyParts(key)[2:], "/")
}
