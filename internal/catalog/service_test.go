package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bodycraft-erp/bodycraft-erp/internal/shared"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func ptr[T any](v T) *T { return &v }

type mockCatalogRepo struct {
	byType     map[int64]decimal.Decimal
	byCategory map[int64]decimal.Decimal
	entries    []PriceEntry
	lookups    int
	upserts    int
}

func newMockCatalogRepo() *mockCatalogRepo {
	return &mockCatalogRepo{
		byType:     map[int64]decimal.Decimal{101: d("7000.00")},
		byCategory: map[int64]decimal.Decimal{7: d("900.00")},
	}
}

// Lookup mirrors the SQL specificity: the feature-type entry wins over the
// category entry.
func (m *mockCatalogRepo) Lookup(ctx context.Context, key PriceKey) (decimal.Decimal, error) {
	m.lookups++
	if key.FeatureTypeID != nil {
		if p, ok := m.byType[*key.FeatureTypeID]; ok {
			return p, nil
		}
	}
	if key.FeatureCategoryID != nil {
		if p, ok := m.byCategory[*key.FeatureCategoryID]; ok {
			return p, nil
		}
	}
	return decimal.Zero, ErrNoEntry
}

func (m *mockCatalogRepo) Upsert(ctx context.Context, entry PriceEntry) (int64, error) {
	m.upserts++
	if entry.FeatureTypeID != nil {
		m.byType[*entry.FeatureTypeID] = entry.UnitPrice
	} else if entry.FeatureCategoryID != nil {
		m.byCategory[*entry.FeatureCategoryID] = entry.UnitPrice
	}
	m.entries = append(m.entries, entry)
	return int64(m.upserts), nil
}

func (m *mockCatalogRepo) ListByModel(ctx context.Context, vehicleModelID int64) ([]PriceEntry, error) {
	var out []PriceEntry
	for _, e := range m.entries {
		if e.VehicleModelID == vehicleModelID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockCatalogRepo) ListModelIDs(ctx context.Context) ([]int64, error) {
	seen := map[int64]bool{}
	var out []int64
	for _, e := range m.entries {
		if !seen[e.VehicleModelID] {
			seen[e.VehicleModelID] = true
			out = append(out, e.VehicleModelID)
		}
	}
	return out, nil
}

type mockEnqueuer struct{ enqueued int }

func (m *mockEnqueuer) EnqueueCatalogWarmup(ctx context.Context) error {
	m.enqueued++
	return nil
}

func newTestResolver(t *testing.T) (*Resolver, *mockCatalogRepo, *mockEnqueuer, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := newMockCatalogRepo()
	enq := &mockEnqueuer{}
	resolver := NewResolver(repo, NewCache(client, time.Minute), enq, nil)
	return resolver, repo, enq, mr
}

func TestResolvePrefersFeatureType(t *testing.T) {
	resolver, _, _, _ := newTestResolver(t)

	price, err := resolver.Resolve(context.Background(), PriceKey{
		VehicleModelID:    9,
		FeatureCategoryID: ptr(int64(7)),
		FeatureTypeID:     ptr(int64(101)),
	})
	require.NoError(t, err)
	assert.True(t, price.Equal(d("7000.00")))
}

func TestResolveFallsBackToCategory(t *testing.T) {
	resolver, _, _, _ := newTestResolver(t)

	price, err := resolver.Resolve(context.Background(), PriceKey{
		VehicleModelID:    9,
		FeatureCategoryID: ptr(int64(7)),
		FeatureTypeID:     ptr(int64(999)),
	})
	require.NoError(t, err)
	assert.True(t, price.Equal(d("900.00")))
}

func TestResolveMissingPrice(t *testing.T) {
	resolver, _, _, _ := newTestResolver(t)

	_, err := resolver.Resolve(context.Background(), PriceKey{
		VehicleModelID: 9,
		FeatureTypeID:  ptr(int64(999)),
	})
	require.Error(t, err)
	assert.Equal(t, shared.KindMissingPrice, shared.KindOf(err))
	ectx := shared.ContextOf(err)
	assert.Equal(t, int64(9), ectx["vehicle_model_id"])
}

func TestResolveCachesLookups(t *testing.T) {
	resolver, repo, _, _ := newTestResolver(t)
	key := PriceKey{VehicleModelID: 9, FeatureTypeID: ptr(int64(101))}

	for i := 0; i < 5; i++ {
		_, err := resolver.Resolve(context.Background(), key)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, repo.lookups)
}

func TestBumpInvalidatesCache(t *testing.T) {
	resolver, repo, enq, _ := newTestResolver(t)
	key := PriceKey{VehicleModelID: 9, FeatureTypeID: ptr(int64(101))}

	price, err := resolver.Resolve(context.Background(), key)
	require.NoError(t, err)
	assert.True(t, price.Equal(d("7000.00")))
	assert.Equal(t, 1, repo.lookups)

	_, err = resolver.UpsertPrice(context.Background(), PriceEntry{
		VehicleModelID: 9,
		FeatureTypeID:  ptr(int64(101)),
		UnitPrice:      d("7500.00"),
		UpdatedBy:      "pricing.admin",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, enq.enqueued)

	// The version bump retires the old key, so the next lookup reloads.
	price, err = resolver.Resolve(context.Background(), key)
	require.NoError(t, err)
	assert.True(t, price.Equal(d("7500.00")))
	assert.Equal(t, 2, repo.lookups)
}

func TestUpsertValidation(t *testing.T) {
	resolver, _, _, _ := newTestResolver(t)

	_, err := resolver.UpsertPrice(context.Background(), PriceEntry{UnitPrice: d("10")})
	require.Error(t, err)
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))

	_, err = resolver.UpsertPrice(context.Background(), PriceEntry{VehicleModelID: 9, UnitPrice: d("10")})
	require.Error(t, err)
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))

	_, err = resolver.UpsertPrice(context.Background(), PriceEntry{
		VehicleModelID: 9, FeatureTypeID: ptr(int64(1)), UnitPrice: d("-10"),
	})
	require.Error(t, err)
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))
}

func TestWarmPrimesCache(t *testing.T) {
	resolver, repo, _, _ := newTestResolver(t)

	_, err := resolver.UpsertPrice(context.Background(), PriceEntry{
		VehicleModelID: 9, FeatureTypeID: ptr(int64(101)), UnitPrice: d("7000.00"), UpdatedBy: "pricing.admin",
	})
	require.NoError(t, err)
	_, err = resolver.UpsertPrice(context.Background(), PriceEntry{
		VehicleModelID: 9, FeatureCategoryID: ptr(int64(7)), UnitPrice: d("900.00"), UpdatedBy: "pricing.admin",
	})
	require.NoError(t, err)

	primed, err := resolver.Warm(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, primed)

	// Warmed keys are served from redis without touching the repository.
	before := repo.lookups
	_, err = resolver.Resolve(context.Background(), PriceKey{
		VehicleModelID: 9, FeatureTypeID: ptr(int64(101)),
	})
	require.NoError(t, err)
	assert.Equal(t, before, repo.lookups)
}
