package quotation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "12,500.00", formatAmount(d("12500")))
	assert.Equal(t, "0.00", formatAmount(d("0")))
	assert.Equal(t, "1,234,567.89", formatAmount(d("1234567.89")))
	assert.Equal(t, "8,100.00", formatAmount(d("8100")))
	assert.Equal(t, "99.90", formatAmount(d("99.9")))
}

func TestPrintCurrentDocument(t *testing.T) {
	svc, _, _, _ := newTestService()
	view := createQuotation(t, svc,
		AddFeatureRequest{FeatureTypeID: ptr(int64(101)), Quantity: 1},
		AddFeatureRequest{CustomName: ptr("matte wrap"), Quantity: 1, UnitPrice: ptr(d("3000.00"))},
	)

	doc, err := svc.Print(testContext(), view.ID, nil)
	require.NoError(t, err)
	assert.Contains(t, doc, "QUOTATION")
	assert.Contains(t, doc, view.DocNumber)
	assert.Contains(t, doc, "matte wrap")
	assert.Contains(t, doc, "10,000.00")
}

func TestPrintVersionIsReproducible(t *testing.T) {
	svc, _, _, _ := newTestService()
	view := createQuotation(t, svc,
		AddFeatureRequest{FeatureTypeID: ptr(int64(101)), Quantity: 1},
		AddFeatureRequest{FeatureTypeID: ptr(int64(102)), Quantity: 2},
	)

	v, err := svc.CreateVersion(testContext(), view.ID, CreateVersionRequest{
		Mode: DiscountPercent, Value: d("19"),
	})
	require.NoError(t, err)

	first, err := svc.Print(testContext(), view.ID, &v.ID)
	require.NoError(t, err)
	assert.Contains(t, first, "10,000.00")
	assert.Contains(t, first, "1,900.00")
	assert.Contains(t, first, "8,100.00")

	// Change the quotation after the snapshot; the reprint must be identical.
	_, err = svc.AddFeature(testContext(), view.ID, AddFeatureRequest{
		CustomName: ptr("underbody coating"), Quantity: 1, UnitPrice: ptr(d("500.00")),
	})
	require.NoError(t, err)

	second, err := svc.Print(testContext(), view.ID, &v.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.NotContains(t, second, "10,500.00")
}

func TestPrintVersionStableAcrossTransitions(t *testing.T) {
	svc, _, _, _ := newTestService()
	view := createQuotation(t, svc, AddFeatureRequest{FeatureTypeID: ptr(int64(101)), Quantity: 1})

	v, err := svc.CreateVersion(testContext(), view.ID, CreateVersionRequest{
		Mode: DiscountAmount, Value: d("500.00"),
	})
	require.NoError(t, err)

	first, err := svc.Print(testContext(), view.ID, &v.ID)
	require.NoError(t, err)

	_, err = svc.SubmitForReview(testContext(), view.ID)
	require.NoError(t, err)

	second, err := svc.Print(testContext(), view.ID, &v.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.NotContains(t, second, string(StatusReview))
}

func TestPrintUnknownVersion(t *testing.T) {
	svc, _, _, _ := newTestService()
	view := createQuotation(t, svc)

	missing := int64(404)
	_, err := svc.Print(testContext(), view.ID, &missing)
	require.Error(t, err)
}

func TestPrintCurrentShowsApprovedDiscountsOnly(t *testing.T) {
	svc, _, _, _ := newTestService()
	view := createQuotation(t, svc, AddFeatureRequest{FeatureTypeID: ptr(int64(101)), Quantity: 1})

	added, err := svc.AddDiscount(testContext(), view.ID, AddDiscountRequest{Mode: DiscountPercent, Value: d("10")})
	require.NoError(t, err)

	doc, err := svc.Print(testContext(), view.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, strings.Count(doc, "Discount         :"))

	_, err = svc.ResolveDiscount(testContext(), view.ID, added.Discounts[0].ID, true)
	require.NoError(t, err)

	doc, err = svc.Print(testContext(), view.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(doc, "Discount         :"))
	assert.Contains(t, doc, "10%")
}
