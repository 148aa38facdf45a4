package quotation

import (
	"testing"

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

func TestRecomputeBase(t *testing.T) {
	lines := []LineItem{
		{Quantity: 2, UnitPrice: d("1500.00"), TotalPrice: d("3000.00")},
		{Quantity: 1, UnitPrice: d("7000.00"), TotalPrice: d("7000.00")},
	}
	assert.True(t, RecomputeBase(lines).Equal(d("10000.00")))
}

func TestRecomputeBaseEmpty(t *testing.T) {
	assert.True(t, RecomputeBase(nil).IsZero())
}

func TestLineTotal(t *testing.T) {
	assert.True(t, LineTotal(3, d("250.50")).Equal(d("751.50")))
}

func TestValidateDiscount(t *testing.T) {
	require.NoError(t, ValidateDiscount(DiscountAmount, d("0")))
	require.NoError(t, ValidateDiscount(DiscountAmount, d("500")))
	require.NoError(t, ValidateDiscount(DiscountPercent, d("0")))
	require.NoError(t, ValidateDiscount(DiscountPercent, d("100")))

	err := ValidateDiscount(DiscountAmount, d("-1"))
	require.Error(t, err)
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))

	err = ValidateDiscount(DiscountPercent, d("100.01"))
	require.Error(t, err)
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))

	err = ValidateDiscount(DiscountPercent, d("-0.5"))
	require.Error(t, err)
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))

	err = ValidateDiscount(DiscountMode("WEIRD"), d("10"))
	require.Error(t, err)
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))
}

func TestApplyAdjustmentAmount(t *testing.T) {
	assert.True(t, ApplyAdjustment(d("10000"), DiscountAmount, d("1000")).Equal(d("9000")))
}

func TestApplyAdjustmentPercentRounds(t *testing.T) {
	// 10% of 333.33 is 33.333, rounded to 33.33.
	assert.True(t, ApplyAdjustment(d("333.33"), DiscountPercent, d("10")).Equal(d("300.00")))
}

func TestApplyAdjustmentClampsAtZero(t *testing.T) {
	assert.True(t, ApplyAdjustment(d("500"), DiscountAmount, d("800")).IsZero())
	assert.True(t, ApplyAdjustment(decimal.Zero, DiscountAmount, d("10")).IsZero())
}

func TestComputeDiscountedTotalCascades(t *testing.T) {
	// 10000 -> minus 1000 -> 9000 -> minus 10% -> 8100.
	entries := []DiscountEntry{
		{Mode: DiscountAmount, Value: d("1000"), Status: DiscountApproved},
		{Mode: DiscountPercent, Value: d("10"), Status: DiscountApproved},
	}
	total := ComputeDiscountedTotal(d("10000"), entries)
	assert.True(t, total.Equal(d("8100")), "got %s", total)
	assert.True(t, d("10000").Sub(total).Equal(d("1900")))
}

func TestComputeDiscountedTotalSkipsUnapproved(t *testing.T) {
	entries := []DiscountEntry{
		{Mode: DiscountAmount, Value: d("1000"), Status: DiscountPending},
		{Mode: DiscountAmount, Value: d("500"), Status: DiscountRejected},
		{Mode: DiscountAmount, Value: d("200"), Status: DiscountApproved},
	}
	assert.True(t, ComputeDiscountedTotal(d("10000"), entries).Equal(d("9800")))
}

func TestComputeDiscountedTotalDeterministic(t *testing.T) {
	entries := []DiscountEntry{
		{Mode: DiscountPercent, Value: d("7.5"), Status: DiscountApproved},
		{Mode: DiscountAmount, Value: d("123.45"), Status: DiscountApproved},
		{Mode: DiscountPercent, Value: d("3"), Status: DiscountApproved},
	}
	first := ComputeDiscountedTotal(d("98765.43"), entries)
	for i := 0; i < 100; i++ {
		assert.True(t, first.Equal(ComputeDiscountedTotal(d("98765.43"), entries)))
	}
}
