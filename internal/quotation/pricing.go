package quotation

import (
	"github.com/shopspring/decimal"

	"github.com/bodycraft-erp/bodycraft-erp/internal/shared"
)

var oneHundred = decimal.NewFromInt(100)

// RecomputeBase folds the current line items into the base total. Pure;
// callers persist the result in the same transaction as the line mutation.
func RecomputeBase(lines []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.TotalPrice)
	}
	return total
}

// LineTotal computes quantity times unit price.
func LineTotal(quantity int64, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(quantity))
}

// ValidateDiscount checks a proposed discount value: amounts must be
// non-negative, percentages must lie in [0,100].
func ValidateDiscount(mode DiscountMode, value decimal.Decimal) error {
	switch mode {
	case DiscountAmount:
		if value.IsNegative() {
			return shared.E(shared.KindValidation, "amount discount must not be negative").
				With("value", value.String())
		}
	case DiscountPercent:
		if value.IsNegative() || value.GreaterThan(oneHundred) {
			return shared.E(shared.KindValidation, "percent discount must be between 0 and 100").
				With("value", value.String())
		}
	default:
		return shared.E(shared.KindValidation, "unknown discount mode").
			With("mode", string(mode))
	}
	return nil
}

// ApplyAdjustment applies one discount step to the running total. Amounts
// subtract their fixed value; percentages subtract a share of the running
// total (cascading, not of the original base), rounded to cents. The result
// is clamped at zero.
func ApplyAdjustment(running decimal.Decimal, mode DiscountMode, value decimal.Decimal) decimal.Decimal {
	var next decimal.Decimal
	switch mode {
	case DiscountPercent:
		next = running.Sub(running.Mul(value).Div(oneHundred).Round(2))
	default:
		next = running.Sub(value)
	}
	if next.IsNegative() {
		return decimal.Zero
	}
	return next
}

// ComputeDiscountedTotal folds the approved ledger entries, in creation
// order, over the base total. Pending and rejected entries are skipped. The
// fold is deterministic: replaying the same entries always yields the same
// result.
func ComputeDiscountedTotal(base decimal.Decimal, entries []DiscountEntry) decimal.Decimal {
	running := base
	for _, e := range entries {
		if e.Status != DiscountApproved {
			continue
		}
		running = ApplyAdjustment(running, e.Mode, e.Value)
	}
	return running
}
