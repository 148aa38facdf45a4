package quotation

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var amountPrinter = message.NewPrinter(language.English)

// formatAmount renders a money value with thousands separators and two
// decimal places, e.g. 12,500.00.
func formatAmount(d decimal.Decimal) string {
	d = d.Round(2)
	whole := d.IntPart()
	cents := d.Sub(decimal.NewFromInt(whole)).Abs().Mul(oneHundred).IntPart()
	return amountPrinter.Sprintf("%d.%02d", whole, cents)
}

// Print renders the plain-text quotation document. With a version id the
// document is built solely from the frozen snapshot, so reprinting the same
// version always yields byte-identical output regardless of later changes to
// lines or the ledger.
func (s *Service) Print(ctx context.Context, id int64, versionID *int64) (string, error) {
	q, err := s.repo.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if versionID != nil {
		v, err := s.repo.GetVersion(ctx, id, *versionID)
		if err != nil {
			return "", err
		}
		return renderVersion(q, v), nil
	}
	discounts, err := s.repo.ListDiscounts(ctx, id)
	if err != nil {
		return "", err
	}
	return renderCurrent(buildView(q, discounts)), nil
}

func renderVersion(q *Quotation, v *VersionSnapshot) string {
	var b strings.Builder
	// Frozen documents carry no live state: the status line is omitted so a
	// reprint stays byte-identical across later life-cycle transitions.
	identity(&b, q)
	fmt.Fprintf(&b, "Version          : %d\n", v.VersionNumber)
	fmt.Fprintf(&b, "Snapshot date    : %s\n", v.CreatedAt.UTC().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Prepared by      : %s\n", v.CreatedBy)
	b.WriteString(rule)
	fmt.Fprintf(&b, "Base total       : %s\n", formatAmount(v.BaseTotal))
	if v.Mode != nil && v.Value != nil {
		fmt.Fprintf(&b, "Adjustment       : %s\n", describeAdjustment(*v.Mode, *v.Value))
	}
	fmt.Fprintf(&b, "Discount total   : %s\n", formatAmount(v.DiscountTotal))
	fmt.Fprintf(&b, "Discounted total : %s\n", formatAmount(v.DiscountedTotal))
	if v.Note != nil && *v.Note != "" {
		fmt.Fprintf(&b, "Note             : %s\n", *v.Note)
	}
	b.WriteString(rule)
	return b.String()
}

func renderCurrent(view *View) string {
	var b strings.Builder
	header(&b, &view.Quotation)
	b.WriteString(rule)
	for _, line := range view.Lines {
		fmt.Fprintf(&b, "%-40s %4d x %14s = %14s\n",
			lineLabel(line), line.Quantity, formatAmount(line.UnitPrice), formatAmount(line.TotalPrice))
	}
	b.WriteString(rule)
	fmt.Fprintf(&b, "Base total       : %s\n", formatAmount(view.BaseTotal))
	for _, d := range view.Discounts {
		if d.Status != DiscountApproved {
			continue
		}
		fmt.Fprintf(&b, "Discount         : %s\n", describeAdjustment(d.Mode, d.Value))
	}
	fmt.Fprintf(&b, "Discount total   : %s\n", formatAmount(view.DiscountTotal))
	fmt.Fprintf(&b, "Discounted total : %s\n", formatAmount(view.DiscountedTotal))
	if view.FinalTotal != nil {
		fmt.Fprintf(&b, "Final total      : %s\n", formatAmount(*view.FinalTotal))
	}
	b.WriteString(rule)
	return b.String()
}

const rule = "----------------------------------------------------------------------\n"

func identity(b *strings.Builder, q *Quotation) {
	b.WriteString(rule)
	b.WriteString("QUOTATION\n")
	fmt.Fprintf(b, "Document         : %s\n", q.DocNumber)
	fmt.Fprintf(b, "Customer         : %s\n", q.CustomerRef)
	fmt.Fprintf(b, "Vehicle model    : %d\n", q.VehicleModelID)
}

func header(b *strings.Builder, q *Quotation) {
	identity(b, q)
	fmt.Fprintf(b, "Status           : %s\n", q.Status)
}

func lineLabel(line LineItem) string {
	if line.CustomName != nil && *line.CustomName != "" {
		return *line.CustomName
	}
	if line.FeatureTypeID != nil {
		return fmt.Sprintf("feature type %d", *line.FeatureTypeID)
	}
	if line.FeatureCategoryID != nil {
		return fmt.Sprintf("feature category %d", *line.FeatureCategoryID)
	}
	return "item"
}

func describeAdjustment(mode DiscountMode, value decimal.Decimal) string {
	if mode == DiscountPercent {
		return value.String() + "%"
	}
	return formatAmount(value)
}
