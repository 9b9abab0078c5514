package pricing

// AggregateQuote sums computed line items into quote-level totals. Only
// selected lines with a positive quantity and a present calculation count.
// Totals are rounded to two decimals so repeated aggregation of the same
// lines stays bit-identical.
func AggregateQuote(items []QuoteItem) QuoteTotals {
	var subtotal, discount float64
	for _, it := range items {
		if !it.Selected || it.Quantity <= 0 || it.Calculation == nil {
			continue
		}
		subtotal += it.Calculation.Subtotal
		discount += it.Calculation.DiscountAmount
	}
	subtotal = Round2(subtotal)
	discount = Round2(discount)
	return QuoteTotals{
		Subtotal:      subtotal,
		TotalDiscount: discount,
		TotalCharge:   Round2(subtotal - discount),
	}
}
