package pricing

import "sort"

// CalculateProductCost computes the applied rate, subtotal, volume discount,
// and total for one quote line. It is pure: the caller's config is never
// mutated and identical inputs always produce identical outputs.
//
// Incomplete catalog data (missing base rate, empty tiers) degrades to a zero
// applied rate rather than failing; catalog authoring is expected to validate
// upstream. Rate-derived categories additionally need params; absent or
// physically invalid params likewise degrade to zero.
func CalculateProductCost(cfg ProductConfig, quantity float64, params *SprayParams) LineItemCalculation {
	var appliedRate float64
	var appRate *float64

	switch cfg.PricingType {
	case PricingFlat, PricingPerKm:
		appliedRate = cfg.BaseRate
	case PricingTiered:
		tiers := sortedTiers(cfg.Tiers)
		if cfg.Category.RateDerived() {
			if params != nil {
				if rate, ok := ApplicationRate(params.Speed, params.FlowRate, params.SprayWidth); ok {
					appRate = &rate
					appliedRate = ResolvePiecewiseRate(tiers, rate)
				}
			}
		} else {
			appliedRate = ResolvePiecewiseRate(tiers, quantity)
		}
	}

	subtotal := quantity * appliedRate
	var discount float64
	if cfg.DiscountThreshold > 0 {
		discount = excessDiscount(quantity, cfg.DiscountThreshold, appliedRate, cfg.DiscountRate)
	}

	return LineItemCalculation{
		AppliedRate:    Round2(appliedRate),
		Subtotal:       Round2(subtotal),
		DiscountAmount: Round2(discount),
		Total:          Round2(subtotal - discount),
		AppRate:        appRate,
	}
}

// sortedTiers returns a threshold-ascending copy of the tier list.
func sortedTiers(tiers []TierPoint) []TierPoint {
	if len(tiers) == 0 {
		return nil
	}
	out := make([]TierPoint, len(tiers))
	copy(out, tiers)
	sort.Slice(out, func(i, j int) bool { return out[i].Threshold < out[j].Threshold })
	return out
}
