package pricing

// CalculateJobCost is the legacy single-product spraying calculator driven by
// the three-point calibration table in settings. It shares the piecewise
// resolver and excess-only discount with the general engine so both paths
// price identically for the same curve.
//
// Invalid flight physics (speed or spray width at or below zero) return an
// all-zero result immediately; the caller surfaces validation, not the
// calculator.
func CalculateJobCost(s CalibrationSettings, hectares, speed, flowRate, sprayWidth float64) JobCostResult {
	appRate, ok := ApplicationRate(speed, flowRate, sprayWidth)
	if !ok {
		return JobCostResult{}
	}

	costPerHa := ResolvePiecewiseRate([]TierPoint{
		{Threshold: s.Point1Lpha, Rate: s.Point1Rate},
		{Threshold: s.Point2Lpha, Rate: s.Point2Rate},
		{Threshold: s.Point3Lpha, Rate: s.Point3Rate},
	}, appRate)

	totalBeforeDiscount := hectares * costPerHa
	discount := excessDiscount(hectares, s.DiscountThreshold, costPerHa, s.DiscountRate)

	return JobCostResult{
		AppRate:        appRate,
		CostPerHa:      Round2(costPerHa),
		DiscountAmount: Round2(discount),
		TotalCharge:    Round2(totalBeforeDiscount - discount),
	}
}
