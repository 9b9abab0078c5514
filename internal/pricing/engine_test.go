package pricing

import "testing"

func tieredSprayConfig() ProductConfig {
	return ProductConfig{
		Category:    CategorySpraying,
		PricingType: PricingTiered,
		Tiers: []TierPoint{
			{Threshold: 40, Rate: 200},
			{Threshold: 80, Rate: 300},
			{Threshold: 160, Rate: 400},
		},
		DiscountThreshold: 100,
		DiscountRate:      0.15,
	}
}

func TestCalculateFlatRate(t *testing.T) {
	cfg := ProductConfig{Category: CategoryImaging, PricingType: PricingFlat, BaseRate: 50}
	calc := CalculateProductCost(cfg, 12, nil)
	if calc.AppliedRate != 50 {
		t.Fatalf("expected applied rate 50, got %v", calc.AppliedRate)
	}
	if calc.Subtotal != 600 || calc.Total != 600 || calc.DiscountAmount != 0 {
		t.Fatalf("unexpected flat totals: %+v", calc)
	}
	if calc.AppRate != nil {
		t.Fatal("flat pricing must not carry an application rate")
	}
}

func TestCalculatePerKmMatchesFlatMechanics(t *testing.T) {
	cfg := ProductConfig{Category: CategoryTravelling, PricingType: PricingPerKm, BaseRate: 15}
	calc := CalculateProductCost(cfg, 120, nil)
	if calc.Subtotal != 1800 || calc.Total != 1800 {
		t.Fatalf("unexpected per_km totals: %+v", calc)
	}
}

func TestCalculateTieredSprayingDerivesAppRate(t *testing.T) {
	cfg := tieredSprayConfig()
	calc := CalculateProductCost(cfg, 50, &SprayParams{Speed: 10, FlowRate: 15, SprayWidth: 3})
	if calc.AppRate == nil || *calc.AppRate != 83.33 {
		t.Fatalf("expected derived application rate 83.33, got %+v", calc.AppRate)
	}
	// 83.33 falls between 80 and 160: 300 + 3.33*(100/80) = 304.16 (rounded)
	if calc.AppliedRate != 304.16 {
		t.Fatalf("expected interpolated applied rate 304.16, got %v", calc.AppliedRate)
	}
	if calc.Subtotal != Round2(50*(300+(83.33-80)*100/80)) {
		t.Fatalf("subtotal not derived from full-precision rate: %+v", calc)
	}
}

func TestCalculateTieredQuantityAxis(t *testing.T) {
	cfg := tieredSprayConfig()
	cfg.Category = CategoryImaging
	calc := CalculateProductCost(cfg, 60, nil)
	if calc.AppliedRate != 250 {
		t.Fatalf("expected quantity-axis interpolation to 250, got %v", calc.AppliedRate)
	}
	if calc.AppRate != nil {
		t.Fatal("quantity-based tiering must not emit an application rate")
	}
}

func TestDiscountAppliesToExcessOnly(t *testing.T) {
	cfg := ProductConfig{
		Category:          CategoryImaging,
		PricingType:       PricingFlat,
		BaseRate:          10,
		DiscountThreshold: 100,
		DiscountRate:      0.15,
	}
	calc := CalculateProductCost(cfg, 120, nil)
	if calc.Subtotal != 1200 {
		t.Fatalf("expected subtotal 1200, got %v", calc.Subtotal)
	}
	if calc.DiscountAmount != 30 {
		t.Fatalf("expected discount (120-100)*10*0.15 = 30, got %v", calc.DiscountAmount)
	}
	if calc.Total != 1170 {
		t.Fatalf("expected total 1170, got %v", calc.Total)
	}
}

func TestNoDiscountAtThreshold(t *testing.T) {
	cfg := ProductConfig{
		Category:          CategoryImaging,
		PricingType:       PricingFlat,
		BaseRate:          10,
		DiscountThreshold: 100,
		DiscountRate:      0.15,
	}
	calc := CalculateProductCost(cfg, 100, nil)
	if calc.DiscountAmount != 0 {
		t.Fatalf("expected no discount at the threshold, got %v", calc.DiscountAmount)
	}
	if calc.Total != calc.Subtotal {
		t.Fatalf("expected total to equal subtotal, got %+v", calc)
	}
}

func TestZeroQuantityYieldsZeroCost(t *testing.T) {
	calc := CalculateProductCost(tieredSprayConfig(), 0, &SprayParams{Speed: 10, FlowRate: 15, SprayWidth: 3})
	if calc.Subtotal != 0 || calc.Total != 0 || calc.DiscountAmount != 0 {
		t.Fatalf("expected zero-cost result for zero quantity, got %+v", calc)
	}
}

func TestMissingParamsDegradeToZeroRate(t *testing.T) {
	calc := CalculateProductCost(tieredSprayConfig(), 50, nil)
	if calc.AppliedRate != 0 || calc.Subtotal != 0 || calc.AppRate != nil {
		t.Fatalf("expected degraded zero result without spray params, got %+v", calc)
	}
}

func TestInvalidPhysicsDegradeToZeroRate(t *testing.T) {
	calc := CalculateProductCost(tieredSprayConfig(), 50, &SprayParams{Speed: 0, FlowRate: 15, SprayWidth: 3})
	if calc.AppliedRate != 0 || calc.AppRate != nil {
		t.Fatalf("expected zero-guard to suppress rating, got %+v", calc)
	}
}

func TestEmptyTiersDegradeToZeroRate(t *testing.T) {
	cfg := tieredSprayConfig()
	cfg.Category = CategoryImaging
	cfg.Tiers = nil
	calc := CalculateProductCost(cfg, 50, nil)
	if calc.AppliedRate != 0 || calc.Total != 0 {
		t.Fatalf("expected empty tiers to price at zero, got %+v", calc)
	}
}

func TestMissingBaseRateDegradesToZero(t *testing.T) {
	cfg := ProductConfig{Category: CategoryImaging, PricingType: PricingFlat}
	calc := CalculateProductCost(cfg, 10, nil)
	if calc.AppliedRate != 0 || calc.Total != 0 {
		t.Fatalf("expected missing base rate to price at zero, got %+v", calc)
	}
}

func TestUnsortedTiersAreSortedWithoutMutation(t *testing.T) {
	cfg := tieredSprayConfig()
	cfg.Category = CategoryImaging
	cfg.Tiers = []TierPoint{
		{Threshold: 160, Rate: 400},
		{Threshold: 40, Rate: 200},
		{Threshold: 80, Rate: 300},
	}
	calc := CalculateProductCost(cfg, 60, nil)
	if calc.AppliedRate != 250 {
		t.Fatalf("expected sorted resolution to 250, got %v", calc.AppliedRate)
	}
	if cfg.Tiers[0].Threshold != 160 {
		t.Fatal("engine mutated the caller's tier slice")
	}
}

func TestRoundingToTwoDecimals(t *testing.T) {
	cfg := ProductConfig{Category: CategoryImaging, PricingType: PricingFlat, BaseRate: 123.456789}
	calc := CalculateProductCost(cfg, 1, nil)
	if calc.AppliedRate != 123.46 {
		t.Fatalf("expected applied rate rounded to 123.46, got %v", calc.AppliedRate)
	}
	if calc.Subtotal != 123.46 || calc.Total != 123.46 {
		t.Fatalf("expected currency fields rounded to two decimals, got %+v", calc)
	}
}
