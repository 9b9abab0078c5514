package pricing

import "testing"

var curve = []TierPoint{
	{Threshold: 40, Rate: 200},
	{Threshold: 80, Rate: 300},
	{Threshold: 160, Rate: 400},
}

func TestResolveBoundaryBelongsToLowerTier(t *testing.T) {
	if got := ResolvePiecewiseRate(curve[:2], 40); got != 200 {
		t.Fatalf("expected boundary value to use the lower tier rate 200, got %v", got)
	}
	got := ResolvePiecewiseRate(curve[:2], 41)
	if got <= 200 || got >= 300 {
		t.Fatalf("expected 41 to interpolate strictly between 200 and 300, got %v", got)
	}
}

func TestResolveFlatBelowFirstTier(t *testing.T) {
	if got := ResolvePiecewiseRate(curve[:2], 10); got != 200 {
		t.Fatalf("expected flat rate 200 below the first threshold, got %v", got)
	}
}

func TestResolveInterpolatesMidSegment(t *testing.T) {
	if got := ResolvePiecewiseRate(curve, 60); got != 250 {
		t.Fatalf("expected midpoint of 40..80 to interpolate to 250, got %v", got)
	}
	if got := ResolvePiecewiseRate(curve, 120); got != 350 {
		t.Fatalf("expected midpoint of 80..160 to interpolate to 350, got %v", got)
	}
}

func TestResolveExtrapolatesBeyondLastTier(t *testing.T) {
	// rate = 400 + (200-160)*(400-300)/(160-80) = 450
	if got := ResolvePiecewiseRate(curve, 200); got != 450 {
		t.Fatalf("expected extrapolation past the last tier to yield 450, got %v", got)
	}
}

func TestResolveSinglePointIsFlatEverywhere(t *testing.T) {
	single := []TierPoint{{Threshold: 40, Rate: 200}}
	for _, x := range []float64{0, 40, 41, 5000} {
		if got := ResolvePiecewiseRate(single, x); got != 200 {
			t.Fatalf("expected single-point curve to be flat at 200 for x=%v, got %v", x, got)
		}
	}
}

func TestResolveEmptyPoints(t *testing.T) {
	if got := ResolvePiecewiseRate(nil, 50); got != 0 {
		t.Fatalf("expected zero rate for empty curve, got %v", got)
	}
}

func TestApplicationRateDerivation(t *testing.T) {
	rate, ok := ApplicationRate(10, 15, 3)
	if !ok {
		t.Fatal("expected derivation to succeed for valid physics")
	}
	// areaPerMin = 10*3*60 = 1800; 15/1800*10000 = 83.33...
	if rate != 83.33 {
		t.Fatalf("expected application rate 83.33, got %v", rate)
	}
}

func TestApplicationRateZeroGuard(t *testing.T) {
	if rate, ok := ApplicationRate(0, 15, 3); ok || rate != 0 {
		t.Fatalf("expected zero speed to fail derivation, got %v ok=%v", rate, ok)
	}
	if rate, ok := ApplicationRate(10, 15, 0); ok || rate != 0 {
		t.Fatalf("expected zero spray width to fail derivation, got %v ok=%v", rate, ok)
	}
}

func TestRound2(t *testing.T) {
	if got := Round2(123.456789); got != 123.46 {
		t.Fatalf("expected 123.46, got %v", got)
	}
	if got := Round2(123.454); got != 123.45 {
		t.Fatalf("expected 123.45, got %v", got)
	}
}
