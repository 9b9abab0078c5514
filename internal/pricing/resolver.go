package pricing

import "math"

// Round2 rounds a value to two decimal places, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ResolvePiecewiseRate resolves a rate for x against an ascending list of
// curve points. At or below the first threshold the first rate applies flat;
// between consecutive thresholds the rate is interpolated linearly, with a
// boundary value belonging to the lower segment; past the last threshold the
// slope of the final segment extends the curve. A single point makes the
// whole curve flat at that point's rate. No points resolves to zero.
func ResolvePiecewiseRate(points []TierPoint, x float64) float64 {
	if len(points) == 0 {
		return 0
	}
	if x <= points[0].Threshold || len(points) == 1 {
		return points[0].Rate
	}
	for i := 0; i < len(points)-1; i++ {
		next := points[i+1]
		if x <= next.Threshold {
			return interpolate(points[i], next, x)
		}
	}
	last := points[len(points)-1]
	secondLast := points[len(points)-2]
	return interpolate(secondLast, last, x)
}

func interpolate(lo, hi TierPoint, x float64) float64 {
	slope := (hi.Rate - lo.Rate) / (hi.Threshold - lo.Threshold)
	return lo.Rate + (x-lo.Threshold)*slope
}

// ApplicationRate derives the application rate (L/ha or kg/ha) from flight
// parameters. It reports false when speed or spray width make the derivation
// undefined; the zero guard keeps live recalculation from dividing by zero.
func ApplicationRate(speed, flowRate, sprayWidth float64) (float64, bool) {
	if speed <= 0 || sprayWidth <= 0 {
		return 0, false
	}
	areaPerMin := speed * sprayWidth * 60
	return Round2((flowRate / areaPerMin) * 10000), true
}

// excessDiscount returns the discount on the portion of quantity above the
// threshold. Quantity at or under the threshold is never discounted.
func excessDiscount(quantity, threshold, rate, discountRate float64) float64 {
	if quantity <= threshold {
		return 0
	}
	return (quantity - threshold) * rate * discountRate
}
