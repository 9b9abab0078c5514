package pricing

// Category identifies the service family a product belongs to.
type Category string

const (
	CategorySpraying      Category = "spraying"
	CategoryGranular      Category = "granular"
	CategoryTravelling    Category = "travelling"
	CategoryImaging       Category = "imaging"
	CategoryAccommodation Category = "accommodation"
)

// RateDerived reports whether the category prices off a derived application
// rate instead of the billed quantity.
func (c Category) RateDerived() bool {
	return c == CategorySpraying || c == CategoryGranular
}

// Valid reports whether the category is one of the known service families.
func (c Category) Valid() bool {
	switch c {
	case CategorySpraying, CategoryGranular, CategoryTravelling, CategoryImaging, CategoryAccommodation:
		return true
	}
	return false
}

// PricingType selects the rating mechanics for a product.
type PricingType string

const (
	PricingFlat   PricingType = "flat"
	PricingPerKm  PricingType = "per_km"
	PricingTiered PricingType = "tiered"
)

// Valid reports whether the pricing type is supported.
func (p PricingType) Valid() bool {
	switch p {
	case PricingFlat, PricingPerKm, PricingTiered:
		return true
	}
	return false
}

// TierPoint is one breakpoint of a piecewise-linear pricing curve.
type TierPoint struct {
	Threshold float64 `json:"threshold"`
	Rate      float64 `json:"rate"`
}

// ProductConfig carries the pricing configuration of a catalog product.
// Thresholds in Tiers are expected ascending; the engine sorts a copy
// defensively and never mutates the caller's slice.
type ProductConfig struct {
	Category          Category
	PricingType       PricingType
	BaseRate          float64
	Tiers             []TierPoint
	DiscountThreshold float64
	DiscountRate      float64
}

// SprayParams are the physical inputs required by rate-derived categories.
type SprayParams struct {
	Speed      float64 `json:"speed"`
	FlowRate   float64 `json:"flowRate"`
	SprayWidth float64 `json:"sprayWidth"`
}

// LineItemCalculation is the engine output for a single quote line.
// Total = Subtotal - DiscountAmount; all currency fields carry two decimals.
type LineItemCalculation struct {
	AppliedRate    float64  `json:"appliedRate"`
	Subtotal       float64  `json:"subtotal"`
	DiscountAmount float64  `json:"discountAmount"`
	Total          float64  `json:"total"`
	AppRate        *float64 `json:"appRate,omitempty"`
}

// CalibrationSettings is the legacy three-point sliding-scale table kept in
// the settings store. Lpha values are ascending by definition.
type CalibrationSettings struct {
	Point1Lpha        float64 `json:"point1Lpha"`
	Point1Rate        float64 `json:"point1Rate"`
	Point2Lpha        float64 `json:"point2Lpha"`
	Point2Rate        float64 `json:"point2Rate"`
	Point3Lpha        float64 `json:"point3Lpha"`
	Point3Rate        float64 `json:"point3Rate"`
	DiscountThreshold float64 `json:"discountThreshold"`
	DiscountRate      float64 `json:"discountRate"`
}

// JobCostResult is the legacy calculator output.
type JobCostResult struct {
	AppRate        float64 `json:"appRate"`
	CostPerHa      float64 `json:"costPerHa"`
	DiscountAmount float64 `json:"discountAmount"`
	TotalCharge    float64 `json:"totalCharge"`
}

// QuoteItem is one selected line inside a quote, as seen by the aggregator.
// Calculation is nil until the engine has run for the line.
type QuoteItem struct {
	Selected    bool
	Quantity    float64
	Calculation *LineItemCalculation
}

// QuoteTotals aggregates line items into quote-level figures.
type QuoteTotals struct {
	Subtotal      float64 `json:"subtotal"`
	TotalDiscount float64 `json:"totalDiscount"`
	TotalCharge   float64 `json:"totalCharge"`
}
