package catalog

import (
	"strings"

	"github.com/google/uuid"

	"github.com/agrihover/backend-quote/internal/pricing"
)

var skuPrefixes = map[pricing.Category]string{
	pricing.CategorySpraying:      "SP",
	pricing.CategoryGranular:      "GR",
	pricing.CategoryTravelling:    "TR",
	pricing.CategoryImaging:       "IM",
	pricing.CategoryAccommodation: "AC",
}

// GenerateSKU builds a stable-looking SKU from the category prefix, a slug of
// the product name, and a short random suffix to dodge collisions.
func GenerateSKU(cat pricing.Category, name string) string {
	prefix, ok := skuPrefixes[cat]
	if !ok {
		prefix = "PR"
	}
	slug := skuSlug(name)
	suffix := strings.ToUpper(uuid.NewString()[:4])
	if slug == "" {
		return prefix + "-" + suffix
	}
	return prefix + "-" + slug + "-" + suffix
}

func skuSlug(name string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(name) {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		}
		if b.Len() >= 8 {
			break
		}
	}
	return b.String()
}

// UnitForCategory returns the billing unit used when the author left it blank.
func UnitForCategory(cat pricing.Category, pt pricing.PricingType) string {
	if pt == pricing.PricingPerKm {
		return "km"
	}
	switch cat {
	case pricing.CategorySpraying, pricing.CategoryGranular, pricing.CategoryImaging:
		return "ha"
	case pricing.CategoryTravelling:
		return "km"
	case pricing.CategoryAccommodation:
		return "night"
	default:
		return "unit"
	}
}

// DefaultProducts are the starter templates loaded by the seeder so a fresh
// install can quote immediately.
func DefaultProducts() []ProductInput {
	base := func(v float64) *float64 { return &v }
	return []ProductInput{
		{
			Name:        "Drone Spraying",
			Category:    string(pricing.CategorySpraying),
			PricingType: string(pricing.PricingTiered),
			Tiers: []pricing.TierPoint{
				{Threshold: 40, Rate: 200},
				{Threshold: 80, Rate: 300},
				{Threshold: 160, Rate: 400},
			},
			DiscountThreshold: 100,
			DiscountRate:      0.15,
			Unit:              "ha",
			Description:       "Aerial chemical application priced on application rate (L/ha).",
		},
		{
			Name:        "Granular Spreading",
			Category:    string(pricing.CategoryGranular),
			PricingType: string(pricing.PricingTiered),
			Tiers: []pricing.TierPoint{
				{Threshold: 40, Rate: 220},
				{Threshold: 80, Rate: 330},
				{Threshold: 160, Rate: 440},
			},
			DiscountThreshold: 100,
			DiscountRate:      0.15,
			Unit:              "ha",
			Description:       "Granular fertiliser and seed spreading priced on application rate (kg/ha).",
		},
		{
			Name:              "Travelling",
			Category:          string(pricing.CategoryTravelling),
			PricingType:       string(pricing.PricingPerKm),
			BaseRate:          base(8),
			Unit:              "km",
			Description:       "Call-out travel, charged per kilometre one way.",
		},
		{
			Name:              "Field Imaging",
			Category:          string(pricing.CategoryImaging),
			PricingType:       string(pricing.PricingFlat),
			BaseRate:          base(150),
			Unit:              "ha",
			Description:       "Multispectral survey flight, flat rate per hectare.",
		},
		{
			Name:              "Crew Accommodation",
			Category:          string(pricing.CategoryAccommodation),
			PricingType:       string(pricing.PricingFlat),
			BaseRate:          base(900),
			Unit:              "night",
			Description:       "Overnight crew accommodation for remote jobs.",
		},
	}
}

// DefaultCategories are the category rows the seeder installs.
func DefaultCategories() []Category {
	return []Category{
		{Name: string(pricing.CategorySpraying), Label: "Drone Spraying"},
		{Name: string(pricing.CategoryGranular), Label: "Granular Spreading"},
		{Name: string(pricing.CategoryTravelling), Label: "Travelling"},
		{Name: string(pricing.CategoryImaging), Label: "Imaging"},
		{Name: string(pricing.CategoryAccommodation), Label: "Accommodation"},
	}
}
