// Package trade computes compatibility between vehicle listings for
// trade matching.
package trade

import (
	"fmt"
	"math"
	"strings"

	"github.com/gearswap/gearswap/internal/listing"
)

// Factor point budget. The weights sum to 100, so the final score is already
// on a 100-point scale.
const (
	bodyTypePoints  = 25.0
	priceMaxPoints  = 20.0
	priceMinPoints  = 5.0
	yearPoints      = 15.0
	makePoints      = 15.0
	mileageMax      = 10.0
	mileageMin      = 2.0
	conditionPoints = 10.0
	fuelTypePoints  = 5.0
)

// maxReasons caps the explanation list. Truncation is positional: the first
// three reasons in factor order survive, not the three highest-weighted.
const maxReasons = 3

// Compatibility is the scorer output for one candidate.
type Compatibility struct {
	// Score is an integer in [0, 100]. Zero means no factor matched.
	Score int `json:"score"`
	// Reasons explains up to three matched factors, in factor order.
	Reasons []string `json:"reasons"`
}

// CalculateCompatibility scores a candidate listing against the user's
// listing and the candidate owner's trade preferences. Pure function, no
// I/O. Preference set values are expected pre-lowercased; candidate values
// are lowercased here before membership tests.
//
// A zero score means nothing matched; filtering such candidates out is the
// caller's job, not the scorer's.
func CalculateCompatibility(userListing, target *listing.Listing, prefs *listing.TradePreferences) Compatibility {
	var (
		score   float64
		reasons []string
	)

	if inSet(target.BodyType, prefs.BodyTypes) {
		score += bodyTypePoints
		reasons = append(reasons, fmt.Sprintf("Body type %s is on the wanted list", target.BodyType))
	}

	if priceInRange(target.Price, prefs) {
		score += pricePoints(userListing.Price, target.Price)
		reasons = append(reasons, "Price is within the preferred range")
	}

	if yearInRange(target.Year, prefs) {
		score += yearPoints
		reasons = append(reasons, fmt.Sprintf("Year %d is within the preferred range", target.Year))
	}

	if inSet(target.Make, prefs.Makes) {
		score += makePoints
		reasons = append(reasons, fmt.Sprintf("Make %s is on the wanted list", target.Make))
	}

	if prefs.MileageMax != nil && target.Mileage <= *prefs.MileageMax {
		score += mileagePoints(target.Mileage, *prefs.MileageMax)
		reasons = append(reasons, "Mileage is under the preferred limit")
	}

	if inSet(target.Condition, prefs.Conditions) {
		score += conditionPoints
		reasons = append(reasons, fmt.Sprintf("Condition %s is acceptable", target.Condition))
	}

	if inSet(target.FuelType, prefs.FuelTypes) {
		score += fuelTypePoints
		reasons = append(reasons, fmt.Sprintf("Fuel type %s is acceptable", target.FuelType))
	}

	if len(reasons) > maxReasons {
		reasons = reasons[:maxReasons]
	}

	return Compatibility{
		Score:   int(math.Round(score)),
		Reasons: reasons,
	}
}

// pricePoints shrinks the price award linearly with the normalized gap
// between the two prices, never below the in-range minimum.
func pricePoints(userPrice, targetPrice float64) float64 {
	larger := math.Max(userPrice, targetPrice)
	if larger <= 0 {
		return priceMaxPoints
	}

	gap := math.Abs(userPrice-targetPrice) / larger
	points := priceMaxPoints - gap*10
	return math.Max(points, priceMinPoints)
}

// mileagePoints shrinks the mileage award with limit utilization, never
// below the in-bound minimum.
func mileagePoints(mileage, limit int) float64 {
	if limit <= 0 {
		return mileageMax
	}

	utilization := float64(mileage) / float64(limit)
	points := mileageMax - utilization*5
	return math.Max(points, mileageMin)
}

func priceInRange(price float64, prefs *listing.TradePreferences) bool {
	if prefs.PriceMin == nil && prefs.PriceMax == nil {
		return false
	}
	if prefs.PriceMin != nil && price < *prefs.PriceMin {
		return false
	}
	if prefs.PriceMax != nil && price > *prefs.PriceMax {
		return false
	}
	return true
}

func yearInRange(year int, prefs *listing.TradePreferences) bool {
	if prefs.YearMin == nil && prefs.YearMax == nil {
		return false
	}
	if prefs.YearMin != nil && year < *prefs.YearMin {
		return false
	}
	if prefs.YearMax != nil && year > *prefs.YearMax {
		return false
	}
	return true
}

func inSet(value string, set []string) bool {
	if len(set) == 0 {
		return false
	}
	needle := strings.ToLower(value)
	for _, member := range set {
		if member == needle {
			return true
		}
	}
	return false
}
