package trade

import (
	"testing"

	"github.com/gearswap/gearswap/internal/listing"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func baseListing() *listing.Listing {
	return &listing.Listing{
		ID:        "lst-user",
		SellerID:  "slr-user",
		BodyType:  "SUV",
		Make:      "Toyota",
		Year:      2020,
		Price:     25000,
		Mileage:   30000,
		Condition: "Excellent",
		FuelType:  "Hybrid",
	}
}

func openPrefs() *listing.TradePreferences {
	return (&listing.TradePreferences{
		BodyTypes:  []string{"SUV"},
		PriceMin:   floatPtr(20000),
		PriceMax:   floatPtr(30000),
		YearMin:    intPtr(2018),
		YearMax:    intPtr(2024),
		Makes:      []string{"Toyota"},
		MileageMax: intPtr(100000),
		Conditions: []string{"Excellent"},
		FuelTypes:  []string{"Hybrid"},
	}).Normalized()
}

func TestCalculateCompatibility_PerfectMatch(t *testing.T) {
	user := baseListing()
	target := baseListing()
	target.ID = "lst-target"
	target.SellerID = "slr-target"
	target.Mileage = 1000

	got := CalculateCompatibility(user, target, openPrefs())

	// All seven factors hold, price gap is zero, and mileage utilization is
	// low enough that rounding lands on the full budget.
	if got.Score != 100 {
		t.Errorf("Score = %d, want 100", got.Score)
	}
	if len(got.Reasons) != maxReasons {
		t.Errorf("len(Reasons) = %d, want %d", len(got.Reasons), maxReasons)
	}
}

func TestCalculateCompatibility_EmptyPreferencesScoreZero(t *testing.T) {
	got := CalculateCompatibility(baseListing(), baseListing(), (&listing.TradePreferences{}).Normalized())

	if got.Score != 0 {
		t.Errorf("Score = %d, want 0", got.Score)
	}
	if len(got.Reasons) != 0 {
		t.Errorf("Reasons = %v, want none", got.Reasons)
	}
}

func TestCalculateCompatibility_CaseInsensitiveMembership(t *testing.T) {
	target := baseListing()
	target.BodyType = "suv"
	target.Make = "TOYOTA"
	target.Condition = "excellent"
	target.FuelType = "HyBrId"

	prefs := openPrefs()
	got := CalculateCompatibility(baseListing(), target, prefs)

	if got.Score != 100 {
		t.Errorf("Score = %d, want 100 regardless of candidate casing", got.Score)
	}
}

func TestCalculateCompatibility_PriceGapShrinksAward(t *testing.T) {
	prefs := (&listing.TradePreferences{
		PriceMin: floatPtr(10000),
		PriceMax: floatPtr(40000),
	}).Normalized()

	user := baseListing()
	user.Price = 20000

	exact := baseListing()
	exact.Price = 20000
	if got := CalculateCompatibility(user, exact, prefs).Score; got != 20 {
		t.Errorf("zero-gap Score = %d, want 20", got)
	}

	// Gap 10000/30000 = 0.333 scaled by 10 takes 3.33 points off.
	apart := baseListing()
	apart.Price = 30000
	if got := CalculateCompatibility(user, apart, prefs).Score; got != 17 {
		t.Errorf("gapped Score = %d, want 17", got)
	}
}

func TestCalculateCompatibility_PriceGapNearOne(t *testing.T) {
	prefs := (&listing.TradePreferences{
		PriceMin: floatPtr(100),
		PriceMax: floatPtr(1000000),
	}).Normalized()

	user := baseListing()
	user.Price = 1000000
	target := baseListing()
	target.Price = 100

	// The normalized gap tops out at 1.0, so an in-range price never earns
	// less than 10 and the floor of 5 is a dead lower bound.
	if got := CalculateCompatibility(user, target, prefs).Score; got != 10 {
		t.Errorf("Score = %d, want 10", got)
	}
}

func TestCalculateCompatibility_PriceOutOfRangeScoresNothing(t *testing.T) {
	prefs := (&listing.TradePreferences{
		PriceMin: floatPtr(10000),
		PriceMax: floatPtr(20000),
	}).Normalized()

	target := baseListing()
	target.Price = 25000

	if got := CalculateCompatibility(baseListing(), target, prefs).Score; got != 0 {
		t.Errorf("Score = %d, want 0 for out-of-range price", got)
	}
}

func TestCalculateCompatibility_MileageUtilization(t *testing.T) {
	prefs := (&listing.TradePreferences{
		MileageMax: intPtr(100000),
	}).Normalized()

	halfway := baseListing()
	halfway.Mileage = 50000
	// 10 - 0.5*5 = 7.5, rounded to 8.
	if got := CalculateCompatibility(baseListing(), halfway, prefs).Score; got != 8 {
		t.Errorf("halfway Score = %d, want 8", got)
	}

	atLimit := baseListing()
	atLimit.Mileage = 100000
	// 10 - 1.0*5 = 5, above the floor of 2.
	if got := CalculateCompatibility(baseListing(), atLimit, prefs).Score; got != 5 {
		t.Errorf("at-limit Score = %d, want 5", got)
	}

	over := baseListing()
	over.Mileage = 100001
	if got := CalculateCompatibility(baseListing(), over, prefs).Score; got != 0 {
		t.Errorf("over-limit Score = %d, want 0", got)
	}
}

func TestCalculateCompatibility_ReasonsTruncatedPositionally(t *testing.T) {
	target := baseListing()
	target.Mileage = 1000

	got := CalculateCompatibility(baseListing(), target, openPrefs())

	// Seven factors match but only the first three reasons survive, in
	// factor order, regardless of weight.
	want := []string{
		"Body type SUV is on the wanted list",
		"Price is within the preferred range",
		"Year 2020 is within the preferred range",
	}
	if len(got.Reasons) != len(want) {
		t.Fatalf("Reasons = %v, want %v", got.Reasons, want)
	}
	for i := range want {
		if got.Reasons[i] != want[i] {
			t.Errorf("Reasons[%d] = %q, want %q", i, got.Reasons[i], want[i])
		}
	}
}

func TestCalculateCompatibility_PartialMatch(t *testing.T) {
	prefs := (&listing.TradePreferences{
		BodyTypes: []string{"suv"},
		FuelTypes: []string{"hybrid"},
	}).Normalized()

	got := CalculateCompatibility(baseListing(), baseListing(), prefs)

	if got.Score != 30 {
		t.Errorf("Score = %d, want 30 (body 25 + fuel 5)", got.Score)
	}
	if len(got.Reasons) != 2 {
		t.Errorf("len(Reasons) = %d, want 2", len(got.Reasons))
	}
}
