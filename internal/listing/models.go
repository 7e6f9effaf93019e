// Package listing holds the marketplace listing domain model and its
// persistence interfaces.
package listing

import (
	"strings"
	"time"
)

// PreviewListingID is the sentinel listing ID that sources the listing from
// a pending draft instead of the persisted store.
const PreviewListingID = "preview"

// Listing is a vehicle listing. Only the attributes consumed by distance
// estimation and trade matching are modeled here.
type Listing struct {
	ID              string    `json:"id"`
	SellerID        string    `json:"sellerId"`
	Title           string    `json:"title"`
	BodyType        string    `json:"bodyType"`
	Make            string    `json:"make"`
	Model           string    `json:"model"`
	Year            int       `json:"year"`
	Price           float64   `json:"price"`
	Mileage         int       `json:"mileage"`
	Condition       string    `json:"condition"`
	FuelType        string    `json:"fuelType"`
	Location        string    `json:"location"`
	TradeConsidered bool      `json:"tradeConsidered"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// TradePreferences are a seller's acceptance criteria for incoming trades.
// Every field is optional; an absent field imposes no constraint.
type TradePreferences struct {
	BodyTypes  []string `json:"bodyTypes,omitempty"`
	PriceMin   *float64 `json:"priceMin,omitempty"`
	PriceMax   *float64 `json:"priceMax,omitempty"`
	YearMin    *int     `json:"yearMin,omitempty"`
	YearMax    *int     `json:"yearMax,omitempty"`
	Makes      []string `json:"makes,omitempty"`
	MileageMax *int     `json:"mileageMax,omitempty"`
	Conditions []string `json:"conditions,omitempty"`
	FuelTypes  []string `json:"fuelTypes,omitempty"`
}

// IsEmpty reports whether no field imposes any constraint.
func (p *TradePreferences) IsEmpty() bool {
	return p == nil ||
		(len(p.BodyTypes) == 0 &&
			p.PriceMin == nil && p.PriceMax == nil &&
			p.YearMin == nil && p.YearMax == nil &&
			len(p.Makes) == 0 &&
			p.MileageMax == nil &&
			len(p.Conditions) == 0 &&
			len(p.FuelTypes) == 0)
}

// Normalized returns a copy with all set-membership fields lower-cased, the
// form the compatibility scorer expects.
func (p *TradePreferences) Normalized() *TradePreferences {
	if p == nil {
		return &TradePreferences{}
	}

	norm := &TradePreferences{
		BodyTypes:  lowerAll(p.BodyTypes),
		Makes:      lowerAll(p.Makes),
		Conditions: lowerAll(p.Conditions),
		FuelTypes:  lowerAll(p.FuelTypes),
	}
	if p.PriceMin != nil {
		v := *p.PriceMin
		norm.PriceMin = &v
	}
	if p.PriceMax != nil {
		v := *p.PriceMax
		norm.PriceMax = &v
	}
	if p.YearMin != nil {
		v := *p.YearMin
		norm.YearMin = &v
	}
	if p.YearMax != nil {
		v := *p.YearMax
		norm.YearMax = &v
	}
	if p.MileageMax != nil {
		v := *p.MileageMax
		norm.MileageMax = &v
	}
	return norm
}

func lowerAll(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(strings.TrimSpace(v))
	}
	return out
}
