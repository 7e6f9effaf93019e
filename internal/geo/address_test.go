package geo

import (
	"errors"
	"testing"
)

func TestValidateAddress_Placeholders(t *testing.T) {
	placeholders := []string{
		"",
		"   ",
		"unknown",
		"Unknown",
		"  UNKNOWN  ",
		"n/a",
		"N/A",
		"na",
		"tbd",
		"TBD",
		"none",
		"null",
		"undefined",
		"Not Specified",
		"no location",
	}

	for _, addr := range placeholders {
		if err := ValidateAddress(addr); !errors.Is(err, ErrInvalidAddress) {
			t.Errorf("ValidateAddress(%q) = %v, want ErrInvalidAddress", addr, err)
		}
	}
}

func TestValidateAddress_TooShort(t *testing.T) {
	for _, addr := range []string{"ab", "x", " 12 "} {
		if err := ValidateAddress(addr); !errors.Is(err, ErrInvalidAddress) {
			t.Errorf("ValidateAddress(%q) = %v, want ErrInvalidAddress", addr, err)
		}
	}
}

func TestValidateAddress_Valid(t *testing.T) {
	for _, addr := range []string{"Miami, FL", "123 Main St, Austin, TX", "abc"} {
		if err := ValidateAddress(addr); err != nil {
			t.Errorf("ValidateAddress(%q) = %v, want nil", addr, err)
		}
	}
}

func TestLookupCity(t *testing.T) {
	c, ok := LookupCity("Miami, FL")
	if !ok {
		t.Fatal("expected static table hit for Miami, FL")
	}
	if c.Lat != 25.7617 || c.Lon != -80.1918 {
		t.Errorf("unexpected coordinates for Miami: %+v", c)
	}

	// Case and whitespace insensitive.
	if _, ok := LookupCity("  new york, ny  "); !ok {
		t.Error("expected hit for padded lowercase city string")
	}

	if _, ok := LookupCity("Springfield, IL"); ok {
		t.Error("did not expect hit for city outside the static table")
	}
}

func TestNormalizeAddress(t *testing.T) {
	if got := NormalizeAddress("  Miami, FL "); got != "miami, fl" {
		t.Errorf("NormalizeAddress = %q", got)
	}
}
