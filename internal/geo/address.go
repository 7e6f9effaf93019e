package geo

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidAddress indicates the address is a placeholder or too short to
// be worth geocoding. It is the only error the distance subsystem lets
// propagate to callers.
var ErrInvalidAddress = errors.New("invalid address")

// MinAddressLength is the minimum usable length for a free-text address.
const MinAddressLength = 3

// placeholderAddresses are strings sellers type when they have no real
// location. Checked after trimming and lowercasing.
var placeholderAddresses = map[string]struct{}{
	"":              {},
	"unknown":       {},
	"n/a":           {},
	"na":            {},
	"tbd":           {},
	"none":          {},
	"null":          {},
	"undefined":     {},
	"not specified": {},
	"no location":   {},
}

// NormalizeAddress lowercases and trims an address for comparisons and
// cache keys.
func NormalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// ValidateAddress rejects placeholder and too-short addresses without any
// network call. Returns ErrInvalidAddress wrapped with the offending value.
func ValidateAddress(address string) error {
	normalized := NormalizeAddress(address)
	if _, ok := placeholderAddresses[normalized]; ok {
		return fmt.Errorf("%w: %q is a placeholder", ErrInvalidAddress, address)
	}
	if len(normalized) < MinAddressLength {
		return fmt.Errorf("%w: %q is too short", ErrInvalidAddress, address)
	}
	return nil
}

// IsValidAddress reports whether an address passes ValidateAddress.
func IsValidAddress(address string) bool {
	return ValidateAddress(address) == nil
}
