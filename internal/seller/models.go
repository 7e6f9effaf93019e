// Package seller holds seller profile lookups for match presentation.
package seller

import "time"

// Profile is the public-facing subset of a seller account shown alongside
// a match.
type Profile struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"displayName"`
	AvatarURL   string    `json:"avatarUrl,omitempty"`
	Rating      float64   `json:"rating"`
	CreatedAt   time.Time `json:"createdAt"`
}
