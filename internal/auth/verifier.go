// Package auth verifies access tokens issued by the hosted identity
// provider. This service never mints tokens; sign-in, refresh, and session
// management all live with the provider.
package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Predefined token errors.
var (
	ErrInvalidToken = errors.New("invalid access token")
	ErrTokenExpired = errors.New("access token has expired")
)

// Claims represents the claims we consume from provider access tokens.
type Claims struct {
	jwt.RegisteredClaims

	// UserID is the authenticated user's ID. Falls back to the subject
	// claim when absent.
	UserID string `json:"uid"`
}

// SellerID returns the identity to use for seller-scoped lookups.
func (c *Claims) SellerID() string {
	if c.UserID != "" {
		return c.UserID
	}
	return c.Subject
}

// VerifierConfig holds configuration for token verification.
type VerifierConfig struct {
	// SigningKey is the shared secret the provider signs tokens with.
	SigningKey string

	// Issuer is the expected issuer claim.
	Issuer string

	// Audience is the expected audience claim.
	Audience string
}

// Verifier validates provider-issued HS256 access tokens.
type Verifier struct {
	signingKey []byte
	issuer     string
	audience   string
}

// NewVerifier creates a new token verifier.
func NewVerifier(cfg VerifierConfig) *Verifier {
	return &Verifier{
		signingKey: []byte(cfg.SigningKey),
		issuer:     cfg.Issuer,
		audience:   cfg.Audience,
	}
}

// Verify validates an access token and returns its claims. Issuer and
// audience are only enforced when configured.
func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.signingKey, nil
	}, opts...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidToken, err.Error())
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
