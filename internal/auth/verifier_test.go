package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gearswap/gearswap/internal/auth"
)

const (
	testKey      = "test-secret-key-for-testing-only"
	testIssuer   = "https://auth.gearswap.app"
	testAudience = "gearswap-api"
)

func signToken(t *testing.T, key, issuer, audience, userID string, expiresAt time.Time) string {
	t.Helper()

	claims := auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID: userID,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return token
}

func TestVerifier_ValidToken(t *testing.T) {
	v := auth.NewVerifier(auth.VerifierConfig{
		SigningKey: testKey,
		Issuer:     testIssuer,
		Audience:   testAudience,
	})

	token := signToken(t, testKey, testIssuer, testAudience, "usr_test123", time.Now().Add(time.Hour))

	claims, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "usr_test123", claims.UserID)
	assert.Equal(t, "usr_test123", claims.SellerID())
	assert.Equal(t, testIssuer, claims.Issuer)
}

func TestVerifier_MalformedTokens(t *testing.T) {
	v := auth.NewVerifier(auth.VerifierConfig{
		SigningKey: testKey,
		Issuer:     testIssuer,
		Audience:   testAudience,
	})

	tests := []struct {
		name  string
		token string
	}{
		{"empty token", ""},
		{"malformed token", "not.a.valid.jwt"},
		{"invalid base64", "xxx.yyy.zzz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(tt.token)
			assert.Error(t, err)
		})
	}
}

func TestVerifier_WrongSigningKey(t *testing.T) {
	v := auth.NewVerifier(auth.VerifierConfig{
		SigningKey: "key-two",
		Issuer:     testIssuer,
		Audience:   testAudience,
	})

	token := signToken(t, "key-one", testIssuer, testAudience, "usr_test123", time.Now().Add(time.Hour))

	_, err := v.Verify(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestVerifier_WrongIssuer(t *testing.T) {
	v := auth.NewVerifier(auth.VerifierConfig{
		SigningKey: testKey,
		Issuer:     "issuer-two",
		Audience:   testAudience,
	})

	token := signToken(t, testKey, "issuer-one", testAudience, "usr_test123", time.Now().Add(time.Hour))

	_, err := v.Verify(token)
	assert.Error(t, err)
}

func TestVerifier_WrongAudience(t *testing.T) {
	v := auth.NewVerifier(auth.VerifierConfig{
		SigningKey: testKey,
		Issuer:     testIssuer,
		Audience:   "audience-two",
	})

	token := signToken(t, testKey, testIssuer, "audience-one", "usr_test123", time.Now().Add(time.Hour))

	_, err := v.Verify(token)
	assert.Error(t, err)
}

func TestVerifier_ExpiredToken(t *testing.T) {
	v := auth.NewVerifier(auth.VerifierConfig{
		SigningKey: testKey,
		Issuer:     testIssuer,
		Audience:   testAudience,
	})

	token := signToken(t, testKey, testIssuer, testAudience, "usr_test123", time.Now().Add(-time.Minute))

	_, err := v.Verify(token)
	assert.ErrorIs(t, err, auth.ErrTokenExpired)
}

func TestVerifier_SellerIDFallsBackToSubject(t *testing.T) {
	v := auth.NewVerifier(auth.VerifierConfig{
		SigningKey: testKey,
		Issuer:     testIssuer,
		Audience:   testAudience,
	})

	claims := auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    testIssuer,
			Subject:   "usr_subject",
			Audience:  jwt.ClaimStrings{testAudience},
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testKey))
	require.NoError(t, err)

	got, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "usr_subject", got.SellerID())
}
