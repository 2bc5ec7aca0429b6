package jwt

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhub/backend/pkg/auth"
)

var alice = auth.User{ID: 1, Name: "Alice", Email: "alice@example.com", Role: auth.RoleUser}

func TestGenerateVerifyRoundTrip(t *testing.T) {
	g := NewGenerator("secret", "taskhub", time.Hour)

	token, err := g.Generate(context.Background(), alice)
	require.NoError(t, err)

	p, err := g.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, auth.Principal{Email: "alice@example.com", Role: auth.RoleUser}, p)
}

func TestGenerateSetsClaims(t *testing.T) {
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	g := NewGenerator("secret", "taskhub", 30*time.Minute)
	g.now = func() time.Time { return fixed }

	token, err := g.Generate(context.Background(), auth.User{Email: "admin@example.com", Role: auth.RoleAdmin})
	require.NoError(t, err)

	var claims Claims
	_, _, err = jwt.NewParser().ParseUnverified(token, &claims)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", claims.Subject)
	assert.Equal(t, auth.RoleAdmin, claims.Role)
	assert.Equal(t, "taskhub", claims.Issuer)
	assert.True(t, fixed.Add(30*time.Minute).Equal(claims.ExpiresAt.Time))
	assert.NotEmpty(t, claims.ID)
}

func TestVerifyExpired(t *testing.T) {
	g := NewGenerator("secret", "taskhub", time.Minute)
	issued := time.Now().Add(-time.Hour)
	g.now = func() time.Time { return issued }
	token, err := g.Generate(context.Background(), alice)
	require.NoError(t, err)

	g.now = time.Now
	_, err = g.Verify(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestVerifyRejects(t *testing.T) {
	g := NewGenerator("secret", "taskhub", time.Hour)
	good, err := g.Generate(context.Background(), alice)
	require.NoError(t, err)

	foreignKey, err := NewGenerator("other-secret", "taskhub", time.Hour).Generate(context.Background(), alice)
	require.NoError(t, err)
	foreignIssuer, err := NewGenerator("secret", "someone-else", time.Hour).Generate(context.Background(), alice)
	require.NoError(t, err)
	noRole, err := g.Generate(context.Background(), auth.User{Email: "x@example.com"})
	require.NoError(t, err)
	noSubject, err := g.Generate(context.Background(), auth.User{Role: auth.RoleUser})
	require.NoError(t, err)
	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "taskhub",
			Subject:   "alice@example.com",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: auth.RoleAdmin,
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "taskhub", Subject: "alice@example.com"},
		Role:             auth.RoleUser,
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := map[string]string{
		"garbage":        "not-a-token",
		"empty":          "",
		"truncated":      good[:len(good)-4],
		"foreign key":    foreignKey,
		"foreign issuer": foreignIssuer,
		"missing role":   noRole,
		"missing sub":    noSubject,
		"wrong alg":      hs512,
		"no expiry":      noExpiry,
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := g.Verify(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
