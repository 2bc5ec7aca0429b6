package jwt

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/taskhub/backend/pkg/auth"
)

var (
	// ErrInvalidToken covers malformed tokens, foreign signatures and unexpected claims.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned once the exp claim has passed.
	ErrExpiredToken = errors.New("token has expired")
)

// Generator issues and verifies HS256 tokens. The signing key is injected
// configuration; nothing here is process-global.
type Generator struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewGenerator(secret, issuer string, ttl time.Duration) *Generator {
	return &Generator{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}
}

// Claims включает стандартные поля и роль пользователя.
type Claims struct {
	jwt.RegisteredClaims
	Role auth.Role `json:"role"`
}

// Generate signs a token whose subject is the user's email.
func (g *Generator) Generate(_ context.Context, user auth.User) (string, error) {
	now := g.now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    g.issuer,
			Subject:   user.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(g.ttl)),
		},
		Role: user.Role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(g.secret)
}

// Verify checks signature, algorithm, issuer and expiry and returns the identity the
// token was issued for.
func (g *Generator) Verify(tokenStr string) (auth.Principal, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(g.now),
	}
	if g.issuer != "" {
		opts = append(opts, jwt.WithIssuer(g.issuer))
	}
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return g.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return auth.Principal{}, ErrExpiredToken
		}
		return auth.Principal{}, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return auth.Principal{}, ErrInvalidToken
	}
	if claims.Subject == "" || !claims.Role.Valid() {
		return auth.Principal{}, ErrInvalidToken
	}
	return auth.Principal{Email: claims.Subject, Role: claims.Role}, nil
}
