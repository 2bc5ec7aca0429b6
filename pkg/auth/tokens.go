package auth

import "context"

// TokenGenerator abstracts token creation (e.g., JWT).
// It allows use cases to stay framework-agnostic.
type TokenGenerator interface {
	Generate(ctx context.Context, user User) (string, error)
}

// TokenVerifier resolves a signed token back to the identity it was issued for.
type TokenVerifier interface {
	Verify(token string) (Principal, error)
}
