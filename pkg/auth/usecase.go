package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
)

// AuthUseCase describes authentication/registration behavior.
type AuthUseCase interface {
	Register(ctx context.Context, name, email, password string) (AuthResult, error)
	Login(ctx context.Context, email, password string) (AuthResult, error)
	EnsureAdmin(ctx context.Context, name, email, password string) (bool, error)
}

type AuthResult struct {
	User  User
	Token string
}

type authService struct {
	repo   UserRepository
	hasher PasswordHasher
	tokens TokenGenerator
	now    func() time.Time
}

// NewAuthService returns default implementation of AuthUseCase.
func NewAuthService(repo UserRepository, hasher PasswordHasher, tokens TokenGenerator) AuthUseCase {
	return &authService{repo: repo, hasher: hasher, tokens: tokens, now: time.Now}
}

func (s *authService) Register(ctx context.Context, name, email, password string) (AuthResult, error) {
	user, err := s.createUser(ctx, name, email, password, RoleUser)
	if err != nil {
		return AuthResult{}, err
	}
	return s.issue(ctx, user)
}

func (s *authService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, fmt.Errorf("find user: %w", err)
	}
	ok, err := s.hasher.Compare(user.PasswordHash, password)
	if err != nil {
		return AuthResult{}, fmt.Errorf("compare password: %w", err)
	}
	if !ok {
		return AuthResult{}, ErrInvalidCredentials
	}
	return s.issue(ctx, user)
}

// EnsureAdmin creates an ADMIN account unless a user with that email already exists.
// It reports whether a new account was created.
func (s *authService) EnsureAdmin(ctx context.Context, name, email, password string) (bool, error) {
	_, err := s.createUser(ctx, name, email, password, RoleAdmin)
	if errors.Is(err, ErrDuplicateEmail) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *authService) createUser(ctx context.Context, name, email, password string, role Role) (User, error) {
	if err := validateRegistration(name, email, password); err != nil {
		return User{}, err
	}

	// Fail fast; the unique constraint in storage is what actually guards concurrent inserts.
	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return User{}, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return User{}, ErrDuplicateEmail
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	user := User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.repo.Create(ctx, &user); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return User{}, ErrDuplicateEmail
		}
		return User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *authService) issue(ctx context.Context, user User) (AuthResult, error) {
	token, err := s.tokens.Generate(ctx, user)
	if err != nil {
		return AuthResult{}, fmt.Errorf("generate token: %w", err)
	}
	return AuthResult{User: user, Token: token}, nil
}

func validateRegistration(name, email, password string) error {
	if strings.TrimSpace(name) == "" {
		return ErrValidation("name is required")
	}
	if strings.TrimSpace(email) == "" {
		return ErrValidation("email is required")
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return ErrValidation("invalid email format")
	}
	if password == "" {
		return ErrValidation("password is required")
	}
	if len(password) > maxPasswordBytes {
		return ErrValidation("password must be at most 72 bytes")
	}
	return nil
}
