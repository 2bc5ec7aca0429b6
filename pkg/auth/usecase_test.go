package auth

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// memUserRepo is an in-memory UserRepository that enforces email uniqueness on Create.
type memUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  []User
	// existsOverride simulates a lost race: the pre-check misses a concurrent insert.
	existsOverride *bool
}

func (r *memUserRepo) Create(_ context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return ErrDuplicateEmail
		}
	}
	r.nextID++
	user.ID = r.nextID
	r.users = append(r.users, *user)
	return nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *memUserRepo) GetByID(_ context.Context, id int64) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *memUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if r.existsOverride != nil {
		return *r.existsOverride, nil
	}
	_, err := r.GetByEmail(ctx, email)
	return err == nil, nil
}

// stubTokens encodes the subject and role so tests can check what was issued.
type stubTokens struct {
	err error
}

func (s stubTokens) Generate(_ context.Context, user User) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return user.Email + "|" + string(user.Role), nil
}

func newTestService(repo UserRepository) AuthUseCase {
	return NewAuthService(repo, NewBcryptHasher(bcrypt.MinCost), stubTokens{})
}

func TestRegisterThenLogin(t *testing.T) {
	repo := &memUserRepo{}
	svc := newTestService(repo)
	ctx := context.Background()

	reg, err := svc.Register(ctx, "Alice", "alice@example.com", "pw1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), reg.User.ID)
	assert.Equal(t, RoleUser, reg.User.Role)
	assert.Equal(t, "alice@example.com|USER", reg.Token)
	assert.NotEqual(t, "pw1", reg.User.PasswordHash)

	login, err := svc.Login(ctx, "alice@example.com", "pw1")
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, login.User.ID)
	assert.Equal(t, "alice@example.com|USER", login.Token)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := &memUserRepo{}
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Alice", "alice@example.com", "pw1")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "Other", "alice@example.com", "pw2")
	assert.ErrorIs(t, err, ErrDuplicateEmail)
	assert.Len(t, repo.users, 1)
}

func TestRegisterDuplicateCaughtByStorage(t *testing.T) {
	notFound := false
	repo := &memUserRepo{existsOverride: &notFound}
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Alice", "alice@example.com", "pw1")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "Alice again", "alice@example.com", "pw1")
	assert.ErrorIs(t, err, ErrDuplicateEmail)
	assert.Len(t, repo.users, 1)
}

func TestRegisterEmailIsCaseSensitive(t *testing.T) {
	repo := &memUserRepo{}
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Lower", "bob@example.com", "pw")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "Upper", "Bob@example.com", "pw")
	require.NoError(t, err)
	assert.Len(t, repo.users, 2)
}

func TestRegisterValidation(t *testing.T) {
	long := make([]byte, maxPasswordBytes+1)
	for i := range long {
		long[i] = 'a'
	}
	tests := []struct {
		name     string
		userName string
		email    string
		password string
	}{
		{name: "blank name", userName: "  ", email: "a@x.com", password: "pw"},
		{name: "empty email", userName: "A", email: "", password: "pw"},
		{name: "malformed email", userName: "A", email: "not-an-email", password: "pw"},
		{name: "display name form", userName: "A", email: "A <a@x.com>", password: "pw"},
		{name: "empty password", userName: "A", email: "a@x.com", password: ""},
		{name: "password over bcrypt limit", userName: "A", email: "a@x.com", password: string(long)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &memUserRepo{}
			_, err := newTestService(repo).Register(context.Background(), tt.userName, tt.email, tt.password)
			var verr ErrValidation
			assert.True(t, errors.As(err, &verr), "expected validation error, got %v", err)
			assert.Empty(t, repo.users)
		})
	}
}

func TestLoginInvalidCredentialsAreIndistinguishable(t *testing.T) {
	repo := &memUserRepo{}
	svc := newTestService(repo)
	ctx := context.Background()
	_, err := svc.Register(ctx, "Alice", "alice@example.com", "pw1")
	require.NoError(t, err)

	_, wrongPassword := svc.Login(ctx, "alice@example.com", "nope")
	_, unknownEmail := svc.Login(ctx, "ghost@example.com", "pw1")

	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestLoginCarriesStoredRole(t *testing.T) {
	repo := &memUserRepo{}
	svc := newTestService(repo)
	ctx := context.Background()

	created, err := svc.EnsureAdmin(ctx, "Admin", "admin@example.com", "admin123")
	require.NoError(t, err)
	assert.True(t, created)

	res, err := svc.Login(ctx, "admin@example.com", "admin123")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, res.User.Role)
	assert.Equal(t, "admin@example.com|ADMIN", res.Token)
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	repo := &memUserRepo{}
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.EnsureAdmin(ctx, "Admin", "admin@example.com", "admin123")
	require.NoError(t, err)
	created, err := svc.EnsureAdmin(ctx, "Admin", "admin@example.com", "other")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Len(t, repo.users, 1)
}

func TestRegisterTokenFailure(t *testing.T) {
	boom := errors.New("signing failed")
	svc := NewAuthService(&memUserRepo{}, NewBcryptHasher(bcrypt.MinCost), stubTokens{err: boom})

	_, err := svc.Register(context.Background(), "Alice", "alice@example.com", "pw1")
	assert.ErrorIs(t, err, boom)
}
