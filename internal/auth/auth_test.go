package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/vanshika/paymybuddy/backend/internal/domain"
	"github.com/vanshika/paymybuddy/backend/internal/logging"
)

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", hash)

	assert.NoError(t, h.Verify(hash, "hunter2"))
	assert.ErrorIs(t, h.Verify(hash, "hunter3"), domain.ErrInvalidCredentials)
	assert.Error(t, h.Verify("not-a-hash", "hunter2"))
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("secret", "paymybuddy", time.Hour)

	token, expires, err := issuer.Issue("alice@example.com")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	principal, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", principal)
}

func TestTokenIssuer_Rejects(t *testing.T) {
	issuer := NewTokenIssuer("secret", "paymybuddy", time.Minute)
	token, _, err := issuer.Issue("alice@example.com")
	require.NoError(t, err)

	_, err = NewTokenIssuer("other", "paymybuddy", time.Minute).Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken, "wrong key")

	_, err = NewTokenIssuer("secret", "someone-else", time.Minute).Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken, "wrong issuer")

	later := NewTokenIssuer("secret", "paymybuddy", time.Minute).WithClock(func() time.Time {
		return time.Now().Add(time.Hour)
	})
	_, err = later.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken, "expired")

	_, err = issuer.Parse("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCallerContext(t *testing.T) {
	_, ok := CallerFromContext(context.Background())
	assert.False(t, ok)

	ctx := WithCaller(context.Background(), domain.User{ID: "u1"})
	caller, ok := CallerFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "u1", caller.ID)
}

type stubFinder struct {
	users map[string]domain.User
	calls int
	err   error
}

func (s *stubFinder) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	u, ok := s.users[email]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

type mapCache struct {
	entries map[string]domain.User
	getErr  error
}

func (m *mapCache) Get(_ context.Context, principal string) (*domain.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	u, ok := m.entries[principal]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *mapCache) Set(_ context.Context, user domain.User) error {
	m.entries[user.Email] = user
	return nil
}

func TestResolver_Resolve(t *testing.T) {
	finder := &stubFinder{users: map[string]domain.User{
		"alice@example.com": {ID: "u1", Email: "alice@example.com", PasswordHash: "hash"},
	}}
	cache := &mapCache{entries: map[string]domain.User{}}
	r := NewResolver(finder, cache, logging.Discard())

	user, err := r.Resolve(context.Background(), " Alice@Example.com ")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Empty(t, user.PasswordHash)
	assert.Contains(t, cache.entries, "alice@example.com")

	_, err = r.Resolve(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, finder.calls, "second lookup is served from cache")

	_, err = r.Resolve(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestResolver_CacheFailureFallsThrough(t *testing.T) {
	finder := &stubFinder{users: map[string]domain.User{"alice@example.com": {ID: "u1", Email: "alice@example.com"}}}
	cache := &mapCache{entries: map[string]domain.User{}, getErr: errors.New("redis down")}

	user, err := NewResolver(finder, cache, logging.Discard()).Resolve(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
}

func TestResolver_StoreError(t *testing.T) {
	boom := &domain.StorageError{Op: "find user by email", Err: errors.New("down")}
	_, err := NewResolver(&stubFinder{err: boom}, nil, logging.Discard()).Resolve(context.Background(), "a@b.c")
	assert.True(t, domain.IsStorageError(err))
}
