package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanshika/paymybuddy/backend/internal/domain"
)

func TestUserService_Register(t *testing.T) {
	store := newMemStore()
	svc := NewUserService(store, plainHasher{})

	user, err := svc.Register(context.Background(), RegisterInput{
		Email:    "  Alice@Example.com ",
		Username: " Alice   Liddell ",
		Password: "wonderland",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, "Alice Liddell", user.Username)
	assert.Equal(t, "plain:wonderland", user.PasswordHash)

	_, err = svc.Register(context.Background(), RegisterInput{Email: "alice@example.com", Username: "again", Password: "x"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyUsed)
}

func TestUserService_RegisterValidation(t *testing.T) {
	svc := NewUserService(newMemStore(), plainHasher{})

	cases := map[string]RegisterInput{
		"email is required":                       {Username: "a", Password: "p"},
		"email is invalid":                        {Email: "not-an-email", Username: "a", Password: "p"},
		"username is required":                    {Email: "a@b.io", Password: "p"},
		"username must be at most 100 characters": {Email: "a@b.io", Username: strings.Repeat("u", 101), Password: "p"},
		"password is required":                    {Email: "a@b.io", Username: "a"},
		"password must be at most 72 bytes":       {Email: "a@b.io", Username: "a", Password: strings.Repeat("p", 73)},
	}

	for want, input := range cases {
		t.Run(want, func(t *testing.T) {
			_, err := svc.Register(context.Background(), input)
			require.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Equal(t, want, err.Error())
		})
	}
}

func TestUserService_Authenticate(t *testing.T) {
	store := newMemStore()
	svc := NewUserService(store, plainHasher{})
	registered, err := svc.Register(context.Background(), RegisterInput{Email: "bob@example.com", Username: "bob", Password: "builder"})
	require.NoError(t, err)

	user, err := svc.Authenticate(context.Background(), "BOB@example.com", "builder")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	_, err = svc.Authenticate(context.Background(), "bob@example.com", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.Authenticate(context.Background(), "nobody@example.com", "builder")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestUserService_Lookups(t *testing.T) {
	store := newMemStore()
	svc := NewUserService(store, plainHasher{})
	alice := store.addUser("alice@example.com", "alice")

	got, err := svc.GetUserByID(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Equal(t, alice, got)

	got, err = svc.GetUserByEmail(context.Background(), "ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)

	_, err = svc.GetUserByID(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	all, err := svc.GetAllUsers(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
