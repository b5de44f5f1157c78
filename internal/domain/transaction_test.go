package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAmount(t *testing.T) {
	cases := []struct {
		name    string
		amount  decimal.NullDecimal
		wantErr string
	}{
		{name: "absent", amount: decimal.NullDecimal{}, wantErr: "amount is required"},
		{name: "zero", amount: decimal.NewNullDecimal(decimal.Zero), wantErr: "amount must be positive"},
		{name: "negative", amount: decimal.NewNullDecimal(decimal.RequireFromString("-0.01")), wantErr: "amount must be positive"},
		{name: "too precise", amount: decimal.NewNullDecimal(decimal.RequireFromString("1.005")), wantErr: "amount must have at most 2 decimal places"},
		{name: "too large", amount: decimal.NewNullDecimal(decimal.New(1, 17)), wantErr: "amount is too large"},
		{name: "smallest", amount: decimal.NewNullDecimal(decimal.RequireFromString("0.01"))},
		{name: "trailing zeros", amount: decimal.NewNullDecimal(decimal.RequireFromString("100.000"))},
		{name: "largest", amount: decimal.NewNullDecimal(decimal.RequireFromString("99999999999999999.99"))},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateAmount(tc.amount)
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidAmount)
			assert.Equal(t, tc.wantErr, err.Error())
		})
	}
}

func TestConnectionKeyIsValueType(t *testing.T) {
	a := Connection{User: User{ID: "u1", Email: "a@x.io"}, Connection: User{ID: "u2"}}
	b := Connection{User: User{ID: "u1"}, Connection: User{ID: "u2", Username: "bob"}}

	assert.Equal(t, a.Key(), b.Key())

	seen := map[ConnectionKey]int{a.Key(): 1}
	seen[b.Key()]++
	assert.Len(t, seen, 1)
	assert.Equal(t, 2, seen[ConnectionKey{UserID: "u1", ConnectionID: "u2"}])
	assert.NotEqual(t, a.Key(), ConnectionKey{UserID: "u2", ConnectionID: "u1"})
}

func TestStorageError(t *testing.T) {
	cause := errors.New("disk on fire")
	err := NewStorageError("save transaction", cause)

	require.True(t, IsStorageError(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "storage: save transaction: disk on fire", err.Error())

	wrapped := fmt.Errorf("ctx: %w", err)
	assert.Same(t, wrapped, NewStorageError("outer", wrapped))
	assert.Nil(t, NewStorageError("noop", nil))

	_, ok := UserMessage(err)
	assert.False(t, ok)
}

func TestUserMessage(t *testing.T) {
	msg, ok := UserMessage(fmt.Errorf("create transaction: %w", ErrSenderNotFound))
	require.True(t, ok)
	assert.Equal(t, "sender not found", msg)

	msg, ok = UserMessage(Invalid(ErrInvalidAmount, "amount must be positive"))
	require.True(t, ok)
	assert.Equal(t, "amount must be positive", msg)
}
