package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanshika/paymybuddy/backend/internal/domain"
	"github.com/vanshika/paymybuddy/backend/internal/logging"
)

func amount(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func newTransactionFixture() (*memStore, *recordingPublisher, *TransactionService) {
	store := newMemStore()
	pub := &recordingPublisher{}
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	svc := NewTransactionService(store, store.transactions(), pub, logging.Discard()).
		WithClock(func() time.Time { return now })
	return store, pub, svc
}

func TestTransactionService_CreateTransaction_Success(t *testing.T) {
	store, pub, svc := newTransactionFixture()
	alice := store.addUser("alice@example.com", "alice")
	bob := store.addUser("bob@example.com", "bob")
	lunch := "lunch"

	tx, err := svc.CreateTransaction(context.Background(), domain.TransferRequest{
		Sender:      domain.User{ID: alice.ID, Email: "forged@example.com"},
		Receiver:    domain.User{ID: bob.ID, Username: "not bob"},
		Amount:      amount("100.00"),
		Description: &lunch,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, tx.ID)
	assert.Equal(t, "100.00", tx.Amount.StringFixed(2))
	assert.True(t, tx.Amount.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, alice, tx.Sender, "sender is the stored record")
	assert.Equal(t, bob, tx.Receiver, "receiver is the stored record")
	require.NotNil(t, tx.Description)
	assert.Equal(t, "lunch", *tx.Description)
	assert.Equal(t, time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC), tx.CreatedAt)

	assert.Len(t, store.storedTransactions(), 1)
	assert.Equal(t, 0, store.existsCalls, "the core validator does not consult connections")
	require.Len(t, pub.published, 1)
	assert.Equal(t, tx.ID, pub.published[0].ID)
}

func TestTransactionService_CreateTransaction_InvalidAmount(t *testing.T) {
	cases := map[string]decimal.NullDecimal{
		"absent":   {},
		"zero":     amount("0"),
		"zero.00":  amount("0.00"),
		"negative": amount("-5"),
		"fraction": amount("0.001"),
	}

	for name, amt := range cases {
		t.Run(name, func(t *testing.T) {
			store, pub, svc := newTransactionFixture()
			alice := store.addUser("alice@example.com", "alice")
			bob := store.addUser("bob@example.com", "bob")

			_, err := svc.CreateTransaction(context.Background(), domain.TransferRequest{
				Sender:   alice,
				Receiver: bob,
				Amount:   amt,
			})
			require.ErrorIs(t, err, domain.ErrInvalidAmount)
			assert.Empty(t, store.storedTransactions())
			assert.Empty(t, pub.published)
		})
	}
}

func TestTransactionService_CreateTransaction_UnknownUsers(t *testing.T) {
	store, _, svc := newTransactionFixture()
	alice := store.addUser("alice@example.com", "alice")

	_, err := svc.CreateTransaction(context.Background(), domain.TransferRequest{
		Sender:   domain.User{ID: "ghost-1"},
		Receiver: domain.User{ID: "ghost-2"},
		Amount:   amount("10"),
	})
	assert.ErrorIs(t, err, domain.ErrSenderNotFound, "sender is checked first")

	_, err = svc.CreateTransaction(context.Background(), domain.TransferRequest{
		Sender:   alice,
		Receiver: domain.User{ID: "ghost-2"},
		Amount:   amount("10"),
	})
	assert.ErrorIs(t, err, domain.ErrReceiverNotFound)

	assert.Empty(t, store.storedTransactions())
	assert.Equal(t, 2, store.rollbacks)
}

func TestTransactionService_CreateTransaction_SelfTransfer(t *testing.T) {
	store, _, svc := newTransactionFixture()
	alice := store.addUser("alice@example.com", "alice")

	_, err := svc.CreateTransaction(context.Background(), domain.TransferRequest{
		Sender:   alice,
		Receiver: domain.User{ID: alice.ID},
		Amount:   amount("1"),
	})
	assert.ErrorIs(t, err, domain.ErrSelfTransferNotAllowed)
	assert.Empty(t, store.storedTransactions())
}

func TestTransactionService_CreateTransaction_StorageFailure(t *testing.T) {
	store, pub, svc := newTransactionFixture()
	alice := store.addUser("alice@example.com", "alice")
	bob := store.addUser("bob@example.com", "bob")
	boom := &domain.StorageError{Op: "save transaction", Err: errors.New("disk full")}
	store.failOn("transactions.Save", boom)

	_, err := svc.CreateTransaction(context.Background(), domain.TransferRequest{Sender: alice, Receiver: bob, Amount: amount("3")})
	require.Error(t, err)
	assert.True(t, domain.IsStorageError(err))
	assert.Equal(t, 1, store.rollbacks)
	assert.Empty(t, pub.published)
}

func TestTransactionService_CreateTransaction_Description(t *testing.T) {
	store, _, svc := newTransactionFixture()
	alice := store.addUser("alice@example.com", "alice")
	bob := store.addUser("bob@example.com", "bob")

	blank := "   \t "
	tx, err := svc.CreateTransaction(context.Background(), domain.TransferRequest{Sender: alice, Receiver: bob, Amount: amount("1"), Description: &blank})
	require.NoError(t, err)
	assert.Nil(t, tx.Description)

	messy := "  movie   night\n tickets "
	tx, err = svc.CreateTransaction(context.Background(), domain.TransferRequest{Sender: alice, Receiver: bob, Amount: amount("1"), Description: &messy})
	require.NoError(t, err)
	require.NotNil(t, tx.Description)
	assert.Equal(t, "movie night tickets", *tx.Description)

	long := strings.Repeat("x", domain.MaxDescriptionLength+1)
	_, err = svc.CreateTransaction(context.Background(), domain.TransferRequest{Sender: alice, Receiver: bob, Amount: amount("1"), Description: &long})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Len(t, store.storedTransactions(), 2)
}

func TestTransactionService_Transfer_RequiresConnection(t *testing.T) {
	store, _, svc := newTransactionFixture()
	alice := store.addUser("alice@example.com", "alice")
	bob := store.addUser("bob@example.com", "bob")
	store.connect(bob, alice)

	_, err := svc.Transfer(context.Background(), alice, TransferInput{ReceiverID: bob.ID, Amount: amount("20")})
	assert.ErrorIs(t, err, domain.ErrNotConnected, "edges are directional")
	assert.Empty(t, store.storedTransactions())

	store.connect(alice, bob)
	tx, err := svc.Transfer(context.Background(), alice, TransferInput{ReceiverID: bob.ID, Amount: amount("20")})
	require.NoError(t, err)
	assert.Equal(t, alice.ID, tx.Sender.ID)
	assert.Equal(t, bob.ID, tx.Receiver.ID)
}

func TestTransactionService_Transfer_ValidationOrder(t *testing.T) {
	store, _, svc := newTransactionFixture()
	alice := store.addUser("alice@example.com", "alice")

	_, err := svc.Transfer(context.Background(), alice, TransferInput{ReceiverID: alice.ID, Amount: amount("0")})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = svc.Transfer(context.Background(), alice, TransferInput{ReceiverID: alice.ID, Amount: amount("5")})
	assert.ErrorIs(t, err, domain.ErrSelfTransferNotAllowed)

	_, err = svc.Transfer(context.Background(), domain.User{ID: "gone"}, TransferInput{ReceiverID: alice.ID, Amount: amount("5")})
	assert.ErrorIs(t, err, domain.ErrSenderNotFound)

	assert.Equal(t, 0, store.existsCalls)
}

func TestTransactionService_Transfer_ConnectionLookupFailure(t *testing.T) {
	store, _, svc := newTransactionFixture()
	alice := store.addUser("alice@example.com", "alice")
	bob := store.addUser("bob@example.com", "bob")
	store.failOn("connections.Exists", &domain.StorageError{Op: "check connection", Err: errors.New("graph down")})

	_, err := svc.Transfer(context.Background(), alice, TransferInput{ReceiverID: bob.ID, Amount: amount("5")})
	assert.True(t, domain.IsStorageError(err))
	assert.Empty(t, store.storedTransactions())
}

func TestTransactionService_PublishFailureDoesNotFailTransfer(t *testing.T) {
	store, pub, svc := newTransactionFixture()
	pub.err = errors.New("nats unavailable")
	alice := store.addUser("alice@example.com", "alice")
	bob := store.addUser("bob@example.com", "bob")

	_, err := svc.CreateTransaction(context.Background(), domain.TransferRequest{Sender: alice, Receiver: bob, Amount: amount("7.50")})
	require.NoError(t, err)
	assert.Len(t, store.storedTransactions(), 1)
}

func TestTransactionService_ExactDecimalSums(t *testing.T) {
	store, _, svc := newTransactionFixture()
	alice := store.addUser("alice@example.com", "alice")
	bob := store.addUser("bob@example.com", "bob")

	for i := 0; i < 10; i++ {
		_, err := svc.CreateTransaction(context.Background(), domain.TransferRequest{Sender: alice, Receiver: bob, Amount: amount("0.10")})
		require.NoError(t, err)
	}

	sent, err := svc.GetTransactionsBySender(context.Background(), alice.ID)
	require.NoError(t, err)
	total := decimal.Zero
	for _, tx := range sent {
		total = total.Add(tx.Amount)
	}
	assert.Equal(t, "1.00", total.StringFixed(2))
	assert.True(t, total.Equal(decimal.NewFromInt(1)))
}

func TestTransactionService_Reads(t *testing.T) {
	store, _, svc := newTransactionFixture()
	alice := store.addUser("alice@example.com", "alice")
	bob := store.addUser("bob@example.com", "bob")
	carol := store.addUser("carol@example.com", "carol")

	tx, err := svc.CreateTransaction(context.Background(), domain.TransferRequest{Sender: alice, Receiver: bob, Amount: amount("4")})
	require.NoError(t, err)

	none, err := svc.GetTransactionsBySender(context.Background(), carol.ID)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	received, err := svc.GetTransactionsByReceiver(context.Background(), bob.ID)
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, tx.ID, received[0].ID)

	all, err := svc.GetAllTransactions(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)

	got, err := svc.GetTransactionByID(context.Background(), tx.ID)
	require.NoError(t, err)
	assert.Equal(t, tx.ID, got.ID)

	_, err = svc.GetTransactionByID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrTransactionNotFound)

	store.failOn("transactions.Find", errors.New("read failed"))
	_, err = svc.GetAllTransactions(context.Background())
	assert.Error(t, err)
}
