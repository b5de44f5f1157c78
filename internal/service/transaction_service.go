package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/vanshika/paymybuddy/backend/internal/domain"
	"github.com/vanshika/paymybuddy/backend/internal/events"
)

// TransactionService validates, records and queries transfers.
type TransactionService struct {
	uow          domain.UnitOfWork
	transactions domain.TransactionRepository
	publisher    events.Publisher
	logger       *slog.Logger
	nowFn        func() time.Time
}

// NewTransactionService builds a TransactionService. publisher may be nil.
func NewTransactionService(uow domain.UnitOfWork, transactions domain.TransactionRepository, publisher events.Publisher, logger *slog.Logger) *TransactionService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &TransactionService{
		uow:          uow,
		transactions: transactions,
		publisher:    publisher,
		logger:       logger,
		nowFn:        time.Now,
	}
}

// WithClock allows overriding the time source (useful for tests).
func (s *TransactionService) WithClock(fn func() time.Time) *TransactionService {
	if fn != nil {
		s.nowFn = fn
	}
	return s
}

// CreateTransaction validates req and stores it. The sender and receiver are
// looked up by ID and the stored record refers to those canonical users.
// No friend edge is required; use Transfer for caller-initiated transfers.
func (s *TransactionService) CreateTransaction(ctx context.Context, req domain.TransferRequest) (domain.Transaction, error) {
	return s.create(ctx, req, false)
}

// Transfer records a transfer from caller to input.ReceiverID. The receiver
// must be one of the caller's connections.
func (s *TransactionService) Transfer(ctx context.Context, caller domain.User, input TransferInput) (domain.Transaction, error) {
	return s.create(ctx, domain.TransferRequest{
		Sender:      domain.User{ID: caller.ID},
		Receiver:    domain.User{ID: input.ReceiverID},
		Amount:      input.Amount,
		Description: input.Description,
	}, true)
}

func (s *TransactionService) create(ctx context.Context, req domain.TransferRequest, requireConnection bool) (domain.Transaction, error) {
	if err := domain.ValidateAmount(req.Amount); err != nil {
		return domain.Transaction{}, err
	}
	description, err := normalizeDescription(req.Description)
	if err != nil {
		return domain.Transaction{}, err
	}

	var stored domain.Transaction
	err = s.uow.WithinTx(ctx, func(ctx context.Context, repos domain.Repositories) error {
		sender, err := repos.Users.FindByID(ctx, req.Sender.ID)
		if err != nil {
			return err
		}
		if sender == nil {
			return domain.ErrSenderNotFound
		}

		receiver, err := repos.Users.FindByID(ctx, req.Receiver.ID)
		if err != nil {
			return err
		}
		if receiver == nil {
			return domain.ErrReceiverNotFound
		}

		if sender.ID == receiver.ID {
			return domain.ErrSelfTransferNotAllowed
		}

		if requireConnection {
			connected, err := repos.Connections.Exists(ctx, domain.ConnectionKey{UserID: sender.ID, ConnectionID: receiver.ID})
			if err != nil {
				return err
			}
			if !connected {
				return domain.ErrNotConnected
			}
		}

		stored, err = repos.Transactions.Save(ctx, domain.Transaction{
			Sender:      *sender,
			Receiver:    *receiver,
			Amount:      req.Amount.Decimal,
			Description: description,
			CreatedAt:   s.nowFn().UTC(),
		})
		return err
	})
	if err != nil {
		return domain.Transaction{}, err
	}

	if err := s.publisher.TransactionCreated(ctx, stored); err != nil {
		s.logger.Warn("failed to publish transaction event", "error", err, "transactionId", stored.ID)
	}
	return stored, nil
}

// GetTransactionsBySender returns the transfers sent by userID, oldest first.
func (s *TransactionService) GetTransactionsBySender(ctx context.Context, userID string) ([]domain.Transaction, error) {
	return nonNil(s.transactions.FindBySender(ctx, userID))
}

// GetTransactionsByReceiver returns the transfers received by userID, oldest first.
func (s *TransactionService) GetTransactionsByReceiver(ctx context.Context, userID string) ([]domain.Transaction, error) {
	return nonNil(s.transactions.FindByReceiver(ctx, userID))
}

func (s *TransactionService) GetAllTransactions(ctx context.Context) ([]domain.Transaction, error) {
	return nonNil(s.transactions.FindAll(ctx))
}

// GetTransactionByID returns domain.ErrTransactionNotFound when id is unknown.
func (s *TransactionService) GetTransactionByID(ctx context.Context, id string) (domain.Transaction, error) {
	tx, err := s.transactions.FindByID(ctx, id)
	if err != nil {
		return domain.Transaction{}, err
	}
	if tx == nil {
		return domain.Transaction{}, domain.ErrTransactionNotFound
	}
	return *tx, nil
}

func nonNil[T any](items []T, err error) ([]T, error) {
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}
