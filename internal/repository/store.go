package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/vanshika/paymybuddy/backend/internal/domain"
)

// Store hands out repositories over one database and implements
// domain.UnitOfWork.
type Store struct {
	db          *gorm.DB
	connections domain.ConnectionRepository
}

// StoreOption customises a Store.
type StoreOption func(*Store)

// WithConnectionRepository replaces the SQL friend-edge store, for example
// with the graph-backed one. The replacement does not join SQL transactions.
func WithConnectionRepository(repo domain.ConnectionRepository) StoreOption {
	return func(s *Store) {
		s.connections = repo
	}
}

// NewStore builds a Store on db.
func NewStore(db *gorm.DB, opts ...StoreOption) *Store {
	s := &Store{db: db}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Users() domain.UserRepository {
	return NewUserRepository(s.db)
}

func (s *Store) Transactions() domain.TransactionRepository {
	return NewTransactionRepository(s.db)
}

func (s *Store) Connections() domain.ConnectionRepository {
	return s.connectionsOn(s.db)
}

// WithinTx runs fn in a database transaction. Errors returned by fn pass
// through untouched; failures to begin or commit become StorageErrors.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos domain.Repositories) error) error {
	var fnErr error
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fnErr = fn(ctx, domain.Repositories{
			Users:        NewUserRepository(tx),
			Connections:  s.connectionsOn(tx),
			Transactions: NewTransactionRepository(tx),
		})
		return fnErr
	})
	if fnErr != nil {
		return fnErr
	}
	return domain.NewStorageError("commit transaction", err)
}

func (s *Store) connectionsOn(db *gorm.DB) domain.ConnectionRepository {
	if s.connections != nil {
		return s.connections
	}
	return NewConnectionRepository(db)
}
