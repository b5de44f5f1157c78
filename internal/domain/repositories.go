package domain

import "context"

// UserRepository is the identity store. Finders return (nil, nil) when no
// record matches.
type UserRepository interface {
	Save(ctx context.Context, user User) (User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindAll(ctx context.Context) ([]User, error)
}

// ConnectionRepository stores directed friend edges keyed by ConnectionKey.
// Save of an existing key and Delete of a missing key are both no-ops.
type ConnectionRepository interface {
	Save(ctx context.Context, conn Connection) (Connection, error)
	FindByUser(ctx context.Context, userID string) ([]Connection, error)
	FindByConnection(ctx context.Context, connectionID string) ([]Connection, error)
	Exists(ctx context.Context, key ConnectionKey) (bool, error)
	Delete(ctx context.Context, key ConnectionKey) error
}

// TransactionRepository is the append-only transfer store. Save assigns the
// identifier.
type TransactionRepository interface {
	Save(ctx context.Context, tx Transaction) (Transaction, error)
	FindBySender(ctx context.Context, senderID string) ([]Transaction, error)
	FindByReceiver(ctx context.Context, receiverID string) ([]Transaction, error)
	FindAll(ctx context.Context) ([]Transaction, error)
	FindByID(ctx context.Context, id string) (*Transaction, error)
}

// Repositories groups the stores bound to one unit of work.
type Repositories struct {
	Users        UserRepository
	Connections  ConnectionRepository
	Transactions TransactionRepository
}

// UnitOfWork runs fn inside a storage transaction. The transaction commits
// when fn returns nil and rolls back otherwise; fn's error is returned as is.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
