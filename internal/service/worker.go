package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/vanshika/paymybuddy/backend/internal/domain"
)

// TaskError accumulates the failures of a bulk load, one entry per failed item.
type TaskError struct {
	Errors []error
}

func (e *TaskError) Error() string {
	switch len(e.Errors) {
	case 0:
		return "no errors"
	case 1:
		return e.Errors[0].Error()
	}
	msgs := make([]string, 0, len(e.Errors))
	for _, err := range e.Errors {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("%d errors: %s", len(e.Errors), strings.Join(msgs, "; "))
}

// Unwrap exposes the individual failures to errors.Is and errors.As.
func (e *TaskError) Unwrap() []error {
	return e.Errors
}

func (e *TaskError) asError() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}

// BulkIngestor replays a seed dataset through the services using a worker pool.
type BulkIngestor struct {
	users        *UserService
	connections  *ConnectionService
	transactions *TransactionService
	workers      int
}

// NewBulkIngestor creates a new BulkIngestor instance with the provided concurrency.
func NewBulkIngestor(users *UserService, connections *ConnectionService, transactions *TransactionService, workers int) *BulkIngestor {
	if workers <= 0 {
		workers = 4
	}
	return &BulkIngestor{
		users:        users,
		connections:  connections,
		transactions: transactions,
		workers:      workers,
	}
}

// IngestUsers registers every user. Emails that already exist count as
// success so a dataset can be loaded twice.
func (bi *BulkIngestor) IngestUsers(ctx context.Context, inputs []RegisterInput) error {
	return bi.run(ctx, len(inputs), func(idx int) error {
		_, err := bi.users.Register(ctx, inputs[idx])
		if errors.Is(err, domain.ErrEmailAlreadyUsed) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("user %s: %w", inputs[idx].Email, err)
		}
		return nil
	})
}

// IngestConnections creates the friend edges. Users must already exist.
func (bi *BulkIngestor) IngestConnections(ctx context.Context, seeds []ConnectionSeed) error {
	return bi.run(ctx, len(seeds), func(idx int) error {
		seed := seeds[idx]
		user, err := bi.users.GetUserByEmail(ctx, seed.UserEmail)
		if err != nil {
			return fmt.Errorf("connection %s->%s: %w", seed.UserEmail, seed.ConnectionEmail, err)
		}
		if _, err := bi.connections.AddFriendByEmail(ctx, user, seed.ConnectionEmail); err != nil {
			return fmt.Errorf("connection %s->%s: %w", seed.UserEmail, seed.ConnectionEmail, err)
		}
		return nil
	})
}

// IngestTransfers records transfers on behalf of their senders, so every
// transfer must follow an existing friend edge.
func (bi *BulkIngestor) IngestTransfers(ctx context.Context, seeds []TransferSeed) error {
	return bi.run(ctx, len(seeds), func(idx int) error {
		seed := seeds[idx]
		sender, err := bi.users.GetUserByEmail(ctx, seed.SenderEmail)
		if err != nil {
			return fmt.Errorf("transfer %d sender: %w", idx, err)
		}
		receiver, err := bi.users.GetUserByEmail(ctx, seed.ReceiverEmail)
		if err != nil {
			return fmt.Errorf("transfer %d receiver: %w", idx, err)
		}
		_, err = bi.transactions.Transfer(ctx, sender, TransferInput{
			ReceiverID:  receiver.ID,
			Amount:      decimal.NewNullDecimal(seed.Amount),
			Description: seed.Description,
		})
		if err != nil {
			return fmt.Errorf("transfer %d: %w", idx, err)
		}
		return nil
	})
}

func (bi *BulkIngestor) run(ctx context.Context, total int, workerFn func(idx int) error) error {
	if total == 0 {
		return nil
	}
	indexCh := make(chan int)
	errCh := make(chan error, total)
	var wg sync.WaitGroup

	for i := 0; i < bi.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indexCh {
				if err := workerFn(idx); err != nil {
					errCh <- err
				}
			}
		}()
	}

Loop:
	for i := 0; i < total; i++ {
		select {
		case indexCh <- i:
		case <-ctx.Done():
			break Loop
		}
	}
	close(indexCh)
	wg.Wait()
	close(errCh)

	if err := ctx.Err(); err != nil {
		return err
	}

	var taskErr TaskError
	for err := range errCh {
		taskErr.Errors = append(taskErr.Errors, err)
	}
	return taskErr.asError()
}
