package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/vanshika/paymybuddy/backend/internal/domain"
)

// Publisher announces committed transfers to other systems.
type Publisher interface {
	TransactionCreated(ctx context.Context, tx domain.Transaction) error
}

// Noop discards every event.
type Noop struct{}

func (Noop) TransactionCreated(context.Context, domain.Transaction) error { return nil }

// TransactionCreatedEvent is the JSON payload published for each transfer.
type TransactionCreatedEvent struct {
	TransactionID string    `json:"transactionId"`
	SenderID      string    `json:"senderId"`
	ReceiverID    string    `json:"receiverId"`
	Amount        string    `json:"amount"`
	Description   *string   `json:"description,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// NewTransactionCreatedEvent builds the payload for tx. The amount is kept as
// a decimal string.
func NewTransactionCreatedEvent(tx domain.Transaction) TransactionCreatedEvent {
	return TransactionCreatedEvent{
		TransactionID: tx.ID,
		SenderID:      tx.Sender.ID,
		ReceiverID:    tx.Receiver.ID,
		Amount:        tx.Amount.StringFixed(domain.AmountScale),
		Description:   tx.Description,
		CreatedAt:     tx.CreatedAt.UTC(),
	}
}

// NATSPublisher publishes events on a NATS subject.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
}

// ConnectNATS dials url and returns a publisher for subject.
func ConnectNATS(url, subject string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("paymybuddy-backend"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &NATSPublisher{conn: conn, subject: subject}, nil
}

func (p *NATSPublisher) TransactionCreated(ctx context.Context, tx domain.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.Marshal(NewTransactionCreatedEvent(tx))
	if err != nil {
		return fmt.Errorf("encode transaction event: %w", err)
	}
	if err := p.conn.Publish(p.subject, payload); err != nil {
		return fmt.Errorf("publish %s: %w", p.subject, err)
	}
	return nil
}

// Close flushes pending messages and closes the connection.
func (p *NATSPublisher) Close() error {
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
		return err
	}
	return nil
}
