package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// AmountScale is the number of fractional digits a transfer amount may carry.
	AmountScale = 2
	// MaxDescriptionLength bounds the free-text note stored with a transfer.
	MaxDescriptionLength = 255
)

// maxAmount is the first value that no longer fits a DECIMAL(19,2) column.
var maxAmount = decimal.New(1, 17)

// Transaction is an immutable record of value moved from Sender to Receiver.
type Transaction struct {
	ID          string
	Sender      User
	Receiver    User
	Amount      decimal.Decimal
	Description *string
	CreatedAt   time.Time
}

// TransferRequest is a requested transfer before validation. Only the IDs of
// Sender and Receiver are trusted; every other field on them is replaced by
// the stored record.
type TransferRequest struct {
	Sender      User
	Receiver    User
	Amount      decimal.NullDecimal
	Description *string
}

// ValidateAmount enforces the transfer amount policy: present, strictly
// positive, at most AmountScale fractional digits and below maxAmount.
func ValidateAmount(amount decimal.NullDecimal) error {
	if !amount.Valid {
		return Invalid(ErrInvalidAmount, "amount is required")
	}
	a := amount.Decimal
	if !a.IsPositive() {
		return Invalid(ErrInvalidAmount, "amount must be positive")
	}
	if !a.Equal(a.Truncate(AmountScale)) {
		return Invalid(ErrInvalidAmount, "amount must have at most 2 decimal places")
	}
	if a.GreaterThanOrEqual(maxAmount) {
		return Invalid(ErrInvalidAmount, "amount is too large")
	}
	return nil
}
