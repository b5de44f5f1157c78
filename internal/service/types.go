package service

import "github.com/shopspring/decimal"

// RegisterInput carries the fields of a sign-up request.
type RegisterInput struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// TransferInput is a transfer requested by an authenticated caller. The
// sender is always the caller.
type TransferInput struct {
	ReceiverID  string
	Amount      decimal.NullDecimal
	Description *string
}

// ConnectionSeed names a friend edge by the two users' emails.
type ConnectionSeed struct {
	UserEmail       string `json:"userEmail"`
	ConnectionEmail string `json:"connectionEmail"`
}

// TransferSeed is a historical transfer addressed by email, used for bulk loads.
type TransferSeed struct {
	SenderEmail   string          `json:"senderEmail"`
	ReceiverEmail string          `json:"receiverEmail"`
	Amount        decimal.Decimal `json:"amount"`
	Description   *string         `json:"description,omitempty"`
}
