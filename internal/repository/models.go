package repository

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"github.com/vanshika/paymybuddy/backend/internal/domain"
)

// UserModel maps the users table.
type UserModel struct {
	ID           string    `gorm:"primaryKey;size:36"`
	Email        string    `gorm:"size:255;uniqueIndex;not null"`
	Username     string    `gorm:"size:100;not null"`
	PasswordHash string    `gorm:"column:password_hash;size:255;not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

func (UserModel) TableName() string { return "users" }

func (m *UserModel) BeforeCreate(*gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// ConnectionModel maps user_connections. The pair (user_id, connection_id) is
// the primary key.
type ConnectionModel struct {
	UserID       string    `gorm:"primaryKey;size:36"`
	ConnectionID string    `gorm:"primaryKey;size:36;index"`
	CreatedAt    time.Time `gorm:"not null"`
	User         UserModel `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
	Connection   UserModel `gorm:"foreignKey:ConnectionID;references:ID;constraint:OnDelete:CASCADE"`
}

func (ConnectionModel) TableName() string { return "user_connections" }

// TransactionModel maps the transactions table.
type TransactionModel struct {
	ID          string       `gorm:"primaryKey;size:36"`
	SenderID    string       `gorm:"size:36;not null;index"`
	ReceiverID  string       `gorm:"size:36;not null;index"`
	Amount      amountColumn `gorm:"not null"`
	Description *string      `gorm:"size:255"`
	CreatedAt   time.Time    `gorm:"not null;index"`
	Sender      UserModel    `gorm:"foreignKey:SenderID;references:ID"`
	Receiver    UserModel    `gorm:"foreignKey:ReceiverID;references:ID"`
}

func (TransactionModel) TableName() string { return "transactions" }

func (m *TransactionModel) BeforeCreate(*gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// amountColumn stores a transfer amount as DECIMAL(19,2). SQLite has no exact
// decimal storage and would keep a REAL, so there the column holds the
// fixed-point text instead.
type amountColumn struct {
	decimal.Decimal
}

func (a amountColumn) Value() (driver.Value, error) {
	return a.StringFixed(domain.AmountScale), nil
}

func (amountColumn) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "sqlite" {
		return "text"
	}
	return "decimal(19,2)"
}

func newUserModel(u domain.User) UserModel {
	return UserModel{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
	}
}

func (m UserModel) toDomain() domain.User {
	return domain.User{
		ID:           m.ID,
		Email:        m.Email,
		Username:     m.Username,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt,
	}
}

func (m ConnectionModel) toDomain() domain.Connection {
	return domain.Connection{
		User:       m.User.toDomain(),
		Connection: m.Connection.toDomain(),
		CreatedAt:  m.CreatedAt,
	}
}

func (m TransactionModel) toDomain() domain.Transaction {
	return domain.Transaction{
		ID:          m.ID,
		Sender:      m.Sender.toDomain(),
		Receiver:    m.Receiver.toDomain(),
		Amount:      m.Amount.Decimal,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
	}
}
