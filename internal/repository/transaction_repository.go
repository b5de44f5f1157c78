package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vanshika/paymybuddy/backend/internal/domain"
)

// TransactionRepository is the append-only transfer store.
type TransactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository binds a TransactionRepository to db, which may be a transaction.
func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Save inserts tx and returns it with its assigned ID and creation time. The
// sender and receiver are stored by ID only.
func (r *TransactionRepository) Save(ctx context.Context, tx domain.Transaction) (domain.Transaction, error) {
	model := TransactionModel{
		ID:          tx.ID,
		SenderID:    tx.Sender.ID,
		ReceiverID:  tx.Receiver.ID,
		Amount:      amountColumn{tx.Amount},
		Description: tx.Description,
		CreatedAt:   tx.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&model).Error; err != nil {
		return domain.Transaction{}, domain.NewStorageError("save transaction", err)
	}
	tx.ID = model.ID
	tx.CreatedAt = model.CreatedAt
	return tx, nil
}

func (r *TransactionRepository) FindBySender(ctx context.Context, senderID string) ([]domain.Transaction, error) {
	return r.find("find transactions by sender", r.base(ctx).Where("sender_id = ?", senderID))
}

func (r *TransactionRepository) FindByReceiver(ctx context.Context, receiverID string) ([]domain.Transaction, error) {
	return r.find("find transactions by receiver", r.base(ctx).Where("receiver_id = ?", receiverID))
}

func (r *TransactionRepository) FindAll(ctx context.Context) ([]domain.Transaction, error) {
	return r.find("list transactions", r.base(ctx))
}

func (r *TransactionRepository) FindByID(ctx context.Context, id string) (*domain.Transaction, error) {
	var model TransactionModel
	err := r.base(ctx).Where("id = ?", id).Take(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.NewStorageError("find transaction by id", err)
	}
	tx := model.toDomain()
	return &tx, nil
}

func (r *TransactionRepository) base(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Sender").Preload("Receiver")
}

func (r *TransactionRepository) find(op string, q *gorm.DB) ([]domain.Transaction, error) {
	var models []TransactionModel
	if err := q.Order("created_at ASC, id ASC").Find(&models).Error; err != nil {
		return nil, domain.NewStorageError(op, err)
	}
	txs := make([]domain.Transaction, 0, len(models))
	for _, m := range models {
		txs = append(txs, m.toDomain())
	}
	return txs, nil
}
