package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vanshika/paymybuddy/backend/internal/domain"
)

// ConnectionRepository stores friend edges in user_connections.
type ConnectionRepository struct {
	db *gorm.DB
}

// NewConnectionRepository binds a ConnectionRepository to db, which may be a transaction.
func NewConnectionRepository(db *gorm.DB) *ConnectionRepository {
	return &ConnectionRepository{db: db}
}

// Save inserts the edge. Saving an edge that already exists leaves the
// original row in place and returns it with its stored creation time.
func (r *ConnectionRepository) Save(ctx context.Context, conn domain.Connection) (domain.Connection, error) {
	model := ConnectionModel{
		UserID:       conn.User.ID,
		ConnectionID: conn.Connection.ID,
		CreatedAt:    conn.CreatedAt,
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Omit(clause.Associations).
		Create(&model)
	if res.Error != nil {
		return domain.Connection{}, domain.NewStorageError("save connection", res.Error)
	}
	if res.RowsAffected == 0 {
		var stored ConnectionModel
		err := r.db.WithContext(ctx).
			Select("created_at").
			Where("user_id = ? AND connection_id = ?", model.UserID, model.ConnectionID).
			Take(&stored).Error
		if err != nil {
			return domain.Connection{}, domain.NewStorageError("load existing connection", err)
		}
		model.CreatedAt = stored.CreatedAt
	}
	conn.CreatedAt = model.CreatedAt
	return conn, nil
}

func (r *ConnectionRepository) FindByUser(ctx context.Context, userID string) ([]domain.Connection, error) {
	return r.find(ctx, "find connections by user", "user_id = ?", userID)
}

func (r *ConnectionRepository) FindByConnection(ctx context.Context, connectionID string) ([]domain.Connection, error) {
	return r.find(ctx, "find connections by connection", "connection_id = ?", connectionID)
}

func (r *ConnectionRepository) Exists(ctx context.Context, key domain.ConnectionKey) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&ConnectionModel{}).
		Where("user_id = ? AND connection_id = ?", key.UserID, key.ConnectionID).
		Count(&count).Error
	if err != nil {
		return false, domain.NewStorageError("check connection", err)
	}
	return count > 0, nil
}

func (r *ConnectionRepository) Delete(ctx context.Context, key domain.ConnectionKey) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND connection_id = ?", key.UserID, key.ConnectionID).
		Delete(&ConnectionModel{}).Error
	if err != nil {
		return domain.NewStorageError("delete connection", err)
	}
	return nil
}

func (r *ConnectionRepository) find(ctx context.Context, op, query string, arg any) ([]domain.Connection, error) {
	var models []ConnectionModel
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Connection").
		Where(query, arg).
		Order("created_at ASC, user_id ASC, connection_id ASC").
		Find(&models).Error
	if err != nil {
		return nil, domain.NewStorageError(op, err)
	}
	conns := make([]domain.Connection, 0, len(models))
	for _, m := range models {
		conns = append(conns, m.toDomain())
	}
	return conns, nil
}
