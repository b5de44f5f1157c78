package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/vanshika/paymybuddy/backend/internal/domain"
)

// UserRepository is the gorm-backed identity store.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository binds a UserRepository to db, which may be a transaction.
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Save inserts a new user, assigning an ID when none is set. A duplicate email
// yields domain.ErrEmailAlreadyUsed.
func (r *UserRepository) Save(ctx context.Context, user domain.User) (domain.User, error) {
	model := newUserModel(user)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.User{}, domain.ErrEmailAlreadyUsed
		}
		return domain.User{}, domain.NewStorageError("save user", err)
	}
	return model.toDomain(), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, "find user by id", "id = ?", id)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, "find user by email", "email = ?", email)
}

func (r *UserRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	var models []UserModel
	if err := r.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&models).Error; err != nil {
		return nil, domain.NewStorageError("list users", err)
	}
	users := make([]domain.User, 0, len(models))
	for _, m := range models {
		users = append(users, m.toDomain())
	}
	return users, nil
}

func (r *UserRepository) findOne(ctx context.Context, op, query string, arg any) (*domain.User, error) {
	var model UserModel
	err := r.db.WithContext(ctx).Where(query, arg).Take(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.NewStorageError(op, err)
	}
	user := model.toDomain()
	return &user, nil
}
