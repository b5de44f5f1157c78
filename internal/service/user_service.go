package service

import (
	"context"
	"net/mail"
	"time"
	"unicode/utf8"

	"github.com/vanshika/paymybuddy/backend/internal/auth"
	"github.com/vanshika/paymybuddy/backend/internal/domain"
)

const (
	maxUsernameLength = 100
	maxPasswordBytes  = 72
)

// UserService registers and looks up accounts.
type UserService struct {
	users  domain.UserRepository
	hasher auth.PasswordHasher
	nowFn  func() time.Time
}

// NewUserService builds a UserService.
func NewUserService(users domain.UserRepository, hasher auth.PasswordHasher) *UserService {
	return &UserService{users: users, hasher: hasher, nowFn: time.Now}
}

// WithClock allows overriding the time source (useful for tests).
func (s *UserService) WithClock(fn func() time.Time) *UserService {
	if fn != nil {
		s.nowFn = fn
	}
	return s
}

// Register creates an account. The password is stored only as a hash.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (domain.User, error) {
	email := normalizeEmail(input.Email)
	username := sanitizeString(input.Username)

	switch {
	case email == "":
		return domain.User{}, domain.Invalid(domain.ErrInvalidInput, "email is required")
	case !validEmail(email):
		return domain.User{}, domain.Invalid(domain.ErrInvalidInput, "email is invalid")
	case username == "":
		return domain.User{}, domain.Invalid(domain.ErrInvalidInput, "username is required")
	case utf8.RuneCountInString(username) > maxUsernameLength:
		return domain.User{}, domain.Invalid(domain.ErrInvalidInput, "username must be at most 100 characters")
	case input.Password == "":
		return domain.User{}, domain.Invalid(domain.ErrInvalidInput, "password is required")
	case len(input.Password) > maxPasswordBytes:
		return domain.User{}, domain.Invalid(domain.ErrInvalidInput, "password must be at most 72 bytes")
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return domain.User{}, err
	}
	if existing != nil {
		return domain.User{}, domain.ErrEmailAlreadyUsed
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return domain.User{}, err
	}

	return s.users.Save(ctx, domain.User{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    s.nowFn().UTC(),
	})
}

// Authenticate checks an email/password pair. Unknown emails and wrong
// passwords both yield domain.ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (domain.User, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return domain.User{}, err
	}
	if user == nil {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	if err := s.hasher.Verify(user.PasswordHash, password); err != nil {
		return domain.User{}, err
	}
	return *user, nil
}

func (s *UserService) GetAllUsers(ctx context.Context) ([]domain.User, error) {
	return nonNil(s.users.FindAll(ctx))
}

func (s *UserService) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return found(s.users.FindByID(ctx, id))
}

func (s *UserService) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return found(s.users.FindByEmail(ctx, normalizeEmail(email)))
}

func found(user *domain.User, err error) (domain.User, error) {
	if err != nil {
		return domain.User{}, err
	}
	if user == nil {
		return domain.User{}, domain.ErrUserNotFound
	}
	return *user, nil
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
