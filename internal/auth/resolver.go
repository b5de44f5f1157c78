package auth

import (
	"context"
	"log/slog"
	"strings"

	"github.com/vanshika/paymybuddy/backend/internal/domain"
)

// UserFinder is the part of the identity store the resolver reads.
type UserFinder interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
}

// ProfileCache is an optional cache-aside layer keyed by principal name.
// Get returns (nil, nil) on a miss.
type ProfileCache interface {
	Get(ctx context.Context, principal string) (*domain.User, error)
	Set(ctx context.Context, user domain.User) error
}

// Resolver maps an authenticated principal name to the stored user.
type Resolver struct {
	users  UserFinder
	cache  ProfileCache
	logger *slog.Logger
}

// NewResolver builds a Resolver. cache may be nil.
func NewResolver(users UserFinder, cache ProfileCache, logger *slog.Logger) *Resolver {
	return &Resolver{users: users, cache: cache, logger: logger}
}

// Resolve returns the user whose email is principal. The returned user never
// carries the password hash. Cache failures are logged and fall through to
// the store.
func (r *Resolver) Resolve(ctx context.Context, principal string) (domain.User, error) {
	principal = strings.ToLower(strings.TrimSpace(principal))
	if principal == "" {
		return domain.User{}, domain.ErrUserNotFound
	}

	if r.cache != nil {
		cached, err := r.cache.Get(ctx, principal)
		if err != nil {
			r.logger.Warn("profile cache read failed", "error", err, "principal", principal)
		} else if cached != nil {
			return cached.Public(), nil
		}
	}

	user, err := r.users.FindByEmail(ctx, principal)
	if err != nil {
		return domain.User{}, err
	}
	if user == nil {
		return domain.User{}, domain.ErrUserNotFound
	}

	public := user.Public()
	if r.cache != nil {
		if err := r.cache.Set(ctx, public); err != nil {
			r.logger.Warn("profile cache write failed", "error", err, "principal", principal)
		}
	}
	return public, nil
}
