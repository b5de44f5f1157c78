package auth

import (
	"context"

	"github.com/vanshika/paymybuddy/backend/internal/domain"
)

type ctxKey struct{}

// WithCaller attaches the authenticated user to ctx.
func WithCaller(ctx context.Context, caller domain.User) context.Context {
	return context.WithValue(ctx, ctxKey{}, caller)
}

// CallerFromContext returns the user stored by WithCaller.
func CallerFromContext(ctx context.Context) (domain.User, bool) {
	caller, ok := ctx.Value(ctxKey{}).(domain.User)
	return caller, ok
}
