package authctx

import (
	"context"

	"github.com/rangerisrael/pet-portal-sub000/internal/domain"
)

type ctxKey struct{}

// CurrentUser is the authenticated identity the JWT middleware stores on the
// request context.
type CurrentUser struct {
	ID    int64
	Email string
	Name  string
	Role  domain.UserRole
}

func WithCurrentUser(ctx context.Context, user CurrentUser) context.Context {
	return context.WithValue(ctx, ctxKey{}, user)
}

// FromContext returns the current user, or nil outside the auth middleware.
func FromContext(ctx context.Context) *CurrentUser {
	user, ok := ctx.Value(ctxKey{}).(CurrentUser)
	if !ok {
		return nil
	}
	return &user
}
