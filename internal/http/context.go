package http

import (
	"context"

	"staffdir/internal/domain"
)

type principalContextKey struct{}

// ContextWithPrincipal attaches the authenticated user to a request context.
// The value lives only for the duration of that request.
func ContextWithPrincipal(ctx context.Context, user *domain.User) context.Context {
	if user == nil {
		return ctx
	}
	return context.WithValue(ctx, principalContextKey{}, user)
}

// PrincipalFromContext returns the authenticated user, if any.
func PrincipalFromContext(ctx context.Context) (*domain.User, bool) {
	if ctx == nil {
		return nil, false
	}
	user, ok := ctx.Value(principalContextKey{}).(*domain.User)
	if !ok || user == nil {
		return nil, false
	}
	return user, true
}
