package gate

import (
	"context"

	"github.com/nimson07/postFlow/internal/domain"
)

type contextKey struct{}

// WithAuthorized stores ac in ctx.
func WithAuthorized(ctx context.Context, ac *domain.AuthorizedContext) context.Context {
	return context.WithValue(ctx, contextKey{}, ac)
}

// FromContext returns the identity stored by WithAuthorized, or nil.
func FromContext(ctx context.Context) *domain.AuthorizedContext {
	ac, _ := ctx.Value(contextKey{}).(*domain.AuthorizedContext)
	return ac
}
