package identity

import (
	"context"

	"github.com/ErlanBelekov/notes-api/internal/domain"
)

type ctxKey struct{}

// WithClaims returns a copy of ctx carrying the authenticated caller.
func WithClaims(ctx context.Context, c *domain.Claims) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// FromContext returns the caller attached by the access guard, or nil.
func FromContext(ctx context.Context) *domain.Claims {
	c, _ := ctx.Value(ctxKey{}).(*domain.Claims)
	return c
}

// UserID returns the caller's id, or "" when the request is anonymous.
func UserID(ctx context.Context) string {
	if c := FromContext(ctx); c != nil {
		return c.UserID
	}
	return ""
}
