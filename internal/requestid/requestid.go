package requestid

import (
	"context"

	"github.com/google/uuid"
)

const (
	Header = "X-Request-ID"
	maxLen = 128
)

type ctxKey struct{}

// Resolve keeps a client-supplied id when it is short printable ASCII and
// generates a new UUID v4 otherwise.
func Resolve(incoming string) string {
	if incoming == "" || len(incoming) > maxLen {
		return uuid.NewString()
	}
	for i := 0; i < len(incoming); i++ {
		if c := incoming[i]; c < 0x21 || c > 0x7e {
			return uuid.NewString()
		}
	}
	return incoming
}

// WithRequestID returns a copy of ctx with the request ID attached.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext extracts the request ID from ctx. Returns "" if absent.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
