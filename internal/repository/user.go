package repository

import (
	"context"

	"github.com/ErlanBelekov/notes-api/internal/domain"
)

// UserRepository stores credentials. Implementations return
// domain.ErrUserNotFound for a missing user and domain.ErrDuplicateUser when
// Save races another registration for the same email.
//
// FindByID is part of the credential store contract alongside FindByEmail.
// The request path does not call it: access tokens already carry the id and
// email, so handlers never reload the user. Every backend implements and
// tests it so a profile lookup can rely on it.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Save(ctx context.Context, user *domain.User) (*domain.User, error)
}
