package repository

import (
	"context"

	"github.com/ErlanBelekov/notes-api/internal/domain"
)

type ListNotesInput struct {
	OwnerID  string          // required, results never cross owners
	Category domain.Category // empty = all categories
	Query    string          // case-insensitive substring of title or content
}

// NoteRepository is storage-agnostic so the ownership checks in the use case
// can run against an in-memory fake. Save inserts when ID is empty and
// replaces the stored document otherwise; DeleteByID returns
// domain.ErrNoteNotFound when nothing was deleted.
type NoteRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Note, error)
	ListByOwner(ctx context.Context, input ListNotesInput) ([]*domain.Note, error)
	Save(ctx context.Context, note *domain.Note) (*domain.Note, error)
	DeleteByID(ctx context.Context, id string) error
}
