package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/ErlanBelekov/notes-api/internal/domain"
	"github.com/ErlanBelekov/notes-api/internal/metrics"
	"github.com/ErlanBelekov/notes-api/internal/repository"
	"github.com/google/uuid"
)

type NoteUsecase struct {
	repo repository.NoteRepository
}

func NewNoteUsecase(repo repository.NoteRepository) *NoteUsecase {
	return &NoteUsecase{repo: repo}
}

type CreateNoteInput struct {
	OwnerID  string
	Title    string
	Content  string
	Category string
}

// UpdateNoteInput holds a partial update: blank fields keep their stored value.
type UpdateNoteInput struct {
	Title    string
	Content  string
	Category string
}

type ListNotesInput struct {
	OwnerID  string
	Category string
	Query    string
}

func (u *NoteUsecase) CreateNote(ctx context.Context, input CreateNoteInput) (*domain.Note, error) {
	if input.OwnerID == "" {
		return nil, domain.ErrUnauthenticated
	}

	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)
	if title == "" {
		return nil, domain.NewValidationError("titulo", "is required")
	}
	if content == "" {
		return nil, domain.NewValidationError("contenido", "is required")
	}
	category, err := parseCategory(input.Category, domain.DefaultCategory)
	if err != nil {
		return nil, err
	}

	created, err := u.repo.Save(ctx, &domain.Note{
		OwnerID:  input.OwnerID,
		Title:    title,
		Content:  content,
		Category: category,
	})
	if err != nil {
		return nil, fmt.Errorf("create note: %w", err)
	}
	return created, nil
}

// ListNotes only ever returns notes owned by input.OwnerID.
func (u *NoteUsecase) ListNotes(ctx context.Context, input ListNotesInput) ([]*domain.Note, error) {
	if input.OwnerID == "" {
		return nil, domain.ErrUnauthenticated
	}

	var category domain.Category
	if strings.TrimSpace(input.Category) != "" {
		c, err := parseCategory(input.Category, "")
		if err != nil {
			return nil, err
		}
		category = c
	}

	notes, err := u.repo.ListByOwner(ctx, repository.ListNotesInput{
		OwnerID:  input.OwnerID,
		Category: category,
		Query:    strings.TrimSpace(input.Query),
	})
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	if notes == nil {
		notes = []*domain.Note{}
	}
	return notes, nil
}

func (u *NoteUsecase) UpdateNote(ctx context.Context, noteID, userID string, input UpdateNoteInput) (*domain.Note, error) {
	var category domain.Category
	if strings.TrimSpace(input.Category) != "" {
		c, err := parseCategory(input.Category, "")
		if err != nil {
			return nil, err
		}
		category = c
	}

	note, err := u.authorize(ctx, noteID, userID, "update")
	if err != nil {
		return nil, err
	}

	if title := strings.TrimSpace(input.Title); title != "" {
		note.Title = title
	}
	if content := strings.TrimSpace(input.Content); content != "" {
		note.Content = content
	}
	if category != "" {
		note.Category = category
	}

	updated, err := u.repo.Save(ctx, note)
	if err != nil {
		return nil, fmt.Errorf("update note: %w", err)
	}
	return updated, nil
}

func (u *NoteUsecase) DeleteNote(ctx context.Context, noteID, userID string) error {
	note, err := u.authorize(ctx, noteID, userID, "delete")
	if err != nil {
		return err
	}
	if err := u.repo.DeleteByID(ctx, note.ID); err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	return nil
}

// authorize loads the note and checks the caller owns it. Ids are compared
// as plain strings whatever the backend stores them as. Any textual UUID form
// is accepted and looked up in its canonical lower-case hyphenated form.
func (u *NoteUsecase) authorize(ctx context.Context, noteID, userID, action string) (*domain.Note, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	parsed, err := uuid.Parse(noteID)
	if err != nil {
		return nil, domain.ErrInvalidNoteID
	}

	note, err := u.repo.FindByID(ctx, parsed.String())
	if err != nil {
		return nil, fmt.Errorf("find note: %w", err)
	}

	if strings.TrimSpace(note.OwnerID) != strings.TrimSpace(userID) {
		metrics.OwnershipDenialsTotal.WithLabelValues(action).Inc()
		return nil, domain.ErrForbidden
	}
	return note, nil
}

func parseCategory(raw string, fallback domain.Category) (domain.Category, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if fallback == "" {
			return "", domain.NewValidationError("categoria", "is required")
		}
		return fallback, nil
	}
	c := domain.Category(raw)
	if !c.Valid() {
		return "", domain.NewValidationError("categoria", "must be one of Personal, Trabajo, Ideas, Recordatorios")
	}
	return c, nil
}
