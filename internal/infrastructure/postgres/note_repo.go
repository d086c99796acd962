package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/ErlanBelekov/notes-api/internal/domain"
	"github.com/ErlanBelekov/notes-api/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const noteColumns = `id, user_id, title, content, category, created_at, updated_at`

type NoteRepository struct {
	pool *pgxpool.Pool
}

func NewNoteRepository(pool *pgxpool.Pool) *NoteRepository {
	return &NoteRepository{pool: pool}
}

func (r *NoteRepository) FindByID(ctx context.Context, id string) (*domain.Note, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+noteColumns+` FROM notes WHERE id = $1`, id)
	return scanNote(row)
}

func (r *NoteRepository) ListByOwner(ctx context.Context, input repository.ListNotesInput) ([]*domain.Note, error) {
	// strpos instead of ILIKE so user input is never treated as a pattern.
	query := `
		SELECT ` + noteColumns + `
		FROM notes
		WHERE user_id = $1
		  AND ($2::text = '' OR category = $2)
		  AND ($3::text = ''
		       OR strpos(lower(title), lower($3)) > 0
		       OR strpos(lower(content), lower($3)) > 0)
		ORDER BY created_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, input.OwnerID, string(input.Category), input.Query)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	var notes []*domain.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notes: %w", err)
	}
	return notes, nil
}

func (r *NoteRepository) Save(ctx context.Context, note *domain.Note) (*domain.Note, error) {
	if note.ID == "" {
		query := `
			INSERT INTO notes (user_id, title, content, category)
			VALUES ($1, $2, $3, $4)
			RETURNING ` + noteColumns
		return scanNote(r.pool.QueryRow(ctx, query, note.OwnerID, note.Title, note.Content, string(note.Category)))
	}

	// user_id is not updatable.
	query := `
		UPDATE notes
		SET    title      = $2,
		       content    = $3,
		       category   = $4,
		       updated_at = NOW()
		WHERE  id = $1
		RETURNING ` + noteColumns
	return scanNote(r.pool.QueryRow(ctx, query, note.ID, note.Title, note.Content, string(note.Category)))
}

func (r *NoteRepository) DeleteByID(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM notes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNoteNotFound
	}
	return nil
}

func scanNote(row pgx.Row) (*domain.Note, error) {
	var (
		n        domain.Note
		category string
	)
	err := row.Scan(&n.ID, &n.OwnerID, &n.Title, &n.Content, &category, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNoteNotFound
		}
		return nil, fmt.Errorf("scan note: %w", err)
	}
	n.Category = domain.Category(category)
	return &n, nil
}
