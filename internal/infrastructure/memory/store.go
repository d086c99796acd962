// Package memory keeps users and notes in process memory. It backs
// STORE_BACKEND=memory for local runs and doubles as the store in
// router-level tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ErlanBelekov/notes-api/internal/domain"
	"github.com/ErlanBelekov/notes-api/internal/repository"
	"github.com/google/uuid"
)

type Store struct {
	mu      sync.RWMutex
	users   map[string]*domain.User // by id
	byEmail map[string]string       // email -> id
	notes   map[string]*domain.Note
	now     func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:   make(map[string]*domain.User),
		byEmail: make(map[string]string),
		notes:   make(map[string]*domain.Note),
		now:     time.Now,
	}
}

func (s *Store) Ping(_ context.Context) error { return nil }

func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }
func (s *Store) Notes() *NoteRepository { return &NoteRepository{s: s} }

type UserRepository struct{ s *Store }

var _ repository.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u := *r.s.users[id]
	return &u, nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepository) Save(_ context.Context, user *domain.User) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, taken := r.s.byEmail[user.Email]; taken {
		return nil, domain.ErrDuplicateUser
	}

	now := r.s.now()
	u := *user
	u.ID = uuid.NewString()
	u.CreatedAt = now
	u.UpdatedAt = now
	r.s.users[u.ID] = &u
	r.s.byEmail[u.Email] = u.ID

	out := u
	return &out, nil
}

type NoteRepository struct{ s *Store }

var _ repository.NoteRepository = (*NoteRepository)(nil)

func (r *NoteRepository) FindByID(_ context.Context, id string) (*domain.Note, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n, ok := r.s.notes[id]
	if !ok {
		return nil, domain.ErrNoteNotFound
	}
	cp := *n
	return &cp, nil
}

func (r *NoteRepository) ListByOwner(_ context.Context, input repository.ListNotesInput) ([]*domain.Note, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	q := strings.ToLower(input.Query)
	var out []*domain.Note
	for _, n := range r.s.notes {
		if n.OwnerID != input.OwnerID {
			continue
		}
		if input.Category != "" && n.Category != input.Category {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(n.Title), q) && !strings.Contains(strings.ToLower(n.Content), q) {
			continue
		}
		cp := *n
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *NoteRepository) Save(_ context.Context, note *domain.Note) (*domain.Note, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	n := *note
	if n.ID == "" {
		n.ID = uuid.NewString()
		n.CreatedAt = now
	} else {
		existing, ok := r.s.notes[n.ID]
		if !ok {
			return nil, domain.ErrNoteNotFound
		}
		// Owner and creation time are fixed at insert.
		n.OwnerID = existing.OwnerID
		n.CreatedAt = existing.CreatedAt
	}
	n.UpdatedAt = now
	r.s.notes[n.ID] = &n

	out := n
	return &out, nil
}

func (r *NoteRepository) DeleteByID(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.notes[id]; !ok {
		return domain.ErrNoteNotFound
	}
	delete(r.s.notes, id)
	return nil
}
