package memory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/ErlanBelekov/notes-api/internal/domain"
	"github.com/ErlanBelekov/notes-api/internal/infrastructure/memory"
	"github.com/ErlanBelekov/notes-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsers_SaveAndFind(t *testing.T) {
	ctx := context.Background()
	users := memory.NewStore().Users()

	saved, err := users.Save(ctx, &domain.User{Name: "Ana", Email: "ana@example.com", PasswordHash: "h"})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.False(t, saved.CreatedAt.IsZero())

	byEmail, err := users.FindByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, saved.ID, byEmail.ID)

	byID, err := users.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", byID.Name)

	_, err = users.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = users.FindByEmail(ctx, "ANA@example.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound, "emails are case-sensitive as stored")
}

func TestUsers_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	users := memory.NewStore().Users()

	_, err := users.Save(ctx, &domain.User{Email: "a@example.com"})
	require.NoError(t, err)
	_, err = users.Save(ctx, &domain.User{Email: "a@example.com"})
	assert.ErrorIs(t, err, domain.ErrDuplicateUser)
}

func TestUsers_ConcurrentRegistrationSingleWinner(t *testing.T) {
	ctx := context.Background()
	users := memory.NewStore().Users()

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := users.Save(ctx, &domain.User{Email: "race@example.com"}); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestNotes_OwnerFilterAndSearch(t *testing.T) {
	ctx := context.Background()
	notes := memory.NewStore().Notes()

	mustSave := func(n *domain.Note) *domain.Note {
		saved, err := notes.Save(ctx, n)
		require.NoError(t, err)
		return saved
	}
	mustSave(&domain.Note{OwnerID: "a", Title: "Groceries", Content: "milk", Category: domain.CategoryPersonal})
	mustSave(&domain.Note{OwnerID: "a", Title: "Pitch", Content: "new startup idea", Category: domain.CategoryIdeas})
	mustSave(&domain.Note{OwnerID: "b", Title: "Idea from b", Content: "x", Category: domain.CategoryIdeas})

	all, err := notes.ListByOwner(ctx, repository.ListNotesInput{OwnerID: "a"})
	require.NoError(t, err)
	assert.Len(t, all, 2)
	for _, n := range all {
		assert.Equal(t, "a", n.OwnerID)
	}

	ideas, err := notes.ListByOwner(ctx, repository.ListNotesInput{OwnerID: "a", Category: domain.CategoryIdeas})
	require.NoError(t, err)
	require.Len(t, ideas, 1)
	assert.Equal(t, "Pitch", ideas[0].Title)

	found, err := notes.ListByOwner(ctx, repository.ListNotesInput{OwnerID: "a", Query: "MILK"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Groceries", found[0].Title)
}

func TestNotes_SaveKeepsOwner(t *testing.T) {
	ctx := context.Background()
	notes := memory.NewStore().Notes()

	created, err := notes.Save(ctx, &domain.Note{OwnerID: "a", Title: "t", Content: "c", Category: domain.CategoryPersonal})
	require.NoError(t, err)

	created.OwnerID = "b"
	created.Title = "t2"
	updated, err := notes.Save(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, "a", updated.OwnerID)
	assert.Equal(t, "t2", updated.Title)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
}

func TestNotes_DeleteTwice(t *testing.T) {
	ctx := context.Background()
	notes := memory.NewStore().Notes()

	created, err := notes.Save(ctx, &domain.Note{OwnerID: "a", Title: "t", Content: "c"})
	require.NoError(t, err)

	require.NoError(t, notes.DeleteByID(ctx, created.ID))
	assert.ErrorIs(t, notes.DeleteByID(ctx, created.ID), domain.ErrNoteNotFound)

	_, err = notes.FindByID(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNoteNotFound)
}
