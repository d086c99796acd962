package domain

import (
	"errors"
	"time"
)

var (
	ErrNoteNotFound  = errors.New("note not found")
	ErrForbidden     = errors.New("forbidden")
	ErrInvalidNoteID = errors.New("invalid note id")
)

type Category string

const (
	CategoryPersonal  Category = "Personal"
	CategoryWork      Category = "Trabajo"
	CategoryIdeas     Category = "Ideas"
	CategoryReminders Category = "Recordatorios"

	DefaultCategory = CategoryPersonal
)

var categories = []Category{CategoryPersonal, CategoryWork, CategoryIdeas, CategoryReminders}

func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

func (c Category) Valid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

type Note struct {
	ID        string
	OwnerID   string // set at creation, never changed
	Title     string
	Content   string
	Category  Category
	CreatedAt time.Time
	UpdatedAt time.Time
}
