package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/ErlanBelekov/notes-api/internal/domain"
	"github.com/ErlanBelekov/notes-api/internal/identity"
	"github.com/ErlanBelekov/notes-api/internal/usecase"
	"github.com/gin-gonic/gin"
)

type noteUsecaser interface {
	CreateNote(ctx context.Context, input usecase.CreateNoteInput) (*domain.Note, error)
	ListNotes(ctx context.Context, input usecase.ListNotesInput) ([]*domain.Note, error)
	UpdateNote(ctx context.Context, noteID, userID string, input usecase.UpdateNoteInput) (*domain.Note, error)
	DeleteNote(ctx context.Context, noteID, userID string) error
}

type NoteHandler struct {
	noteUsecase noteUsecaser
	logger      *slog.Logger
}

func NewNoteHandler(noteUsecase noteUsecaser, logger *slog.Logger) *NoteHandler {
	return &NoteHandler{noteUsecase: noteUsecase, logger: logger.With("component", "note_handler")}
}

type noteRequest struct {
	Title    string `json:"titulo"`
	Content  string `json:"contenido"`
	Category string `json:"categoria"`
}

type noteResponse struct {
	ID        string          `json:"_id"`
	Title     string          `json:"titulo"`
	Content   string          `json:"contenido"`
	Category  domain.Category `json:"categoria"`
	OwnerID   string          `json:"usuario"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func toNoteResponse(n *domain.Note) noteResponse {
	return noteResponse{
		ID:        n.ID,
		Title:     n.Title,
		Content:   n.Content,
		Category:  n.Category,
		OwnerID:   n.OwnerID,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

// GET /api/notes?categoria=&q=
func (h *NoteHandler) List(c *gin.Context) {
	notes, err := h.noteUsecase.ListNotes(c.Request.Context(), usecase.ListNotesInput{
		OwnerID:  identity.UserID(c.Request.Context()),
		Category: c.Query("categoria"),
		Query:    c.Query("q"),
	})
	if err != nil {
		respondError(c, h.logger, "list notes", err)
		return
	}

	resp := make([]noteResponse, 0, len(notes))
	for _, n := range notes {
		resp = append(resp, toNoteResponse(n))
	}
	c.JSON(http.StatusOK, resp)
}

// POST /api/notes
func (h *NoteHandler) Create(c *gin.Context) {
	var req noteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": errInvalidBody})
		return
	}

	note, err := h.noteUsecase.CreateNote(c.Request.Context(), usecase.CreateNoteInput{
		OwnerID:  identity.UserID(c.Request.Context()),
		Title:    req.Title,
		Content:  req.Content,
		Category: req.Category,
	})
	if err != nil {
		respondError(c, h.logger, "create note", err)
		return
	}

	c.JSON(http.StatusCreated, toNoteResponse(note))
}

// PUT /api/notes/:id
func (h *NoteHandler) Update(c *gin.Context) {
	var req noteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": errInvalidBody})
		return
	}

	noteID := c.Param("id")
	note, err := h.noteUsecase.UpdateNote(c.Request.Context(), noteID, identity.UserID(c.Request.Context()), usecase.UpdateNoteInput{
		Title:    req.Title,
		Content:  req.Content,
		Category: req.Category,
	})
	if err != nil {
		respondError(c, h.logger, "update note", err)
		return
	}

	c.JSON(http.StatusOK, toNoteResponse(note))
}

// DELETE /api/notes/:id
func (h *NoteHandler) Delete(c *gin.Context) {
	noteID := c.Param("id")
	if err := h.noteUsecase.DeleteNote(c.Request.Context(), noteID, identity.UserID(c.Request.Context())); err != nil {
		respondError(c, h.logger, "delete note", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": msgNoteDeleted})
}
