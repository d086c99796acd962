package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/notes-api/internal/domain"
	"github.com/gin-gonic/gin"
)

// respondError maps domain errors onto a status code and a {"message"} body.
// Anything unrecognised is logged and reported as a 500.
func respondError(c *gin.Context, logger *slog.Logger, op string, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"message": verr.Error()})
	case errors.Is(err, domain.ErrDuplicateUser):
		c.JSON(http.StatusBadRequest, gin.H{"message": errDuplicateUser})
	case errors.Is(err, domain.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"message": errInvalidCredentials})
	case errors.Is(err, domain.ErrInvalidNoteID):
		c.JSON(http.StatusBadRequest, gin.H{"message": errInvalidNoteID})
	case errors.Is(err, domain.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"message": errUnauthenticated})
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"message": errForbidden})
	case errors.Is(err, domain.ErrNoteNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": errNoteNotFound})
	default:
		logger.ErrorContext(c.Request.Context(), op, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": errInternalServer})
	}
}
