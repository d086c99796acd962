package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/ErlanBelekov/notes-api/internal/domain"
	"github.com/ErlanBelekov/notes-api/internal/identity"
	"github.com/gin-gonic/gin"
)

const (
	errNoToken      = "No token provided"
	errTokenInvalid = "Token is invalid or expired"
)

type tokenVerifier interface {
	Verify(raw string) (*domain.Claims, error)
}

// Auth requires a valid Bearer token and attaches the caller's claims to the
// request context. Both failure modes answer 401; only the log tells them apart.
func Auth(verifier tokenVerifier, logger *slog.Logger) gin.HandlerFunc {
	logger = logger.With("component", "access_guard")

	return func(c *gin.Context) {
		ctx := c.Request.Context()

		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			logger.WarnContext(ctx, "request rejected", "reason", "missing_token", "path", c.FullPath())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": errNoToken})
			return
		}

		claims, err := verifier.Verify(raw)
		if err != nil {
			logger.WarnContext(ctx, "request rejected", "reason", "invalid_token", "path", c.FullPath(), "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": errTokenInvalid})
			return
		}

		c.Request = c.Request.WithContext(identity.WithClaims(ctx, claims))
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, raw, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	raw = strings.TrimSpace(raw)
	return raw, raw != ""
}
