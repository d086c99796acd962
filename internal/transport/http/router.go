package httptransport

import (
	"fmt"
	"log/slog"

	"github.com/ErlanBelekov/notes-api/internal/domain"
	"github.com/ErlanBelekov/notes-api/internal/transport/http/handler"
	"github.com/ErlanBelekov/notes-api/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"

	sloggin "github.com/samber/slog-gin"
)

type tokenVerifier interface {
	Verify(raw string) (*domain.Claims, error)
}

type RouterConfig struct {
	CORSOrigins []string
	// TrustedProxies may set X-Forwarded-For; nil trusts none.
	TrustedProxies []string
	// LoginLimiter throttles /api/auth per client IP; nil disables it.
	LoginLimiter *middleware.IPRateLimiter
}

func NewRouter(logger *slog.Logger, cfg RouterConfig, authHandler *handler.AuthHandler, noteHandler *handler.NoteHandler, tokens tokenVerifier) (*gin.Engine, error) {
	r := gin.New()
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())

	api := r.Group("/api")
	api.GET("/health", handler.Health)

	auth := api.Group("/auth", middleware.RateLimit(cfg.LoginLimiter))
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	notes := api.Group("/notes", middleware.Auth(tokens, logger))
	notes.GET("", noteHandler.List)
	notes.POST("", noteHandler.Create)
	notes.PUT("/:id", noteHandler.Update)
	notes.DELETE("/:id", noteHandler.Delete)

	return r, nil
}
