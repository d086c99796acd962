package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ErlanBelekov/notes-api/config"
	"github.com/ErlanBelekov/notes-api/internal/email"
	"github.com/ErlanBelekov/notes-api/internal/health"
	ctxlog "github.com/ErlanBelekov/notes-api/internal/log"
	"github.com/ErlanBelekov/notes-api/internal/metrics"
	"github.com/ErlanBelekov/notes-api/internal/password"
	"github.com/ErlanBelekov/notes-api/internal/store"
	"github.com/ErlanBelekov/notes-api/internal/token"
	httptransport "github.com/ErlanBelekov/notes-api/internal/transport/http"
	"github.com/ErlanBelekov/notes-api/internal/transport/http/handler"
	"github.com/ErlanBelekov/notes-api/internal/transport/http/middleware"
	"github.com/ErlanBelekov/notes-api/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if !cfg.IsLocal() {
		gin.SetMode(gin.ReleaseMode)
	}

	tokens, err := token.NewService([]byte(cfg.JWTSecret), cfg.TokenTTL)
	if err != nil {
		log.Fatalf("token service: %v", err)
	}
	policy, err := usecase.ParseCredentialPolicy(cfg.CredentialPolicy)
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	backend, err := store.Open(ctx, storeOptions(cfg), logger)
	if err != nil {
		stop()
		log.Fatalf("store: %v", err)
	}
	defer backend.Close()

	// Auth
	sender := email.NewSender(cfg.Env, cfg.ResendAPIKey, cfg.ResendFrom, logger)
	authUsecase, err := usecase.NewAuthUsecase(backend.Users, password.NewHasher(cfg.BcryptCost), tokens, sender, policy, logger)
	if err != nil {
		stop()
		log.Fatalf("auth usecase: %v", err)
	}
	authHandler := handler.NewAuthHandler(authUsecase, logger)

	// Notes
	noteUsecase := usecase.NewNoteUsecase(backend.Notes)
	noteHandler := handler.NewNoteHandler(noteUsecase, logger)

	routerCfg := httptransport.RouterConfig{CORSOrigins: cfg.CORSOrigins, TrustedProxies: cfg.TrustedProxies}
	if cfg.LoginRatePerMin > 0 {
		routerCfg.LoginLimiter = middleware.NewIPRateLimiter(cfg.LoginRatePerMin)
	}

	metrics.Register()
	checker := health.NewChecker(backend.Name, backend.Ping, logger, prometheus.DefaultRegisterer)

	router, err := httptransport.NewRouter(logger, routerCfg, authHandler, noteHandler, tokens)
	if err != nil {
		stop()
		log.Fatalf("router: %v", err)
	}

	srv := http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go func() {
		logger.Info("server started", "port", cfg.Port, "store", backend.Name, "credential_policy", string(policy))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}

func storeOptions(cfg *config.Config) store.Options {
	return store.Options{
		Backend:        cfg.StoreBackend,
		DatabaseURL:    cfg.DatabaseURL,
		RunMigrations:  cfg.RunMigrations,
		DynamoEndpoint: cfg.DynamoEndpoint,
		DynamoRegion:   cfg.DynamoRegion,
		DynamoTable:    cfg.DynamoTable,
	}
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
