// seed creates a demo user and a handful of notes in the configured store.
// Run: go run ./cmd/seed
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/ErlanBelekov/notes-api/config"
	"github.com/ErlanBelekov/notes-api/internal/domain"
	"github.com/ErlanBelekov/notes-api/internal/email"
	"github.com/ErlanBelekov/notes-api/internal/password"
	"github.com/ErlanBelekov/notes-api/internal/store"
	"github.com/ErlanBelekov/notes-api/internal/token"
	"github.com/ErlanBelekov/notes-api/internal/usecase"
)

const (
	seedName     = "Demo"
	seedEmail    = "demo@notes.local"
	seedPassword = "Demo12345"
)

var notes = []usecase.CreateNoteInput{
	{Title: "Bienvenido", Content: "Esta es tu primera nota.", Category: "Personal"},
	{Title: "Reunión semanal", Content: "Preparar la demo del viernes.", Category: "Trabajo"},
	{Title: "App de recetas", Content: "Buscar recetas por ingredientes disponibles.", Category: "Ideas"},
	{Title: "Comprar leche", Content: "Y pan.", Category: "Recordatorios"},
	{Title: "Libros", Content: "Terminar el capítulo 4.", Category: "Personal"},
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	backend, err := store.Open(ctx, store.Options{
		Backend:        cfg.StoreBackend,
		DatabaseURL:    cfg.DatabaseURL,
		RunMigrations:  cfg.RunMigrations,
		DynamoEndpoint: cfg.DynamoEndpoint,
		DynamoRegion:   cfg.DynamoRegion,
		DynamoTable:    cfg.DynamoTable,
	}, logger)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer backend.Close()

	tokens, err := token.NewService([]byte(cfg.JWTSecret), cfg.TokenTTL)
	if err != nil {
		log.Fatalf("token service: %v", err)
	}
	auth, err := usecase.NewAuthUsecase(backend.Users, password.NewHasher(cfg.BcryptCost), tokens,
		email.NewSender("local", "", "", logger), usecase.PolicyStrict, logger)
	if err != nil {
		log.Fatalf("auth usecase: %v", err)
	}

	_, err = auth.Register(ctx, usecase.RegisterInput{Name: seedName, Email: seedEmail, Password: seedPassword})
	switch {
	case errors.Is(err, domain.ErrDuplicateUser):
		fmt.Printf("user %s already exists\n", seedEmail)
	case err != nil:
		log.Fatalf("register: %v", err)
	}

	login, err := auth.Login(ctx, seedEmail, seedPassword)
	if err != nil {
		log.Fatalf("login: %v", err)
	}

	noteUsecase := usecase.NewNoteUsecase(backend.Notes)
	for _, n := range notes {
		n.OwnerID = login.User.ID
		created, err := noteUsecase.CreateNote(ctx, n)
		if err != nil {
			log.Fatalf("create note %q: %v", n.Title, err)
		}
		fmt.Printf("note %s [%s] %s\n", created.ID, created.Category, created.Title)
	}

	fmt.Printf("\nlogin as %s / %s\ntoken: %s\n", seedEmail, seedPassword, login.Token)
}
