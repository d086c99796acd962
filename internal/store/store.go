// Package store opens the configured persistence backend.
package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ErlanBelekov/notes-api/internal/health"
	"github.com/ErlanBelekov/notes-api/internal/infrastructure/dynamo"
	"github.com/ErlanBelekov/notes-api/internal/infrastructure/memory"
	"github.com/ErlanBelekov/notes-api/internal/infrastructure/postgres"
	"github.com/ErlanBelekov/notes-api/internal/repository"
)

const (
	BackendPostgres = "postgres"
	BackendDynamoDB = "dynamodb"
	BackendMemory   = "memory"
)

type Options struct {
	Backend       string
	DatabaseURL   string
	RunMigrations bool

	DynamoEndpoint string
	DynamoRegion   string
	DynamoTable    string
}

type Backend struct {
	Name  string
	Users repository.UserRepository
	Notes repository.NoteRepository
	Ping  health.Pinger
	close func()
}

func (b *Backend) Close() {
	if b.close != nil {
		b.close()
	}
}

func Open(ctx context.Context, opts Options, logger *slog.Logger) (*Backend, error) {
	logger = logger.With("component", "store", "backend", opts.Backend)

	switch opts.Backend {
	case BackendPostgres:
		pool, err := postgres.NewPool(ctx, opts.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if opts.RunMigrations {
			if err := postgres.Migrate(ctx, pool); err != nil {
				pool.Close()
				return nil, err
			}
			logger.Info("migrations applied")
		}
		return &Backend{
			Name:  BackendPostgres,
			Users: postgres.NewUserRepository(pool),
			Notes: postgres.NewNoteRepository(pool),
			Ping:  pool,
			close: pool.Close,
		}, nil

	case BackendDynamoDB:
		client, err := dynamo.NewClient(ctx, opts.DynamoEndpoint, opts.DynamoRegion)
		if err != nil {
			return nil, err
		}
		s := dynamo.NewStore(client, opts.DynamoTable)
		if opts.DynamoEndpoint != "" {
			if err := s.EnsureTable(ctx); err != nil {
				return nil, err
			}
		}
		if err := s.Ping(ctx); err != nil {
			return nil, err
		}
		return &Backend{Name: BackendDynamoDB, Users: s.Users(), Notes: s.Notes(), Ping: s}, nil

	case BackendMemory:
		logger.Warn("in-memory store: data is lost on restart")
		s := memory.NewStore()
		return &Backend{Name: BackendMemory, Users: s.Users(), Notes: s.Notes(), Ping: s}, nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
}
