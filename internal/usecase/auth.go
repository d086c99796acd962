package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ErlanBelekov/notes-api/internal/domain"
	"github.com/ErlanBelekov/notes-api/internal/email"
	"github.com/ErlanBelekov/notes-api/internal/metrics"
	"github.com/ErlanBelekov/notes-api/internal/repository"
)

type passwordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

type tokenIssuer interface {
	Issue(userID, email string) (string, error)
}

type AuthUsecase struct {
	users     repository.UserRepository
	hasher    passwordHasher
	tokens    tokenIssuer
	email     email.Sender
	policy    CredentialPolicy
	logger    *slog.Logger
	dummyHash string
}

func NewAuthUsecase(users repository.UserRepository, hasher passwordHasher, tokens tokenIssuer, emailSender email.Sender, policy CredentialPolicy, logger *slog.Logger) (*AuthUsecase, error) {
	// Compared against on unknown emails so both login failures cost one hash check.
	dummy, err := hasher.Hash("timing-equalizer")
	if err != nil {
		return nil, fmt.Errorf("precompute login hash: %w", err)
	}

	return &AuthUsecase{
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		email:     emailSender,
		policy:    policy,
		logger:    logger.With("component", "auth_usecase"),
		dummyHash: dummy,
	}, nil
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type LoginResult struct {
	Token string
	User  domain.UserSummary
}

// Register creates a user. No token is issued; the client logs in afterwards.
func (u *AuthUsecase) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)

	if err := u.policy.Check(input.Name, input.Email, input.Password); err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("register", "invalid").Inc()
		return nil, err
	}

	_, err := u.users.FindByEmail(ctx, input.Email)
	switch {
	case err == nil:
		metrics.AuthAttemptsTotal.WithLabelValues("register", "duplicate").Inc()
		return nil, domain.ErrDuplicateUser
	case !errors.Is(err, domain.ErrUserNotFound):
		metrics.AuthAttemptsTotal.WithLabelValues("register", "error").Inc()
		return nil, fmt.Errorf("find user: %w", err)
	}

	hash, err := u.hasher.Hash(input.Password)
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("register", "error").Inc()
		return nil, err
	}

	user, err := u.users.Save(ctx, &domain.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateUser) {
			metrics.AuthAttemptsTotal.WithLabelValues("register", "duplicate").Inc()
			return nil, domain.ErrDuplicateUser
		}
		metrics.AuthAttemptsTotal.WithLabelValues("register", "error").Inc()
		return nil, fmt.Errorf("save user: %w", err)
	}
	metrics.AuthAttemptsTotal.WithLabelValues("register", "success").Inc()

	if err := u.sendWelcome(ctx, user); err != nil {
		u.logger.WarnContext(ctx, "welcome email", "user_id", user.ID, "error", err)
	}
	return user, nil
}

// Login returns domain.ErrInvalidCredentials for both an unknown email and a
// wrong password so callers cannot tell which one it was.
func (u *AuthUsecase) Login(ctx context.Context, emailAddr, password string) (*LoginResult, error) {
	emailAddr = strings.TrimSpace(emailAddr)

	user, err := u.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			u.hasher.Verify(password, u.dummyHash)
			metrics.AuthAttemptsTotal.WithLabelValues("login", "invalid").Inc()
			return nil, domain.ErrInvalidCredentials
		}
		metrics.AuthAttemptsTotal.WithLabelValues("login", "error").Inc()
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !u.hasher.Verify(password, user.PasswordHash) {
		metrics.AuthAttemptsTotal.WithLabelValues("login", "invalid").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	signed, err := u.tokens.Issue(user.ID, user.Email)
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("login", "error").Inc()
		return nil, err
	}
	metrics.AuthAttemptsTotal.WithLabelValues("login", "success").Inc()

	return &LoginResult{Token: signed, User: user.Summary()}, nil
}

func (u *AuthUsecase) sendWelcome(ctx context.Context, user *domain.User) error {
	subject, body := email.Welcome(user.Name, user.Email)
	return u.email.Send(ctx, user.Email, subject, body)
}
