package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/ErlanBelekov/notes-api/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

const DefaultTTL = time.Hour

// MinSecretLen is the shortest signing key the service accepts.
const MinSecretLen = 32

var ErrWeakSecret = errors.New("jwt secret must be at least 32 bytes")

// claims is the wire payload: {id, email, iat, exp}.
type claims struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Service issues and verifies HS256 bearer tokens. There is no revocation:
// a token stays valid until exp.
type Service struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

type Option func(*Service)

// WithClock overrides the time source used for iat, exp and verification.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(secret []byte, ttl time.Duration, opts ...Option) (*Service, error) {
	if len(secret) < MinSecretLen {
		return nil, ErrWeakSecret
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s := &Service{key: secret, ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Service) TTL() time.Duration { return s.ttl }

func (s *Service) Issue(userID, email string) (string, error) {
	now := s.now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	})
	signed, err := t.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign jwt: %w", err)
	}
	return signed, nil
}

// Verify returns domain.ErrTokenInvalid for any bad signature, unexpected
// algorithm, malformed token, missing identity, or expiry at or after exp.
func (s *Service) Verify(raw string) (*domain.Claims, error) {
	var c claims
	t, err := jwt.ParseWithClaims(raw, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !t.Valid {
		return nil, domain.ErrTokenInvalid
	}
	if c.UserID == "" {
		return nil, domain.ErrTokenInvalid
	}

	out := &domain.Claims{
		UserID:    c.UserID,
		Email:     c.Email,
		ExpiresAt: c.ExpiresAt.Time,
	}
	if c.IssuedAt != nil {
		out.IssuedAt = c.IssuedAt.Time
	}
	return out, nil
}
