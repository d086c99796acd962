package usecase

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/ErlanBelekov/notes-api/internal/domain"
)

// CredentialPolicy decides how much the server checks registration input
// beyond presence of every field.
type CredentialPolicy string

const (
	// PolicyStrict requires a local@domain.tld email and a password of at
	// least MinPasswordLen characters with an upper, a lower and a digit.
	PolicyStrict CredentialPolicy = "strict"
	// PolicyLenient leaves format and strength checks to the client.
	PolicyLenient CredentialPolicy = "lenient"

	MinPasswordLen = 8
)

var emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func ParseCredentialPolicy(s string) (CredentialPolicy, error) {
	switch p := CredentialPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicyStrict, PolicyLenient:
		return p, nil
	default:
		return "", fmt.Errorf("unknown credential policy %q", s)
	}
}

func (p CredentialPolicy) Check(name, email, password string) error {
	if strings.TrimSpace(name) == "" {
		return domain.NewValidationError("name", "is required")
	}
	if strings.TrimSpace(email) == "" {
		return domain.NewValidationError("email", "is required")
	}
	if password == "" {
		return domain.NewValidationError("password", "is required")
	}
	if p != PolicyStrict {
		return nil
	}

	if !emailShape.MatchString(email) {
		return domain.NewValidationError("email", "must look like local@domain.tld")
	}
	if len([]rune(password)) < MinPasswordLen {
		return domain.NewValidationError("password", fmt.Sprintf("must be at least %d characters", MinPasswordLen))
	}
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !upper || !lower || !digit {
		return domain.NewValidationError("password", "must contain an uppercase letter, a lowercase letter and a digit")
	}
	return nil
}
