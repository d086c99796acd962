package usecase_test

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/ErlanBelekov/notes-api/internal/domain"
	"github.com/ErlanBelekov/notes-api/internal/infrastructure/memory"
	"github.com/ErlanBelekov/notes-api/internal/password"
	"github.com/ErlanBelekov/notes-api/internal/token"
	"github.com/ErlanBelekov/notes-api/internal/usecase"
	"golang.org/x/crypto/bcrypt"
)

// ---- fakes ----

type fakeUserRepo struct {
	findByEmail func(ctx context.Context, email string) (*domain.User, error)
	findByID    func(ctx context.Context, id string) (*domain.User, error)
	save        func(ctx context.Context, user *domain.User) (*domain.User, error)
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findByEmail(ctx, email)
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findByID(ctx, id)
}

func (r *fakeUserRepo) Save(ctx context.Context, user *domain.User) (*domain.User, error) {
	return r.save(ctx, user)
}

type fakeHasher struct{}

func (fakeHasher) Hash(p string) (string, error) { return "hashed:" + p, nil }
func (fakeHasher) Verify(p, hash string) bool    { return hash == "hashed:"+p }

type fakeTokens struct {
	issue func(userID, email string) (string, error)
}

func (f *fakeTokens) Issue(userID, email string) (string, error) { return f.issue(userID, email) }

type fakeEmailSender struct {
	sent []string
	err  error
}

func (s *fakeEmailSender) Send(_ context.Context, to, _, _ string) error {
	s.sent = append(s.sent, to)
	return s.err
}

// ---- helpers ----

const testJWTKey = "test-jwt-secret-at-least-32-chars!!"

var okTokens = &fakeTokens{issue: func(string, string) (string, error) { return "signed.jwt.token", nil }}

func newUsecase(t *testing.T, repo *fakeUserRepo, sender *fakeEmailSender, policy usecase.CredentialPolicy) *usecase.AuthUsecase {
	t.Helper()
	if sender == nil {
		sender = &fakeEmailSender{}
	}
	uc, err := usecase.NewAuthUsecase(repo, fakeHasher{}, okTokens, sender, policy, slog.Default())
	if err != nil {
		t.Fatalf("new auth usecase: %v", err)
	}
	return uc
}

var testUser = &domain.User{ID: "user-1", Name: "Test", Email: "test@example.com", PasswordHash: "hashed:Secret123"}

func notFoundRepo() *fakeUserRepo {
	return &fakeUserRepo{
		findByEmail: func(context.Context, string) (*domain.User, error) { return nil, domain.ErrUserNotFound },
		save: func(_ context.Context, u *domain.User) (*domain.User, error) {
			cp := *u
			cp.ID = "new-id"
			return &cp, nil
		},
	}
}

// ---- Register ----

func TestRegister_StoresHashNotPlaintext(t *testing.T) {
	var saved *domain.User
	repo := notFoundRepo()
	inner := repo.save
	repo.save = func(ctx context.Context, u *domain.User) (*domain.User, error) {
		saved = u
		return inner(ctx, u)
	}

	user, err := newUsecase(t, repo, nil, usecase.PolicyStrict).Register(context.Background(), usecase.RegisterInput{
		Name: " Ana ", Email: "ana@example.com", Password: "Secret123",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != "new-id" {
		t.Errorf("id = %q", user.ID)
	}
	if saved.PasswordHash != "hashed:Secret123" {
		t.Errorf("stored hash = %q", saved.PasswordHash)
	}
	if saved.Name != "Ana" {
		t.Errorf("name not trimmed: %q", saved.Name)
	}
}

func TestRegister_DuplicateEmail_NoSave(t *testing.T) {
	saveCalled := false
	repo := &fakeUserRepo{
		findByEmail: func(context.Context, string) (*domain.User, error) { return testUser, nil },
		save: func(context.Context, *domain.User) (*domain.User, error) {
			saveCalled = true
			return nil, nil
		},
	}

	_, err := newUsecase(t, repo, nil, usecase.PolicyLenient).Register(context.Background(), usecase.RegisterInput{
		Name: "x", Email: testUser.Email, Password: "pw",
	})
	if !errors.Is(err, domain.ErrDuplicateUser) {
		t.Fatalf("want ErrDuplicateUser, got %v", err)
	}
	if saveCalled {
		t.Error("save must not be called for a duplicate email")
	}
}

func TestRegister_SaveRaceReportsDuplicate(t *testing.T) {
	repo := notFoundRepo()
	repo.save = func(context.Context, *domain.User) (*domain.User, error) { return nil, domain.ErrDuplicateUser }

	_, err := newUsecase(t, repo, nil, usecase.PolicyLenient).Register(context.Background(), usecase.RegisterInput{
		Name: "x", Email: "a@example.com", Password: "pw",
	})
	if !errors.Is(err, domain.ErrDuplicateUser) {
		t.Fatalf("want ErrDuplicateUser, got %v", err)
	}
}

func TestRegister_RepoError_Propagates(t *testing.T) {
	repoErr := errors.New("db down")
	repo := &fakeUserRepo{
		findByEmail: func(context.Context, string) (*domain.User, error) { return nil, repoErr },
	}

	_, err := newUsecase(t, repo, nil, usecase.PolicyLenient).Register(context.Background(), usecase.RegisterInput{
		Name: "x", Email: "a@example.com", Password: "pw",
	})
	if !errors.Is(err, repoErr) {
		t.Errorf("want wrapped repoErr, got %v", err)
	}
}

func TestRegister_StrictPolicyRejectsWeakPassword(t *testing.T) {
	_, err := newUsecase(t, notFoundRepo(), nil, usecase.PolicyStrict).Register(context.Background(), usecase.RegisterInput{
		Name: "x", Email: "a@example.com", Password: "weak",
	})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) || verr.Field != "password" {
		t.Fatalf("want password ValidationError, got %v", err)
	}
}

func TestRegister_LenientPolicyAcceptsWeakPassword(t *testing.T) {
	_, err := newUsecase(t, notFoundRepo(), nil, usecase.PolicyLenient).Register(context.Background(), usecase.RegisterInput{
		Name: "x", Email: "not-an-email", Password: "weak",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRegister_SendsWelcomeEmail_FailureIsNotFatal(t *testing.T) {
	sender := &fakeEmailSender{err: errors.New("smtp unavailable")}

	_, err := newUsecase(t, notFoundRepo(), sender, usecase.PolicyLenient).Register(context.Background(), usecase.RegisterInput{
		Name: "x", Email: "a@example.com", Password: "pw",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.sent) != 1 || sender.sent[0] != "a@example.com" {
		t.Errorf("sent = %v", sender.sent)
	}
}

// ---- Login ----

func TestLogin_Success_ReturnsTokenAndSummary(t *testing.T) {
	var issuedFor string
	tokens := &fakeTokens{issue: func(userID, email string) (string, error) {
		issuedFor = userID + "|" + email
		return "signed", nil
	}}
	repo := &fakeUserRepo{
		findByEmail: func(context.Context, string) (*domain.User, error) { return testUser, nil },
	}
	uc, err := usecase.NewAuthUsecase(repo, fakeHasher{}, tokens, &fakeEmailSender{}, usecase.PolicyStrict, slog.Default())
	if err != nil {
		t.Fatal(err)
	}

	res, err := uc.Login(context.Background(), testUser.Email, "Secret123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Token != "signed" {
		t.Errorf("token = %q", res.Token)
	}
	if issuedFor != "user-1|test@example.com" {
		t.Errorf("issued for %q", issuedFor)
	}
	if res.User != (domain.UserSummary{ID: "user-1", Name: "Test", Email: "test@example.com"}) {
		t.Errorf("user = %+v", res.User)
	}
}

func TestLogin_UnknownEmailAndWrongPasswordAreIndistinguishable(t *testing.T) {
	repo := &fakeUserRepo{
		findByEmail: func(_ context.Context, email string) (*domain.User, error) {
			if email == testUser.Email {
				return testUser, nil
			}
			return nil, domain.ErrUserNotFound
		},
	}
	uc := newUsecase(t, repo, nil, usecase.PolicyStrict)

	_, errUnknown := uc.Login(context.Background(), "nobody@example.com", "Secret123")
	_, errWrong := uc.Login(context.Background(), testUser.Email, "Wrong1234")

	if !errors.Is(errUnknown, domain.ErrInvalidCredentials) || !errors.Is(errWrong, domain.ErrInvalidCredentials) {
		t.Fatalf("want ErrInvalidCredentials for both, got %v / %v", errUnknown, errWrong)
	}
	if errUnknown.Error() != errWrong.Error() {
		t.Errorf("messages differ: %q vs %q", errUnknown, errWrong)
	}
}

func TestLogin_RepoError_IsNotInvalidCredentials(t *testing.T) {
	repoErr := errors.New("db down")
	repo := &fakeUserRepo{
		findByEmail: func(context.Context, string) (*domain.User, error) { return nil, repoErr },
	}

	_, err := newUsecase(t, repo, nil, usecase.PolicyStrict).Login(context.Background(), "a@example.com", "pw")
	if !errors.Is(err, repoErr) || errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("want wrapped repoErr, got %v", err)
	}
}

// ---- end to end with real hasher, token service and memory store ----

func TestRegisterThenLogin_TokenVerifies(t *testing.T) {
	ctx := context.Background()
	tokens, err := token.NewService([]byte(testJWTKey), token.DefaultTTL)
	if err != nil {
		t.Fatal(err)
	}
	uc, err := usecase.NewAuthUsecase(memory.NewStore().Users(), password.NewHasher(bcrypt.MinCost), tokens,
		&fakeEmailSender{}, usecase.PolicyStrict, slog.Default())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := uc.Register(ctx, usecase.RegisterInput{Name: "Ana", Email: "ana@example.com", Password: "Secret123"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := uc.Register(ctx, usecase.RegisterInput{Name: "Ana2", Email: "ana@example.com", Password: "Secret123"}); !errors.Is(err, domain.ErrDuplicateUser) {
		t.Fatalf("second register: want ErrDuplicateUser, got %v", err)
	}

	res, err := uc.Login(ctx, "ana@example.com", "Secret123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := tokens.Verify(res.Token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != res.User.ID || claims.Email != "ana@example.com" {
		t.Errorf("claims = %+v, user = %+v", claims, res.User)
	}
	if strings.Count(res.Token, ".") != 2 {
		t.Errorf("token %q is not a JWS compact string", res.Token)
	}
}

type failingHasher struct{ fakeHasher }

func (failingHasher) Hash(string) (string, error) { return "", errors.New("rng exhausted") }

func TestNewAuthUsecase_HasherFailureIsReported(t *testing.T) {
	_, err := usecase.NewAuthUsecase(notFoundRepo(), failingHasher{}, okTokens, &fakeEmailSender{}, usecase.PolicyStrict, slog.Default())
	if err == nil {
		t.Fatal("want error when the login hash cannot be precomputed")
	}
}

type countingHasher struct {
	fakeHasher
	verifies int
}

func (h *countingHasher) Verify(p, hash string) bool {
	h.verifies++
	return h.fakeHasher.Verify(p, hash)
}

func TestLogin_UnknownEmailStillComparesAHash(t *testing.T) {
	hasher := &countingHasher{}
	uc, err := usecase.NewAuthUsecase(notFoundRepo(), hasher, okTokens, &fakeEmailSender{}, usecase.PolicyStrict, slog.Default())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := uc.Login(context.Background(), "ghost@example.com", "Secret123"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("want ErrInvalidCredentials, got %v", err)
	}
	if hasher.verifies != 1 {
		t.Errorf("verify called %d times, want 1", hasher.verifies)
	}
}
