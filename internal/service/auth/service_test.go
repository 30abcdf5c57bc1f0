package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/MahmoudOsama9/Fullstack-TaskMaster/internal/apperr"
	"github.com/MahmoudOsama9/Fullstack-TaskMaster/internal/domain"
	"github.com/MahmoudOsama9/Fullstack-TaskMaster/internal/repository"
	"github.com/MahmoudOsama9/Fullstack-TaskMaster/pkg/config"
)

type memoryUserRepo struct {
	users  map[string]*domain.User
	nextID int64
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[string]*domain.User), nextID: 1}
}

func (m *memoryUserRepo) CreateUser(ctx context.Context, user *domain.User) error {
	if _, ok := m.users[user.Email]; ok {
		return repository.ErrConflict
	}
	user.ID = m.nextID
	m.nextID++
	clone := *user
	m.users[user.Email] = &clone
	return nil
}

func (m *memoryUserRepo) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, ok := m.users[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (m *memoryUserRepo) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	for _, user := range m.users {
		if user.ID == id {
			clone := *user
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func newTestService() (Service, *memoryUserRepo) {
	repo := newMemoryUserRepo()
	cfg := config.APIConfig{
		JWTSecret:       "test-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(repo, logger, cfg), repo
}

func TestSignupNormalizesEmailAndIssuesTokens(t *testing.T) {
	svc, _ := newTestService()

	user, tokens, err := svc.Signup(context.Background(), "Ada", "Ada@Example.COM", "longenough")
	if err != nil {
		t.Fatalf("Signup returned error: %v", err)
	}
	if user.Email != "ada@example.com" {
		t.Fatalf("expected lowercased email, got %q", user.Email)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Fatal("expected both tokens to be issued")
	}
}

func TestSignupRejectsShortPassword(t *testing.T) {
	svc, repo := newTestService()

	_, _, err := svc.Signup(context.Background(), "Ada", "ada@example.com", "short")
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if len(repo.users) != 0 {
		t.Fatal("expected no user to be stored")
	}
}

func TestSignupDuplicateEmailIsConflict(t *testing.T) {
	svc, _ := newTestService()
	if _, _, err := svc.Signup(context.Background(), "Ada", "ada@example.com", "longenough"); err != nil {
		t.Fatalf("first Signup returned error: %v", err)
	}

	_, _, err := svc.Signup(context.Background(), "Other", "ada@example.com", "longenough")
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestLoginUnknownEmailAndWrongPasswordLookAlike(t *testing.T) {
	svc, _ := newTestService()
	if _, _, err := svc.Signup(context.Background(), "Ada", "ada@example.com", "longenough"); err != nil {
		t.Fatalf("Signup returned error: %v", err)
	}

	_, _, unknownErr := svc.Login(context.Background(), "nobody@example.com", "longenough")
	_, _, wrongErr := svc.Login(context.Background(), "ada@example.com", "wrongpassword")

	if !errors.Is(unknownErr, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", unknownErr)
	}
	if !errors.Is(wrongErr, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", wrongErr)
	}
}

func TestLoginSucceedsWithCorrectPassword(t *testing.T) {
	svc, _ := newTestService()
	if _, _, err := svc.Signup(context.Background(), "Ada", "ada@example.com", "longenough"); err != nil {
		t.Fatalf("Signup returned error: %v", err)
	}

	user, tokens, err := svc.Login(context.Background(), "Ada@Example.com", "longenough")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if user.Email != "ada@example.com" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if tokens.AccessToken == "" {
		t.Fatal("expected access token")
	}
}

func TestAuthorizeRoundTrip(t *testing.T) {
	svc, _ := newTestService()
	signedUp, tokens, err := svc.Signup(context.Background(), "Ada", "ada@example.com", "longenough")
	if err != nil {
		t.Fatalf("Signup returned error: %v", err)
	}

	user, claims, err := svc.Authorize(context.Background(), tokens.AccessToken)
	if err != nil {
		t.Fatalf("Authorize returned error: %v", err)
	}
	if user.ID != signedUp.ID {
		t.Fatalf("expected user %d, got %d", signedUp.ID, user.ID)
	}
	if claims.Email != "ada@example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestAuthorizeRejectsGarbageToken(t *testing.T) {
	svc, _ := newTestService()
	if _, _, err := svc.Authorize(context.Background(), "not-a-token"); err == nil {
		t.Fatal("expected error for malformed token")
	}
	if _, _, err := svc.Authorize(context.Background(), "  "); err == nil {
		t.Fatal("expected error for blank token")
	}
}

func TestAuthorizeRejectsTokenSignedWithOtherSecret(t *testing.T) {
	svc, repo := newTestService()
	if _, _, err := svc.Signup(context.Background(), "Ada", "ada@example.com", "longenough"); err != nil {
		t.Fatalf("Signup returned error: %v", err)
	}

	otherCfg := config.APIConfig{JWTSecret: "other-secret", AccessTokenTTL: time.Minute, RefreshTokenTTL: time.Hour}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	other := New(repo, logger, otherCfg)
	_, tokens, err := other.Login(context.Background(), "ada@example.com", "longenough")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	if _, _, err := svc.Authorize(context.Background(), tokens.AccessToken); err == nil {
		t.Fatal("expected signature mismatch to fail authorization")
	}
}
