package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/toyshop-pos/toyshop/internal/shared"
)

// RepositoryPort abstracts account lookups for the service.
type RepositoryPort interface {
	FindByUsername(ctx context.Context, username string) (User, error)
	FindByID(ctx context.Context, id string) (User, error)
}

// Service verifies credentials and issues tokens.
type Service struct {
	repo   RepositoryPort
	tokens *TokenManager
	logger *slog.Logger
}

// NewService constructs the auth service.
func NewService(repo RepositoryPort, tokens *TokenManager, logger *slog.Logger) *Service {
	return &Service{repo: repo, tokens: tokens, logger: logger}
}

// Session is the result of a successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Actor     shared.Actor
	FullName  string
}

// Authenticate checks the username/password pair and issues a token.
// Lookup misses and bad passwords report the same error so login probes
// cannot distinguish unknown users from wrong passwords.
func (s *Service) Authenticate(ctx context.Context, username, password string) (Session, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return Session{}, shared.ErrInvalidCredentials
		}
		return Session{}, err
	}

	if !user.Active {
		return Session{}, shared.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return Session{}, shared.ErrInvalidCredentials
	}

	actor := user.Actor()
	token, expiresAt, err := s.tokens.Issue(actor)
	if err != nil {
		return Session{}, err
	}

	s.logger.Info("user authenticated",
		slog.String("user_id", user.ID),
		slog.String("role", string(user.Role)))

	return Session{Token: token, ExpiresAt: expiresAt, Actor: actor, FullName: user.FullName}, nil
}

// Profile loads the current actor's account details.
func (s *Service) Profile(ctx context.Context, actorID string) (User, error) {
	return s.repo.FindByID(ctx, actorID)
}
