package users

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/toyshop-pos/toyshop/internal/shared"
)

// RepositoryPort abstracts account persistence for the service.
type RepositoryPort interface {
	List(ctx context.Context) ([]User, error)
	Get(ctx context.Context, id string) (User, error)
	Insert(ctx context.Context, u User) error
	Update(ctx context.Context, u User) error
	Delete(ctx context.Context, id string) error
}

// AuditPort records account mutations.
type AuditPort interface {
	Record(ctx context.Context, entry shared.AuditLog) error
}

// Service implements staff account management. All operations are admin-only.
type Service struct {
	repo   RepositoryPort
	audit  AuditPort
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs the users service.
func NewService(repo RepositoryPort, audit AuditPort, logger *slog.Logger) *Service {
	return &Service{repo: repo, audit: audit, logger: logger, now: time.Now}
}

// List returns all accounts.
func (s *Service) List(ctx context.Context, actor shared.Actor) ([]User, error) {
	if !actor.IsAdmin() {
		return nil, shared.ErrForbidden
	}
	return s.repo.List(ctx)
}

// Get returns a single account.
func (s *Service) Get(ctx context.Context, actor shared.Actor, id string) (User, error) {
	if !actor.IsAdmin() {
		return User{}, shared.ErrForbidden
	}
	return s.repo.Get(ctx, id)
}

// Create adds a new account with a bcrypt-hashed password.
func (s *Service) Create(ctx context.Context, actor shared.Actor, input CreateUserInput) (User, error) {
	if !actor.IsAdmin() {
		return User{}, shared.ErrForbidden
	}

	input.Username = strings.TrimSpace(input.Username)
	input.FullName = strings.TrimSpace(input.FullName)
	if input.Username == "" || input.FullName == "" {
		return User{}, shared.ValidationError("username and full name are required")
	}
	if len(input.Password) < 6 {
		return User{}, shared.ValidationError("password must be at least 6 characters")
	}
	if !input.Role.Valid() {
		return User{}, shared.ValidationError("unknown role %q", input.Role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	now := s.now().UTC()
	user := User{
		ID:           uuid.NewString(),
		Username:     input.Username,
		FullName:     input.FullName,
		PasswordHash: string(hash),
		Role:         input.Role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Insert(ctx, user); err != nil {
		return User{}, err
	}

	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor.ID,
		Action:   "user.create",
		Entity:   "user",
		EntityID: user.ID,
		Meta:     map[string]any{"username": user.Username, "role": string(user.Role)},
	}); err != nil {
		s.logger.Warn("audit record failed", slog.Any("error", err))
	}

	return user, nil
}

// Update modifies an account. Only the fields set on input change.
func (s *Service) Update(ctx context.Context, actor shared.Actor, id string, input UpdateUserInput) (User, error) {
	if !actor.IsAdmin() {
		return User{}, shared.ErrForbidden
	}

	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return User{}, err
	}

	if input.FullName != nil {
		name := strings.TrimSpace(*input.FullName)
		if name == "" {
			return User{}, shared.ValidationError("full name cannot be empty")
		}
		user.FullName = name
	}
	if input.Password != nil {
		if len(*input.Password) < 6 {
			return User{}, shared.ValidationError("password must be at least 6 characters")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return User{}, err
		}
		user.PasswordHash = string(hash)
	}
	if input.Role != nil {
		if !input.Role.Valid() {
			return User{}, shared.ValidationError("unknown role %q", *input.Role)
		}
		user.Role = *input.Role
	}
	if input.Active != nil {
		user.Active = *input.Active
	}
	user.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, user); err != nil {
		return User{}, err
	}

	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor.ID,
		Action:   "user.update",
		Entity:   "user",
		EntityID: user.ID,
	}); err != nil {
		s.logger.Warn("audit record failed", slog.Any("error", err))
	}

	return user, nil
}

// Delete removes an account. Admins cannot delete themselves.
func (s *Service) Delete(ctx context.Context, actor shared.Actor, id string) error {
	if !actor.IsAdmin() {
		return shared.ErrForbidden
	}
	if actor.ID == id {
		return shared.ValidationError("cannot delete your own account")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor.ID,
		Action:   "user.delete",
		Entity:   "user",
		EntityID: id,
	}); err != nil {
		s.logger.Warn("audit record failed", slog.Any("error", err))
	}

	return nil
}
