package users

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/vitrine-cms/vitrine/internal/authz"
	"github.com/vitrine-cms/vitrine/internal/shared"
)

// RepositoryPort defines data access methods for user management.
type RepositoryPort interface {
	ListUsers(ctx context.Context) ([]User, error)
	GetUser(ctx context.Context, id string) (User, error)
	CreateUser(ctx context.Context, email, name, passwordHash string, role authz.Role) (User, error)
	UpdateUser(ctx context.Context, id, name string, role authz.Role, isActive bool) (User, error)
	DeactivateUser(ctx context.Context, id string) error
	DeleteUser(ctx context.Context, id string) error
	HasAuditReferences(ctx context.Context, id string) (bool, error)
}

// AuditRecorder writes audit entries without blocking the caller.
type AuditRecorder interface {
	TryRecord(ctx context.Context, log shared.AuditLog)
}

// Service handles user management business logic.
type Service struct {
	repo  RepositoryPort
	audit AuditRecorder
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, audit AuditRecorder) *Service {
	return &Service{repo: repo, audit: audit}
}

// CreateParams carries the fields accepted when creating an account.
type CreateParams struct {
	Email    string
	Name     string
	Password string
	Role     authz.Role
}

// ListUsers returns all accounts.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.ListUsers(ctx)
}

// GetUser returns one account.
func (s *Service) GetUser(ctx context.Context, id string) (User, error) {
	return s.repo.GetUser(ctx, id)
}

// CreateUser creates an account. Accounts default to the EDITOR role when
// none is given, matching first-login provisioning.
func (s *Service) CreateUser(ctx context.Context, actor *authz.Principal, params CreateParams) (User, error) {
	role := params.Role
	if role == "" {
		role = authz.RoleEditor
	}
	if !role.Valid() {
		return User{}, fmt.Errorf("users: invalid role %q", params.Role)
	}
	var hash string
	if params.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
		if err != nil {
			return User{}, fmt.Errorf("users: hash password: %w", err)
		}
		hash = string(hashed)
	}
	user, err := s.repo.CreateUser(ctx, params.Email, strings.TrimSpace(params.Name), hash, role)
	if err != nil {
		return User{}, err
	}
	s.record(ctx, actor, "users.create", user.ID, map[string]any{"email": user.Email, "role": user.Role})
	return user, nil
}

// UpdateUser updates an account's name, role and active flag.
func (s *Service) UpdateUser(ctx context.Context, actor *authz.Principal, id, name string, role authz.Role, isActive bool) (User, error) {
	if !role.Valid() {
		return User{}, fmt.Errorf("users: invalid role %q", role)
	}
	user, err := s.repo.UpdateUser(ctx, id, strings.TrimSpace(name), role, isActive)
	if err != nil {
		return User{}, err
	}
	s.record(ctx, actor, "users.update", user.ID, map[string]any{"role": user.Role, "isActive": user.IsActive})
	return user, nil
}

// DeleteUser removes an account. Accounts referenced by audit records are
// never hard-deleted; they are deactivated so the audit trail keeps a valid
// actor.
func (s *Service) DeleteUser(ctx context.Context, actor *authz.Principal, id string) error {
	referenced, err := s.repo.HasAuditReferences(ctx, id)
	if err != nil {
		return err
	}
	if referenced {
		if err := s.repo.DeactivateUser(ctx, id); err != nil {
			return err
		}
		s.record(ctx, actor, "users.deactivate", id, nil)
		return nil
	}
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.record(ctx, actor, "users.delete", id, nil)
	return nil
}

func (s *Service) record(ctx context.Context, actor *authz.Principal, action, entityID string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	actorID := ""
	if actor != nil {
		actorID = actor.ID
	}
	s.audit.TryRecord(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "users",
		EntityID: entityID,
		Meta:     meta,
	})
}
