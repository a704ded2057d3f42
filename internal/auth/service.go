package auth

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/vitrine-cms/vitrine/internal/authz"
	"github.com/vitrine-cms/vitrine/internal/shared"
)

// AuditRecorder writes audit entries without ever blocking the caller.
type AuditRecorder interface {
	TryRecord(ctx context.Context, log shared.AuditLog)
}

// Service wraps authentication business rules.
type Service struct {
	repo  Repository
	audit AuditRecorder
}

// NewService constructs a new Service.
func NewService(repo Repository, audit AuditRecorder) *Service {
	return &Service{repo: repo, audit: audit}
}

// Authenticate validates email/password credentials. All failure modes
// collapse into ErrInvalidCredentials so login responses never reveal
// account shape.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if !user.HasPassword() {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	now := time.Now().UTC()
	if err := s.repo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, err
	}
	user.LastLoginAt = &now
	return user, nil
}

// Unlock re-verifies the current principal's stored credential for the
// idle-lock flow. Unlike login, the failure modes stay distinct: the lock
// screen needs to tell a deactivated account and a passwordless account
// apart from a typo.
func (s *Service) Unlock(ctx context.Context, userID, password string) (*User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, shared.ErrAccountInactive
	}
	if !user.HasPassword() {
		return nil, shared.ErrNoPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	now := time.Now().UTC()
	if err := s.repo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, err
	}
	user.LastLoginAt = &now
	if s.audit == nil {
		return user, nil
	}
	s.audit.TryRecord(ctx, shared.AuditLog{
		ActorID:  user.ID,
		Action:   "session.unlock",
		Entity:   "session",
		EntityID: user.ID,
		Meta:     map[string]any{"email": user.Email},
	})
	return user, nil
}

// CurrentRole returns the role currently stored for the user, used by the
// explicit session refresh trigger.
func (s *Service) CurrentRole(ctx context.Context, userID string) (authz.Role, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.Role, nil
}

// RegisterSession persists the session metadata in postgres.
func (s *Service) RegisterSession(ctx context.Context, id, userID string, expiresAt time.Time, ip, ua string) error {
	return s.repo.CreateSession(ctx, id, userID, expiresAt, ip, ua)
}

// RemoveSession deletes a session record from postgres.
func (s *Service) RemoveSession(ctx context.Context, id string) error {
	return s.repo.DeleteSession(ctx, id)
}
