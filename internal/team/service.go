package team

import (
	"context"
	"strings"

	"github.com/vitrine-cms/vitrine/internal/authz"
	"github.com/vitrine-cms/vitrine/internal/shared"
)

// RepositoryPort defines data access methods for team members.
type RepositoryPort interface {
	ListMembers(ctx context.Context) ([]Member, error)
	ListActiveMembers(ctx context.Context) ([]Member, error)
	GetMember(ctx context.Context, id string) (Member, error)
	CreateMember(ctx context.Context, m Member) (Member, error)
	UpdateMember(ctx context.Context, m Member) (Member, error)
	DeleteMember(ctx context.Context, id string) error
}

// AuditRecorder writes audit entries without blocking the caller.
type AuditRecorder interface {
	TryRecord(ctx context.Context, log shared.AuditLog)
}

// Service handles team member business logic.
type Service struct {
	repo  RepositoryPort
	audit AuditRecorder
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, audit AuditRecorder) *Service {
	return &Service{repo: repo, audit: audit}
}

// ListMembers returns every member, including inactive ones.
func (s *Service) ListMembers(ctx context.Context) ([]Member, error) {
	return s.repo.ListMembers(ctx)
}

// PublicMembers returns the members shown on the public site.
func (s *Service) PublicMembers(ctx context.Context) ([]Member, error) {
	return s.repo.ListActiveMembers(ctx)
}

// GetMember returns one member.
func (s *Service) GetMember(ctx context.Context, id string) (Member, error) {
	return s.repo.GetMember(ctx, id)
}

// CreateMember persists a member and records the mutation.
func (s *Service) CreateMember(ctx context.Context, actor *authz.Principal, m Member) (Member, error) {
	m.Name = strings.TrimSpace(m.Name)
	created, err := s.repo.CreateMember(ctx, m)
	if err != nil {
		return Member{}, err
	}
	s.record(ctx, actor, "team.create", created.ID, map[string]any{"name": created.Name})
	return created, nil
}

// UpdateMember updates a member and records the mutation.
func (s *Service) UpdateMember(ctx context.Context, actor *authz.Principal, m Member) (Member, error) {
	m.Name = strings.TrimSpace(m.Name)
	updated, err := s.repo.UpdateMember(ctx, m)
	if err != nil {
		return Member{}, err
	}
	s.record(ctx, actor, "team.update", updated.ID, map[string]any{"name": updated.Name})
	return updated, nil
}

// DeleteMember removes a member and records the mutation.
func (s *Service) DeleteMember(ctx context.Context, actor *authz.Principal, id string) error {
	if err := s.repo.DeleteMember(ctx, id); err != nil {
		return err
	}
	s.record(ctx, actor, "team.delete", id, nil)
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
		Entity:   "team",
		EntityID: entityID,
		Meta:     meta,
	})
}
