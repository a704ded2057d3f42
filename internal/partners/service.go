package partners

import (
	"context"
	"strings"

	"github.com/vitrine-cms/vitrine/internal/authz"
	"github.com/vitrine-cms/vitrine/internal/shared"
)

// RepositoryPort defines data access methods for partners.
type RepositoryPort interface {
	ListPartners(ctx context.Context) ([]Partner, error)
	ListActivePartners(ctx context.Context) ([]Partner, error)
	GetPartner(ctx context.Context, id string) (Partner, error)
	CreatePartner(ctx context.Context, p Partner) (Partner, error)
	UpdatePartner(ctx context.Context, p Partner) (Partner, error)
	DeletePartner(ctx context.Context, id string) error
}

// AuditRecorder writes audit entries without blocking the caller.
type AuditRecorder interface {
	TryRecord(ctx context.Context, log shared.AuditLog)
}

// Service handles partner business logic.
type Service struct {
	repo  RepositoryPort
	audit AuditRecorder
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, audit AuditRecorder) *Service {
	return &Service{repo: repo, audit: audit}
}

func (s *Service) ListPartners(ctx context.Context) ([]Partner, error) {
	return s.repo.ListPartners(ctx)
}

// PublicPartners returns the partners shown on the public site.
func (s *Service) PublicPartners(ctx context.Context) ([]Partner, error) {
	return s.repo.ListActivePartners(ctx)
}

func (s *Service) GetPartner(ctx context.Context, id string) (Partner, error) {
	return s.repo.GetPartner(ctx, id)
}

func (s *Service) CreatePartner(ctx context.Context, actor *authz.Principal, p Partner) (Partner, error) {
	p.Name = strings.TrimSpace(p.Name)
	created, err := s.repo.CreatePartner(ctx, p)
	if err != nil {
		return Partner{}, err
	}
	s.record(ctx, actor, "partners.create", created.ID, map[string]any{"name": created.Name})
	return created, nil
}

func (s *Service) UpdatePartner(ctx context.Context, actor *authz.Principal, p Partner) (Partner, error) {
	p.Name = strings.TrimSpace(p.Name)
	updated, err := s.repo.UpdatePartner(ctx, p)
	if err != nil {
		return Partner{}, err
	}
	s.record(ctx, actor, "partners.update", updated.ID, map[string]any{"name": updated.Name})
	return updated, nil
}

func (s *Service) DeletePartner(ctx context.Context, actor *authz.Principal, id string) error {
	if err := s.repo.DeletePartner(ctx, id); err != nil {
		return err
	}
	s.record(ctx, actor, "partners.delete", id, nil)
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
		Entity:   "partners",
		EntityID: entityID,
		Meta:     meta,
	})
}
