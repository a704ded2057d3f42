package contact

import (
	"context"

	"github.com/vitrine-cms/vitrine/internal/authz"
	"github.com/vitrine-cms/vitrine/internal/shared"
)

// RepositoryPort defines data access for the contact block.
type RepositoryPort interface {
	GetInfo(ctx context.Context) (Info, error)
	UpsertInfo(ctx context.Context, info Info) (Info, error)
}

// AuditRecorder writes audit entries without blocking the caller.
type AuditRecorder interface {
	TryRecord(ctx context.Context, log shared.AuditLog)
}

// Service handles contact block logic.
type Service struct {
	repo  RepositoryPort
	audit AuditRecorder
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, audit AuditRecorder) *Service {
	return &Service{repo: repo, audit: audit}
}

func (s *Service) GetInfo(ctx context.Context) (Info, error) {
	return s.repo.GetInfo(ctx)
}

func (s *Service) UpdateInfo(ctx context.Context, actor *authz.Principal, info Info) (Info, error) {
	updated, err := s.repo.UpsertInfo(ctx, info)
	if err != nil {
		return Info{}, err
	}
	if s.audit != nil {
		actorID := ""
		if actor != nil {
			actorID = actor.ID
		}
		s.audit.TryRecord(ctx, shared.AuditLog{
			ActorID: actorID,
			Action:  "contact.update",
			Entity:  "contact",
			Meta:    map[string]any{"email": updated.Email},
		})
	}
	return updated, nil
}
