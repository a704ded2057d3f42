package media

import (
	"context"

	"github.com/vitrine-cms/vitrine/internal/authz"
	"github.com/vitrine-cms/vitrine/internal/shared"
)

// RepositoryPort defines data access methods for media assets.
type RepositoryPort interface {
	ListAssets(ctx context.Context, folder string) ([]Asset, error)
	CreateAsset(ctx context.Context, a Asset) (Asset, error)
}

// AuditRecorder writes audit entries without blocking the caller.
type AuditRecorder interface {
	TryRecord(ctx context.Context, log shared.AuditLog)
}

// Service handles media asset business logic. Assets are append-only from
// the admin side; removal happens at the image host.
type Service struct {
	repo  RepositoryPort
	audit AuditRecorder
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, audit AuditRecorder) *Service {
	return &Service{repo: repo, audit: audit}
}

func (s *Service) ListAssets(ctx context.Context, folder string) ([]Asset, error) {
	return s.repo.ListAssets(ctx, folder)
}

func (s *Service) CreateAsset(ctx context.Context, actor *authz.Principal, a Asset) (Asset, error) {
	created, err := s.repo.CreateAsset(ctx, a)
	if err != nil {
		return Asset{}, err
	}
	if s.audit != nil {
		actorID := ""
		if actor != nil {
			actorID = actor.ID
		}
		s.audit.TryRecord(ctx, shared.AuditLog{
			ActorID:  actorID,
			Action:   "media.create",
			Entity:   "media",
			EntityID: created.ID,
			Meta:     map[string]any{"filename": created.Filename},
		})
	}
	return created, nil
}
