package pixels

import (
	"context"
	"strings"

	"github.com/vitrine-cms/vitrine/internal/authz"
	"github.com/vitrine-cms/vitrine/internal/shared"
)

// RepositoryPort defines data access methods for tracking pixels.
type RepositoryPort interface {
	ListPixels(ctx context.Context) ([]Pixel, error)
	ListEnabledPixels(ctx context.Context) ([]Pixel, error)
	GetPixel(ctx context.Context, id string) (Pixel, error)
	CreatePixel(ctx context.Context, p Pixel) (Pixel, error)
	UpdatePixel(ctx context.Context, p Pixel) (Pixel, error)
	DeletePixel(ctx context.Context, id string) error
}

// AuditRecorder writes audit entries without blocking the caller.
type AuditRecorder interface {
	TryRecord(ctx context.Context, log shared.AuditLog)
}

// Service handles tracking pixel business logic.
type Service struct {
	repo  RepositoryPort
	audit AuditRecorder
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, audit AuditRecorder) *Service {
	return &Service{repo: repo, audit: audit}
}

func (s *Service) ListPixels(ctx context.Context) ([]Pixel, error) {
	return s.repo.ListPixels(ctx)
}

// PublicPixels returns the enabled pixels injected on the public site.
func (s *Service) PublicPixels(ctx context.Context) ([]Pixel, error) {
	return s.repo.ListEnabledPixels(ctx)
}

func (s *Service) GetPixel(ctx context.Context, id string) (Pixel, error) {
	return s.repo.GetPixel(ctx, id)
}

func (s *Service) CreatePixel(ctx context.Context, actor *authz.Principal, p Pixel) (Pixel, error) {
	p.Label = strings.TrimSpace(p.Label)
	created, err := s.repo.CreatePixel(ctx, p)
	if err != nil {
		return Pixel{}, err
	}
	s.record(ctx, actor, "pixels.create", created.ID, map[string]any{"provider": created.Provider})
	return created, nil
}

func (s *Service) UpdatePixel(ctx context.Context, actor *authz.Principal, p Pixel) (Pixel, error) {
	p.Label = strings.TrimSpace(p.Label)
	updated, err := s.repo.UpdatePixel(ctx, p)
	if err != nil {
		return Pixel{}, err
	}
	s.record(ctx, actor, "pixels.update", updated.ID, map[string]any{"isEnabled": updated.IsEnabled})
	return updated, nil
}

func (s *Service) DeletePixel(ctx context.Context, actor *authz.Principal, id string) error {
	if err := s.repo.DeletePixel(ctx, id); err != nil {
		return err
	}
	s.record(ctx, actor, "pixels.delete", id, nil)
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
		Entity:   "pixels",
		EntityID: entityID,
		Meta:     meta,
	})
}
