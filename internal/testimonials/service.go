package testimonials

import (
	"context"
	"strings"

	"github.com/vitrine-cms/vitrine/internal/authz"
	"github.com/vitrine-cms/vitrine/internal/shared"
)

// RepositoryPort defines data access methods for testimonials.
type RepositoryPort interface {
	ListTestimonials(ctx context.Context) ([]Testimonial, error)
	ListPublishedTestimonials(ctx context.Context) ([]Testimonial, error)
	GetTestimonial(ctx context.Context, id string) (Testimonial, error)
	CreateTestimonial(ctx context.Context, t Testimonial) (Testimonial, error)
	UpdateTestimonial(ctx context.Context, t Testimonial) (Testimonial, error)
	DeleteTestimonial(ctx context.Context, id string) error
}

// AuditRecorder writes audit entries without blocking the caller.
type AuditRecorder interface {
	TryRecord(ctx context.Context, log shared.AuditLog)
}

// Service handles testimonial business logic.
type Service struct {
	repo  RepositoryPort
	audit AuditRecorder
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, audit AuditRecorder) *Service {
	return &Service{repo: repo, audit: audit}
}

func (s *Service) ListTestimonials(ctx context.Context) ([]Testimonial, error) {
	return s.repo.ListTestimonials(ctx)
}

// PublishedTestimonials returns the testimonials shown on the public site.
func (s *Service) PublishedTestimonials(ctx context.Context) ([]Testimonial, error) {
	return s.repo.ListPublishedTestimonials(ctx)
}

func (s *Service) GetTestimonial(ctx context.Context, id string) (Testimonial, error) {
	return s.repo.GetTestimonial(ctx, id)
}

func (s *Service) CreateTestimonial(ctx context.Context, actor *authz.Principal, t Testimonial) (Testimonial, error) {
	t.Author = strings.TrimSpace(t.Author)
	created, err := s.repo.CreateTestimonial(ctx, t)
	if err != nil {
		return Testimonial{}, err
	}
	s.record(ctx, actor, "testimonials.create", created.ID, map[string]any{"author": created.Author})
	return created, nil
}

func (s *Service) UpdateTestimonial(ctx context.Context, actor *authz.Principal, t Testimonial) (Testimonial, error) {
	t.Author = strings.TrimSpace(t.Author)
	updated, err := s.repo.UpdateTestimonial(ctx, t)
	if err != nil {
		return Testimonial{}, err
	}
	s.record(ctx, actor, "testimonials.update", updated.ID, map[string]any{"isPublished": updated.IsPublished})
	return updated, nil
}

func (s *Service) DeleteTestimonial(ctx context.Context, actor *authz.Principal, id string) error {
	if err := s.repo.DeleteTestimonial(ctx, id); err != nil {
		return err
	}
	s.record(ctx, actor, "testimonials.delete", id, nil)
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
		Entity:   "testimonials",
		EntityID: entityID,
		Meta:     meta,
	})
}
