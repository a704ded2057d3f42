package events

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/hibiken/asynq"

	"github.com/vitrine-cms/vitrine/internal/authz"
	"github.com/vitrine-cms/vitrine/internal/shared"
	"github.com/vitrine-cms/vitrine/jobs"
)

// ErrEventFull is returned when an event has reached capacity.
var ErrEventFull = errors.New("events: event is full")

// ErrEventClosed is returned when registering for an unpublished event.
var ErrEventClosed = errors.New("events: event not open for registration")

// RepositoryPort defines data access methods for events.
type RepositoryPort interface {
	ListEvents(ctx context.Context) ([]Event, error)
	ListPublishedEvents(ctx context.Context) ([]Event, error)
	GetEvent(ctx context.Context, id string) (Event, error)
	ListRegistrations(ctx context.Context, eventID string) ([]Registration, error)
	CountRegistrations(ctx context.Context, eventID string) (int, error)
	CreateRegistration(ctx context.Context, reg Registration) (Registration, error)
}

// MailEnqueuer submits transactional email jobs.
type MailEnqueuer interface {
	EnqueueSendEmail(ctx context.Context, payload jobs.SendEmailPayload) (*asynq.TaskInfo, error)
}

// AuditRecorder writes audit entries without blocking the caller.
type AuditRecorder interface {
	TryRecord(ctx context.Context, log shared.AuditLog)
}

// Service handles event and registration business logic.
type Service struct {
	repo   RepositoryPort
	mail   MailEnqueuer
	audit  AuditRecorder
	logger *slog.Logger
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, mail MailEnqueuer, audit AuditRecorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, mail: mail, audit: audit, logger: logger}
}

func (s *Service) ListEvents(ctx context.Context) ([]Event, error) {
	return s.repo.ListEvents(ctx)
}

// PublicEvents returns upcoming published events.
func (s *Service) PublicEvents(ctx context.Context) ([]Event, error) {
	return s.repo.ListPublishedEvents(ctx)
}

func (s *Service) GetEvent(ctx context.Context, id string) (Event, error) {
	return s.repo.GetEvent(ctx, id)
}

func (s *Service) ListRegistrations(ctx context.Context, eventID string) ([]Registration, error) {
	return s.repo.ListRegistrations(ctx, eventID)
}

// Register signs a visitor up for a published event and enqueues the
// confirmation email. Capacity 0 means unlimited.
func (s *Service) Register(ctx context.Context, eventID, name, email string) (Registration, error) {
	event, err := s.repo.GetEvent(ctx, eventID)
	if err != nil {
		return Registration{}, err
	}
	if !event.IsPublished {
		return Registration{}, ErrEventClosed
	}
	if event.Capacity > 0 {
		count, err := s.repo.CountRegistrations(ctx, eventID)
		if err != nil {
			return Registration{}, err
		}
		if count >= event.Capacity {
			return Registration{}, ErrEventFull
		}
	}
	reg, err := s.repo.CreateRegistration(ctx, Registration{
		EventID: eventID,
		Name:    strings.TrimSpace(name),
		Email:   strings.ToLower(strings.TrimSpace(email)),
		Source:  SourcePublic,
	})
	if err != nil {
		return Registration{}, err
	}
	if s.mail != nil {
		payload := jobs.RegistrationConfirmationEmail(reg.Email, event.Title)
		if _, err := s.mail.EnqueueSendEmail(ctx, payload); err != nil {
			s.logger.Error("enqueue registration confirmation", slog.Any("error", err))
		}
	}
	return reg, nil
}

// AddRegistration records an attendee added by hand from the back office.
// No confirmation email is sent and the mutation is audited.
func (s *Service) AddRegistration(ctx context.Context, actor *authz.Principal, eventID, name, email string) (Registration, error) {
	if _, err := s.repo.GetEvent(ctx, eventID); err != nil {
		return Registration{}, err
	}
	reg, err := s.repo.CreateRegistration(ctx, Registration{
		EventID: eventID,
		Name:    strings.TrimSpace(name),
		Email:   strings.ToLower(strings.TrimSpace(email)),
		Source:  SourceManual,
	})
	if err != nil {
		return Registration{}, err
	}
	if s.audit != nil {
		actorID := ""
		if actor != nil {
			actorID = actor.ID
		}
		s.audit.TryRecord(ctx, shared.AuditLog{
			ActorID:  actorID,
			Action:   "registrations.create",
			Entity:   "registrations",
			EntityID: reg.ID,
			Meta:     map[string]any{"eventId": eventID, "email": reg.Email},
		})
	}
	return reg, nil
}
