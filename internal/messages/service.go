package messages

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hibiken/asynq"

	"github.com/vitrine-cms/vitrine/internal/authz"
	"github.com/vitrine-cms/vitrine/internal/shared"
	"github.com/vitrine-cms/vitrine/jobs"
)

// RepositoryPort defines data access methods for inbox messages.
type RepositoryPort interface {
	ListMessages(ctx context.Context, status Status) ([]Message, error)
	GetMessage(ctx context.Context, id string) (Message, error)
	CreateMessage(ctx context.Context, m Message) (Message, error)
	UpdateStatus(ctx context.Context, id string, status Status) (Message, error)
}

// MailEnqueuer submits transactional email jobs.
type MailEnqueuer interface {
	EnqueueSendEmail(ctx context.Context, payload jobs.SendEmailPayload) (*asynq.TaskInfo, error)
}

// AuditRecorder writes audit entries without blocking the caller.
type AuditRecorder interface {
	TryRecord(ctx context.Context, log shared.AuditLog)
}

// Service handles inbox logic and the public contact form.
type Service struct {
	repo     RepositoryPort
	mail     MailEnqueuer
	audit    AuditRecorder
	notifyTo string
	logger   *slog.Logger
}

// NewService builds a Service instance. notifyTo is the address that
// receives a notification for each contact-form submission; empty disables
// notifications.
func NewService(repo RepositoryPort, mail MailEnqueuer, audit AuditRecorder, notifyTo string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, mail: mail, audit: audit, notifyTo: notifyTo, logger: logger}
}

func (s *Service) ListMessages(ctx context.Context, status Status) ([]Message, error) {
	return s.repo.ListMessages(ctx, status)
}

func (s *Service) GetMessage(ctx context.Context, id string) (Message, error) {
	return s.repo.GetMessage(ctx, id)
}

// Submit stores a public contact-form submission and enqueues the owner
// notification. A failed enqueue is logged but does not fail the
// submission; the message is already persisted.
func (s *Service) Submit(ctx context.Context, m Message) (Message, error) {
	m.Name = strings.TrimSpace(m.Name)
	m.Email = strings.ToLower(strings.TrimSpace(m.Email))
	created, err := s.repo.CreateMessage(ctx, m)
	if err != nil {
		return Message{}, err
	}
	if s.mail != nil && s.notifyTo != "" {
		payload := jobs.ContactNotificationEmail(s.notifyTo, created.Name, created.Email, created.Body)
		if _, err := s.mail.EnqueueSendEmail(ctx, payload); err != nil {
			s.logger.Error("enqueue contact notification", slog.Any("error", err))
		}
	}
	return created, nil
}

// UpdateStatus transitions a message and records the mutation.
func (s *Service) UpdateStatus(ctx context.Context, actor *authz.Principal, id string, status Status) (Message, error) {
	if !status.Valid() {
		return Message{}, fmt.Errorf("messages: invalid status %q", status)
	}
	updated, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return Message{}, err
	}
	if s.audit != nil {
		actorID := ""
		if actor != nil {
			actorID = actor.ID
		}
		s.audit.TryRecord(ctx, shared.AuditLog{
			ActorID:  actorID,
			Action:   "messages.update",
			Entity:   "messages",
			EntityID: updated.ID,
			Meta:     map[string]any{"status": updated.Status},
		})
	}
	return updated, nil
}
