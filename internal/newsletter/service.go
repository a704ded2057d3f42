package newsletter

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/vitrine-cms/vitrine/internal/shared"
	"github.com/vitrine-cms/vitrine/jobs"
)

// RepositoryPort defines data access methods for subscribers.
type RepositoryPort interface {
	ListSubscribers(ctx context.Context) ([]Subscriber, error)
	FindByEmail(ctx context.Context, email string) (Subscriber, error)
	Upsert(ctx context.Context, email, token string) (Subscriber, error)
	Unsubscribe(ctx context.Context, token string) error
}

// MailEnqueuer submits transactional email jobs.
type MailEnqueuer interface {
	EnqueueSendEmail(ctx context.Context, payload jobs.SendEmailPayload) (*asynq.TaskInfo, error)
}

// Service handles newsletter signup logic.
type Service struct {
	repo   RepositoryPort
	mail   MailEnqueuer
	logger *slog.Logger
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, mail MailEnqueuer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, mail: mail, logger: logger}
}

func (s *Service) ListSubscribers(ctx context.Context) ([]Subscriber, error) {
	return s.repo.ListSubscribers(ctx)
}

// Subscribe signs an address up. The operation is idempotent on email: an
// address that is already an active subscriber gets no second welcome
// email and no error.
func (s *Service) Subscribe(ctx context.Context, email string) (Subscriber, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	existing, err := s.repo.FindByEmail(ctx, email)
	alreadyActive := err == nil && existing.Active()
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return Subscriber{}, err
	}
	sub, err := s.repo.Upsert(ctx, email, uuid.NewString())
	if err != nil {
		return Subscriber{}, err
	}
	if !alreadyActive && s.mail != nil {
		if _, err := s.mail.EnqueueSendEmail(ctx, jobs.NewsletterWelcomeEmail(sub.Email)); err != nil {
			s.logger.Error("enqueue newsletter welcome", slog.Any("error", err))
		}
	}
	return sub, nil
}

// Unsubscribe opts a subscriber out using the token from the email footer.
func (s *Service) Unsubscribe(ctx context.Context, token string) error {
	return s.repo.Unsubscribe(ctx, token)
}
