package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/vitrine-cms/vitrine/internal/platform/mail"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// NewSendEmailHandler returns the handler for TaskTypeSendEmail backed by
// the given sender. Malformed payloads are dropped rather than retried.
func NewSendEmailHandler(sender mail.Sender) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload SendEmailPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		if payload.To == "" {
			return asynq.SkipRetry
		}
		if err := sender.Send(payload.To, payload.Subject, payload.Body); err != nil {
			return fmt.Errorf("jobs: send email to %s: %w", payload.To, err)
		}
		return nil
	}
}

// Templates for the transactional emails the site sends. The bodies are
// plain text; the public site is French-speaking.

// RegistrationConfirmationEmail builds the payload sent after a visitor
// registers for an event.
func RegistrationConfirmationEmail(to, eventTitle string) SendEmailPayload {
	return SendEmailPayload{
		To:      to,
		Subject: "Confirmation d'inscription — " + eventTitle,
		Body: fmt.Sprintf("Bonjour,\n\nVotre inscription à « %s » est bien enregistrée.\n\nÀ très bientôt,\nL'équipe", eventTitle),
	}
}

// ContactNotificationEmail builds the payload sent to the site owner when
// the public contact form is submitted.
func ContactNotificationEmail(to, fromName, fromEmail, message string) SendEmailPayload {
	return SendEmailPayload{
		To:      to,
		Subject: "Nouveau message de " + fromName,
		Body:    fmt.Sprintf("De : %s <%s>\n\n%s", fromName, fromEmail, message),
	}
}

// NewsletterWelcomeEmail builds the payload sent after a newsletter signup.
func NewsletterWelcomeEmail(to string) SendEmailPayload {
	return SendEmailPayload{
		To:      to,
		Subject: "Bienvenue dans la newsletter",
		Body:    "Bonjour,\n\nMerci pour votre inscription à la newsletter. Vous recevrez nos prochaines actualités.\n\nL'équipe",
	}
}
