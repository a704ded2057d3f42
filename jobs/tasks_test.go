package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSender struct {
	to, subject, body string
	err               error
}

func (c *captureSender) Send(to, subject, body string) error {
	c.to, c.subject, c.body = to, subject, body
	return c.err
}

func TestSendEmailHandlerDeliversPayload(t *testing.T) {
	sender := &captureSender{}
	handler := NewSendEmailHandler(sender)

	task, err := NewSendEmailTask(NewsletterWelcomeEmail("ami@example.fr"))
	require.NoError(t, err)

	require.NoError(t, handler(context.Background(), task))
	assert.Equal(t, "ami@example.fr", sender.to)
	assert.Equal(t, "Bienvenue dans la newsletter", sender.subject)
	assert.Contains(t, sender.body, "Merci pour votre inscription")
}

func TestSendEmailHandlerSkipsMalformedPayload(t *testing.T) {
	sender := &captureSender{}
	handler := NewSendEmailHandler(sender)

	err := handler(context.Background(), asynq.NewTask(TaskTypeSendEmail, []byte("{not json")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.Empty(t, sender.to)
}

func TestSendEmailHandlerSkipsEmptyRecipient(t *testing.T) {
	sender := &captureSender{}
	handler := NewSendEmailHandler(sender)

	task, err := NewSendEmailTask(SendEmailPayload{Subject: "s", Body: "b"})
	require.NoError(t, err)

	assert.ErrorIs(t, handler(context.Background(), task), asynq.SkipRetry)
}

func TestSendEmailHandlerWrapsSenderError(t *testing.T) {
	sender := &captureSender{err: errors.New("smtp down")}
	handler := NewSendEmailHandler(sender)

	task, err := NewSendEmailTask(ContactNotificationEmail("contact@vitrine.local", "Jean", "jean@example.fr", "Bonjour"))
	require.NoError(t, err)

	err = handler(context.Background(), task)
	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
	assert.Contains(t, err.Error(), "contact@vitrine.local")
}
