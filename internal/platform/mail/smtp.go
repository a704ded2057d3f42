// Package mail sends transactional email over SMTP.
package mail

import (
	"fmt"
	"net/smtp"
	"strings"
)

// Sender delivers email messages. The worker depends on this interface so
// tests can capture outgoing mail without a running SMTP server.
type Sender interface {
	Send(to, subject, body string) error
}

// SMTPSender is a plain-text SMTP sender.
type SMTPSender struct {
	Host string
	Port int
	From string
}

// NewSMTPSender constructs a sender for the given SMTP endpoint.
func NewSMTPSender(host string, port int, from string) *SMTPSender {
	return &SMTPSender{Host: host, Port: port, From: from}
}

// Send delivers a single message.
func (s *SMTPSender) Send(to, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", s.Host, s.Port)
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", s.From)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	msg.WriteString(body)
	if err := smtp.SendMail(addr, nil, s.From, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("platform/mail: send to %s: %w", to, err)
	}
	return nil
}
