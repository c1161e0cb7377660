// Package mailer is the outbound notification channel for confirmation
// codes. Delivery is best-effort from the protocol's point of view, but
// failures are reported to the caller instead of being swallowed.
package mailer

import (
	"fmt"
	"log/slog"
	"net/smtp"

	"github.com/jordan-wright/email"

	"reviewhub/internal/config"
)

type Mailer interface {
	Send(recipient, subject, body string) error
}

// SMTPMailer delivers mail over plain SMTP.
type SMTPMailer struct {
	addr string
	auth smtp.Auth
	from string
}

func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	var auth smtp.Auth
	if cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPHost)
	}
	return &SMTPMailer{
		addr: fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		auth: auth,
		from: cfg.MailFrom,
	}
}

func (m *SMTPMailer) Send(recipient, subject, body string) error {
	e := email.NewEmail()
	e.From = m.from
	e.To = []string{recipient}
	e.Subject = subject
	e.Text = []byte(body)

	if err := e.Send(m.addr, m.auth); err != nil {
		return fmt.Errorf("send mail to %s: %w", recipient, err)
	}
	return nil
}

// LogMailer writes mail to the log instead of the wire. Development only.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(recipient, subject, body string) error {
	m.logger.Info("mail delivery skipped", "to", recipient, "subject", subject, "body", body)
	return nil
}
