// Package mail sends transactional email through an SMTP transport.
package mail

import (
	"context"
	"fmt"
	"log/slog"

	gomail "github.com/wneessen/go-mail"
)

// Mailer sends password-reset email. Handlers depend on this interface
// so tests can substitute a fake transport.
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, resetLink string) error
}

// SMTPMailer sends mail over SMTP with LOGIN auth.
type SMTPMailer struct {
	client *gomail.Client
	from   string
}

// NewSMTP creates an SMTP-backed mailer.
func NewSMTP(host string, port int, username, password, from string) (*SMTPMailer, error) {
	opts := []gomail.Option{
		gomail.WithPort(port),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}
	if username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthLogin),
			gomail.WithUsername(username),
			gomail.WithPassword(password),
		)
	}

	client, err := gomail.NewClient(host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create mail client: %w", err)
	}

	return &SMTPMailer{client: client, from: from}, nil
}

// SendPasswordReset emails a reset link to the given address.
func (m *SMTPMailer) SendPasswordReset(ctx context.Context, to, resetLink string) error {
	msg := gomail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("set mail sender: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("set mail recipient: %w", err)
	}

	msg.Subject("Password Reset Request")
	msg.SetBodyString(gomail.TypeTextHTML, fmt.Sprintf(
		`<h1>Password Reset</h1><p>Click the link below to reset your password:</p><a href="%s">Reset Password</a>`,
		resetLink,
	))

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send reset mail: %w", err)
	}

	return nil
}

// LogMailer writes reset links to the log instead of sending mail.
// Used in development when no SMTP transport is configured.
type LogMailer struct {
	logger *slog.Logger
}

// NewLog creates a log-only mailer.
func NewLog(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// SendPasswordReset logs the reset link.
func (m *LogMailer) SendPasswordReset(ctx context.Context, to, resetLink string) error {
	m.logger.Info("password reset mail (log transport)",
		slog.String("to", to),
		slog.String("reset_link", resetLink),
	)
	return nil
}
