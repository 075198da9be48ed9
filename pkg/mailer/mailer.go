package mailer

import (
	"fmt"

	"github.com/wneessen/go-mail"
)

//go:generate mockgen -destination=../mocks/mock_mailer.go -package=pkgmocks github.com/mailpilot/mailpilot/pkg/mailer Mailer

// Mailer sends builder emails over SMTP.
type Mailer interface {
	// SendTemplateTest delivers a generated HTML document to a single
	// recipient so the author can check it in a real inbox.
	SendTemplateTest(to, subject, html string) error
}

// Config holds the SMTP settings for the mailer.
type Config struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
	FromName     string
}

// SMTPMailer implements Mailer using go-mail.
type SMTPMailer struct {
	config   *Config
	testMode bool
}

// NewSMTPMailer creates a new SMTP mailer.
func NewSMTPMailer(config *Config) *SMTPMailer {
	return &SMTPMailer{config: config}
}

// NewTestSMTPMailer creates a mailer in test mode: messages are built and
// validated but never handed to an SMTP server.
func NewTestSMTPMailer(config *Config) *SMTPMailer {
	return &SMTPMailer{config: config, testMode: true}
}

func (m *SMTPMailer) SendTemplateTest(to, subject, html string) error {
	msg := mail.NewMsg(mail.WithNoDefaultUserAgent())

	if err := msg.FromFormat(m.config.FromName, m.config.FromEmail); err != nil {
		return fmt.Errorf("failed to set email from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("failed to set email recipient: %w", err)
	}

	msg.Subject(fmt.Sprintf("[Test] %s", subject))
	msg.SetBodyString(mail.TypeTextHTML, html)

	return m.send(msg)
}

func (m *SMTPMailer) send(msg *mail.Msg) error {
	if m.testMode {
		return nil
	}

	client, err := mail.NewClient(m.config.SMTPHost,
		mail.WithPort(m.config.SMTPPort),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.config.SMTPUsername),
		mail.WithPassword(m.config.SMTPPassword),
	)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}

	if err := client.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
