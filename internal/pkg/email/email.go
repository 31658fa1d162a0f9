// Package email sends transactional mail over SMTP.
package email

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/lsa-mis/student-visit-api/internal/pkg/logger"
)

// Service sends a plain-text message to a single recipient. The notification
// dispatcher depends on this interface so tests can substitute a recorder.
type Service interface {
	Send(to, subject, body string) error
}

// Config holds SMTP connection settings
type Config struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromName  string
	FromEmail string
	UseTLS    bool
}

// LogService logs messages instead of delivering them. Used in development
// when no SMTP host is configured.
type LogService struct{}

// Send logs the message and reports success
func (LogService) Send(to, subject, body string) error {
	logger.Info().
		Str("to", to).
		Str("subject", subject).
		Msg("Email delivery skipped, no SMTP host configured")
	return nil
}

// SMTPService is the production mailer
type SMTPService struct {
	config Config
}

// NewSMTPService creates a new SMTP-backed mailer
func NewSMTPService(config Config) *SMTPService {
	return &SMTPService{config: config}
}

// Send delivers a single message. Connections are per-message; appointment
// notification volume does not justify pooling.
func (s *SMTPService) Send(to, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	msg := s.buildMessage(to, subject, body)

	var auth smtp.Auth
	if s.config.Username != "" {
		auth = smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	}

	if s.config.UseTLS {
		return s.sendTLS(addr, auth, to, msg)
	}

	if err := smtp.SendMail(addr, auth, s.config.FromEmail, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

func (s *SMTPService) buildMessage(to, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", s.config.FromName, s.config.FromEmail)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}

// sendTLS dials with implicit TLS for servers that do not speak STARTTLS
func (s *SMTPService) sendTLS(addr string, auth smtp.Auth, to string, msg []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: s.config.Host})
	if err != nil {
		return fmt.Errorf("failed to dial SMTP server: %w", err)
	}

	client, err := smtp.NewClient(conn, s.config.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Close()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP auth failed: %w", err)
		}
	}

	if err := client.Mail(s.config.FromEmail); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	return client.Quit()
}
