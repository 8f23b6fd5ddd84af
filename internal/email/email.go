// Package email dispatches transactional mail through Resend, SMTP (local
// dev), or the console.
package email

import (
	"bytes"
	"context"
	"fmt"
	"net/smtp"

	"github.com/resend/resend-go/v2"

	"github.com/okovalenko/wishlink/internal/config"
	"github.com/okovalenko/wishlink/internal/logging"
)

// Message is a single outbound email.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

// NewSender picks a provider from configuration.
func NewSender(cfg *config.EmailConfig) Sender {
	from := fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromAddress)
	switch cfg.Provider {
	case "resend":
		return &ResendSender{client: resend.NewClient(cfg.ResendAPIKey), from: from}
	case "smtp":
		return &SMTPSender{addr: fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort), from: cfg.FromAddress, fromHeader: from}
	default:
		return &ConsoleSender{}
	}
}

// ResendSender delivers via the Resend API.
type ResendSender struct {
	client *resend.Client
	from   string
}

func (s *ResendSender) Send(ctx context.Context, msg *Message) error {
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	}

	if _, err := s.client.Emails.Send(params); err != nil {
		return fmt.Errorf("sending email via Resend: %w", err)
	}

	logging.Info("Email sent via Resend", logging.Fields{"to": msg.To, "subject": msg.Subject})
	return nil
}

// SMTPSender delivers via plain SMTP, for Mailpit in local development.
type SMTPSender struct {
	addr       string
	from       string
	fromHeader string
}

func (s *SMTPSender) Send(ctx context.Context, msg *Message) error {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", s.fromHeader)
	fmt.Fprintf(&buf, "To: %s\r\n", msg.To)
	fmt.Fprintf(&buf, "Subject: %s\r\n", msg.Subject)
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/html; charset=utf-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(msg.HTML)

	if err := smtp.SendMail(s.addr, nil, s.from, []string{msg.To}, buf.Bytes()); err != nil {
		return fmt.Errorf("sending email via SMTP: %w", err)
	}

	logging.Info("Email sent via SMTP", logging.Fields{"to": msg.To, "subject": msg.Subject})
	return nil
}

// ConsoleSender logs messages instead of delivering them.
type ConsoleSender struct{}

func (s *ConsoleSender) Send(ctx context.Context, msg *Message) error {
	logging.Info("Email (console provider)", logging.Fields{
		"to":      msg.To,
		"subject": msg.Subject,
		"body":    msg.Text,
	})
	return nil
}
