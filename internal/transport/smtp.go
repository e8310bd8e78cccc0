package transport

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	mail "gopkg.in/gomail.v2"

	"github.com/ignite/engage/internal/config"
)

// SMTPSender dispatches through a plain SMTP relay.
type SMTPSender struct {
	dialer    *mail.Dialer
	fromEmail string
	fromName  string
}

// NewSMTPSender creates an SMTP transport from config.
func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return &SMTPSender{
		dialer:    mail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
	}
}

// Send implements Func.
func (s *SMTPSender) Send(ctx context.Context, msg *Message) (*Result, error) {
	m := mail.NewMessage()
	m.SetAddressHeader("From", s.fromEmail, s.fromName)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	// gomail has no context support; the dialer's own timeouts bound the call
	messageID := fmt.Sprintf("<%s@engage>", uuid.New())
	m.SetHeader("Message-ID", messageID)
	for k, v := range msg.Headers {
		m.SetHeader(k, v)
	}
	m.SetBody("text/html", msg.HTML)

	if err := s.dialer.DialAndSend(m); err != nil {
		return nil, fmt.Errorf("smtp send: %w", err)
	}
	return &Result{MessageID: messageID}, nil
}
