package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/jwalitptl/clinic-schedule/internal/config"
)

type Service interface {
	SendCustom(ctx context.Context, to string, subject string, content string) error
}

// SMTPService delivers plain-text mail through gomail
type SMTPService struct {
	from string
	send func(*gomail.Message) error
}

func NewSMTPService(cfg config.SMTPConfig) *SMTPService {
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return &SMTPService{from: cfg.From, send: func(m *gomail.Message) error { return dialer.DialAndSend(m) }}
}

// NewWithSender routes messages through s instead of dialing SMTP
func NewWithSender(from string, s gomail.Sender) *SMTPService {
	return &SMTPService{
		from: from,
		send: func(m *gomail.Message) error { return gomail.Send(s, m) },
	}
}

func (s *SMTPService) SendCustom(ctx context.Context, to string, subject string, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", content)

	if err := s.send(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}
