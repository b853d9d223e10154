package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

// SMTPSender delivers mail over SMTP. The access token is not used.
type SMTPSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// Send builds the MIME message and delivers it in a single attempt.
func (s *SMTPSender) Send(ctx context.Context, _ string, msg Message) error {
	if len(msg.To) == 0 {
		return ErrNoRecipient
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := s.build(msg)

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send error: %w", err)
	}

	return nil
}

func (s *SMTPSender) build(msg Message) *gomail.Message {
	from := msg.From
	if from == "" {
		from = s.From
	}

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", msg.To...)
	if len(msg.Cc) > 0 {
		m.SetHeader("Cc", msg.Cc...)
	}
	m.SetHeader("Subject", msg.Subject)

	contentType := "text/plain"
	if msg.Content.HTML {
		contentType = "text/html"
	}
	m.SetBody(contentType, msg.Content.Body)

	return m
}
