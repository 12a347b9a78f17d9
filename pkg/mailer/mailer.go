// Package mailer delivers one-time codes to the user's registered address.
package mailer

import (
	"context"
	"fmt"
	"time"

	"hris-auth/internal/data/entity"
	"hris-auth/pkg/utils"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// sender is satisfied by *gomail.Dialer.
type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPMailer sends code emails through an SMTP relay.
type SMTPMailer struct {
	sender   sender
	from     string
	validFor time.Duration
	log      *zap.Logger
}

func NewSMTPMailer(cfg utils.EmailConfig, validFor time.Duration, log *zap.Logger) *SMTPMailer {
	return &SMTPMailer{
		sender:   gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:     cfg.From,
		validFor: validFor,
		log:      log.With(zap.String("component", "mailer")),
	}
}

func (m *SMTPMailer) SendCode(ctx context.Context, email, code string, purpose entity.CodePurpose) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("send code to %s: %w", email, err)
	}

	subject, html, text, err := renderCode(purpose, code, m.validFor)
	if err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", email)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", text)
	msg.AddAlternative("text/html", html)

	if err := m.sender.DialAndSend(msg); err != nil {
		return fmt.Errorf("send code to %s: %w", email, err)
	}

	m.log.Info("Code email sent", zap.String("email", email), zap.String("purpose", string(purpose)))
	return nil
}

// LogMailer writes codes to the log instead of sending them. Used when no SMTP
// host is configured, typically in local development.
type LogMailer struct {
	log *zap.Logger
}

func NewLogMailer(log *zap.Logger) *LogMailer {
	return &LogMailer{log: log.With(zap.String("component", "mailer"))}
}

func (m *LogMailer) SendCode(_ context.Context, email, code string, purpose entity.CodePurpose) error {
	m.log.Warn("SMTP not configured, code written to log",
		zap.String("email", email),
		zap.String("purpose", string(purpose)),
		zap.String("code", code),
	)
	return nil
}
