// Package mailer delivers account emails over SMTP. Without an SMTP
// host it runs in dev mode: action links are logged and handed back to
// the caller instead of being sent.
package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"gelateria/internal/domain/auth"
	"gelateria/pkg/logger"
)

// Config holds SMTP settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string

	// BaseURL is the public URL the action links point at
	BaseURL string
}

// Mailer implements auth.Mailer.
type Mailer struct {
	cfg Config
}

var _ auth.Mailer = (*Mailer)(nil)

// New creates a mailer.
func New(cfg Config) *Mailer {
	return &Mailer{cfg: cfg}
}

func (m *Mailer) devMode() bool {
	return m.cfg.Host == ""
}

// SendVerificationEmail sends the email-verification link.
func (m *Mailer) SendVerificationEmail(ctx context.Context, to, token string) (auth.MailResult, error) {
	url := fmt.Sprintf("%s/api/auth/verify-email/%s", strings.TrimRight(m.cfg.BaseURL, "/"), token)

	if m.devMode() {
		logger.Info(ctx, "dev mode: verification link", "to", to, "url", url)
		return auth.MailResult{DevMode: true, URL: url}, nil
	}

	body := fmt.Sprintf("Confirme seu email acessando o link:\r\n\r\n%s\r\n\r\nO link expira em 24 horas.", url)
	if err := m.send(to, "Confirme seu email", body); err != nil {
		return auth.MailResult{}, fmt.Errorf("send verification email: %w", err)
	}
	return auth.MailResult{}, nil
}

// SendPasswordResetEmail sends the password-reset link.
func (m *Mailer) SendPasswordResetEmail(ctx context.Context, to, token string) (auth.MailResult, error) {
	url := fmt.Sprintf("%s/api/auth/reset-password/%s", strings.TrimRight(m.cfg.BaseURL, "/"), token)

	if m.devMode() {
		logger.Info(ctx, "dev mode: password reset link", "to", to, "url", url)
		return auth.MailResult{DevMode: true, URL: url}, nil
	}

	body := fmt.Sprintf("Redefina sua senha acessando o link:\r\n\r\n%s\r\n\r\nO link expira em 10 minutos.", url)
	if err := m.send(to, "Redefinicao de senha", body); err != nil {
		return auth.MailResult{}, fmt.Errorf("send password reset email: %w", err)
	}
	return auth.MailResult{}, nil
}

func (m *Mailer) send(to, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	msg := strings.Join([]string{
		"From: " + m.cfg.From,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"",
		body,
	}, "\r\n")

	var a smtp.Auth
	if m.cfg.Username != "" {
		a = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	return smtp.SendMail(addr, a, m.cfg.From, []string{to}, []byte(msg))
}
