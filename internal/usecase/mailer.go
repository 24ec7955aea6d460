package usecase

import (
	"context"

	"go.uber.org/zap"
)

// Mailer delivers account emails. Links already contain the raw token.
type Mailer interface {
	SendVerification(ctx context.Context, to, userName, link string) error
	SendWelcome(ctx context.Context, to, userName string) error
	SendPasswordReset(ctx context.Context, to, name, link string) error
}

type logMailer struct {
	log *zap.Logger
}

// NewLogMailer writes mails to the logger instead of sending them.
// Links are logged at debug level only.
func NewLogMailer(log *zap.Logger) Mailer {
	return &logMailer{log: log.With(zap.String("service", "mailer"))}
}

func (m *logMailer) SendVerification(_ context.Context, to, userName, link string) error {
	m.log.Info("Verification email sent", zap.String("to", to), zap.String("user_name", userName))
	m.log.Debug("Verification link", zap.String("to", to), zap.String("link", link))
	return nil
}

func (m *logMailer) SendWelcome(_ context.Context, to, userName string) error {
	m.log.Info("Welcome email sent", zap.String("to", to), zap.String("user_name", userName))
	return nil
}

func (m *logMailer) SendPasswordReset(_ context.Context, to, name, link string) error {
	m.log.Info("Password reset email sent", zap.String("to", to), zap.String("name", name))
	m.log.Debug("Password reset link", zap.String("to", to), zap.String("link", link))
	return nil
}
