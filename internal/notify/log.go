package notify

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// LogMailer writes codes to the log instead of sending them. Development only.
type LogMailer struct{}

func NewLogMailer() *LogMailer {
	return &LogMailer{}
}

func (l *LogMailer) SendVerificationCode(_ context.Context, to, code string, ttl time.Duration) error {
	zap.L().Info("Verification email (not sent)", zap.String("to", to), zap.String("code", code), zap.Duration("ttl", ttl))
	return nil
}

func (l *LogMailer) SendPasswordResetCode(_ context.Context, to, code string, ttl time.Duration) error {
	zap.L().Info("Password reset email (not sent)", zap.String("to", to), zap.String("code", code), zap.Duration("ttl", ttl))
	return nil
}
