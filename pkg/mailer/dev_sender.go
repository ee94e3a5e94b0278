package mailer

import (
	"context"
	"log/slog"
)

// DevSender logs reset links instead of sending email, for local development
// only. The link contains the reset token, so this must never run in
// production.
type DevSender struct {
	logger *slog.Logger
}

// NewDevSender creates a development Notifier writing to logger, or
// slog.Default() when nil.
func NewDevSender(logger *slog.Logger) *DevSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &DevSender{logger: logger}
}

func (d *DevSender) SendPasswordReset(ctx context.Context, email, resetLink string) error {
	d.logger.InfoContext(ctx, "password reset requested",
		slog.String("email", email),
		slog.String("reset_link", resetLink),
	)
	return nil
}
