// Package mailer delivers password-reset notifications. The authentication
// service depends only on the Notifier interface; a Postmark-backed client
// covers production and a slog-based sender covers development, where reset
// links land in the log instead of an inbox.
package mailer

import "context"

// Notifier hands a password-reset link to the account's email address. The
// link embeds the reset token, so implementations must treat it as secret and
// never persist or log it.
type Notifier interface {
	SendPasswordReset(ctx context.Context, email, resetLink string) error
}
