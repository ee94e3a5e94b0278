package mailer

import (
	"context"
	"errors"
	"fmt"
	"html"

	"github.com/mrz1836/postmark"
)

type postmarkNotifier struct {
	client *postmark.Client
	config Config
}

// NewPostmarkNotifier creates a Postmark-backed Notifier. All tokens and the
// sender address are required so a misconfigured deployment fails at startup
// instead of silently dropping reset emails.
func NewPostmarkNotifier(cfg Config) (Notifier, error) {
	if cfg.PostmarkServerToken == "" {
		return nil, fmt.Errorf("%w: PostmarkServerToken is required", ErrInvalidConfig)
	}
	if cfg.PostmarkAccountToken == "" {
		return nil, fmt.Errorf("%w: PostmarkAccountToken is required", ErrInvalidConfig)
	}
	if cfg.SenderEmail == "" {
		return nil, fmt.Errorf("%w: SenderEmail is required", ErrInvalidConfig)
	}

	return &postmarkNotifier{
		client: postmark.NewClient(cfg.PostmarkServerToken, cfg.PostmarkAccountToken),
		config: cfg,
	}, nil
}

func (n *postmarkNotifier) SendPasswordReset(ctx context.Context, email, resetLink string) error {
	link := html.EscapeString(resetLink)
	body := fmt.Sprintf(
		`<p>A password reset was requested for your account.</p>
<p><a href="%s">Reset your password</a></p>
<p>The link expires shortly and can be used once. If you did not request this, you can ignore this email.</p>`,
		link,
	)

	resp, err := n.client.SendEmail(ctx, postmark.Email{
		From:     n.config.SenderEmail,
		To:       email,
		Subject:  n.config.ResetSubject,
		Tag:      "password-reset",
		HTMLBody: body,
		TextBody: "Reset your password: " + resetLink,
	})
	if err != nil {
		return errors.Join(ErrFailedToSend, err)
	}
	if resp.ErrorCode > 0 {
		return errors.Join(ErrFailedToSend, fmt.Errorf("postmark error: %d - %s", resp.ErrorCode, resp.Message))
	}
	return nil
}
