package audit

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Action identifies a security-relevant operation. The vocabulary is fixed;
// Validate rejects events carrying anything else.
type Action string

const (
	ActionLogin                Action = "login"
	ActionLogout               Action = "logout"
	ActionFailedLogin          Action = "failed_login"
	ActionRegister             Action = "register"
	ActionPasswordResetRequest Action = "password_reset_request"
	ActionPasswordReset        Action = "password_reset"
	ActionPasswordChange       Action = "password_change"
	ActionEmailVerification    Action = "email_verification"
	ActionTwoFactorEnabled     Action = "2fa_enabled"
	ActionTwoFactorDisabled    Action = "2fa_disabled"
	ActionTwoFactorVerified    Action = "2fa_verified"
	ActionTwoFactorFailed      Action = "2fa_failed"
	ActionOAuthLogin           Action = "oauth_login"
	ActionOAuthLinked          Action = "oauth_linked"
	ActionOAuthUnlinked        Action = "oauth_unlinked"
	ActionAccountLocked        Action = "account_locked"
	ActionAccountUnlocked      Action = "account_unlocked"
)

var knownActions = map[Action]struct{}{
	ActionLogin:                {},
	ActionLogout:               {},
	ActionFailedLogin:          {},
	ActionRegister:             {},
	ActionPasswordResetRequest: {},
	ActionPasswordReset:        {},
	ActionPasswordChange:       {},
	ActionEmailVerification:    {},
	ActionTwoFactorEnabled:     {},
	ActionTwoFactorDisabled:    {},
	ActionTwoFactorVerified:    {},
	ActionTwoFactorFailed:      {},
	ActionOAuthLogin:           {},
	ActionOAuthLinked:          {},
	ActionOAuthUnlinked:        {},
	ActionAccountLocked:        {},
	ActionAccountUnlocked:      {},
}

// Valid reports whether the action belongs to the fixed vocabulary.
func (a Action) Valid() bool {
	_, ok := knownActions[a]
	return ok
}

// Event is a single immutable audit record. AccountID is nil for events that
// cannot be tied to an account, such as login attempts against unknown
// emails. Metadata must never contain secret material (passwords, TOTP
// secrets, recovery codes, reset tokens).
type Event struct {
	ID        uuid.UUID      `json:"id"`
	AccountID *uuid.UUID     `json:"account_id,omitempty"`
	Action    Action         `json:"action"`
	IP        string         `json:"ip,omitempty"`
	UserAgent string         `json:"user_agent,omitempty"`
	Success   bool           `json:"success"`
	Reason    string         `json:"reason,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Validate checks the event against the fixed action vocabulary.
func (e *Event) Validate() error {
	if e.Action == "" {
		return fmt.Errorf("%w: action is required", ErrEventValidation)
	}
	if !e.Action.Valid() {
		return fmt.Errorf("%w: unknown action %q", ErrEventValidation, e.Action)
	}
	return nil
}

// EventOption applies optional fields to an Event during recording.
type EventOption func(*Event)

// WithAccount attaches the acting account's id.
func WithAccount(id uuid.UUID) EventOption {
	return func(e *Event) {
		e.AccountID = &id
	}
}

// WithOrigin attaches the request origin address and user agent.
func WithOrigin(ip, userAgent string) EventOption {
	return func(e *Event) {
		e.IP = ip
		e.UserAgent = userAgent
	}
}

// WithMetadata adds one structured metadata entry. Callers are responsible
// for keeping secret material out.
func WithMetadata(key string, value any) EventOption {
	return func(e *Event) {
		if e.Metadata == nil {
			e.Metadata = make(map[string]any)
		}
		e.Metadata[key] = value
	}
}
