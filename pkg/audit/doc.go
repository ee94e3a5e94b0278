// Package audit records security-relevant events as immutable, append-only
// records for forensic review.
//
// The Recorder shapes events — action from a fixed vocabulary, optional
// account reference, origin address, user agent, success flag, failure
// reason, structured metadata — and hands them to a Storage implementation.
// Events against unknown accounts (a failed login with an unrecognized email)
// carry a nil account id rather than being dropped.
//
// Storage implementations ship for Postgres (pgx batch inserts into an
// insert-only table) and MongoDB, plus an in-memory store for tests.
// AsyncStorage decorates any of them with a buffered background writer so
// audit emission never blocks a login on slow storage; its flush failures go
// to slog since the originating request has already completed.
//
//	recorder := audit.NewRecorder(audit.NewPostgresStorage(pool))
//
//	_ = recorder.Failure(ctx, audit.ActionFailedLogin, "unknown_email",
//	    audit.WithOrigin(ip, userAgent),
//	)
//
// Events must never carry secret material: passwords, TOTP secrets, recovery
// codes, and reset token values stay out of Reason and Metadata.
package audit
