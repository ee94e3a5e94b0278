// Package auth is the authentication-security orchestrator: it composes
// credential verification, the brute-force lockout policy, TOTP two-factor
// authentication, single-use recovery codes, password-reset tokens, and audit
// emission into typed login outcomes.
//
// The service is deliberately leak-averse. Unknown emails, wrong passwords,
// wrong TOTP codes, and wrong recovery codes all surface as the same generic
// statuses; unknown-email attempts burn a hash comparison against a dummy
// digest so they cannot be told apart from wrong passwords by timing; and
// only policy outcomes that are not secret-dependent (a locked account, an
// expired or consumed reset token) are reported distinctly. Accounts whose
// stored state violates a data-model invariant (two-factor enabled without a
// secret) produce an operational error and a log line, never a login outcome.
//
// Persistence stays behind the CredentialStore interface. The store must make
// the lockout counter update atomic with respect to concurrent requests; the
// bundled PostgresStore does this with a row lock, and MemoryStore with a
// mutex. Two-factor challenge tokens are backed by a server-held marker in a
// ChallengeStore and consumed by the first verification attempt, so a
// challenge can never be redeemed twice. Every terminal outcome emits exactly
// one audit event; challenge tokens, TOTP secrets, recovery codes, and reset
// tokens never appear in events or logs.
package auth
