// Package totp implements time-based one-time passwords (RFC 6238) and the
// single-use recovery codes that back them up when an authenticator device is
// unavailable.
//
// Parameters are fixed to what standard authenticator apps expect: HMAC-SHA1,
// 30-second time steps, 6-digit codes, 160-bit secrets. The Engine holds no
// mutable state; its clock and random source are injectable for deterministic
// tests, and a single instance can be shared freely across goroutines.
//
// Verification is deliberately forgiving on input and strict on timing:
// malformed candidate codes and garbled secrets yield a plain false rather
// than an error (attacker-controlled input must not produce distinguishable
// failures), while all code comparisons are constant-time.
//
//	engine := totp.New()
//	secret, _ := engine.GenerateSecret()
//
//	uri, _ := totp.URI(totp.Params{
//	    Secret:      secret,
//	    AccountName: "alice@example.com",
//	    Issuer:      "Acme",
//	})
//	// render uri as a QR code via totp.QRCode / totp.QRCodeDataURI
//
//	ok := engine.Verify(secret, "123456")
//
// Recovery codes are generated in XXXX-XXXX uppercase hex format and consumed
// at most once via VerifyAndConsume, which returns the remaining list for the
// caller to persist.
package totp
