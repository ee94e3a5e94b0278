package totp

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// qrSize is the pixel size of generated QR images.
const qrSize = 256

// Params describes an enrollment for otpauth URI generation.
type Params struct {
	Secret      string // base32-encoded TOTP secret (required)
	AccountName string // user identifier shown in authenticator apps, typically an email (required)
	Issuer      string // service name shown in authenticator apps (required)
}

// Validate ensures all required fields are present.
func (p Params) Validate() error {
	if p.Secret == "" {
		return ErrMissingSecret
	}
	if p.AccountName == "" {
		return ErrMissingAccountName
	}
	if p.Issuer == "" {
		return ErrMissingIssuer
	}
	return nil
}

// URI builds a Key Uri Format string for authenticator apps:
// otpauth://totp/{issuer}:{account}?secret=...&issuer=...&algorithm=SHA1&digits=6&period=30
// See https://github.com/google/google-authenticator/wiki/Key-Uri-Format.
func URI(params Params) (string, error) {
	if err := params.Validate(); err != nil {
		return "", err
	}

	label := fmt.Sprintf("%s:%s",
		url.PathEscape(params.Issuer),
		url.PathEscape(params.AccountName),
	)

	query := url.Values{}
	query.Set("secret", params.Secret)
	query.Set("issuer", params.Issuer)
	query.Set("algorithm", "SHA1")
	query.Set("digits", fmt.Sprintf("%d", Digits))
	query.Set("period", fmt.Sprintf("%d", Period))

	return fmt.Sprintf("otpauth://totp/%s?%s", label, query.Encode()), nil
}

// QRCode renders the otpauth URI for params as a PNG image.
func QRCode(params Params) ([]byte, error) {
	uri, err := URI(params)
	if err != nil {
		return nil, err
	}
	png, err := qrcode.Encode(uri, qrcode.Medium, qrSize)
	if err != nil {
		return nil, errors.Join(ErrFailedToGenerateQRCode, err)
	}
	return png, nil
}

// QRCodeDataURI renders the otpauth URI as a base64 PNG data URI that can be
// embedded directly into an <img> tag.
func QRCodeDataURI(params Params) (string, error) {
	png, err := QRCode(params)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString("data:image/png;base64,")
	b.WriteString(base64.StdEncoding.EncodeToString(png))
	return b.String(), nil
}
