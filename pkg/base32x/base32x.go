// Package base32x implements the RFC 4648 base32 alphabet with relaxed rules
// suited to secrets typed or scanned by humans: encoding emits no padding, and
// decoding is case-insensitive and silently skips padding, whitespace, and any
// other byte outside the alphabet.
//
// The round-trip law Decode(Encode(b)) == b holds for every byte slice b,
// including the empty one.
package base32x

import "strings"

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567"

// decodeMap maps a byte to its 5-bit value, or -1 for bytes outside the
// alphabet. Lowercase letters decode as their uppercase counterparts.
var decodeMap [256]int8

func init() {
	for i := range decodeMap {
		decodeMap[i] = -1
	}
	for i := 0; i < len(alphabet); i++ {
		decodeMap[alphabet[i]] = int8(i)
		decodeMap[alphabet[i]|0x20] = int8(i) // lowercase alias; digits are unaffected
	}
}

// Encode converts src to base32 text, most-significant bit first, padding the
// final partial 5-bit group with zero bits. No '=' padding is emitted.
func Encode(src []byte) string {
	if len(src) == 0 {
		return ""
	}

	var b strings.Builder
	b.Grow((len(src)*8 + 4) / 5)

	var buf uint16
	var bits uint
	for _, c := range src {
		buf = buf<<8 | uint16(c)
		bits += 8
		for bits >= 5 {
			bits -= 5
			b.WriteByte(alphabet[buf>>bits&0x1f])
		}
	}
	if bits > 0 {
		b.WriteByte(alphabet[buf<<(5-bits)&0x1f])
	}

	return b.String()
}

// Decode converts base32 text back to bytes. Bytes outside the alphabet
// (including '=' padding and whitespace) are skipped, and trailing bits that
// do not complete a byte are dropped, so Decode never fails.
func Decode(s string) []byte {
	out := make([]byte, 0, len(s)*5/8)

	var buf uint16
	var bits uint
	for i := 0; i < len(s); i++ {
		v := decodeMap[s[i]]
		if v < 0 {
			continue
		}
		buf = buf<<5 | uint16(v)
		bits += 5
		if bits >= 8 {
			bits -= 8
			out = append(out, byte(buf>>bits))
		}
	}

	return out
}
