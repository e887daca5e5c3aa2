package encoding

import "strings"

// base32Alphabet is Crockford's base32 alphabet in lower case. It has no i, l, o or u.
const base32Alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Base32 encodes data with Crockford's alphabet. The output is not padded; a trailing
// partial group is filled with zero bits.
func Base32(data []byte) string {
	var (
		out   strings.Builder
		bits  uint
		accum uint32
	)

	out.Grow((len(data)*8 + 4) / 5) //nolint:mnd

	for _, b := range data {
		accum = accum<<8 | uint32(b)
		bits += 8

		for bits >= 5 {
			bits -= 5
			out.WriteByte(base32Alphabet[(accum>>bits)&0x1F])
		}
	}

	if bits > 0 {
		out.WriteByte(base32Alphabet[(accum<<(5-bits))&0x1F])
	}

	return out.String()
}
