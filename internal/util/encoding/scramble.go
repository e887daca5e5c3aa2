package encoding

import (
	"math/rand/v2"
	"strings"
)

const (
	scramblePrefix   = "^^"
	scrambleSuffix   = "$$"
	scrambleNoise    = 2 // random characters in front of every plaintext character
	scrambleAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// ScramblePassword hides a password inside random noise so it is not stored verbatim.
// This is obfuscation, not encryption: anyone knowing the layout can read it back.
//
// The token is "^^", then for every character of the password two random alphanumeric
// characters followed by the character itself, then "$$".
//
//nolint:gosec
func ScramblePassword(password string) string {
	var token strings.Builder

	chars := []rune(password)
	token.Grow(len(scramblePrefix) + len(password) + scrambleNoise*len(chars) + len(scrambleSuffix))
	token.WriteString(scramblePrefix)

	for _, char := range chars {
		for range scrambleNoise {
			token.WriteByte(scrambleAlphabet[rand.IntN(len(scrambleAlphabet))])
		}

		token.WriteRune(char)
	}

	token.WriteString(scrambleSuffix)

	return token.String()
}

// UnscramblePassword recovers the password from a token produced by ScramblePassword.
// It returns false if the token lacks the "^^" and "$$" markers. A trailing incomplete
// group is ignored.
func UnscramblePassword(token string) (string, bool) {
	if len(token) < len(scramblePrefix)+len(scrambleSuffix) ||
		!strings.HasPrefix(token, scramblePrefix) ||
		!strings.HasSuffix(token, scrambleSuffix) {
		return "", false
	}

	content := []rune(token[len(scramblePrefix) : len(token)-len(scrambleSuffix)])
	group := scrambleNoise + 1

	var password strings.Builder

	for i := 0; i+group <= len(content); i += group {
		password.WriteRune(content[i+scrambleNoise])
	}

	return password.String(), true
}
