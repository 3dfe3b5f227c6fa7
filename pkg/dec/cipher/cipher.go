package cipher

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
)

const (
	multiplier = 0x71E
	offset     = 0x7FFF
)

var ErrMalformedToken = errors.New("invalid encrypted value")

// EncryptChar maps a single UTF-16 code unit to its encrypted integer token.
func EncryptChar(c uint16, key int32) int32 {
	return int32(c)*multiplier + offset + key
}

// DecryptChar reverses EncryptChar given the same key.
// Tokens produced with a different key decode to garbage rather than failing.
func DecryptChar(token int32, key int32) uint16 {
	token -= offset + key
	token /= multiplier
	return uint16(token) // nolint: gosec
}

func EncryptString(text string, key int32) string {
	if text == "" {
		return ""
	}
	units := utf16.Encode([]rune(text))
	var sb strings.Builder
	for i, u := range units {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(strconv.FormatInt(int64(EncryptChar(u, key)), 10))
	}
	return sb.String()
}

func DecryptString(text string, key int32) (string, error) {
	if text == "" {
		return "", nil
	}
	tokens := strings.Split(text, " ")
	units := make([]uint16, 0, len(tokens))
	for _, tok := range tokens {
		value, err := strconv.ParseInt(tok, 10, 32)
		if err != nil {
			return "", fmt.Errorf("%w '%s'", ErrMalformedToken, tok)
		}
		units = append(units, DecryptChar(int32(value), key))
	}
	return string(utf16.Decode(units)), nil
}
