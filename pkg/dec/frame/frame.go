package frame

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sergeii/decfix/pkg/dec/cipher"
)

const (
	// Prefix opens every DEC-encoded header line
	Prefix = "#DEC_ENC::"
	// Marker is the constant phrase encrypted with the password key.
	// Decrypting it back proves the key is right.
	Marker = "ENCODED"
)

const separator = "::"

var ErrInvalidHeaderShape = errors.New("invalid DEC header shape")

type Header struct {
	Header    string
	Signature string
	// Key is kept in its raw, encrypted form
	Key          string
	Extension    string
	HasExtension bool
}

type File struct {
	Header  Header
	Message string
}

// SplitBlock breaks the text starting at Prefix into non-empty lines.
func SplitBlock(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return r == '\r' || r == '\n'
	})
}

func splitHeader(lines []string) ([]string, error) {
	if len(lines) != 2 {
		return nil, fmt.Errorf(
			"%w: invalid section count %d (should be 2, header and body)",
			ErrInvalidHeaderShape, len(lines),
		)
	}
	head := strings.Split(lines[0], separator)
	if len(head) != 4 && len(head) != 5 {
		return nil, fmt.Errorf(
			"%w: invalid head array length %d (should be 4 or 5)",
			ErrInvalidHeaderShape, len(head),
		)
	}
	return head, nil
}

// ParseHeader decrypts the header fields of a two-line block with the platform's empty key.
// The key field is returned as is.
func ParseHeader(lines []string, emptyKey int32) (Header, error) {
	head, err := splitHeader(lines)
	if err != nil {
		return Header{}, err
	}
	return decryptHeader(head, emptyKey)
}

// DecryptSignature decrypts only the signature field of the block.
func DecryptSignature(lines []string, emptyKey int32) (string, error) {
	head, err := splitHeader(lines)
	if err != nil {
		return "", err
	}
	return cipher.DecryptString(head[2], emptyKey)
}

// Decrypt decodes the whole block provided the marker decrypts with key.
// A marker mismatch is reported with ok=false and no error.
func Decrypt(lines []string, key, emptyKey int32) (File, bool, error) {
	head, err := splitHeader(lines)
	if err != nil {
		return File{}, false, err
	}
	marker, err := cipher.DecryptString(head[3], key)
	if err != nil {
		return File{}, false, err
	}
	if marker != Marker {
		return File{}, false, nil
	}
	header, err := decryptHeader(head, emptyKey)
	if err != nil {
		return File{}, false, err
	}
	message, err := cipher.DecryptString(lines[1], key)
	if err != nil {
		return File{}, false, err
	}
	return File{Header: header, Message: message}, true, nil
}

// Encrypt frames the message and its header into a block.
// The marker and the message are encrypted with key, the rest with emptyKey.
func Encrypt(message string, header Header, key, emptyKey int32) string {
	var sb strings.Builder
	sb.WriteString(Prefix)
	sb.WriteString(cipher.EncryptString(header.Header, emptyKey))
	sb.WriteString(separator)
	sb.WriteString(cipher.EncryptString(header.Signature, emptyKey))
	sb.WriteString(separator)
	sb.WriteString(cipher.EncryptString(Marker, key))
	if header.HasExtension {
		sb.WriteString(separator)
		sb.WriteString(cipher.EncryptString(header.Extension, emptyKey))
	}
	sb.WriteByte('\n')
	sb.WriteString(cipher.EncryptString(message, key))
	return sb.String()
}

func decryptHeader(head []string, emptyKey int32) (Header, error) {
	var err error
	header := Header{Key: head[3]}
	if header.Header, err = cipher.DecryptString(head[1], emptyKey); err != nil {
		return Header{}, err
	}
	if header.Signature, err = cipher.DecryptString(head[2], emptyKey); err != nil {
		return Header{}, err
	}
	if len(head) == 5 {
		if header.Extension, err = cipher.DecryptString(head[4], emptyKey); err != nil {
			return Header{}, err
		}
		header.HasExtension = true
	}
	return header, nil
}
