package savefile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

const fieldElement = "file"

var ErrUnknownField = errors.New("unknown field")

var textEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"\r", "&#xD;",
)

// Field is the text content of a single file element of the document.
type Field struct {
	Index int
	Name  string
	Value string
	start int
	end   int
}

// Document is a parsed save file.
// Its text is kept as is, so rendering it back only touches the replaced fields.
type Document struct {
	text     string
	encoding encoding.Encoding
	fields   []Field
}

func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Document, error) {
	enc := sniffEncoding(data)
	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode save file: %w", err)
	}
	text := string(decoded)
	fields, err := scanFields(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse save file: %w", err)
	}
	return &Document{
		text:     text,
		encoding: enc,
		fields:   fields,
	}, nil
}

func (d *Document) Fields() []Field {
	return d.fields
}

// Render returns the document with the given fields' text replaced,
// encoded the same way the original was.
func (d *Document) Render(replacements map[int]string) ([]byte, error) {
	indices := make([]int, 0, len(replacements))
	for idx := range replacements {
		if idx < 0 || idx >= len(d.fields) {
			return nil, fmt.Errorf("%w %d", ErrUnknownField, idx)
		}
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	var sb strings.Builder
	pos := 0
	for _, idx := range indices {
		field := d.fields[idx]
		sb.WriteString(d.text[pos:field.start])
		sb.WriteString(textEscaper.Replace(replacements[idx]))
		pos = field.end
	}
	sb.WriteString(d.text[pos:])

	out, err := d.encoding.NewEncoder().Bytes([]byte(sb.String()))
	if err != nil {
		return nil, fmt.Errorf("failed to encode save file: %w", err)
	}
	return out, nil
}

// OutputPath names the patched copy of a save file for the given target.
func OutputPath(directory, saveFile, target string) string {
	base := filepath.Base(saveFile)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)
	return filepath.Join(directory, fmt.Sprintf("%s_decfix_%s%s", name, target, ext))
}

func sniffEncoding(data []byte) encoding.Encoding {
	switch {
	case bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}):
		return unicode.UTF8BOM
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}):
		return unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM)
	case bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		return unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM)
	default:
		return unicode.UTF8
	}
}

func passthroughCharset(_ string, input io.Reader) (io.Reader, error) {
	// the text has already been decoded to utf-8
	return input, nil
}
