package savefile

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

func scanFields(text string) ([]Field, error) {
	var fields []Field
	var current *Field
	var value strings.Builder
	depth := 0

	decoder := xml.NewDecoder(strings.NewReader(text))
	decoder.CharsetReader = passthroughCharset

	for {
		offset := int(decoder.InputOffset())
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		switch tok := token.(type) {
		case xml.StartElement:
			if current != nil {
				depth++
				continue
			}
			if tok.Name.Local != fieldElement {
				continue
			}
			current = &Field{
				Index: len(fields),
				Name:  attrValue(tok, "name"),
				start: int(decoder.InputOffset()),
			}
			value.Reset()
		case xml.CharData:
			if current != nil {
				value.Write(tok)
			}
		case xml.EndElement:
			if current == nil {
				continue
			}
			if depth > 0 {
				depth--
				continue
			}
			current.end = offset
			// self-closing elements consume no input for their end
			if current.end < current.start {
				current.end = current.start
			}
			current.Value = value.String()
			fields = append(fields, *current)
			current = nil
		}
	}

	return fields, nil
}

func attrValue(elem xml.StartElement, name string) string {
	for _, attr := range elem.Attr {
		if attr.Name.Local == name {
			return attr.Value
		}
	}
	return ""
}
