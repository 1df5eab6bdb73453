package cue

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Decode converts raw subtitle bytes to a string. When charset is empty the
// encoding is detected: byte order marks first, then UTF-8 validity, falling
// back to GB18030 for legacy Chinese subtitle files. The returned name is the
// encoding that was used.
func Decode(data []byte, charset string) (string, string, error) {
	charset = strings.TrimSpace(charset)
	if charset != "" {
		enc, err := htmlindex.Get(charset)
		if err != nil {
			return "", "", fmt.Errorf("unknown subtitle encoding %q: %w", charset, err)
		}
		name, err := htmlindex.Name(enc)
		if err != nil {
			name = strings.ToLower(charset)
		}
		text, err := decodeWith(enc, data)
		if err != nil {
			return "", "", fmt.Errorf("decode %s: %w", name, err)
		}
		return strings.TrimPrefix(text, "\ufeff"), name, nil
	}

	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return string(data[len(bomUTF8):]), "utf-8", nil
	case bytes.HasPrefix(data, bomUTF16LE):
		text, err := decodeWith(unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM), data)
		if err != nil {
			return "", "", fmt.Errorf("decode utf-16le: %w", err)
		}
		return text, "utf-16le", nil
	case bytes.HasPrefix(data, bomUTF16BE):
		text, err := decodeWith(unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM), data)
		if err != nil {
			return "", "", fmt.Errorf("decode utf-16be: %w", err)
		}
		return text, "utf-16be", nil
	case utf8.Valid(data):
		return string(data), "utf-8", nil
	}

	text, err := decodeWith(simplifiedchinese.GB18030, data)
	if err != nil {
		return "", "", fmt.Errorf("decode gb18030: %w", err)
	}
	return text, "gb18030", nil
}

func decodeWith(enc encoding.Encoding, data []byte) (string, error) {
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
