package dataset

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/vincent-petithory/dataurl"
)

// PayloadMediaType is media type of embedded payloads.
const PayloadMediaType = "text/plain;charset=utf-8"

var (
	ErrNotDataURI = errors.New("not a data URI")
	ErrNotText    = errors.New("payload is not text")
)

const upperhex = "0123456789ABCDEF"

// shouldEscape follows the quoting rules renderers were tested against:
// letters, digits, "_.-~" and "/" stay as is, everything else is escaped.
func shouldEscape(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return false
	}
	switch c {
	case '_', '.', '-', '~', '/':
		return false
	}
	return true
}

// Escape percent-encodes UTF-8 bytes of s.
func Escape(s string) string {
	n := 0
	for i := 0; i < len(s); i++ {
		if shouldEscape(s[i]) {
			n++
		}
	}
	if n == 0 {
		return s
	}

	var sb strings.Builder
	sb.Grow(len(s) + 2*n)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if shouldEscape(c) {
			sb.WriteByte('%')
			sb.WriteByte(upperhex[c>>4])
			sb.WriteByte(upperhex[c&15])
			continue
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

// EncodeDataURI embeds text as percent-encoded plain text data URI.
func EncodeDataURI(text string) string {
	return "data:" + PayloadMediaType + "," + Escape(text)
}

// DecodeDataURI returns content type (type/subtype) and text of the data URI. Only textual
// payloads are accepted and they must be valid UTF-8.
func DecodeDataURI(uri string) (string, string, error) {
	if !strings.HasPrefix(uri, "data:") {
		return "", "", ErrNotDataURI
	}
	du, err := dataurl.DecodeString(uri)
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrNotDataURI, err)
	}
	if du.MediaType.Type != "text" {
		return du.ContentType(), "", fmt.Errorf("%w: %s", ErrNotText, du.ContentType())
	}
	if cs, ok := du.MediaType.Params["charset"]; ok && !strings.EqualFold(cs, "utf-8") && !strings.EqualFold(cs, "us-ascii") {
		return du.ContentType(), "", fmt.Errorf("%w: unsupported charset %s", ErrNotText, cs)
	}
	if !utf8.Valid(du.Data) {
		return du.ContentType(), "", fmt.Errorf("%w: invalid UTF-8", ErrNotText)
	}
	return du.ContentType(), string(du.Data), nil
}
