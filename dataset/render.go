package dataset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"unicode/utf8"
)

// MarshalIndent produces 2-space indented JSON restricted to ASCII: every
// non-ASCII character (and DEL) is written as \uXXXX escape, HTML characters
// are left alone.
func MarshalIndent(v any) ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return asciiOnly(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}

// asciiOnly escapes non-ASCII runes. In valid JSON such bytes may only appear
// inside strings so no tokenization is necessary.
func asciiOnly(data []byte) []byte {
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); {
		c := data[i]
		if c < utf8.RuneSelf && c != 0x7f {
			out = append(out, c)
			i++
			continue
		}
		r, size := utf8.DecodeRune(data[i:])
		i += size
		if r >= 0x10000 {
			r -= 0x10000
			out = fmt.Appendf(out, `\u%04x\u%04x`, 0xd800+(r>>10), 0xdc00+(r&0x3ff))
			continue
		}
		out = fmt.Appendf(out, `\u%04x`, r)
	}
	return out
}

// Compact collapses indentation of everything except objects and strings:
// a run of white space followed by anything but '"' or '{' becomes a single
// space. Result keeps one line per object key and per array of objects,
// while scalar arrays fit on a line ("[ 1, 7 ]"). String contents are never
// touched.
func Compact(data []byte) []byte {
	out := make([]byte, 0, len(data))
	inString, escaped := false, false
	for i := 0; i < len(data); i++ {
		c := data[i]
		if inString {
			out = append(out, c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		if isSpace(c) {
			j := i
			for j < len(data) && isSpace(data[j]) {
				j++
			}
			if j < len(data) && data[j] != '"' && data[j] != '{' {
				out = append(out, ' ')
			} else {
				out = append(out, data[i:j]...)
			}
			i = j - 1
			continue
		}
		if c == '"' {
			inString = true
		}
		out = append(out, c)
	}
	return out
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// MarshalList returns compacted JSON array of descriptors.
func MarshalList(list []Descriptor) ([]byte, error) {
	if list == nil {
		list = []Descriptor{}
	}
	data, err := MarshalIndent(list)
	if err != nil {
		return nil, fmt.Errorf("unable to marshal datasets: %w", err)
	}
	return Compact(data), nil
}

// Render returns JavaScript statement assigning descriptors to variable:
//
//	var outside_data = [ ... ];
func Render(variable string, list []Descriptor) ([]byte, error) {
	data, err := MarshalList(list)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(data)+len(variable)+8)
	out = append(out, "var "...)
	out = append(out, variable...)
	out = append(out, " = "...)
	out = append(out, data...)
	out = append(out, ';')
	return out, nil
}

var (
	ErrNoDatasets = errors.New("no datasets found")

	jsAssignment = regexp.MustCompile(`^\s*(?:var|let|const)\s+([A-Za-z_$][A-Za-z0-9_$]*)\s*=\s*`)
)

// Load reads descriptors from either JavaScript produced by Render or plain
// JSON (array of descriptors or a single descriptor object). Name of the
// assigned variable is returned when present.
func Load(r io.Reader) ([]Descriptor, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", err
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	var variable string
	if m := jsAssignment.FindSubmatchIndex(data); m != nil {
		variable = string(data[m[2]:m[3]])
		data = data[m[1]:]
		data = bytes.TrimSpace(data)
		data = bytes.TrimSuffix(data, []byte(";"))
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, variable, ErrNoDatasets
	}

	var list []Descriptor
	if data[0] == '{' {
		var d Descriptor
		if err := json.Unmarshal(data, &d); err != nil {
			return nil, variable, fmt.Errorf("unable to parse dataset: %w", err)
		}
		list = append(list, d)
	} else if err := json.Unmarshal(data, &list); err != nil {
		return nil, variable, fmt.Errorf("unable to parse datasets: %w", err)
	}
	if len(list) == 0 {
		return nil, variable, ErrNoDatasets
	}
	return list, variable, nil
}
