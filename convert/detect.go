package convert

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
	"golang.org/x/text/transform"
)

// enough for filetype to recognize anything it knows
const headSize = 262

type srcEncoding int

const (
	encUnknown srcEncoding = iota
	encUTF8
	encUTF16BigEndian
	encUTF16LittleEndian
	encUTF32BigEndian
	encUTF32LittleEndian
)

// charsetAuto selects UTF-8 for valid UTF-8 input and Latin-1 otherwise.
const charsetAuto = "auto"

var (
	gctType = filetype.NewType("gct", "text/x-gct")

	tabularExts = map[string]bool{
		".csv": true,
		".tsv": true,
		".txt": true,
		".tab": true,
		".gct": true,
	}
)

func init() {
	filetype.AddMatcher(gctType, func(buf []byte) bool {
		return bytes.HasPrefix(buf, []byte("#1.2\n")) || bytes.HasPrefix(buf, []byte("#1.2\r\n"))
	})
}

func readHead(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	head := make([]byte, headSize)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}
	return head[:n], nil
}

func isArchiveFile(path string) (bool, error) {
	head, err := readHead(path)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(filepath.Ext(path), ".zip") && filetype.Is(head, "zip"), nil
}

// isTabularName checks file name extension, compressed files are recognized
// by extension of the name without ".gz".
func isTabularName(name string) bool {
	name = strings.ToLower(name)
	name = strings.TrimSuffix(name, ".gz")
	return tabularExts[filepath.Ext(name)]
}

// isTabularContent rejects anything filetype recognizes as binary format
// except gzip compressed data. Some magic numbers are printable ("BM", "MZ"),
// so a match is only trusted when the head does not look like text.
func isTabularContent(head []byte) (bool, types.Type) {
	kind, err := filetype.Match(head)
	if err != nil || kind == filetype.Unknown {
		return true, filetype.Unknown
	}
	return kind.Extension == "gz" || kind == gctType || looksLikeText(head), kind
}

// looksLikeText accepts anything with BOM and otherwise any bytes except
// control characters which never appear in delimited text. Bytes above 0x7F
// are allowed as input may be in single byte code page.
func looksLikeText(head []byte) bool {
	if detectUTF(head) != encUnknown {
		return true
	}
	for _, c := range head {
		if c < 0x20 && c != '\t' && c != '\n' && c != '\r' && c != '\f' {
			return false
		}
	}
	return true
}

func isTabularFile(path string) (bool, error) {
	if !isTabularName(filepath.Base(path)) {
		return false, nil
	}
	head, err := readHead(path)
	if err != nil {
		return false, err
	}
	ok, _ := isTabularContent(head)
	return ok, nil
}

func isUTF8BOM3(buf []byte) bool {
	return len(buf) >= 3 && buf[0] == 0xEF && buf[1] == 0xBB && buf[2] == 0xBF
}

func isUTF16BigEndianBOM2(buf []byte) bool {
	return len(buf) >= 2 && buf[0] == 0xFE && buf[1] == 0xFF
}

func isUTF16LittleEndianBOM2(buf []byte) bool {
	return len(buf) >= 2 && buf[0] == 0xFF && buf[1] == 0xFE
}

func isUTF32BigEndianBOM4(buf []byte) bool {
	return len(buf) >= 4 && buf[0] == 0x00 && buf[1] == 0x00 && buf[2] == 0xFE && buf[3] == 0xFF
}

func isUTF32LittleEndianBOM4(buf []byte) bool {
	return len(buf) >= 4 && buf[0] == 0xFF && buf[1] == 0xFE && buf[2] == 0x00 && buf[3] == 0x00
}

// detectUTF looks for BOM, UTF-32 has to be checked before UTF-16.
func detectUTF(buf []byte) srcEncoding {
	switch {
	case isUTF8BOM3(buf):
		return encUTF8
	case isUTF32BigEndianBOM4(buf):
		return encUTF32BigEndian
	case isUTF32LittleEndianBOM4(buf):
		return encUTF32LittleEndian
	case isUTF16BigEndianBOM2(buf):
		return encUTF16BigEndian
	case isUTF16LittleEndianBOM2(buf):
		return encUTF16LittleEndian
	}
	return encUnknown
}

// selectReader returns reader decoding UTF variants to UTF-8 and removing
// BOM. Input without BOM is returned unchanged.
func selectReader(r io.Reader, enc srcEncoding) io.Reader {
	switch enc {
	case encUnknown:
		return r
	case encUTF8:
		return transform.NewReader(r, unicode.UTF8BOM.NewDecoder())
	case encUTF16BigEndian:
		return transform.NewReader(r, unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder())
	case encUTF16LittleEndian:
		return transform.NewReader(r, unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder())
	case encUTF32BigEndian:
		return transform.NewReader(r, utf32.UTF32(utf32.BigEndian, utf32.ExpectBOM).NewDecoder())
	case encUTF32LittleEndian:
		return transform.NewReader(r, utf32.UTF32(utf32.LittleEndian, utf32.ExpectBOM).NewDecoder())
	default:
		// this should never happen
		panic(fmt.Sprintf("unexpected encoding value %d", enc))
	}
}

// decodeText turns raw source bytes into text: gzip compressed data is
// expanded, BOM selects UTF encoding, otherwise label names the character
// set.
func decodeText(data []byte, label string) (string, error) {
	if filetype.Is(data, "gz") {
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return "", fmt.Errorf("unable to read compressed data: %w", err)
		}
		defer zr.Close()
		if data, err = io.ReadAll(zr); err != nil {
			return "", fmt.Errorf("unable to decompress data: %w", err)
		}
	}

	var r io.Reader = bytes.NewReader(data)
	if enc := detectUTF(data); enc != encUnknown {
		r = selectReader(r, enc)
	} else {
		if strings.EqualFold(label, charsetAuto) {
			label = "latin1"
			if utf8.Valid(data) {
				label = "utf-8"
			}
		}
		var err error
		if r, err = charset.NewReaderLabel(label, r); err != nil {
			return "", fmt.Errorf("unable to decode text as %q: %w", label, err)
		}
	}
	text, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("unable to decode text: %w", err)
	}
	return string(text), nil
}
