package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
)

// gctVersion starts GenePattern GCT files, it is followed by a dimensions
// line before the real header.
const gctVersion = "#1.2"

// File is a single parsed source. Every row has exactly len(Header) cells,
// empty cell means missing value.
type File struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Parse reads delimited text. Delimiter is sniffed from the first lines, when
// nothing qualifies whole lines are values of a single column named by the
// first line.
func Parse(name, text string, opts *Options, log *zap.Logger) (*File, error) {
	opts = opts.withDefaults()

	lines := splitLines(text)
	if !opts.NoGCT && len(lines) > 0 && lines[0] == gctVersion {
		log.Debug("GCT preamble skipped", zap.String("file", name))
		lines = lines[min(2, len(lines)):]
	}

	f := &File{Name: name}
	if len(lines) == 0 {
		return f, nil
	}

	delim, err := Sniff(lines[:min(opts.SniffLines, len(lines))], opts.Delimiters)
	if errors.Is(err, ErrNoDelimiter) {
		log.Debug("No delimiter found, reading single column", zap.String("file", name))
		f.Header = []string{lines[0]}
		for _, l := range lines[1:] {
			f.Rows = append(f.Rows, []string{l})
		}
		return f, nil
	}
	log.Debug("Delimiter detected", zap.String("file", name), zap.String("delimiter", string(delim)))

	r := csv.NewReader(strings.NewReader(strings.Join(lines, "\n")))
	r.Comma = delim
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return f, nil
	}
	if err != nil {
		return nil, fmt.Errorf("unable to read header of %s: %w", name, err)
	}

	// duplicate names keep first position, later values overwrite earlier ones
	position := make(map[string]int, len(header))
	mapping := make([]int, len(header))
	for i, h := range header {
		j, ok := position[h]
		if !ok {
			j = len(f.Header)
			position[h] = j
			f.Header = append(f.Header, h)
		}
		mapping[i] = j
	}
	if len(f.Header) != len(header) {
		log.Debug("Duplicate column names merged", zap.String("file", name), zap.Strings("header", header))
	}

	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("unable to read %s: %w", name, err)
		}
		if len(rec) > len(header) {
			line, _ := r.FieldPos(0)
			log.Debug("Extra fields dropped", zap.String("file", name), zap.Int("line", line), zap.Strings("fields", rec[len(header):]))
			rec = rec[:len(header)]
		}
		row := make([]string, len(f.Header))
		for i, v := range rec {
			row[mapping[i]] = v
		}
		f.Rows = append(f.Rows, row)
	}
	return f, nil
}

// splitLines breaks text into lines dropping line terminators, final line
// terminator does not produce an empty line.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimSuffix(text, "\n")
	if len(text) == 0 {
		return nil
	}
	return strings.Split(text, "\n")
}
