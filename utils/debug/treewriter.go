// Package debug produces human readable dumps of intermediate program state
// for debug reports.
package debug

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxText limits length of quoted text values, longer ones are cut.
const MaxText = 120

type TreeWriter struct {
	w *strings.Builder
}

func NewTreeWriter() *TreeWriter {
	return &TreeWriter{
		w: &strings.Builder{},
	}
}

func (tw TreeWriter) String() string {
	return tw.w.String()
}

func (tw TreeWriter) indent(depth int) {
	for range depth {
		tw.w.WriteString("  ")
	}
}

func (tw TreeWriter) Line(depth int, format string, args ...any) {
	tw.indent(depth)
	fmt.Fprintf(tw.w, format, args...)
	tw.w.WriteByte('\n')
}

// TextBlock writes quoted value under label, so separators and line breaks
// stay visible.
func (tw TreeWriter) TextBlock(depth int, label, value string) {
	tw.indent(depth)
	tw.w.WriteString(label)
	tw.w.WriteString(": ")
	tw.w.WriteString(encodeText(value))
	tw.w.WriteByte('\n')
}

// List writes values as a single bracketed line.
func (tw TreeWriter) List(depth int, label string, values []string) {
	quoted := make([]string, 0, len(values))
	for _, v := range values {
		quoted = append(quoted, encodeText(v))
	}
	tw.indent(depth)
	fmt.Fprintf(tw.w, "%s (%d): [%s]\n", label, len(values), strings.Join(quoted, ", "))
}

func encodeText(raw string) string {
	if raw == "" {
		return `""`
	}
	if r := []rune(raw); len(r) > MaxText {
		return strconv.Quote(string(r[:MaxText])) + "..."
	}
	return strconv.Quote(raw)
}
