package dataset

import "strings"

// Table is decoded payload: header row and data rows, all cells kept as text.
// Empty cell means missing value.
type Table struct {
	Header []string
	Rows   [][]string
}

// ParseTSV splits payload text. No quoting is recognized: payloads are plain
// separator joined lines with no trailing newline, so every line including
// an empty last one is a row.
func ParseTSV(text, sep string) *Table {
	t := &Table{}
	if len(text) == 0 {
		return t
	}
	if len(sep) == 0 {
		sep = "\t"
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		cells := strings.Split(line, sep)
		if i == 0 {
			t.Header = cells
			continue
		}
		t.Rows = append(t.Rows, cells)
	}
	return t
}

// ColumnIndex returns position of named column in header or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// Cell returns value at row/column, "" for cells the row does not have.
func (t *Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col]
}

// String joins table back into payload text.
func (t *Table) String(sep string) string {
	var sb strings.Builder
	sb.WriteString(strings.Join(t.Header, sep))
	for _, row := range t.Rows {
		sb.WriteByte('\n')
		sb.WriteString(strings.Join(row, sep))
	}
	return sb.String()
}
