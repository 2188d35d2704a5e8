package dataset

import (
	"fmt"
	"unicode/utf8"

	"go.uber.org/multierr"
)

// Names of checked properties, used in findings.
const (
	PropColumnCount   = "column-count"
	PropRowWidth      = "row-width"
	PropDomain        = "domain"
	PropPayload       = "payload"
	PropSeparator     = "separator"
	PropPrimaryKey    = "primary-key"
	PropNumeric       = "numeric"
	PropUniqueColumns = "unique-columns"
	PropColumnType    = "column-type"
	PropHeader        = "header"
)

// Finding is a single verification result. Row is 1-based data row number
// (header excluded) or 0 when finding is not about a particular row.
type Finding struct {
	Severity Severity
	Property string
	Column   string
	Row      int
	Message  string
}

func (f Finding) Error() string {
	s := f.Property
	if len(f.Column) > 0 {
		s += fmt.Sprintf(" [column %q]", f.Column)
	}
	if f.Row > 0 {
		s += fmt.Sprintf(" [row %d]", f.Row)
	}
	return s + ": " + f.Message
}

// Report collects findings for a single dataset.
type Report struct {
	DatasetID string
	Columns   int
	Rows      int
	Findings  []Finding
}

func (r *Report) add(sev Severity, prop, col string, row int, format string, args ...any) {
	r.Findings = append(r.Findings, Finding{
		Severity: sev,
		Property: prop,
		Column:   col,
		Row:      row,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Err combines all error findings, nil if there are none.
func (r *Report) Err() error {
	var err error
	for _, f := range r.Findings {
		if f.Severity == SeverityError {
			err = multierr.Append(err, f)
		}
	}
	if err != nil {
		return fmt.Errorf("dataset %q: %w", r.DatasetID, err)
	}
	return nil
}

// Warnings returns non fatal findings.
func (r *Report) Warnings() []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Severity == SeverityWarning {
			out = append(out, f)
		}
	}
	return out
}

// Verify checks structural consistency of a descriptor with its payload:
// columns match header fields, every row is as wide as the header, numeric
// values parse and fit declared domains, payload decodes and is encoded
// canonically. A primary key which is not one of declared columns is only
// reported as a warning: renderers treat it as implicit row ordinal.
func Verify(d *Descriptor) *Report {
	r := &Report{DatasetID: d.ID, Columns: len(d.Desc.Columns)}

	sepOK := utf8.RuneCountInString(d.Desc.Separator) == 1
	if !sepOK {
		r.add(SeverityError, PropSeparator, "", 0, "separator must be a single character, got %q", d.Desc.Separator)
	}

	seen := make(map[string]struct{}, len(d.Desc.Columns))
	for _, c := range d.Desc.Columns {
		if _, dup := seen[c.Column]; dup {
			r.add(SeverityError, PropUniqueColumns, c.Column, 0, "column declared more than once")
		}
		seen[c.Column] = struct{}{}
		verifyColumn(r, &c)
	}

	if len(d.Desc.PrimaryKey) == 0 {
		r.add(SeverityError, PropPrimaryKey, "", 0, "primary key is not set")
	} else if _, ok := seen[d.Desc.PrimaryKey]; !ok {
		r.add(SeverityWarning, PropPrimaryKey, d.Desc.PrimaryKey, 0, "implicit primary key: not among declared columns")
	}

	_, text, err := DecodeDataURI(d.URL)
	if err != nil {
		r.add(SeverityError, PropPayload, "", 0, "%v", err)
		return r
	}
	if EncodeDataURI(text) != d.URL {
		r.add(SeverityWarning, PropPayload, "", 0, "payload is not canonically encoded")
	}
	if !sepOK {
		return r
	}

	t := ParseTSV(text, d.Desc.Separator)
	r.Rows = len(t.Rows)

	if len(t.Header) != len(d.Desc.Columns) {
		r.add(SeverityError, PropColumnCount, "", 0, "%d columns declared, payload header has %d fields", len(d.Desc.Columns), len(t.Header))
	}
	for i, c := range d.Desc.Columns {
		if i < len(t.Header) && t.Header[i] != c.Column {
			r.add(SeverityError, PropHeader, c.Column, 0, "payload header field %d is %q", i+1, t.Header[i])
		}
	}

	for i, row := range t.Rows {
		if len(row) != len(t.Header) {
			r.add(SeverityError, PropRowWidth, "", i+1, "%d fields, header has %d", len(row), len(t.Header))
		}
	}

	for ci, c := range d.Desc.Columns {
		if c.Type != ColumnTypeNumber || ci >= len(t.Header) {
			continue
		}
		for ri := range t.Rows {
			cell := t.Cell(ri, ci)
			if len(cell) == 0 {
				continue
			}
			v, ok := ParseNumber(cell)
			if !ok {
				r.add(SeverityError, PropNumeric, c.Column, ri+1, "value %q is not a number", cell)
				continue
			}
			if c.Domain != nil && !c.Domain.Contains(v) {
				r.add(SeverityError, PropDomain, c.Column, ri+1, "value %s is outside of %s", v, c.Domain)
			}
		}
	}
	return r
}

func verifyColumn(r *Report, c *Column) {
	if !c.Type.IsValid() {
		r.add(SeverityError, PropColumnType, c.Column, 0, "unknown column type %q", c.Type)
		return
	}
	if c.Type != ColumnTypeNumber {
		if c.Domain != nil || len(c.NumberFormat) > 0 {
			r.add(SeverityWarning, PropColumnType, c.Column, 0, "domain or number format declared for %s column", c.Type)
		}
		return
	}
	if c.Domain == nil {
		r.add(SeverityError, PropDomain, c.Column, 0, "numeric column has no domain")
	} else if c.Domain.Min().Compare(c.Domain.Max()) > 0 {
		r.add(SeverityError, PropDomain, c.Column, 0, "domain %s is inverted", c.Domain)
	}
	if len(c.NumberFormat) == 0 {
		r.add(SeverityError, PropNumeric, c.Column, 0, "numeric column has no number format")
	}
}
