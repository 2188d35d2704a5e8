// Package dataset describes tabular datasets the way table renderers consume
// them: a descriptor with column metadata and the data itself embedded as
// percent-encoded TSV in a data URI.
package dataset

import (
	"fmt"
	"slices"
)

// Descriptor is a single dataset entry. NOTE: field order matters, JSON keys
// are expected to come out sorted.
type Descriptor struct {
	Desc Description `json:"desc"`
	ID   string      `json:"id"`
	Name string      `json:"name"`
	URL  string      `json:"url"`
}

type Description struct {
	Columns    []Column `json:"columns"`
	PrimaryKey string   `json:"primaryKey"`
	Separator  string   `json:"separator"`
}

// Column describes one field of the payload. Domain and NumberFormat are only
// present for numeric columns.
type Column struct {
	Column       string     `json:"column"`
	Domain       *Domain    `json:"domain,omitempty"`
	NumberFormat string     `json:"numberFormat,omitempty"`
	Type         ColumnType `json:"type"`
}

// Domain is inclusive [min, max] range of column values.
type Domain [2]Number

func NewDomain(lo, hi Number) *Domain {
	return &Domain{lo, hi}
}

func (d Domain) Min() Number { return d[0] }

func (d Domain) Max() Number { return d[1] }

// Contains reports whether v lies within the range.
func (d Domain) Contains(v Number) bool {
	return d[0].Compare(v) <= 0 && v.Compare(d[1]) <= 0
}

func (d Domain) String() string {
	return fmt.Sprintf("[%s, %s]", d[0], d[1])
}

// StringColumn returns descriptor of a plain text column.
func StringColumn(name string) Column {
	return Column{Column: name, Type: ColumnTypeString}
}

// NumberColumn returns descriptor of a numeric column.
func NumberColumn(name string, lo, hi Number, format string) Column {
	return Column{Column: name, Type: ColumnTypeNumber, Domain: NewDomain(lo, hi), NumberFormat: format}
}

// ColumnNames returns names of all columns in order.
func (d *Description) ColumnNames() []string {
	names := make([]string, 0, len(d.Columns))
	for _, c := range d.Columns {
		names = append(names, c.Column)
	}
	return names
}

// HasColumn reports if name is one of declared columns.
func (d *Description) HasColumn(name string) bool {
	return slices.Contains(d.ColumnNames(), name)
}

// Table decodes the payload of the descriptor.
func (d *Descriptor) Table() (*Table, error) {
	_, text, err := DecodeDataURI(d.URL)
	if err != nil {
		return nil, fmt.Errorf("unable to decode dataset %q payload: %w", d.ID, err)
	}
	return ParseTSV(text, d.Desc.Separator), nil
}
