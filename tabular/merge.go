package tabular

import (
	"strings"

	"csv2js/dataset"
)

// Table is a merge of parsed files. Rows are aligned with Header, row
// position is its primary key.
type Table struct {
	Header []string
	Rows   [][]string
}

// Merge concatenates rows of all files. When there is more than one file,
// label column with file name is placed first, replacing any source column
// of the same name. Remaining columns follow in order of first appearance.
func Merge(files []*File, opts *Options) *Table {
	opts = opts.withDefaults()

	label := len(files) > 1 && !opts.NoLabel
	t := &Table{}
	position := make(map[string]int)
	if label {
		position[opts.LabelColumn] = 0
		t.Header = append(t.Header, opts.LabelColumn)
	}
	for _, f := range files {
		for _, h := range f.Header {
			if _, ok := position[h]; !ok {
				position[h] = len(t.Header)
				t.Header = append(t.Header, h)
			}
		}
	}

	for _, f := range files {
		for _, src := range f.Rows {
			row := make([]string, len(t.Header))
			for i, h := range f.Header {
				if i < len(src) {
					row[position[h]] = src[i]
				}
			}
			if label {
				row[0] = f.Name
			}
			t.Rows = append(t.Rows, row)
		}
	}
	return t
}

// Column returns non-missing values of column at index i.
func (t *Table) Column(i int) []string {
	values := make([]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		if i < len(row) && len(row[i]) > 0 {
			values = append(values, row[i])
		}
	}
	return values
}

// TSV joins table into separated text with no trailing newline. Separators
// and line breaks inside of cells are replaced with spaces.
func (t *Table) TSV(sep string) string {
	r := strings.NewReplacer(sep, " ", "\r\n", " ", "\n", " ", "\r", " ")
	clean := func(cells []string) []string {
		out := make([]string, len(cells))
		for i, c := range cells {
			out[i] = r.Replace(c)
		}
		return out
	}
	dt := dataset.Table{Header: clean(t.Header)}
	for _, row := range t.Rows {
		dt.Rows = append(dt.Rows, clean(row))
	}
	return dt.String(sep)
}

// Descriptor infers columns and embeds table as tab separated payload.
func (t *Table) Descriptor(opts *Options) dataset.Descriptor {
	opts = opts.withDefaults()
	return dataset.Descriptor{
		Desc: dataset.Description{
			Columns:    Infer(t, opts),
			PrimaryKey: opts.PrimaryKey,
			Separator:  "\t",
		},
		ID:   opts.DatasetID,
		Name: opts.DatasetName,
		URL:  dataset.EncodeDataURI(t.TSV("\t")),
	}
}

// Records returns typed cell values for export: int64 or float64 for numeric
// columns, string otherwise, nil for missing values.
func (t *Table) Records(cols []dataset.Column) [][]any {
	out := make([][]any, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := make([]any, len(t.Header))
		for i := range t.Header {
			if i >= len(row) || len(row[i]) == 0 {
				continue
			}
			rec[i] = row[i]
			if i >= len(cols) || cols[i].Type != dataset.ColumnTypeNumber {
				continue
			}
			n, ok := dataset.ParseNumber(row[i])
			if !ok {
				continue
			}
			if n.IsFloat() || cols[i].Domain != nil && cols[i].Domain.Min().IsFloat() {
				rec[i] = n.Float64()
			} else {
				rec[i] = n.Int64()
			}
		}
		out = append(out, rec)
	}
	return out
}
