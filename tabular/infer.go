package tabular

import (
	"math"
	"strconv"

	"csv2js/dataset"
)

// Infer describes every header column based on its non-missing values:
// integers only give numeric column with "d" format, floats only give
// numeric column with float format, columns with few distinct values
// compared to their length are categorical, anything else (including columns
// mixing integers and floats) is string.
func Infer(t *Table, opts *Options) []dataset.Column {
	opts = opts.withDefaults()

	cols := make([]dataset.Column, 0, len(t.Header))
	for i, name := range t.Header {
		cols = append(cols, inferColumn(name, t.Column(i), opts))
	}
	return cols
}

func inferColumn(name string, values []string, opts *Options) dataset.Column {
	if len(values) == 0 {
		return dataset.StringColumn(name)
	}
	if lo, hi, floats, ok := numericRange(values); ok {
		if floats {
			return dataset.NumberColumn(name, lo, hi, opts.FloatFormat)
		}
		return dataset.NumberColumn(name, lo, hi, opts.IntFormat)
	}
	if isCategorical(values, opts.CategoricalSample) {
		return dataset.Column{Column: name, Type: dataset.ColumnTypeCategorical}
	}
	return dataset.StringColumn(name)
}

// numericRange succeeds only when all values are numbers of the same kind.
func numericRange(values []string) (lo, hi dataset.Number, floats, ok bool) {
	for i, v := range values {
		n, isNum := dataset.ParseNumber(v)
		if !isNum || (i > 0 && n.IsFloat() != floats) {
			return lo, hi, false, false
		}
		floats = n.IsFloat()
		if i == 0 || n.Compare(lo) < 0 {
			lo = n
		}
		if i == 0 || n.Compare(hi) > 0 {
			hi = n
		}
	}
	return lo, hi, floats, true
}

// isCategorical: smaller sets may have proportionally more diversity, so
// distinct values among first sample ones are compared with log2 of total.
// Numerically equal values are the same category.
func isCategorical(values []string, sample int) bool {
	distinct := make(map[string]struct{})
	for _, v := range values[:min(sample, len(values))] {
		key := v
		if n, ok := dataset.ParseNumber(v); ok {
			key = "\x00" + strconv.FormatFloat(n.Float64(), 'g', -1, 64)
		}
		distinct[key] = struct{}{}
	}
	return float64(len(distinct)) < math.Log2(float64(len(values)))
}
