// Package tabular reads delimited text files, merges them into a single
// table and infers column types for dataset descriptors.
package tabular

const (
	DefaultDelimiters        = ",\t;| :"
	DefaultSniffLines        = 10
	DefaultLabelColumn       = "Refinery file"
	DefaultPrimaryKey        = "id"
	DefaultDatasetID         = "data"
	DefaultDatasetName       = "Data"
	DefaultIntFormat         = "d"
	DefaultFloatFormat       = ".1f"
	DefaultCategoricalSample = 100
)

// Options control parsing, merging and inference. Zero values are replaced
// with defaults. GCT preamble is always skipped unless NoGCT is set, label
// column is added unless NoLabel is set.
type Options struct {
	// Parsing
	Delimiters string
	SniffLines int
	NoGCT      bool

	// Merging
	LabelColumn string
	NoLabel     bool

	// Inference and descriptor
	IntFormat         string
	FloatFormat       string
	CategoricalSample int
	PrimaryKey        string
	DatasetID         string
	DatasetName       string
}

// DefaultOptions returns options reproducing the behavior renderers expect.
func DefaultOptions() *Options {
	return (&Options{}).withDefaults()
}

func (o *Options) withDefaults() *Options {
	res := Options{}
	if o != nil {
		res = *o
	}
	if len(res.Delimiters) == 0 {
		res.Delimiters = DefaultDelimiters
	}
	if res.SniffLines <= 0 {
		res.SniffLines = DefaultSniffLines
	}
	if len(res.LabelColumn) == 0 {
		res.LabelColumn = DefaultLabelColumn
	}
	if len(res.IntFormat) == 0 {
		res.IntFormat = DefaultIntFormat
	}
	if len(res.FloatFormat) == 0 {
		res.FloatFormat = DefaultFloatFormat
	}
	if res.CategoricalSample <= 0 {
		res.CategoricalSample = DefaultCategoricalSample
	}
	if len(res.PrimaryKey) == 0 {
		res.PrimaryKey = DefaultPrimaryKey
	}
	if len(res.DatasetID) == 0 {
		res.DatasetID = DefaultDatasetID
	}
	if len(res.DatasetName) == 0 {
		res.DatasetName = DefaultDatasetName
	}
	return &res
}
