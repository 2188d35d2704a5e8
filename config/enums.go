package config

//go:generate go tool go-enum --marshal --names

// Specification of requested output type.
// ENUM(js, json, tsv, sqlite)
type OutputFmt int

// Ext returns file name extension for the output type.
func (o OutputFmt) Ext() string {
	switch o {
	case OutputFmtJs:
		return ".js"
	case OutputFmtJson:
		return ".json"
	case OutputFmtTsv:
		return ".tsv"
	case OutputFmtSqlite:
		return ".sqlite"
	default:
		// this should never happen
		panic("unsupported format requested")
	}
}

// Streamable reports if output could be written to STDOUT.
func (o OutputFmt) Streamable() bool {
	return o != OutputFmtSqlite
}
