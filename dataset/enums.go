package dataset

//go:generate go tool go-enum --marshal --names

// Semantic type of a column as understood by the table renderer.
// ENUM(string, number, categorical)
type ColumnType string

// Severity of verification finding.
// ENUM(warning, error)
type Severity string
