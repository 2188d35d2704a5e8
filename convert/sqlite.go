package convert

import (
	"fmt"
	"strings"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"csv2js/dataset"
)

// columnsTable keeps descriptor column metadata next to the data.
const columnsTable = "_columns"

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func sqlType(c *dataset.Column) string {
	if c.Type != dataset.ColumnTypeNumber {
		return "TEXT"
	}
	if c.Domain != nil && c.Domain.Min().IsFloat() {
		return "REAL"
	}
	return "INTEGER"
}

// keyColumn returns name of the primary key column which does not collide
// with data columns.
func keyColumn(d *dataset.Descriptor) string {
	key := d.Desc.PrimaryKey
	for d.Desc.HasColumn(key) {
		key = "_" + key
	}
	return key
}

// writeSQLite stores table named after dataset id with primary key column
// holding row ordinals, and column metadata, in a single transaction.
func writeSQLite(path string, r *result) (err error) {
	conn, err := sqlite.OpenConn(path, sqlite.OpenReadWrite, sqlite.OpenCreate)
	if err != nil {
		return err
	}
	defer func() {
		if e := conn.Close(); e != nil && err == nil {
			err = e
		}
	}()
	defer sqlitex.Save(conn)(&err)

	d := &r.descriptor
	table := quoteIdent(d.ID)

	defs := []string{quoteIdent(keyColumn(d)) + " INTEGER PRIMARY KEY"}
	for i := range d.Desc.Columns {
		c := &d.Desc.Columns[i]
		defs = append(defs, quoteIdent(c.Column)+" "+sqlType(c))
	}
	if err := sqlitex.ExecuteTransient(conn, fmt.Sprintf("CREATE TABLE %s (%s);", table, strings.Join(defs, ", ")), nil); err != nil {
		return fmt.Errorf("unable to create table %s: %w", table, err)
	}

	query := fmt.Sprintf("INSERT INTO %s VALUES (?%s);", table, strings.Repeat(", ?", len(d.Desc.Columns)))
	for i, rec := range r.table.Records(d.Desc.Columns) {
		args := append([]any{int64(i)}, rec...)
		if err := sqlitex.Execute(conn, query, &sqlitex.ExecOptions{Args: args}); err != nil {
			return fmt.Errorf("unable to insert row %d: %w", i, err)
		}
	}

	err = sqlitex.ExecuteTransient(conn, fmt.Sprintf(`CREATE TABLE %s (
	dataset TEXT NOT NULL,
	position INTEGER NOT NULL,
	name TEXT NOT NULL,
	type TEXT NOT NULL,
	number_format TEXT,
	domain_min,
	domain_max,
	PRIMARY KEY (dataset, position)
);`, quoteIdent(columnsTable)), nil)
	if err != nil {
		return fmt.Errorf("unable to create columns table: %w", err)
	}
	query = fmt.Sprintf("INSERT INTO %s VALUES (?, ?, ?, ?, ?, ?, ?);", quoteIdent(columnsTable))
	for i, c := range d.Desc.Columns {
		args := []any{d.ID, int64(i), c.Column, c.Type.String(), nil, nil, nil}
		if len(c.NumberFormat) > 0 {
			args[4] = c.NumberFormat
		}
		if c.Domain != nil {
			args[5], args[6] = numberArg(c.Domain.Min()), numberArg(c.Domain.Max())
		}
		if err := sqlitex.Execute(conn, query, &sqlitex.ExecOptions{Args: args}); err != nil {
			return fmt.Errorf("unable to describe column %q: %w", c.Column, err)
		}
	}
	return nil
}

func numberArg(n dataset.Number) any {
	if n.IsFloat() {
		return n.Float64()
	}
	return n.Int64()
}

// verifySQLite checks that database has every row and column of the table.
func verifySQLite(path string, r *result) (err error) {
	conn, err := sqlite.OpenConn(path, sqlite.OpenReadOnly)
	if err != nil {
		return err
	}
	defer func() {
		if e := conn.Close(); e != nil && err == nil {
			err = e
		}
	}()

	var rows, cols int64
	err = sqlitex.Execute(conn, fmt.Sprintf("SELECT count(*) FROM %s;", quoteIdent(r.descriptor.ID)),
		&sqlitex.ExecOptions{ResultFunc: func(stmt *sqlite.Stmt) error {
			rows = stmt.ColumnInt64(0)
			return nil
		}})
	if err != nil {
		return err
	}
	err = sqlitex.Execute(conn, fmt.Sprintf("SELECT count(*) FROM %s WHERE dataset = ?;", quoteIdent(columnsTable)),
		&sqlitex.ExecOptions{
			Args: []any{r.descriptor.ID},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				cols = stmt.ColumnInt64(0)
				return nil
			}})
	if err != nil {
		return err
	}
	if rows != int64(len(r.table.Rows)) || cols != int64(len(r.descriptor.Desc.Columns)) {
		return fmt.Errorf("%w: database has %d rows and %d columns, expected %d and %d",
			errVerification, rows, cols, len(r.table.Rows), len(r.descriptor.Desc.Columns))
	}
	return nil
}
