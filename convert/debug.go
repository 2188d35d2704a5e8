package convert

import (
	"fmt"
	"time"

	"csv2js/state"
	"csv2js/utils/debug"
)

// String returns a readable tree of conversion result. It exists solely for
// inspection of debug reports.
func (r *result) String() string {
	if r == nil {
		return "<nil result>"
	}

	tw := debug.NewTreeWriter()
	tw.Line(0, "Sources: %d", len(r.sources))
	for _, s := range r.sources {
		tw.Line(1, "Source[%q] origin[%q] size[%d]", s.name, s.origin, len(s.data))
	}

	if r.table != nil {
		tw.Line(0, "Table: %d rows", len(r.table.Rows))
		tw.List(1, "Header", r.table.Header)
	}

	d := &r.descriptor
	tw.Line(0, "Dataset id[%q] name[%q] primaryKey[%q]", d.ID, d.Name, d.Desc.PrimaryKey)
	tw.TextBlock(1, "Separator", d.Desc.Separator)
	for _, c := range d.Desc.Columns {
		if c.Domain != nil {
			tw.Line(1, "Column[%q] %s domain%s format[%q]", c.Column, c.Type, c.Domain, c.NumberFormat)
			continue
		}
		tw.Line(1, "Column[%q] %s", c.Column, c.Type)
	}
	tw.TextBlock(1, "URL", d.URL)

	if len(r.output) > 0 {
		tw.Line(0, "Output: %s", r.output)
	}
	return tw.String()
}

// storeDebugDump puts result tree into debug report, every conversion of
// watch mode gets its own entry.
func storeDebugDump(env *state.LocalEnv, r *result) {
	if env.Rpt == nil {
		return
	}
	env.Rpt.StoreData(fmt.Sprintf("debug/%s-%d.txt", env.RunID, time.Now().UnixNano()), []byte(r.String()))
}
