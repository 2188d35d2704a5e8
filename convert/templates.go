package convert

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	sprig "github.com/go-task/slim-sprig/v3"

	"csv2js/config"
)

// Values is a struct that holds variables we make available for template expansion
type Values struct {
	Context     string
	Variable    string
	DatasetID   string
	DatasetName string
	Format      string
	SourceFile  string
	Sources     []string
	Rows        int
	Columns     int
	RunID       string
	Date        string
}

func buildValues(name config.TemplateFieldName, r *result, format config.OutputFmt, runID string) Values {
	v := Values{
		Context:     string(name),
		Variable:    r.variable,
		DatasetID:   r.descriptor.ID,
		DatasetName: r.descriptor.Name,
		Format:      format.String(),
		Rows:        len(r.table.Rows),
		Columns:     len(r.table.Header),
		RunID:       runID,
		Date:        time.Now().Format("2006-01-02"),
	}
	for _, s := range r.sources {
		v.Sources = append(v.Sources, s.name)
	}
	if len(v.Sources) > 0 {
		first := filepath.Base(filepath.FromSlash(v.Sources[0]))
		first = strings.TrimSuffix(first, ".gz")
		v.SourceFile = strings.TrimSuffix(first, filepath.Ext(first))
	}
	return v
}

func expandTemplate(name config.TemplateFieldName, field string, values Values) (string, error) {
	funcMap := sprig.FuncMap()

	tmpl, err := template.New(string(name)).Funcs(funcMap).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", err
	}
	return buf.String(), nil
}
