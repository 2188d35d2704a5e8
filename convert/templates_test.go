package convert

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"csv2js/config"
)

func TestBuildValues(t *testing.T) {
	r := sampleResult(t)
	r.sources[0].name = "dir/Expr.CSV.gz"

	got := buildValues(config.OutputNameTemplateFieldName, r, config.OutputFmtSqlite, "run-1")
	want := Values{
		Context:     "name_template",
		Variable:    "outside_data",
		DatasetID:   "data",
		DatasetName: "Data",
		Format:      "sqlite",
		SourceFile:  "Expr",
		Sources:     []string{"dir/Expr.CSV.gz", "fake.tsv"},
		Rows:        3,
		Columns:     7,
		RunID:       "run-1",
		Date:        time.Now().Format("2006-01-02"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("buildValues() mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildValues_NoSources(t *testing.T) {
	r := sampleResult(t)
	r.sources = nil

	got := buildValues(config.OutputNameTemplateFieldName, r, config.OutputFmtJs, "")
	if got.SourceFile != "" || got.Sources != nil {
		t.Errorf("unexpected sources in %+v", got)
	}
}

func TestExpandTemplate(t *testing.T) {
	values := buildValues(config.OutputNameTemplateFieldName, sampleResult(t), config.OutputFmtJs, "run-1")

	tests := []struct {
		name     string
		template string
		want     string
		wantErr  bool
	}{
		{"simple text", "output", "output", false},
		{"variable", "{{ .Variable }}", "outside_data", false},
		{"context", "{{ .Context }}", "name_template", false},
		{"sources", `{{ join "+" .Sources }}`, "fake.csv+fake.tsv", false},
		{"dimensions", "{{ .Rows }}x{{ .Columns }}", "3x7", false},
		{"sprig", `{{ .DatasetName | lower | replace "a" "o" }}`, "doto", false},
		{"conditional", `{{ if gt .Rows 2 }}big{{ else }}small{{ end }}`, "big", false},
		{"path separators", "{{ .Format }}/{{ .RunID }}", "js/run-1", false},
		{"invalid template", "{{ .Variable", "", true},
		{"invalid field", "{{ .Title }}", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := expandTemplate(config.OutputNameTemplateFieldName, tt.template, values)
			if (err != nil) != tt.wantErr {
				t.Fatalf("expandTemplate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("expandTemplate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExpandTemplate_Date(t *testing.T) {
	values := buildValues(config.OutputNameTemplateFieldName, sampleResult(t), config.OutputFmtJs, "")

	got, err := expandTemplate(config.OutputNameTemplateFieldName, "{{ .Date }}", values)
	if err != nil {
		t.Fatalf("expandTemplate() error = %v", err)
	}
	if _, err := time.Parse("2006-01-02", got); err != nil || !strings.HasPrefix(got, "20") {
		t.Errorf("unexpected date %q", got)
	}
}
