package dataset

import (
	"strings"
	"testing"
)

func findingsOf(r *Report, sev Severity) []string {
	var props []string
	for _, f := range r.Findings {
		if f.Severity == sev {
			props = append(props, f.Property)
		}
	}
	return props
}

func TestVerify(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(d *Descriptor)
		errors []string
	}{
		{
			name:   "column missing from header",
			mutate: func(d *Descriptor) { d.Desc.Columns = append(d.Desc.Columns, StringColumn("extra")) },
			errors: []string{PropColumnCount},
		},
		{
			name: "short row",
			mutate: func(d *Descriptor) {
				d.URL = EncodeDataURI("a\tb\tc\tx\ty\tz\n1\t2\t3\t\t\t\n7\t8")
				d.Desc.Columns[0].Domain = NewDomain(Int(1), Int(7))
			},
			errors: []string{PropRowWidth},
		},
		{
			name:   "value outside domain",
			mutate: func(d *Descriptor) { d.Desc.Columns[1].Domain = NewDomain(Int(3), Int(8)) },
			errors: []string{PropDomain},
		},
		{
			name:   "inverted domain",
			mutate: func(d *Descriptor) { d.Desc.Columns[3].Domain = NewDomain(Int(2), Int(1)) },
			errors: []string{PropDomain, PropDomain},
		},
		{
			name:   "not a number",
			mutate: func(d *Descriptor) { d.URL = strings.Replace(d.URL, "%0A7%09", "%0Aseven%09", 1) },
			errors: []string{PropNumeric},
		},
		{
			name:   "header mismatch",
			mutate: func(d *Descriptor) { d.Desc.Columns[5].Column = "w" },
			errors: []string{PropHeader},
		},
		{
			name:   "duplicate column",
			mutate: func(d *Descriptor) { d.Desc.Columns[4] = StringColumn("x"); d.Desc.Columns[3] = StringColumn("x") },
			errors: []string{PropUniqueColumns, PropHeader},
		},
		{
			name:   "bad separator",
			mutate: func(d *Descriptor) { d.Desc.Separator = ";;" },
			errors: []string{PropSeparator},
		},
		{
			name:   "not a data uri",
			mutate: func(d *Descriptor) { d.URL = "https://example.com/data.tsv" },
			errors: []string{PropPayload},
		},
		{
			name:   "no domain",
			mutate: func(d *Descriptor) { d.Desc.Columns[0].Domain = nil },
			errors: []string{PropDomain},
		},
		{
			name:   "no number format",
			mutate: func(d *Descriptor) { d.Desc.Columns[5].NumberFormat = "" },
			errors: []string{PropNumeric},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := unlabelled()
			tc.mutate(&d)
			r := Verify(&d)
			got := findingsOf(r, SeverityError)
			if strings.Join(got, ",") != strings.Join(tc.errors, ",") {
				t.Errorf("Verify() errors = %v, want %v\n%v", got, tc.errors, r.Err())
			}
			if r.Err() == nil {
				t.Error("Err() = nil")
			}
		})
	}
}

func TestVerifyWarnings(t *testing.T) {
	d := unlabelled()
	d.URL = strings.Replace(d.URL, "a%09", "%61%09", 1)
	d.Desc.PrimaryKey = "a"
	r := Verify(&d)
	if err := r.Err(); err != nil {
		t.Fatalf("Err() = %v", err)
	}
	got := findingsOf(r, SeverityWarning)
	want := []string{PropPayload}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("warnings = %v, want %v", got, want)
	}
}

func TestFindingError(t *testing.T) {
	f := Finding{Severity: SeverityError, Property: PropDomain, Column: "a", Row: 2, Message: "value 9 is outside of [1, 7]"}
	want := `domain [column "a"] [row 2]: value 9 is outside of [1, 7]`
	if f.Error() != want {
		t.Errorf("Error() = %q, want %q", f.Error(), want)
	}
}
