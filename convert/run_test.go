package convert

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	cli "github.com/urfave/cli/v3"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"csv2js/config"
	"csv2js/dataset"
)

var numberCmp = cmp.Comparer(func(a, b dataset.Number) bool {
	return a.IsFloat() == b.IsFloat() && a.Compare(b) == 0
})

// runCommand executes action the way command line would with given flags
// and arguments.
func runCommand(ctx context.Context, action cli.ActionFunc, args ...string) error {
	cmd := &cli.Command{
		Name:   "convert",
		Flags:  Flags(),
		Action: action,
	}
	return cmd.Run(ctx, append([]string{"convert"}, args...))
}

func TestRun_GoldenStdout(t *testing.T) {
	tests := []struct {
		name   string
		flags  []string
		golden string
	}{
		{"labelled", nil, goldenLabelled},
		{"unlabelled", []string{"--no-label"}, goldenNoLabel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, env := setupTestEnv(t)
			out := captureStdout(t)
			csvPath, tsvPath := writeFakes(t, t.TempDir())

			args := append(tt.flags, csvPath, tsvPath)
			if err := runCommand(ctx, Run, args...); err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if diff := cmp.Diff(readFile(t, tt.golden), out.String()); diff != "" {
				t.Errorf("output mismatch (-want +got):\n%s", diff)
			}
			if env.NoLabel != (len(tt.flags) > 0) {
				t.Errorf("NoLabel = %v", env.NoLabel)
			}
		})
	}
}

func TestRun_Directory(t *testing.T) {
	ctx, _ := setupTestEnv(t)
	out := captureStdout(t)
	dir := t.TempDir()
	writeFakes(t, dir)

	if err := runCommand(ctx, Run, dir); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if diff := cmp.Diff(readFile(t, goldenLabelled), out.String()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_JSON(t *testing.T) {
	ctx, _ := setupTestEnv(t)
	out := captureStdout(t)
	csvPath, tsvPath := writeFakes(t, t.TempDir())

	if err := runCommand(ctx, Run, "--to", "json", csvPath, tsvPath); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.HasPrefix(out.String(), "[") {
		t.Errorf("json output expected, got %q", out.String())
	}

	got, variable, err := dataset.Load(bytes.NewReader(out.Bytes()))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want, _, err := dataset.Load(strings.NewReader(readFile(t, goldenLabelled)))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if variable != "" {
		t.Errorf("unexpected variable %q", variable)
	}
	if diff := cmp.Diff(want, got, numberCmp); diff != "" {
		t.Errorf("datasets mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_TSV(t *testing.T) {
	ctx, _ := setupTestEnv(t)
	out := captureStdout(t)
	csvPath, tsvPath := writeFakes(t, t.TempDir())

	if err := runCommand(ctx, Run, "--to", "tsv", csvPath, tsvPath); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	want := "Refinery file\ta\tb\tc\tx\ty\tz\nfake.csv\t1\t2\t3\t\t\t\nfake.csv\t7\t8\t9\t\t\t\nfake.tsv\t\t\t\t1\t2\t3\n"
	if diff := cmp.Diff(want, out.String()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_Options(t *testing.T) {
	ctx, _ := setupTestEnv(t)
	out := captureStdout(t)
	csvPath, tsvPath := writeFakes(t, t.TempDir())

	if err := runCommand(ctx, Run, "--label", "Source", "--variable", "my_data", "--to", "bogus", csvPath, tsvPath); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	list, variable, err := dataset.Load(bytes.NewReader(out.Bytes()))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if variable != "my_data" {
		t.Errorf("variable = %q, want my_data", variable)
	}
	if got := list[0].Desc.Columns[0].Column; got != "Source" {
		t.Errorf("label column = %q, want Source", got)
	}
}

func TestRun_InvalidVariable(t *testing.T) {
	ctx, _ := setupTestEnv(t)
	captureStdout(t)
	csvPath, _ := writeFakes(t, t.TempDir())

	if err := runCommand(ctx, Run, "--variable", "not-valid", csvPath); err == nil {
		t.Error("Expected error for invalid variable name")
	}
}

func TestRun_Placeholder(t *testing.T) {
	ctx, _ := setupTestEnv(t)
	out := captureStdout(t)

	if err := runCommand(ctx, Run, "--to", "tsv"); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := out.String(); got != placeholderText+"\n" {
		t.Errorf("output = %q, want placeholder", got)
	}
}

func TestRun_UnreadableSources(t *testing.T) {
	ctx, env := setupTestEnv(t)
	captureStdout(t)
	env.Cfg.Input.Charset = "no-such-charset"
	csvPath, tsvPath := writeFakes(t, t.TempDir())

	if err := runCommand(ctx, Run, csvPath, tsvPath); err == nil {
		t.Error("Expected error when no source can be read")
	}
}

func TestRun_NoSources(t *testing.T) {
	ctx, _ := setupTestEnv(t)
	captureStdout(t)

	if err := runCommand(ctx, Run, t.TempDir()); err == nil {
		t.Error("Expected error for empty directory")
	}
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, _ := setupTestEnv(t)
	ctx, cancel := context.WithCancel(ctx)
	cancel()

	if err := Run(ctx, &cli.Command{}); err == nil {
		t.Error("Expected error for cancelled context")
	}
}

func TestRun_OutputDirectory(t *testing.T) {
	ctx, _ := setupTestEnv(t)
	csvPath, tsvPath := writeFakes(t, t.TempDir())
	dst := t.TempDir()

	if err := runCommand(ctx, Run, "--out", dst, csvPath, tsvPath); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	output := filepath.Join(dst, "outside_data.js")
	if diff := cmp.Diff(readFile(t, goldenLabelled), readFile(t, output)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}

	// second run refuses to replace existing file
	if err := runCommand(ctx, Run, "--out", dst, csvPath, tsvPath); err == nil {
		t.Error("Expected error for existing output")
	}
	if err := runCommand(ctx, Run, "--out", dst, "--overwrite", "--to", "json", csvPath, tsvPath); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dst, "outside_data.json")); err != nil {
		t.Errorf("json output missing: %v", err)
	}
}

func TestRun_OutputFile(t *testing.T) {
	ctx, _ := setupTestEnv(t)
	csvPath, _ := writeFakes(t, t.TempDir())
	dst := filepath.Join(t.TempDir(), "nested", "result.js")

	if err := runCommand(ctx, Run, "-o", dst, csvPath); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	list, _, err := dataset.Load(strings.NewReader(readFile(t, dst)))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if n := len(list[0].Desc.Columns); n != 3 {
		t.Errorf("single source must not be labelled, got %d columns", n)
	}
}

func TestRun_SQLite(t *testing.T) {
	ctx, _ := setupTestEnv(t)
	csvPath, tsvPath := writeFakes(t, t.TempDir())

	if err := runCommand(ctx, Run, "--to", "sqlite", csvPath); err == nil {
		t.Error("Expected error for sqlite without destination")
	}

	dst := t.TempDir()
	if err := runCommand(ctx, Run, "--to", "sqlite", "--out", dst, csvPath, tsvPath); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	conn, err := sqlite.OpenConn(filepath.Join(dst, "outside_data.sqlite"), sqlite.OpenReadOnly)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	defer conn.Close()

	var rows [][]string
	err = sqlitex.Execute(conn, `SELECT id, "Refinery file", a, z FROM data ORDER BY id;`, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			rows = append(rows, []string{stmt.ColumnText(0), stmt.ColumnText(1), stmt.ColumnText(2), stmt.ColumnText(3)})
			return nil
		},
	})
	if err != nil {
		t.Fatalf("query data: %v", err)
	}
	want := [][]string{
		{"0", "fake.csv", "1", ""},
		{"1", "fake.csv", "7", ""},
		{"2", "fake.tsv", "", "3"},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}

	var columns []string
	err = sqlitex.Execute(conn, `SELECT name, type, domain_min, domain_max FROM _columns WHERE dataset = ? ORDER BY position;`, &sqlitex.ExecOptions{
		Args: []any{"data"},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			columns = append(columns, strings.Join([]string{stmt.ColumnText(0), stmt.ColumnText(1), stmt.ColumnText(2), stmt.ColumnText(3)}, "|"))
			return nil
		},
	})
	if err != nil {
		t.Fatalf("query columns: %v", err)
	}
	wantColumns := []string{"Refinery file|string||", "a|number|1|7", "b|number|2|8", "c|number|3|9", "x|number|1|1", "y|number|2|2", "z|number|3|3"}
	if diff := cmp.Diff(wantColumns, columns); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
}

func TestKeyColumn(t *testing.T) {
	d := &dataset.Descriptor{Desc: dataset.Description{
		Columns:    []dataset.Column{dataset.StringColumn("id"), dataset.StringColumn("_id")},
		PrimaryKey: "id",
	}}
	if got := keyColumn(d); got != "__id" {
		t.Errorf("keyColumn() = %q, want __id", got)
	}
}

func TestPrepareJob_ForceZipCP(t *testing.T) {
	tests := []struct {
		cp      string
		wantNil bool
	}{
		{"cp866", false},
		{"IBM866", false},
		{"no-such-charset", true},
	}

	for _, tt := range tests {
		t.Run(tt.cp, func(t *testing.T) {
			ctx, env := setupTestEnv(t)
			err := runCommand(ctx, func(ctx context.Context, cmd *cli.Command) error {
				_, err := prepareJob(cmd, env, zaptestLogger(t))
				return err
			}, "--force-zip-cp", tt.cp)
			if err != nil {
				t.Fatalf("prepareJob() error = %v", err)
			}
			if (env.CodePage == nil) != tt.wantNil {
				t.Errorf("CodePage = %v, want nil %v", env.CodePage, tt.wantNil)
			}
		})
	}
}

func TestRender_UnsupportedFormat(t *testing.T) {
	if _, err := render(&result{}, config.OutputFmtSqlite); err == nil {
		t.Error("Expected error rendering sqlite as text")
	}
}
