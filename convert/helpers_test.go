package convert

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"csv2js/config"
	"csv2js/state"
	"csv2js/tabular"
)

const (
	fakeCSV = "a,b,c\n1,2,3\n7,8,9"
	fakeTSV = "x\ty\tz\n1\t2\t3"

	goldenLabelled = "../dataset/testdata/expected-outside_data.js"
	goldenNoLabel  = "../dataset/testdata/expected-outside_data-nolabel.js"
)

// setupTestEnv creates a test environment with proper context and logger.
// Environment lookup is isolated from the real process environment.
func setupTestEnv(t *testing.T) (context.Context, *state.LocalEnv) {
	t.Helper()

	logger := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	cfg.Input.JSONPath = filepath.Join(t.TempDir(), "input.json")
	cfg.Input.Env.InputJSON = "CSV2JS_TEST_INPUT_JSON"
	cfg.Input.Env.InputJSONURL = "CSV2JS_TEST_INPUT_JSON_URL"
	cfg.Watch.Debounce = 0

	ctx := state.ContextWithEnv(context.Background())
	env := state.EnvFromContext(ctx)
	env.Log = logger
	env.Cfg = cfg
	return ctx, env
}

// captureStdout redirects program output into buffer for the duration of the
// test.
func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()

	buf := new(bytes.Buffer)
	saved := stdout
	stdout = buf
	t.Cleanup(func() { stdout = saved })
	return buf
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// writeFakes puts fake.csv and fake.tsv into dir and returns their paths.
func writeFakes(t *testing.T, dir string) (string, string) {
	t.Helper()
	return writeFile(t, filepath.Join(dir, "fake.csv"), fakeCSV), writeFile(t, filepath.Join(dir, "fake.tsv"), fakeTSV)
}

func readFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func sourceNames(srcs []source) []string {
	names := make([]string, 0, len(srcs))
	for _, s := range srcs {
		names = append(names, s.name)
	}
	return names
}

func zaptestLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t)
}

// sampleResult returns conversion result for fake.csv and fake.tsv.
func sampleResult(t *testing.T) *result {
	t.Helper()

	opts := tabular.DefaultOptions()
	var files []*tabular.File
	for _, s := range []source{{name: "fake.csv", data: []byte(fakeCSV)}, {name: "fake.tsv", data: []byte(fakeTSV)}} {
		f, err := tabular.Parse(s.name, string(s.data), opts, zaptestLogger(t))
		if err != nil {
			t.Fatalf("parse %s: %v", s.name, err)
		}
		files = append(files, f)
	}
	r := &result{
		sources:  []source{{name: "fake.csv"}, {name: "fake.tsv"}},
		table:    tabular.Merge(files, opts),
		variable: "outside_data",
	}
	r.descriptor = r.table.Descriptor(opts)
	return r
}
