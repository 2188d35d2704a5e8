package convert

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestVerifyFiles(t *testing.T) {
	captured := captureStdout(t)

	if err := verifyFiles([]string{goldenLabelled, goldenNoLabel}, zaptestLogger(t)); err != nil {
		t.Fatalf("verifyFiles() error = %v", err)
	}
	out := captured.String()
	for _, want := range []string{
		goldenLabelled + `: dataset "data": 7 columns, 3 rows`,
		goldenNoLabel + `: dataset "data": 6 columns, 3 rows`,
		"\twarning: primary-key",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output does not contain %q:\n%s", want, out)
		}
	}
}

func TestVerifyFiles_Errors(t *testing.T) {
	captured := captureStdout(t)
	dir := t.TempDir()

	// domain of "a" no longer covers 7
	broken := strings.Replace(readFile(t, goldenLabelled), `"domain": [ 1, 7 ]`, `"domain": [ 1, 5 ]`, 1)
	brokenPath := writeFile(t, filepath.Join(dir, "broken.js"), broken)
	garbagePath := writeFile(t, filepath.Join(dir, "garbage.js"), "var x = {")

	err := verifyFiles([]string{brokenPath, garbagePath, goldenNoLabel}, zaptestLogger(t))
	if err == nil {
		t.Fatal("Expected verification errors")
	}
	for _, want := range []string{brokenPath, garbagePath, `column "a"`} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
	if !strings.Contains(captured.String(), "\terror: domain") {
		t.Errorf("error finding not printed:\n%s", captured.String())
	}
}

func TestDecodeFile(t *testing.T) {
	const payload = "Refinery file\ta\tb\tc\tx\ty\tz\nfake.csv\t1\t2\t3\t\t\t\nfake.csv\t7\t8\t9\t\t\t\nfake.tsv\t\t\t\t1\t2\t3\n"

	t.Run("stdout", func(t *testing.T) {
		captured := captureStdout(t)
		if err := decodeFile(goldenLabelled, "", "", false, zaptestLogger(t)); err != nil {
			t.Fatalf("decodeFile() error = %v", err)
		}
		if diff := cmp.Diff(payload, captured.String()); diff != "" {
			t.Errorf("payload mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("file", func(t *testing.T) {
		dst := filepath.Join(t.TempDir(), "payload.tsv")
		if err := decodeFile(goldenLabelled, "data", dst, false, zaptestLogger(t)); err != nil {
			t.Fatalf("decodeFile() error = %v", err)
		}
		if diff := cmp.Diff(payload, readFile(t, dst)); diff != "" {
			t.Errorf("payload mismatch (-want +got):\n%s", diff)
		}
		if err := decodeFile(goldenLabelled, "data", dst, false, zaptestLogger(t)); err == nil {
			t.Error("Expected error for existing output")
		}
		if err := decodeFile(goldenLabelled, "data", dst, true, zaptestLogger(t)); err != nil {
			t.Errorf("decodeFile() with overwrite error = %v", err)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		if err := decodeFile(goldenLabelled, "other", "", false, zaptestLogger(t)); err == nil {
			t.Error("Expected error for unknown dataset id")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if err := decodeFile(filepath.Join(t.TempDir(), "none.js"), "", "", false, zaptestLogger(t)); !os.IsNotExist(err) {
			t.Errorf("decodeFile() error = %v, want not exist", err)
		}
	})
}

func TestDecode_Arguments(t *testing.T) {
	ctx, _ := setupTestEnv(t)

	if err := runCommand(ctx, Decode); err == nil {
		t.Error("Expected error without dataset file")
	}
	if err := runCommand(ctx, Verify); err == nil {
		t.Error("Expected error without dataset files")
	}
}
