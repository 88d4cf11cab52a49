package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	book2pdf "github.com/alnah/go-book2pdf"
	"github.com/alnah/go-book2pdf/internal/pdfgraph/pdftest"
)

// ---------------------------------------------------------------------------
// Test Infrastructure - Environment with a recording browser factory
// ---------------------------------------------------------------------------

// testEnv returns an environment whose browser factory never launches
// anything: it counts calls and fails with ErrBrowserConnect.
func testEnv(vars map[string]string) (*Environment, *bytes.Buffer, *bytes.Buffer, *atomic.Int32) {
	var stdout, stderr bytes.Buffer
	launches := &atomic.Int32{}

	env := &Environment{
		Stdout: &stdout,
		Stderr: &stderr,
		Getenv: func(key string) string { return vars[key] },
		Environ: func() []string {
			out := make([]string, 0, len(vars))
			for k, v := range vars {
				out = append(out, k+"="+v)
			}
			return out
		},
		NewSession: func(book2pdf.RodConfig) book2pdf.SessionFactory {
			return func(context.Context) (book2pdf.Session, error) {
				launches.Add(1)
				return nil, book2pdf.ErrBrowserConnect
			}
		},
		LookPath: func() (string, bool) { return "", false },
	}
	return env, &stdout, &stderr, launches
}

func writePDFs(t *testing.T, dir string, names ...string) {
	t.Helper()

	for _, name := range names {
		data := pdftest.Document(name).Bytes()
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
}

// ---------------------------------------------------------------------------
// TestRunMain - Command dispatch and exit codes
// ---------------------------------------------------------------------------

func TestRunMain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		args         []string
		wantCode     int
		wantInStdout []string
		wantInStderr []string
	}{
		{
			name:         "no args prints usage",
			args:         []string{"book2pdf"},
			wantCode:     ExitGeneral,
			wantInStderr: []string{"Usage: book2pdf"},
		},
		{
			name:         "version",
			args:         []string{"book2pdf", "version"},
			wantCode:     ExitSuccess,
			wantInStdout: []string{"book2pdf " + Version},
		},
		{
			name:         "help",
			args:         []string{"book2pdf", "help"},
			wantCode:     ExitSuccess,
			wantInStdout: []string{"Usage: book2pdf", "download", "merge"},
		},
		{
			name:         "help download",
			args:         []string{"book2pdf", "help", "download"},
			wantCode:     ExitSuccess,
			wantInStdout: []string{"Usage: book2pdf download", "--timeout"},
		},
		{
			name:         "help unknown command",
			args:         []string{"book2pdf", "help", "convert"},
			wantCode:     ExitGeneral,
			wantInStderr: []string{"Error:", "unknown command: convert"},
		},
		{
			name:         "unknown command",
			args:         []string{"book2pdf", "convert"},
			wantCode:     ExitGeneral,
			wantInStderr: []string{"Error:", "unknown command: convert"},
		},
		{
			name:         "download without URL",
			args:         []string{"book2pdf", "download"},
			wantCode:     ExitGeneral,
			wantInStderr: []string{"Error: missing site URL"},
		},
		{
			name:         "download with invalid URL",
			args:         []string{"book2pdf", "download", "docs.example.com"},
			wantCode:     ExitGeneral,
			wantInStderr: []string{"Error:", "invalid site URL"},
		},
		{
			name:         "completion unsupported shell",
			args:         []string{"book2pdf", "completion", "tcsh"},
			wantCode:     ExitGeneral,
			wantInStderr: []string{"unsupported shell"},
		},
		{
			name:         "download help flag",
			args:         []string{"book2pdf", "download", "--help"},
			wantCode:     ExitSuccess,
			wantInStderr: []string{"Usage: book2pdf download"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, stdout, stderr, _ := testEnv(nil)
			code := runMain(context.Background(), tt.args, env)

			if code != tt.wantCode {
				t.Errorf("runMain(%v) = %d, want %d\nstderr: %s", tt.args, code, tt.wantCode, stderr.String())
			}
			for _, want := range tt.wantInStdout {
				if !strings.Contains(stdout.String(), want) {
					t.Errorf("stdout should contain %q, got %q", want, stdout.String())
				}
			}
			for _, want := range tt.wantInStderr {
				if !strings.Contains(stderr.String(), want) {
					t.Errorf("stderr should contain %q, got %q", want, stderr.String())
				}
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRunMain_DownloadTimeout - Validation before any browser launch
// ---------------------------------------------------------------------------

func TestRunMain_DownloadTimeout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		wantMsg string
	}{
		{name: "negative long flag", args: []string{"--timeout", "-5"}, wantMsg: "Must be zero or positive number."},
		{name: "negative short flag", args: []string{"-t", "-5"}, wantMsg: "Must be zero or positive number."},
		{name: "negative with equals", args: []string{"--timeout=-0.5"}, wantMsg: "Must be zero or positive number."},
		{name: "not a number", args: []string{"--timeout", "soon"}, wantMsg: "Not a number."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, _, stderr, launches := testEnv(nil)
			args := append([]string{"book2pdf", "download", "https://docs.example.com"}, tt.args...)

			if code := runMain(context.Background(), args, env); code != ExitGeneral {
				t.Errorf("runMain() = %d, want %d", code, ExitGeneral)
			}
			if !strings.Contains(stderr.String(), tt.wantMsg) {
				t.Errorf("stderr = %q, want %q", stderr.String(), tt.wantMsg)
			}
			if n := launches.Load(); n != 0 {
				t.Errorf("browser launched %d time(s), want 0", n)
			}
		})
	}
}

func TestRunMain_DownloadBrowserFailure(t *testing.T) {
	t.Parallel()

	env, _, stderr, launches := testEnv(nil)
	outDir := t.TempDir()
	args := []string{"book2pdf", "download", "https://docs.example.com", "-o", outDir, "-t", "0", "-q"}

	if code := runMain(context.Background(), args, env); code != ExitGeneral {
		t.Errorf("runMain() = %d, want %d", code, ExitGeneral)
	}
	if n := launches.Load(); n != 1 {
		t.Errorf("browser launched %d time(s), want 1", n)
	}
	out := stderr.String()
	if !strings.HasPrefix(out, "Error: "+book2pdf.ErrBrowserConnect.Error()) {
		t.Errorf("stderr = %q, want Error: prefix with cause", out)
	}
	if !strings.Contains(out, "hint:") {
		t.Errorf("stderr = %q, want hint", out)
	}
}

// ---------------------------------------------------------------------------
// TestRunMain_Merge - Merge command
// ---------------------------------------------------------------------------

func TestRunMain_Merge(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writePDFs(t, dir, "02_b.pdf", "01_a.pdf")
	output := filepath.Join(t.TempDir(), "out", "book.pdf")

	env, stdout, stderr, launches := testEnv(nil)
	code := runMain(context.Background(), []string{"book2pdf", "merge", "-d", dir, "-o", output, "-v"}, env)

	if code != ExitSuccess {
		t.Fatalf("runMain() = %d, want %d\nstderr: %s", code, ExitSuccess, stderr.String())
	}
	if launches.Load() != 0 {
		t.Error("merge must not launch a browser")
	}
	if _, err := os.Stat(output); err != nil {
		t.Fatalf("merged file missing: %v", err)
	}

	out := stdout.String()
	if !strings.Contains(out, "Merged 2 file(s), 2 page(s)") {
		t.Errorf("stdout = %q, want merge summary", out)
	}
	first := strings.Index(out, "01_a.pdf")
	second := strings.Index(out, "02_b.pdf")
	if first < 0 || second < 0 || first > second {
		t.Errorf("files not listed in lexicographic order: %q", out)
	}
}

func TestRunMain_MergeErrors(t *testing.T) {
	t.Parallel()

	empty := t.TempDir()
	if err := os.WriteFile(filepath.Join(empty, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		dir     string
		wantMsg string
	}{
		{name: "missing directory", dir: filepath.Join(empty, "nope"), wantMsg: book2pdf.ErrMergeDirNotFound.Error()},
		{name: "no PDF files", dir: empty, wantMsg: book2pdf.ErrNoPDFFiles.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, _, stderr, _ := testEnv(nil)
			output := filepath.Join(t.TempDir(), "merged.pdf")
			code := runMain(context.Background(), []string{"book2pdf", "merge", "--dir", tt.dir, "--output", output}, env)

			if code != ExitGeneral {
				t.Errorf("runMain() = %d, want %d", code, ExitGeneral)
			}
			if !strings.Contains(stderr.String(), "Error: "+tt.wantMsg) {
				t.Errorf("stderr = %q, want %q", stderr.String(), tt.wantMsg)
			}
			if !strings.Contains(stderr.String(), "--dir") {
				t.Errorf("stderr = %q, want --dir hint", stderr.String())
			}
			if _, err := os.Stat(output); !os.IsNotExist(err) {
				t.Errorf("output written despite error: %v", err)
			}
		})
	}
}

func TestRunMain_MergeRejectsPositional(t *testing.T) {
	t.Parallel()

	env, _, stderr, _ := testEnv(nil)
	if code := runMain(context.Background(), []string{"book2pdf", "merge", "pages"}, env); code != ExitGeneral {
		t.Errorf("runMain() = %d, want %d", code, ExitGeneral)
	}
	if !strings.Contains(stderr.String(), `unexpected argument "pages"`) {
		t.Errorf("stderr = %q", stderr.String())
	}
}

// ---------------------------------------------------------------------------
// TestRunMain_Doctor - Diagnostics exit code and JSON output
// ---------------------------------------------------------------------------

func TestRunMain_Doctor(t *testing.T) {
	t.Parallel()

	env, stdout, _, _ := testEnv(map[string]string{"CI": "true"})
	code := runMain(context.Background(), []string{"book2pdf", "doctor", "--json", "--show-config"}, env)

	// A missing browser is downloaded on first run, so it only warns
	if code != ExitSuccess {
		t.Errorf("runMain() = %d, want %d", code, ExitSuccess)
	}
	out := stdout.String()
	for _, want := range []string{`"status": "warnings"`, "ROD_NO_SANDBOX", `"ci": true`, "effective configuration (defaults)"} {
		if !strings.Contains(out, want) {
			t.Errorf("doctor JSON missing %q:\n%s", want, out)
		}
	}
}
