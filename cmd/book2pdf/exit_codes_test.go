package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	book2pdf "github.com/alnah/go-book2pdf"
	"github.com/alnah/go-book2pdf/internal/config"
)

// ---------------------------------------------------------------------------
// TestExitCodeFor - Error to exit code mapping
// ---------------------------------------------------------------------------

func TestExitCodeFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, ExitSuccess},
		{"browser connect", book2pdf.ErrBrowserConnect, ExitGeneral},
		{"unsupported site", fmt.Errorf("run: %w", book2pdf.ErrUnsupportedSite), ExitGeneral},
		{"usage", ErrUsage, ExitGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestHintFor - Actionable hints by error kind
// ---------------------------------------------------------------------------

func TestHintFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		contains string
	}{
		{"unsupported site", fmt.Errorf("wrapped: %w", book2pdf.ErrUnsupportedSite), "Docusaurus"},
		{"merge dir", book2pdf.ErrMergeDirNotFound, "--dir"},
		{"no pdf files", book2pdf.ErrNoPDFFiles, "--dir"},
		{"timeout", fmt.Errorf("%w: x: %w", book2pdf.ErrNavigate, context.DeadlineExceeded), "--timeout"},
		{"config not found", &configError{name: "work", err: config.ErrConfigNotFound}, "--config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := hintFor(tt.err); !strings.Contains(got, tt.contains) {
				t.Errorf("hintFor() = %q, want %q", got, tt.contains)
			}
		})
	}

	if got := hintFor(errors.New("other")); got != "" {
		t.Errorf("hintFor(other) = %q, want empty", got)
	}
}

func TestReportError(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	code := reportError(&buf, fmt.Errorf("%w: https://x.example", book2pdf.ErrUnsupportedSite))

	if code != ExitGeneral {
		t.Errorf("reportError() = %d, want %d", code, ExitGeneral)
	}
	if !strings.HasPrefix(buf.String(), "Error: not a supported documentation website") {
		t.Errorf("output = %q", buf.String())
	}

	buf.Reset()
	if code := reportError(&buf, nil); code != ExitSuccess || buf.Len() != 0 {
		t.Errorf("reportError(nil) = %d, %q", code, buf.String())
	}
}
