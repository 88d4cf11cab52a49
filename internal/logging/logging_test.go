package logging_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-book2pdf/internal/logging"
	"github.com/rs/zerolog"
)

// ---------------------------------------------------------------------------
// TestResolveLevel - Flag and config precedence
// ---------------------------------------------------------------------------

func TestResolveLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		level   string
		quiet   bool
		verbose bool
		want    zerolog.Level
		wantErr bool
	}{
		{name: "empty defaults to info", want: zerolog.InfoLevel},
		{name: "configured level", level: "error", want: zerolog.ErrorLevel},
		{name: "case and spaces ignored", level: " Debug ", want: zerolog.DebugLevel},
		{name: "quiet beats config", level: "trace", quiet: true, want: zerolog.WarnLevel},
		{name: "verbose beats quiet", quiet: true, verbose: true, want: zerolog.DebugLevel},
		{name: "unknown level", level: "loud", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := logging.ResolveLevel(tt.level, tt.quiet, tt.verbose)
			if tt.wantErr {
				if !errors.Is(err, logging.ErrInvalidLevel) {
					t.Errorf("ResolveLevel() error = %v, want ErrInvalidLevel", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveLevel() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ResolveLevel() = %v, want %v", got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestNew - Console and file outputs
// ---------------------------------------------------------------------------

func TestNew_ConsoleFiltersByLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Quiet: true, Console: &buf, NoColor: true})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer logger.Close()

	logger.Info().Msg("hidden message")
	logger.Warn().Msg("shown message")

	out := buf.String()
	if strings.Contains(out, "hidden message") {
		t.Errorf("info logged at quiet level: %q", out)
	}
	if !strings.Contains(out, "shown message") {
		t.Errorf("warn missing from output: %q", out)
	}
}

func TestNew_WritesFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "logs", "book2pdf.log")
	var console bytes.Buffer
	logger, err := logging.New(logging.Options{File: path, Console: &console, NoColor: true, MaxSizeMB: 1})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.Info().Str("page", "intro").Msg("page rendered")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), `"page":"intro"`) {
		t.Errorf("log file = %q, want JSON field", data)
	}
	if !strings.Contains(console.String(), "page rendered") {
		t.Errorf("console = %q, want message", console.String())
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	t.Parallel()

	if _, err := logging.New(logging.Options{Level: "loud"}); !errors.Is(err, logging.ErrInvalidLevel) {
		t.Errorf("New() error = %v, want ErrInvalidLevel", err)
	}
}

func TestLogger_CloseWithoutFile(t *testing.T) {
	t.Parallel()

	logger, err := logging.New(logging.Options{Console: &bytes.Buffer{}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
