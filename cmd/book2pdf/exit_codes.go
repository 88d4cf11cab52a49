package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	book2pdf "github.com/alnah/go-book2pdf"
	"github.com/alnah/go-book2pdf/internal/config"
	"github.com/alnah/go-book2pdf/internal/hints"
)

// Exit codes for the book2pdf CLI.
const (
	ExitSuccess = 0
	ExitGeneral = 1 // any surfaced error
)

// CLI errors.
var (
	ErrUsage = errors.New("invalid usage")
	ErrNoURL = errors.New("missing site URL")
)

// exitCodeFor returns the exit status for err.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}
	return ExitGeneral
}

// configError is a failure to load the named config.
type configError struct {
	name string
	err  error
}

func (e *configError) Error() string { return fmt.Sprintf("loading config %q: %v", e.name, e.err) }
func (e *configError) Unwrap() error { return e.err }

// hintFor returns an actionable hint for err, or "".
// It uses errors.Is, so callers must wrap with %w.
func hintFor(err error) string {
	var cfgErr *configError
	switch {
	case errors.Is(err, book2pdf.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, book2pdf.ErrUnsupportedSite):
		return hints.ForUnsupportedSite()
	case errors.Is(err, book2pdf.ErrMergeDirNotFound), errors.Is(err, book2pdf.ErrNoPDFFiles):
		return hints.ForMergeDir("")
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.As(err, &cfgErr) && errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(cfgErr.name, userConfigDir())
	case errors.Is(err, os.ErrPermission):
		return hints.ForOutputDirectory()
	}
	return ""
}

// reportError prints err as "Error: <detail>" followed by any hint and
// returns the exit status.
func reportError(w io.Writer, err error) int {
	if err == nil {
		return ExitSuccess
	}
	fmt.Fprintf(w, "Error: %v%s\n", err, hintFor(err))
	return exitCodeFor(err)
}

func userConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, config.DirName)
}
