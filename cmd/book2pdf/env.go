package main

import (
	"io"
	"os"

	"github.com/go-rod/rod/lib/launcher"

	book2pdf "github.com/alnah/go-book2pdf"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Stdout io.Writer
	Stderr io.Writer

	// Interactive enables the spinner and progress bar.
	Interactive bool

	Getenv  func(string) string
	Environ func() []string

	// NewSession builds the browser session factory for a download.
	NewSession func(book2pdf.RodConfig) book2pdf.SessionFactory

	// LookPath locates an installed browser for doctor.
	LookPath func() (string, bool)
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		Interactive: isTerminal(os.Stderr),
		Getenv:      os.Getenv,
		Environ:     os.Environ,
		NewSession:  book2pdf.NewRodSessionFactory,
		LookPath:    launcher.LookPath,
	}
}

// isTerminal reports whether f is a character device.
func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
