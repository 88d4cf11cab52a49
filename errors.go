package book2pdf

import (
	"errors"

	"github.com/alnah/go-book2pdf/internal/pdfgraph"
)

// Sentinel errors for library operations.
var (
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrNavigate       = errors.New("navigation failed")
	ErrPageLoad       = errors.New("failed to load page")
	ErrEvaluate       = errors.New("script evaluation failed")
	ErrDecodeResult   = errors.New("unexpected script result")
	ErrSetContent     = errors.New("failed to set page content")
	ErrPDFGeneration  = errors.New("PDF generation failed")
	ErrWriteArtifact  = errors.New("failed to write PDF file")

	// Site errors.
	ErrInvalidURL      = errors.New("invalid site URL")
	ErrUnsupportedSite = errors.New("not a supported documentation website (GitBook or Docusaurus)")

	// Render errors group every per-page failure; each wraps one of the
	// remote-operation errors above.
	ErrRender      = errors.New("page render failed")
	ErrCoverRender = errors.New("cover page rendering failed")

	// Print settings validation errors.
	ErrInvalidScale  = errors.New("invalid scale")
	ErrInvalidMargin = errors.New("invalid margin")

	// Pipeline option errors.
	ErrInvalidTimeout = errors.New("timeout must be zero or positive")
	ErrNoSession      = errors.New("no browser session factory configured")

	// Merge errors.
	ErrMergeDirNotFound = errors.New("input directory does not exist")
	ErrNoPDFFiles       = errors.New("no PDF files found")
	ErrNothingToMerge   = pdfgraph.ErrNothingToMerge
)
