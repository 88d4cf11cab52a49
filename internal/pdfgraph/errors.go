package pdfgraph

import "errors"

// Sentinel errors for graph operations.
var (
	// ErrNotPDF indicates the input has no %PDF- header.
	ErrNotPDF = errors.New("not a PDF document")

	// ErrSyntax indicates malformed object syntax.
	ErrSyntax = errors.New("PDF syntax error")

	// ErrXref indicates unusable cross-reference data.
	ErrXref = errors.New("invalid cross-reference data")

	// ErrEncrypted indicates the document is encrypted.
	ErrEncrypted = errors.New("encrypted documents are not supported")

	// ErrUnsupportedFilter indicates a stream filter the reader cannot decode.
	ErrUnsupportedFilter = errors.New("unsupported stream filter")

	// ErrNoCatalog indicates the trailer has no usable /Root catalog.
	ErrNoCatalog = errors.New("document catalog not found")

	// ErrNoPageTree indicates the catalog has no usable /Pages tree.
	ErrNoPageTree = errors.New("page tree not found")

	// ErrNothingToMerge indicates that no input could be parsed.
	ErrNothingToMerge = errors.New("nothing to merge")

	// ErrIDCollision indicates a renumbered object would overwrite an existing one.
	ErrIDCollision = errors.New("object id collision")
)
