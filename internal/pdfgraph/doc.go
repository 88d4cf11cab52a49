// Package pdfgraph reads, rewrites and writes the indirect-object graph of PDF
// documents.
//
// # Object Graph
//
// A parsed document is a Graph: an arena of indirect objects keyed by object
// number, the trailer dictionary, and the highest object number in use.
// Container objects (cross-reference streams, object streams, linearization
// dictionaries) are unpacked on load and never appear in the arena, so every
// Graph can be written back with a classic cross-reference table.
//
//	Trailer /Root ──▶ Catalog /Pages ──▶ Page tree root ──▶ Kids [page refs]
//
// # Reading
//
// Parse follows startxref through classic tables, cross-reference streams,
// hybrid files and /Prev chains. Objects stored in object streams are decoded
// (FlateDecode with optional PNG predictors). When the cross-reference data is
// unusable, the file is rebuilt by scanning for "N G obj" headers in order.
// Encrypted documents are rejected.
//
// # Merging
//
// Merge combines independently produced documents into one. The first
// document that parses is the base; every other document is renumbered through
// an explicit remap table into ids above the running maximum, copied into the
// base arena, and its pages appended to the base page tree in order:
//
//	base ids:     1..m
//	input 2 ids:  m+1..m+n2
//	input 3 ids:  m+n2+1..m+n2+n3
//
// No resources are shared or deduplicated between inputs, and outlines, forms
// and optional content of non-base inputs are carried as unreferenced objects.
package pdfgraph
