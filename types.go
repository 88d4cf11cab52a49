package book2pdf

import (
	"fmt"
	"net/url"
	"time"
)

// Framework identifies the documentation generator behind a site.
type Framework string

// Recognized frameworks.
const (
	FrameworkUnknown    Framework = ""
	FrameworkGitBook    Framework = "gitbook"
	FrameworkDocusaurus Framework = "docusaurus"
)

// Classification is the outcome of inspecting a rendered root page.
type Classification struct {
	Supported bool
	Framework Framework
	Marker    string // selector or rule that matched
}

// DocumentSite describes the crawled site. It is built once per run and is
// read-only afterwards.
type DocumentSite struct {
	Root      *url.URL
	Supported bool
	Framework Framework
	Links     []string // unique, navigation order then fallback order
}

// PageArtifact is one rendered page on disk.
type PageArtifact struct {
	Ordinal int    // 1 is the cover, crawled pages start at 2
	Slug    string // never empty
	Source  string // absolute address that was rendered
	Path    string
	Size    int64
}

// CoverOrdinal is reserved for the synthesized cover page.
const CoverOrdinal = 1

// ArtifactName returns the file name for a page artifact, such as
// "02_getting-started.pdf".
func ArtifactName(ordinal int, slug string) string {
	return fmt.Sprintf("%02d_%s.pdf", ordinal, slug)
}

// Scale bounds accepted by the print backend.
const (
	MinScale = 0.1
	MaxScale = 2.0
)

// PrintOptions configures print-to-PDF. Margins are in inches.
type PrintOptions struct {
	Scale           float64
	MarginTop       float64
	MarginRight     float64
	MarginBottom    float64
	MarginLeft      float64
	PrintBackground bool
}

// DefaultPrintOptions returns scale 0.75, zero margins and backgrounds on.
func DefaultPrintOptions() PrintOptions {
	return PrintOptions{Scale: 0.75, PrintBackground: true}
}

// Validate checks scale and margin bounds.
func (p PrintOptions) Validate() error {
	if p.Scale < MinScale || p.Scale > MaxScale {
		return fmt.Errorf("%w: %.2f (must be between %.1f and %.1f)", ErrInvalidScale, p.Scale, MinScale, MaxScale)
	}
	margins := []struct {
		side  string
		value float64
	}{
		{"top", p.MarginTop},
		{"right", p.MarginRight},
		{"bottom", p.MarginBottom},
		{"left", p.MarginLeft},
	}
	for _, m := range margins {
		if m.value < 0 {
			return fmt.Errorf("%w: %s margin %.2f is negative", ErrInvalidMargin, m.side, m.value)
		}
	}
	return nil
}

// Timing holds the settle delays inserted after client-side rendering steps.
type Timing struct {
	RootSettle    time.Duration // after navigating to the root
	DocSettle     time.Duration // after moving from the root to the first doc page
	PageSettle    time.Duration // after each page load, before preparing it
	MenuSettle    time.Duration // after expanding navigation menus
	CoverSettle   time.Duration // after loading the root for cover extraction
	ContentSettle time.Duration // after loading synthesized cover content
}

// DefaultTiming returns the delays used when nothing is configured.
func DefaultTiming() Timing {
	return Timing{
		RootSettle:    3 * time.Second,
		DocSettle:     2 * time.Second,
		PageSettle:    time.Second,
		MenuSettle:    2 * time.Second,
		CoverSettle:   2 * time.Second,
		ContentSettle: time.Second,
	}
}
