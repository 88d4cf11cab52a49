package book2pdf

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/alnah/go-book2pdf/internal/assets"
)

// Defaults applied by NewPipeline.
const (
	DefaultOutDir  = "output_book2pdf"
	DefaultTimeout = 30 * time.Second
)

// Option configures a Pipeline.
type Option func(*Pipeline)

// pipelineConfig holds the settings of a Pipeline.
type pipelineConfig struct {
	outDir        string
	combine       bool
	preservePages bool
	print         PrintOptions
	timing        Timing
	timeout       time.Duration
}

// WithOutDir sets the output directory. Pages go to <dir>/pages.
func WithOutDir(dir string) Option {
	return func(p *Pipeline) {
		if dir != "" {
			p.cfg.outDir = dir
		}
	}
}

// WithCombine controls whether pages are merged into one document.
func WithCombine(combine bool) Option {
	return func(p *Pipeline) { p.cfg.combine = combine }
}

// WithPreservePages keeps the per-page files after a successful merge.
func WithPreservePages(preserve bool) Option {
	return func(p *Pipeline) { p.cfg.preservePages = preserve }
}

// WithPrintOptions sets the print settings used for every page.
func WithPrintOptions(opts PrintOptions) Option {
	return func(p *Pipeline) { p.cfg.print = opts }
}

// WithTiming sets the settle delays.
func WithTiming(t Timing) Option {
	return func(p *Pipeline) { p.cfg.timing = t }
}

// WithTimeout bounds the remote operations of each page. Zero disables the
// bound; a negative value makes Run fail with ErrInvalidTimeout.
func WithTimeout(d time.Duration) Option {
	return func(p *Pipeline) { p.cfg.timeout = d }
}

// WithLogger sets the logger. The pipeline logs nothing by default.
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

// WithProgress sets the progress receiver.
func WithProgress(progress Progress) Option {
	return func(p *Pipeline) {
		if progress != nil {
			p.progress = progress
		}
	}
}

// WithSessionFactory replaces the local browser launcher.
func WithSessionFactory(f SessionFactory) Option {
	return func(p *Pipeline) { p.newSession = f }
}

// WithAssets sets the loader of the cover template and style.
func WithAssets(loader assets.AssetLoader) Option {
	return func(p *Pipeline) {
		if loader != nil {
			p.assets = loader
		}
	}
}
