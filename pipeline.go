package book2pdf

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/alnah/go-book2pdf/internal/assets"
	"github.com/alnah/go-book2pdf/internal/fileutil"
)

// pagesDirName is the artifact subdirectory of the output directory.
const pagesDirName = "pages"

// firstDocLinkJS returns the absolute address of the first internal
// documentation link, or null.
const firstDocLinkJS = `() => {
	for (const link of document.querySelectorAll('a[href^="/"]')) {
		const href = link.getAttribute('href');
		if (href && href !== '/' && !href.startsWith('//') && !href.includes('#') && !href.includes('assets')) {
			return link.href;
		}
	}
	return null;
}`

// Pipeline turns a documentation site into PDF files.
type Pipeline struct {
	cfg        pipelineConfig
	logger     zerolog.Logger
	progress   Progress
	newSession SessionFactory
	assets     assets.AssetLoader
}

// PageFailure records an artifact that could not be rendered.
type PageFailure struct {
	Ordinal int
	Source  string
	Err     error
}

// Result summarizes a run.
type Result struct {
	RunID        string
	Site         *DocumentSite
	Artifacts    []PageArtifact // rendered files, in ordinal order
	Failed       []PageFailure
	Cover        *CoverInfo // nil when the cover failed
	CombinedPath string     // empty when nothing was merged
	Merge        *MergeResult
	CleanedUp    bool
}

// NewPipeline creates a Pipeline with default settings: output to
// DefaultOutDir, combining on, default print options and timing, a
// DefaultTimeout per page and a locally launched browser.
func NewPipeline(opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg: pipelineConfig{
			outDir:  DefaultOutDir,
			combine: true,
			print:   DefaultPrintOptions(),
			timing:  DefaultTiming(),
			timeout: DefaultTimeout,
		},
		logger:   zerolog.Nop(),
		progress: nopProgress{},
		assets:   assets.NewEmbeddedLoader(),
	}

	for _, opt := range opts {
		opt(p)
	}

	// Launch a local browser unless a factory was injected (e.g., by tests)
	if p.newSession == nil {
		p.newSession = NewRodSessionFactory(RodConfig{Logger: p.logger})
	}

	return p
}

// Run crawls target and renders its pages. The returned Result is non-nil
// whenever the run got past input validation, including on error.
func (p *Pipeline) Run(ctx context.Context, target string) (*Result, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	root, err := ParseTarget(target)
	if err != nil {
		return nil, err
	}

	res := &Result{RunID: uuid.NewString()}
	log := p.logger.With().Str("run", res.RunID).Logger()
	log.Info().Str("target", root.String()).Msg("starting download")

	sess, err := p.newSession(ctx)
	if err != nil {
		return res, err
	}
	defer func() {
		if err := sess.Close(); err != nil {
			log.Warn().Err(err).Msg("closing browser")
		}
	}()

	p.progress.Discovering(root.String())
	site, err := p.discover(ctx, sess, root, log)
	if err != nil {
		return res, err
	}
	res.Site = site
	log.Info().
		Str("framework", string(site.Framework)).
		Int("links", len(site.Links)).
		Msg("site discovered")

	pagesDir := filepath.Join(p.cfg.outDir, pagesDirName)
	if err := os.MkdirAll(pagesDir, fileutil.DirPerm); err != nil {
		return res, fmt.Errorf("creating pages directory: %w", err)
	}

	if err := p.renderAll(ctx, sess, site, pagesDir, res, log); err != nil {
		return res, err
	}

	if !p.cfg.combine {
		return res, nil
	}
	if len(res.Artifacts) == 0 {
		log.Warn().Msg("no pages were rendered, skipping merge")
		return res, nil
	}

	combined := filepath.Join(p.cfg.outDir, CombinedName(root))
	merged, err := MergeFiles(artifactPaths(res.Artifacts), combined)
	res.Merge = merged
	if merged != nil {
		for _, s := range merged.Skipped {
			log.Warn().Err(s.Err).Str("file", s.Path).Msg("skipping unreadable PDF")
		}
	}
	if err != nil {
		return res, err
	}
	res.CombinedPath = combined
	log.Info().Str("path", combined).Int("pages", merged.Pages).Msg("combined PDF saved")

	if !p.cfg.preservePages {
		res.CleanedUp = cleanup(res.Artifacts, pagesDir, log)
	}
	return res, nil
}

// validate checks the settings that are only known once options are applied.
func (p *Pipeline) validate() error {
	if p.newSession == nil {
		return ErrNoSession
	}
	if p.cfg.timeout < 0 {
		return fmt.Errorf("%w: %s", ErrInvalidTimeout, p.cfg.timeout)
	}
	return p.cfg.print.Validate()
}

// ParseTarget validates a site address. Only absolute http(s) addresses with
// a host are accepted.
func ParseTarget(target string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(target))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q (expected http:// or https:// address)", ErrInvalidURL, target)
	}
	return u, nil
}

// discover loads the root, rejects unsupported sites and collects the
// internal links, after moving to the first documentation page when the root
// is the site's landing page and expanding collapsed menus.
func (p *Pipeline) discover(ctx context.Context, sess Session, root *url.URL, log zerolog.Logger) (*DocumentSite, error) {
	t := p.cfg.timing
	ctx, cancel := withTimeout(ctx, budget(p.cfg.timeout, t.RootSettle, t.DocSettle, t.MenuSettle))
	defer cancel()

	page, err := openPage(ctx, sess, root.String())
	if err != nil {
		return nil, err
	}
	defer func() { _ = page.Close() }()

	if err := settle(ctx, t.RootSettle); err != nil {
		return nil, err
	}

	doc, err := pageDocument(page)
	if err != nil {
		return nil, err
	}
	class := Classify(doc)
	if !class.Supported {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSite, root)
	}
	log.Debug().Str("marker", class.Marker).Msg("site classified")

	if isLandingAddress(root) {
		p.openFirstDoc(ctx, page, log)
	}

	clicked, err := ExpandMenus(ctx, page)
	if err != nil {
		log.Warn().Err(err).Msg("expanding navigation menus")
	} else {
		log.Debug().Int("clicked", clicked).Msg("navigation menus expanded")
	}
	if err := settle(ctx, t.MenuSettle); err != nil {
		return nil, err
	}

	if doc, err = pageDocument(page); err != nil {
		return nil, err
	}
	return &DocumentSite{
		Root:      root,
		Supported: true,
		Framework: class.Framework,
		Links:     CollectLinks(doc),
	}, nil
}

// isLandingAddress reports whether root names a site or section landing page
// instead of a documentation page.
func isLandingAddress(root *url.URL) bool {
	if root.Path == "" || strings.HasSuffix(root.Path, "/") {
		return true
	}
	addr := root.String()
	return strings.HasSuffix(addr, ".com") || strings.HasSuffix(addr, ".app")
}

// openFirstDoc navigates page to the first documentation link so the sidebar
// of a docs page gets loaded. Failures leave the page where it is.
func (p *Pipeline) openFirstDoc(ctx context.Context, page Page, log zerolog.Logger) {
	var link *string
	if err := evalJSON(page, firstDocLinkJS, &link); err != nil {
		log.Debug().Err(err).Msg("looking up first documentation link")
		return
	}
	if link == nil || *link == "" {
		return
	}

	log.Info().Str("url", *link).Msg("navigating to documentation page to load sidebar")
	if err := page.Navigate(*link); err != nil {
		log.Warn().Err(err).Str("url", *link).Msg("navigating to documentation page")
		return
	}
	if err := page.WaitLoad(); err != nil {
		log.Warn().Err(err).Str("url", *link).Msg("waiting for documentation page")
		return
	}
	_ = settle(ctx, p.cfg.timing.DocSettle)
}

// renderAll renders the cover and every collected link, in order. Page
// failures are recorded; only cancellation stops the loop.
func (p *Pipeline) renderAll(ctx context.Context, sess Session, site *DocumentSite, pagesDir string, res *Result, log zerolog.Logger) error {
	t := p.cfg.timing
	p.progress.Start(len(site.Links) + 1)
	defer p.progress.Finish()

	coverPath := filepath.Join(pagesDir, ArtifactName(CoverOrdinal, "cover"))
	cover, err := RenderCover(ctx, sess, site.Root.String(), coverPath, CoverOptions{
		Render: RenderOptions{
			Print:   p.cfg.print,
			Settle:  t.CoverSettle,
			Timeout: budget(p.cfg.timeout, t.CoverSettle, t.ContentSettle),
		},
		ContentSettle: t.ContentSettle,
		Assets:        p.assets,
	})
	p.progress.Advance("cover")
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		log.Warn().Err(err).Msg("cover page skipped")
		res.Failed = append(res.Failed, PageFailure{Ordinal: CoverOrdinal, Source: site.Root.String(), Err: err})
	} else {
		res.Cover = cover
		res.Artifacts = append(res.Artifacts, newArtifact(CoverOrdinal, "cover", site.Root.String(), coverPath))
		log.Info().Str("path", coverPath).Msg("cover page created")
	}

	render := RenderOptions{
		Print:   p.cfg.print,
		Settle:  t.PageSettle,
		Timeout: budget(p.cfg.timeout, t.PageSettle),
	}
	for i, href := range site.Links {
		ordinal := CoverOrdinal + 1 + i
		slug := HrefToSlug(href)
		address := resolveLink(site.Root, href)
		dest := filepath.Join(pagesDir, ArtifactName(ordinal, slug))

		log.Info().Str("url", address).Str("path", dest).Msg("downloading page")
		err := RenderPage(ctx, sess, address, dest, render)
		p.progress.Advance(slug)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			log.Warn().Err(err).Str("url", address).Msg("page skipped")
			res.Failed = append(res.Failed, PageFailure{Ordinal: ordinal, Source: address, Err: err})
			continue
		}
		res.Artifacts = append(res.Artifacts, newArtifact(ordinal, slug, address, dest))
	}
	return nil
}

// cleanup removes the page files and then the pages directory when nothing
// else is left in it. Removal failures are logged only. It reports whether
// the directory was removed.
func cleanup(artifacts []PageArtifact, pagesDir string, log zerolog.Logger) bool {
	log.Info().Msg("cleaning up individual page files")
	for _, a := range artifacts {
		if err := os.Remove(a.Path); err != nil {
			log.Warn().Err(err).Str("path", a.Path).Msg("removing page file")
		}
	}
	removed, err := fileutil.RemoveDirIfEmpty(pagesDir)
	if err != nil {
		log.Warn().Err(err).Str("path", pagesDir).Msg("removing pages directory")
	}
	return removed
}

// pageDocument parses the page's current markup.
func pageDocument(page Page) (*goquery.Document, error) {
	html, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("%w: reading page content: %v", ErrEvaluate, err)
	}
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

// resolveLink makes a site-relative href absolute against root.
func resolveLink(root *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return root.Scheme + "://" + root.Host + href
	}
	return root.ResolveReference(ref).String()
}

func newArtifact(ordinal int, slug, source, path string) PageArtifact {
	a := PageArtifact{Ordinal: ordinal, Slug: slug, Source: source, Path: path}
	if info, err := os.Stat(path); err == nil {
		a.Size = info.Size()
	}
	return a
}

func artifactPaths(artifacts []PageArtifact) []string {
	paths := make([]string, len(artifacts))
	for i, a := range artifacts {
		paths[i] = a.Path
	}
	return paths
}

// budget extends a per-page timeout by the settle delays spent on the page.
// A zero timeout stays unbounded.
func budget(timeout time.Duration, settles ...time.Duration) time.Duration {
	if timeout <= 0 {
		return 0
	}
	for _, s := range settles {
		timeout += s
	}
	return timeout
}
