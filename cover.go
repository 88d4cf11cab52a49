package book2pdf

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/alnah/go-book2pdf/internal/assets"
)

const (
	defaultCoverTitle = "Documentation"
	generatorName     = "book2pdf"
)

// CoverOptions controls the synthesized first page.
type CoverOptions struct {
	Render        RenderOptions // Settle applies after loading the site root
	ContentSettle time.Duration // wait after loading the cover markup
	Assets        assets.AssetLoader
}

// CoverInfo is what ended up on the cover.
type CoverInfo struct {
	Title string
	Logo  string // empty when the site shows no usable logo
	URL   string
}

// siteInfo is the result of siteInfoJS. Every field is optional.
type siteInfo struct {
	Logo          *string `json:"logo"`
	DocumentTitle *string `json:"documentTitle"`
	Heading       *string `json:"heading"`
	Brand         *string `json:"brand"`
	URL           *string `json:"url"`
}

// siteInfoJS reads the logo, title candidates and final address of the
// current page.
const siteInfoJS = `() => {
	const logoSelectors = [
		'img[alt*="logo" i]',
		'img[src*="logo" i]',
		'img[class*="logo" i]',
		'.navbar__logo img',
		'.navbar-brand img',
		'header img',
		'.header img',
	];
	let logo = null;
	for (const selector of logoSelectors) {
		const img = document.querySelector(selector);
		if (img && img.src) {
			logo = img.src;
			break;
		}
	}
	const text = (selector) => {
		const el = document.querySelector(selector);
		return el ? el.textContent : null;
	};
	return {
		logo: logo,
		documentTitle: document.title || null,
		heading: text('h1'),
		brand: text('.navbar-brand'),
		url: window.location.href || null,
	};
}`

// coverData feeds the cover template.
type coverData struct {
	Title     string
	Logo      template.URL
	URL       string
	Style     template.CSS
	Generator string
}

// RenderCover extracts the site's title and logo from root, renders the cover
// template with them and prints it to dest. Errors wrap ErrCoverRender.
func RenderCover(ctx context.Context, sess Session, root, dest string, opts CoverOptions) (*CoverInfo, error) {
	info, err := renderCover(ctx, sess, root, dest, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCoverRender, err)
	}
	return info, nil
}

func renderCover(ctx context.Context, sess Session, root, dest string, opts CoverOptions) (*CoverInfo, error) {
	loader := opts.Assets
	if loader == nil {
		loader = assets.NewEmbeddedLoader()
	}
	cover, err := assets.LoadCover(loader)
	if err != nil {
		return nil, err
	}
	tmpl, err := template.New("cover").Parse(cover.Template)
	if err != nil {
		return nil, fmt.Errorf("parsing cover template: %w", err)
	}

	ctx, cancel := withTimeout(ctx, opts.Render.Timeout)
	defer cancel()

	page, err := openPage(ctx, sess, root)
	if err != nil {
		return nil, err
	}
	defer func() { _ = page.Close() }()

	if err := settle(ctx, opts.Render.Settle); err != nil {
		return nil, err
	}

	var site siteInfo
	if err := evalJSON(page, siteInfoJS, &site); err != nil {
		return nil, err
	}
	info := resolveCoverInfo(site, root)

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, coverData{
		Title:     info.Title,
		Logo:      template.URL(info.Logo), // #nosec G203 -- checked by usableLogo
		URL:       info.URL,
		Style:     template.CSS(cover.Style), // #nosec G203 -- trusted asset
		Generator: generatorName,
	})
	if err != nil {
		return nil, fmt.Errorf("executing cover template: %w", err)
	}

	if err := page.SetContent(buf.String()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSetContent, err)
	}
	if err := settle(ctx, opts.ContentSettle); err != nil {
		return nil, err
	}
	if err := printTo(page, dest, opts.Render.Print); err != nil {
		return nil, err
	}
	return info, nil
}

// resolveCoverInfo applies the fallbacks: title from the document title, the
// first heading, the navbar brand, then "Documentation"; address from the
// page, then root.
func resolveCoverInfo(site siteInfo, root string) *CoverInfo {
	info := &CoverInfo{
		Title: firstNonEmpty(site.DocumentTitle, site.Heading, site.Brand),
		URL:   firstNonEmpty(site.URL),
	}
	if info.Title == "" {
		info.Title = defaultCoverTitle
	}
	if info.URL == "" {
		info.URL = root
	}
	if logo := firstNonEmpty(site.Logo); usableLogo(logo) {
		info.Logo = logo
	}
	return info
}

// usableLogo accepts web addresses and inline images. Anything else, such as
// javascript: or blob: addresses, is dropped.
func usableLogo(src string) bool {
	lower := strings.ToLower(src)
	return strings.HasPrefix(lower, "http://") ||
		strings.HasPrefix(lower, "https://") ||
		strings.HasPrefix(lower, "data:image/")
}

func firstNonEmpty(values ...*string) string {
	for _, v := range values {
		if v == nil {
			continue
		}
		if s := strings.TrimSpace(*v); s != "" {
			return s
		}
	}
	return ""
}
