package book2pdf

import (
	"context"
	"fmt"
	"time"

	"github.com/alnah/go-book2pdf/internal/fileutil"
)

// RenderOptions controls how a single page is printed.
type RenderOptions struct {
	Print   PrintOptions
	Settle  time.Duration // wait after load for client-side rendering
	Timeout time.Duration // bounds the page's remote operations; 0 means unbounded
}

// preparePageJS opens collapsed sections, drops interactive chrome that has
// no meaning on paper and turns relative timestamps into absolute ones.
const preparePageJS = `() => {
	for (const section of document.querySelectorAll('div[aria-controls^="expandable-body-"]')) {
		section.click();
	}

	const removable = [
		'header + div[data-rnwrdesktop-hidden="true"]',
		'div[aria-label^="Search"]',
		'div[aria-label="Page actions"]',
	];
	for (const node of document.querySelectorAll(removable.join(', '))) {
		node.remove();
	}

	const modified = document.querySelector('div[dir="auto"] > span[aria-label]');
	if (modified) {
		modified.innerText = modified.getAttribute('aria-label');
	}
	return true;
}`

// RenderPage prints address to a PDF file at dest. The page is closed on
// every path. Errors wrap ErrRender and name the address.
func RenderPage(ctx context.Context, sess Session, address, dest string, opts RenderOptions) error {
	if err := renderPage(ctx, sess, address, dest, opts); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrRender, address, err)
	}
	return nil
}

func renderPage(ctx context.Context, sess Session, address, dest string, opts RenderOptions) error {
	ctx, cancel := withTimeout(ctx, opts.Timeout)
	defer cancel()

	page, err := openPage(ctx, sess, address)
	if err != nil {
		return err
	}
	defer func() { _ = page.Close() }()

	if err := settle(ctx, opts.Settle); err != nil {
		return err
	}

	var done bool
	if err := evalJSON(page, preparePageJS, &done); err != nil {
		return err
	}

	return printTo(page, dest, opts.Print)
}

// printTo prints page and writes the bytes to dest.
func printTo(page Page, dest string, opts PrintOptions) error {
	data, err := page.PDF(opts)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}
	if err := fileutil.WriteFile(dest, data); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWriteArtifact, dest, err)
	}
	return nil
}
