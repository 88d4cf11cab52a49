package book2pdf

import (
	"net/url"
	"strings"

	"github.com/gosimple/slug"
)

const (
	indexSlug    = "index"
	fallbackHost = "gitbook"
)

// HrefToSlug derives a file-name token from a site-relative address:
// "/Guide/Setup Page" becomes "guide-setup-page". The root address and any
// address that normalizes to nothing become "index".
func HrefToSlug(href string) string {
	href = strings.TrimSpace(href)
	if href == "" || href == "/" {
		return indexSlug
	}
	s := slug.Make(href)
	if s == "" {
		return indexSlug
	}
	return s
}

// DomainSlug names the combined document after the site host, e.g.
// "docs-example-com" for https://docs.example.com.
func DomainSlug(root *url.URL) string {
	if root == nil {
		return fallbackHost
	}
	s := slug.Make(strings.ReplaceAll(root.Hostname(), ".", "-"))
	if s == "" {
		return fallbackHost
	}
	return s
}

// CombinedName returns the file name of the merged document for root.
func CombinedName(root *url.URL) string {
	return DomainSlug(root) + "-combined.pdf"
}
