package book2pdf

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// linkGroups are scanned in priority order before the page-wide fallback.
var linkGroups = []string{
	`nav.navbar a[href^="/"]`,
	`aside a[href^="/"]`,
	`.menu a[href^="/"]`,
	`.theme-doc-sidebar-menu a[href^="/"]`,
	`nav a[href^="/"]`,
}

const fallbackLinks = `a[href^="/"]`

// CollectLinks returns the site-internal addresses found in doc, navigation
// groups first, then every other internal anchor. Each address appears once,
// at its first position.
func CollectLinks(doc *goquery.Document) []string {
	if doc == nil {
		return nil
	}

	var links []string
	seen := make(map[string]struct{})
	add := func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok || !acceptLink(href) {
			return
		}
		if _, dup := seen[href]; dup {
			return
		}
		seen[href] = struct{}{}
		links = append(links, href)
	}

	for _, sel := range linkGroups {
		doc.Find(sel).Each(add)
	}
	doc.Find(fallbackLinks).Each(add)
	return links
}

// acceptLink keeps root-relative page addresses. Network-path references
// ("//host/..."), fragments and static assets are rejected.
func acceptLink(href string) bool {
	return strings.HasPrefix(href, "/") &&
		!strings.HasPrefix(href, "//") &&
		!strings.Contains(href, "#") &&
		!strings.Contains(href, "/assets/")
}
