package book2pdf

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// marker is one detection rule. A rule matches when its selector finds an
// element, or when its test function returns true.
type marker struct {
	framework Framework
	selector  string
	test      func(doc *goquery.Document) bool
	name      string
}

// markers are checked in order; the first match wins.
var markers = []marker{
	// GitBook legacy and modern layouts
	{framework: FrameworkGitBook, selector: "body > .gitbook-root"},
	{framework: FrameworkGitBook, selector: "body > div.scroll-nojump"},
	{framework: FrameworkGitBook, selector: `nav[role="navigation"]`},
	{framework: FrameworkGitBook, selector: `a[href*="gitbook.io"]`},
	{framework: FrameworkGitBook, name: "body[class*=theme-]", test: hasThemeBodyClass},

	// Docusaurus
	{framework: FrameworkDocusaurus, selector: "div#__docusaurus"},
	{framework: FrameworkDocusaurus, selector: "div.docusaurus-root"},
	{framework: FrameworkDocusaurus, selector: "nav.navbar--fixed-top"},
	{framework: FrameworkDocusaurus, selector: "div.navbar__logo"},
	{framework: FrameworkDocusaurus, selector: `script[src*="docusaurus"]`},
	{framework: FrameworkDocusaurus, name: "inline script", test: hasDocusaurusScript},
}

// Classify inspects a rendered page and reports whether it was produced by a
// supported documentation framework.
func Classify(doc *goquery.Document) Classification {
	if doc == nil {
		return Classification{}
	}
	for _, m := range markers {
		if m.test != nil {
			if m.test(doc) {
				return Classification{Supported: true, Framework: m.framework, Marker: m.name}
			}
			continue
		}
		if doc.Find(m.selector).Length() > 0 {
			return Classification{Supported: true, Framework: m.framework, Marker: m.selector}
		}
	}
	return Classification{}
}

func hasThemeBodyClass(doc *goquery.Document) bool {
	class, _ := doc.Find("body").First().Attr("class")
	return strings.Contains(class, "theme-")
}

func hasDocusaurusScript(doc *goquery.Document) bool {
	found := false
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		if strings.Contains(text, "docusaurus") || strings.Contains(text, "__DOCUSAURUS__") {
			found = true
		}
		return !found
	})
	return found
}
