package book2pdf_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	book2pdf "github.com/alnah/go-book2pdf"
	"github.com/alnah/go-book2pdf/internal/pdfgraph"
	"github.com/alnah/go-book2pdf/internal/pdfgraph/pdftest"
)

// coverLabel is the page label printed for synthesized cover content.
const coverLabel = "cover"

// fakeSite is an in-memory website served through fakeSession. Pages print
// as one-page PDFs labelled with their address.
type fakeSite struct {
	mu sync.Mutex

	pages        map[string]string // address -> HTML
	failNavigate map[string]error
	failPDF      map[string]error
	blockLoad    bool   // WaitLoad waits for the page context to end
	firstDoc     string // result of the first-doc lookup; empty means null
	siteInfo     string // raw JSON of the cover extraction script
	menuResult   string // raw JSON of the menu script; "2" when empty
	menuErr      error

	fakeStats
}

// fakeStats records what the pipeline did with the site.
type fakeStats struct {
	navigated     []string
	printed       []string
	coverHTML     string
	newPages      int
	closedPages   int
	sessionsOpen  int
	sessionClosed int
}

func newFakeSite(pages map[string]string) *fakeSite {
	return &fakeSite{
		pages:        pages,
		failNavigate: map[string]error{},
		failPDF:      map[string]error{},
	}
}

// factory returns a SessionFactory serving the site.
func (s *fakeSite) factory() book2pdf.SessionFactory {
	return func(context.Context) (book2pdf.Session, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.sessionsOpen++
		return &fakeSession{site: s}, nil
	}
}

func (s *fakeSite) stats() fakeStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.fakeStats
	st.navigated = append([]string(nil), s.navigated...)
	st.printed = append([]string(nil), s.printed...)
	return st
}

type fakeSession struct {
	site *fakeSite
}

func (f *fakeSession) NewPage(ctx context.Context) (book2pdf.Page, error) {
	f.site.mu.Lock()
	defer f.site.mu.Unlock()
	f.site.newPages++
	return &fakePage{site: f.site, ctx: ctx}, nil
}

func (f *fakeSession) Close() error {
	f.site.mu.Lock()
	defer f.site.mu.Unlock()
	f.site.sessionClosed++
	return nil
}

type fakePage struct {
	site    *fakeSite
	ctx     context.Context
	current string
	content string
}

func (p *fakePage) Navigate(address string) error {
	p.site.mu.Lock()
	defer p.site.mu.Unlock()
	p.site.navigated = append(p.site.navigated, address)
	if err := p.site.failNavigate[address]; err != nil {
		return err
	}
	p.current, p.content = address, ""
	return nil
}

func (p *fakePage) WaitLoad() error {
	if p.site.blockLoad {
		<-p.ctx.Done()
	}
	return p.ctx.Err()
}

func (p *fakePage) HTML() (string, error) {
	if p.content != "" {
		return p.content, nil
	}
	p.site.mu.Lock()
	defer p.site.mu.Unlock()
	if html, ok := p.site.pages[p.current]; ok {
		return html, nil
	}
	return "<html><body></body></html>", nil
}

func (p *fakePage) Eval(js string) (json.RawMessage, error) {
	p.site.mu.Lock()
	defer p.site.mu.Unlock()

	switch {
	case strings.Contains(js, "logoSelectors"):
		if p.site.siteInfo == "" {
			return json.RawMessage(`{}`), nil
		}
		return json.RawMessage(p.site.siteInfo), nil
	case strings.Contains(js, "expandable-body-"):
		return json.RawMessage(`true`), nil
	case strings.Contains(js, "menu__caret"):
		if p.site.menuErr != nil {
			return nil, p.site.menuErr
		}
		if p.site.menuResult == "" {
			return json.RawMessage(`2`), nil
		}
		return json.RawMessage(p.site.menuResult), nil
	case strings.Contains(js, "link.href"):
		if p.site.firstDoc == "" {
			return json.RawMessage(`null`), nil
		}
		return json.Marshal(p.site.firstDoc)
	}
	return nil, errors.New("unexpected script")
}

func (p *fakePage) SetContent(html string) error {
	p.site.mu.Lock()
	defer p.site.mu.Unlock()
	p.site.coverHTML = html
	p.content = html
	return nil
}

func (p *fakePage) PDF(book2pdf.PrintOptions) ([]byte, error) {
	if err := p.ctx.Err(); err != nil {
		return nil, err
	}
	p.site.mu.Lock()
	defer p.site.mu.Unlock()

	label := p.current
	if p.content != "" {
		label = coverLabel
	}
	if err := p.site.failPDF[label]; err != nil {
		return nil, err
	}
	p.site.printed = append(p.site.printed, label)
	return pdftest.Document(label).Bytes(), nil
}

func (p *fakePage) Close() error {
	p.site.mu.Lock()
	defer p.site.mu.Unlock()
	p.site.closedPages++
	return nil
}

// pdfLabels parses data and returns the label shown by each page, in order.
func pdfLabels(t *testing.T, data []byte) []string {
	t.Helper()

	g, err := pdfgraph.Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	pages, err := g.Pages()
	if err != nil {
		t.Fatalf("Pages() error = %v", err)
	}
	labels := make([]string, 0, len(pages))
	for _, ref := range pages {
		page, ok := g.Resolve(ref).(pdfgraph.Dict)
		if !ok {
			t.Fatalf("page %v is not a dictionary", ref)
		}
		s, ok := g.Resolve(page["Contents"]).(*pdfgraph.Stream)
		if !ok {
			t.Fatalf("page %v has no content stream", ref)
		}
		data := string(s.Data)
		start, end := strings.IndexByte(data, '('), strings.IndexByte(data, ')')
		if start < 0 || end < start {
			t.Fatalf("page %v shows no text", ref)
		}
		labels = append(labels, data[start+1:end])
	}
	return labels
}
