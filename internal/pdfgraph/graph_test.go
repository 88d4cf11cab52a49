package pdfgraph_test

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/alnah/go-book2pdf/internal/pdfgraph"
	"github.com/alnah/go-book2pdf/internal/pdfgraph/pdftest"
)

// pageLabels returns the text shown by each page's content stream, in order.
func pageLabels(t *testing.T, g *pdfgraph.Graph) []string {
	t.Helper()

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
			t.Fatalf("page %v content %q shows no text", ref, data)
		}
		labels = append(labels, data[start+1:end])
	}
	return labels
}

func mustParse(t *testing.T, data []byte) *pdfgraph.Graph {
	t.Helper()

	g, err := pdfgraph.Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return g
}

// ---------------------------------------------------------------------------
// TestParse - Reading documents into graphs
// ---------------------------------------------------------------------------

func TestParse(t *testing.T) {
	t.Parallel()

	doc := pdftest.Document("one", "two", "three")
	truncated := doc.Bytes()
	truncated = truncated[:bytes.Index(truncated, []byte("xref\n"))]

	wrongStart := doc.Bytes()
	idx := bytes.LastIndex(wrongStart, []byte("startxref"))
	wrongStart = append(wrongStart[:idx:idx], []byte("startxref\n0\n%%EOF\n")...)

	tests := []struct {
		name string
		data []byte
	}{
		{"classic cross-reference table", doc.Bytes()},
		{"cross-reference and object streams", doc.Compressed()},
		{"missing cross-reference rebuilt by scan", truncated},
		{"wrong startxref rebuilt by scan", wrongStart},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			g := mustParse(t, tt.data)
			got := pageLabels(t, g)
			want := []string{"one", "two", "three"}
			if fmt.Sprint(got) != fmt.Sprint(want) {
				t.Errorf("page labels = %v, want %v", got, want)
			}
			if g.Version != "1.4" {
				t.Errorf("Version = %q, want %q", g.Version, "1.4")
			}
			if g.MaxID < 9 {
				t.Errorf("MaxID = %d, want >= 9", g.MaxID)
			}
			for _, key := range []pdfgraph.Name{"Size", "Prev", "W", "Index"} {
				if _, ok := g.Trailer[key]; ok {
					t.Errorf("trailer keeps bookkeeping key %s", key)
				}
			}
		})
	}
}

func TestParse_DropsContainers(t *testing.T) {
	t.Parallel()

	g := mustParse(t, pdftest.Document("a").Compressed())
	for id, e := range g.Objects {
		if s, ok := e.Value.(*pdfgraph.Stream); ok {
			switch s.Dict.Name("Type") {
			case "XRef", "ObjStm":
				t.Errorf("object %d is a %s container", id, s.Dict.Name("Type"))
			}
		}
	}
	// The object stream (6) and xref stream (7) leave the arena, and /Size 8
	// does not count.
	if g.MaxID != 5 {
		t.Errorf("MaxID = %d, want 5", g.MaxID)
	}
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	encrypted := pdftest.Document("a")
	encrypted.Trailer += " /Encrypt << /Filter /Standard >>"

	noPages := pdftest.Doc{
		Objects: []pdftest.Object{{ID: 1, Body: "<< /Type /Catalog >>"}},
		Trailer: "/Root 1 0 R",
	}

	leafRoot := pdftest.Doc{
		Objects: []pdftest.Object{
			{ID: 1, Body: "<< /Type /Catalog /Pages 2 0 R >>"},
			{ID: 2, Body: "<< /Type /Page >>"},
		},
		Trailer: "/Root 1 0 R",
	}

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"not a PDF", []byte("hello world"), pdfgraph.ErrNotPDF},
		{"header after first kilobyte", append(bytes.Repeat([]byte(" "), 2048), pdftest.Document("a").Bytes()...), pdfgraph.ErrNotPDF},
		{"encrypted", encrypted.Bytes(), pdfgraph.ErrEncrypted},
		{"catalog without pages", noPages.Bytes(), pdfgraph.ErrNoPageTree},
		{"page tree root is a page", leafRoot.Bytes(), pdfgraph.ErrNoPageTree},
		{"header only", []byte("%PDF-1.7\n"), pdfgraph.ErrXref},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := pdfgraph.Parse(tt.data)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Parse() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestPages - Page tree traversal
// ---------------------------------------------------------------------------

func TestPages_NestedTree(t *testing.T) {
	t.Parallel()

	// Root 2 -> [node 3 -> [page 5, page 6], page 7]
	doc := pdftest.Doc{
		Objects: []pdftest.Object{
			{ID: 1, Body: "<< /Type /Catalog /Pages 2 0 R >>"},
			{ID: 2, Body: "<< /Type /Pages /Kids [3 0 R 7 0 R] /Count 3 /MediaBox [0 0 100 100] >>"},
			{ID: 3, Body: "<< /Type /Pages /Parent 2 0 R /Kids [5 0 R 6 0 R] /Count 2 /Rotate 90 >>"},
			{ID: 5, Body: "<< /Type /Page /Parent 3 0 R /Contents 8 0 R >>"},
			{ID: 6, Body: "<< /Type /Page /Parent 3 0 R /Contents 9 0 R >>"},
			{ID: 7, Body: "<< /Type /Page /Parent 2 0 R /Contents 10 0 R >>"},
			{ID: 8, Body: pdftest.Stream("", pdftest.Content("first"))},
			{ID: 9, Body: pdftest.Stream("", pdftest.Content("second"))},
			{ID: 10, Body: pdftest.Stream("", pdftest.Content("third"))},
		},
		Trailer: "/Root 1 0 R",
	}

	g := mustParse(t, doc.Bytes())
	got := pageLabels(t, g)
	if want := "[first second third]"; fmt.Sprint(got) != want {
		t.Errorf("page labels = %v, want %s", got, want)
	}
}

func TestParse_UnwalkablePageTree(t *testing.T) {
	t.Parallel()

	tree := func(root, extra string) []byte {
		objects := []pdftest.Object{
			{ID: 1, Body: "<< /Type /Catalog /Pages 2 0 R >>"},
			{ID: 2, Body: root},
			{ID: 4, Body: "<< /Type /Page /Parent 2 0 R >>"},
		}
		if extra != "" {
			objects = append(objects, pdftest.Object{ID: 3, Body: extra})
		}
		return pdftest.Doc{Objects: objects, Trailer: "/Root 1 0 R"}.Bytes()
	}

	tests := []struct {
		name string
		data []byte
	}{
		{"cycle", tree("<< /Type /Pages /Kids [3 0 R] /Count 1 >>", "<< /Type /Pages /Kids [2 0 R] /Count 1 >>")},
		{"repeated kid", tree("<< /Type /Pages /Kids [4 0 R 4 0 R] /Count 2 >>", "")},
		{"direct object kid", tree("<< /Type /Pages /Kids [<< /Type /Page >>] /Count 1 >>", "")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := pdfgraph.Parse(tt.data); !errors.Is(err, pdfgraph.ErrNoPageTree) {
				t.Errorf("Parse() error = %v, want ErrNoPageTree", err)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestBytes - Serialization
// ---------------------------------------------------------------------------

func TestBytes_RoundTrip(t *testing.T) {
	t.Parallel()

	g := mustParse(t, pdftest.Document("x", "y").Compressed())
	out := g.Bytes()

	if !bytes.HasPrefix(out, []byte("%PDF-1.4\n")) {
		t.Errorf("output starts with %q", out[:min(len(out), 12)])
	}
	if !bytes.Contains(out, []byte("\nxref\n0 ")) {
		t.Error("output has no classic cross-reference table")
	}
	if bytes.Contains(out, []byte("/ObjStm")) || bytes.Contains(out, []byte("/XRef")) {
		t.Error("output still contains container objects")
	}

	again := mustParse(t, out)
	if got := pageLabels(t, again); fmt.Sprint(got) != "[x y]" {
		t.Errorf("page labels = %v, want [x y]", got)
	}
	if again.MaxID != g.MaxID {
		t.Errorf("MaxID = %d, want %d", again.MaxID, g.MaxID)
	}
}
