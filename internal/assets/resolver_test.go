package assets

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestAssetResolver - Custom-first fallback
// ---------------------------------------------------------------------------

func TestAssetResolver_EmbeddedOnly(t *testing.T) {
	t.Parallel()

	r, err := NewAssetResolver("")
	if err != nil {
		t.Fatalf("NewAssetResolver(\"\") error = %v", err)
	}
	if r.HasCustomLoader() {
		t.Error("HasCustomLoader() = true, want false")
	}
	if _, err := r.LoadTemplate(CoverTemplateName); err != nil {
		t.Errorf("LoadTemplate(cover) error = %v", err)
	}
}

func TestAssetResolver_CustomOverridesAndFallsBack(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	writeAsset(t, base, filepath.Join("styles", "cover.css"), "body { background: black; }")

	r, err := NewAssetResolver(base)
	if err != nil {
		t.Fatalf("NewAssetResolver() error = %v", err)
	}
	if !r.HasCustomLoader() {
		t.Error("HasCustomLoader() = false, want true")
	}

	style, err := r.LoadStyle(CoverStyleName)
	if err != nil {
		t.Fatal(err)
	}
	if style != "body { background: black; }" {
		t.Errorf("LoadStyle() = %q, want custom style", style)
	}

	// No custom template: the embedded one is used.
	tmpl, err := r.LoadTemplate(CoverTemplateName)
	if err != nil {
		t.Fatalf("LoadTemplate() error = %v", err)
	}
	if !strings.Contains(tmpl, "Documentation Export") {
		t.Error("LoadTemplate() did not fall back to embedded template")
	}
}

func TestAssetResolver_ValidationErrorsDoNotFallBack(t *testing.T) {
	t.Parallel()

	r, err := NewAssetResolver(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.LoadStyle("a.b"); !errors.Is(err, ErrInvalidAssetName) {
		t.Errorf("LoadStyle(a.b) error = %v, want ErrInvalidAssetName", err)
	}
}

func TestNewAssetResolver_InvalidPath(t *testing.T) {
	t.Parallel()

	_, err := NewAssetResolver(filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, ErrInvalidBasePath) {
		t.Errorf("NewAssetResolver() error = %v, want ErrInvalidBasePath", err)
	}
}

// ---------------------------------------------------------------------------
// TestLoadCover - Template and style pair
// ---------------------------------------------------------------------------

type failingLoader struct{ err error }

func (f failingLoader) LoadStyle(string) (string, error)    { return "", f.err }
func (f failingLoader) LoadTemplate(string) (string, error) { return "", f.err }

func TestLoadCover(t *testing.T) {
	t.Parallel()

	c, err := LoadCover(NewEmbeddedLoader())
	if err != nil {
		t.Fatalf("LoadCover() error = %v", err)
	}
	if c.Template == "" || c.Style == "" {
		t.Errorf("LoadCover() = %+v, want both assets", c)
	}

	if _, err := LoadCover(failingLoader{err: ErrAssetRead}); !errors.Is(err, ErrAssetRead) {
		t.Errorf("LoadCover(failing) error = %v, want ErrAssetRead", err)
	}
}
