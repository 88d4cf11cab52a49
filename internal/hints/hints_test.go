package hints

// ForBrowserConnect tests cannot use t.Parallel(): they call t.Setenv and
// swap the package-level IsInContainer.

import (
	"path/filepath"
	"strings"
	"testing"
)

func stubContainer(t *testing.T, in bool) {
	t.Helper()
	orig := IsInContainer
	t.Cleanup(func() { IsInContainer = orig })
	IsInContainer = func() bool { return in }
}

func clearCIEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL"} {
		t.Setenv(key, "")
	}
}

// ---------------------------------------------------------------------------
// TestForBrowserConnect - Environment-dependent browser hints
// ---------------------------------------------------------------------------

func TestForBrowserConnect(t *testing.T) {
	tests := []struct {
		name        string
		ci          string
		container   bool
		noSandbox   string
		browserBin  string
		wantSandbox bool
		wantBin     bool
	}{
		{name: "in CI", ci: "true", wantSandbox: true, wantBin: true},
		{name: "in container", container: true, wantSandbox: true, wantBin: true},
		{name: "sandbox already disabled", container: true, noSandbox: "1", wantBin: true},
		{name: "browser bin set", browserBin: "/usr/bin/chromium"},
		{name: "all configured", ci: "true", container: true, noSandbox: "1", browserBin: "/usr/bin/chromium"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stubContainer(t, tt.container)
			clearCIEnv(t)
			t.Setenv("CI", tt.ci)
			t.Setenv("ROD_NO_SANDBOX", tt.noSandbox)
			t.Setenv("ROD_BROWSER_BIN", tt.browserBin)

			hint := ForBrowserConnect()

			if !strings.HasPrefix(hint, "\n  hint: ") {
				t.Errorf("hint format inconsistent: %q", hint)
			}
			if got := strings.Contains(hint, "ROD_NO_SANDBOX"); got != tt.wantSandbox {
				t.Errorf("ROD_NO_SANDBOX suggested = %v, want %v (hint %q)", got, tt.wantSandbox, hint)
			}
			if got := strings.Contains(hint, "ROD_BROWSER_BIN"); got != tt.wantBin {
				t.Errorf("ROD_BROWSER_BIN suggested = %v, want %v (hint %q)", got, tt.wantBin, hint)
			}
			if !strings.Contains(hint, "book2pdf doctor") {
				t.Errorf("expected doctor suggestion, got %q", hint)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestForConfigNotFound - Suggested config location
// ---------------------------------------------------------------------------

func TestForConfigNotFound(t *testing.T) {
	t.Parallel()

	configDir := filepath.Join("home", "me", ".config", "book2pdf")

	tests := []struct {
		name       string
		configName string
		dir        string
		wantCreate string
	}{
		{name: "name suggests file in config dir", configName: "work", dir: configDir, wantCreate: filepath.Join(configDir, "work.yaml")},
		{name: "path gets no create suggestion", configName: "conf/work.yaml", dir: configDir},
		{name: "unknown config dir", configName: "work"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			hint := ForConfigNotFound(tt.configName, tt.dir)

			if !strings.Contains(hint, "--config") {
				t.Errorf("expected --config mention, got %q", hint)
			}
			if tt.wantCreate != "" && !strings.Contains(hint, "create "+tt.wantCreate) {
				t.Errorf("expected create %q, got %q", tt.wantCreate, hint)
			}
			if tt.wantCreate == "" && strings.Contains(hint, "create") {
				t.Errorf("unexpected create suggestion: %q", hint)
			}
		})
	}
}

func TestForMergeDir(t *testing.T) {
	t.Parallel()

	if hint := ForMergeDir("out/pages"); !strings.Contains(hint, "out/pages") {
		t.Errorf("ForMergeDir() = %q, want directory mentioned", hint)
	}
	if hint := ForMergeDir(""); strings.Contains(hint, "looked in") {
		t.Errorf("ForMergeDir(\"\") = %q, want no directory", hint)
	}
}

// ---------------------------------------------------------------------------
// TestFormat_Consistency - All hints share one prefix
// ---------------------------------------------------------------------------

func TestFormat_Consistency(t *testing.T) {
	t.Parallel()

	hints := map[string]string{
		"timeout":          ForTimeout(),
		"unsupported site": ForUnsupportedSite(),
		"merge dir":        ForMergeDir("pages"),
		"output directory": ForOutputDirectory(),
		"config":           ForConfigNotFound("x", ""),
	}

	for name, h := range hints {
		if !strings.HasPrefix(h, "\n  hint: ") {
			t.Errorf("%s hint format inconsistent: %q", name, h)
		}
	}
	if !strings.Contains(ForTimeout(), "--timeout") {
		t.Error("expected --timeout flag mention")
	}
	if !strings.Contains(ForUnsupportedSite(), "Docusaurus") {
		t.Error("expected supported frameworks listed")
	}
}

func TestFormatHints_Empty(t *testing.T) {
	t.Parallel()

	if got := formatHints(nil); got != "" {
		t.Errorf("formatHints(nil) = %q, want empty", got)
	}
}
