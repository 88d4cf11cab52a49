// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-book2pdf/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForBrowserConnect returns hints for browser launch and connection errors.
func ForBrowserConnect() string {
	var hints []string

	inCI := os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != "" ||
		os.Getenv("JENKINS_URL") != ""

	if (inCI || IsInContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}
	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use an installed Chrome")
	}
	hints = append(hints, "run 'book2pdf doctor' to check the browser setup")

	return formatHints(hints)
}

// ForTimeout returns a hint about raising the per-page timeout.
func ForTimeout() string {
	return format("slow sites may need a larger --timeout (0 disables it)")
}

// ForUnsupportedSite returns a hint listing what the classifier accepts.
func ForUnsupportedSite() string {
	return format("only GitBook and Docusaurus sites are supported; check the URL points at the docs root")
}

// ForMergeDir returns hints for a merge directory that is missing or holds
// no PDF files.
func ForMergeDir(dir string) string {
	if dir == "" {
		return format("pass the pages directory with --dir")
	}
	return format("pass the pages directory with --dir (looked in " + dir + ")")
}

// ForConfigNotFound returns hints for config file not found errors.
// configDir is the per-user directory searched after the working directory.
func ForConfigNotFound(name, configDir string) string {
	hint := "use --config /path/to/file.yaml"
	if name != "" && configDir != "" && !strings.ContainsAny(name, `/\`) {
		hint += " or create " + filepath.Join(configDir, name+".yaml")
	}
	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
