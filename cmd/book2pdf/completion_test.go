package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestGenerateCompletion - Script generation per shell
// ---------------------------------------------------------------------------

func TestGenerateCompletion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		shell    Shell
		contains []string
	}{
		{ShellBash, []string{"complete -F _book2pdf book2pdf", "download", "--outDir", "--no-combine", "compgen -d"}},
		{ShellZsh, []string{"#compdef book2pdf", "download:", "--timeout", "_files -g \"*.(yaml|yml)\""}},
		{ShellFish, []string{"complete -c book2pdf", "-l preserve-pages -s p", "__fish_complete_directories"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.shell), func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			if err := GenerateCompletion(&buf, tt.shell); err != nil {
				t.Fatalf("GenerateCompletion() error = %v", err)
			}
			for _, want := range tt.contains {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("%s script missing %q", tt.shell, want)
				}
			}
		})
	}
}

func TestGenerateCompletion_Unsupported(t *testing.T) {
	t.Parallel()

	err := GenerateCompletion(&bytes.Buffer{}, Shell("powershell"))
	if !errors.Is(err, ErrUnsupportedShell) {
		t.Errorf("error = %v, want ErrUnsupportedShell", err)
	}
}

func TestExtractFlagsFromFlagSet(t *testing.T) {
	t.Parallel()

	flags := extractFlagsFromFlagSet(buildDownloadFlagSet(&downloadFlags{}))

	byName := map[string]flagDef{}
	for _, f := range flags {
		byName[f.Long] = f
	}
	checks := map[string]flagType{
		"outDir":         flagDir,
		"timeout":        flagNumber,
		"no-combine":     flagBool,
		"config":         flagFile,
		"preserve-pages": flagBool,
	}
	for name, want := range checks {
		f, ok := byName[name]
		if !ok {
			t.Errorf("flag %q missing", name)
			continue
		}
		if f.Type != want {
			t.Errorf("flag %q type = %v, want %v", name, f.Type, want)
		}
	}
	if byName["timeout"].Short != "t" {
		t.Errorf("timeout shorthand = %q, want t", byName["timeout"].Short)
	}
}
