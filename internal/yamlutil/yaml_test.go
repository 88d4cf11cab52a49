package yamlutil_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/alnah/go-book2pdf/internal/yamlutil"
)

type testConfig struct {
	Dir     string  `yaml:"dir"`
	Scale   float64 `yaml:"scale"`
	Combine bool    `yaml:"combine"`
}

// ---------------------------------------------------------------------------
// TestUnmarshalStrict - Strict, size-limited decoding
// ---------------------------------------------------------------------------

func TestUnmarshalStrict(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    []byte
		dest    any
		wantErr error
		want    testConfig
	}{
		{
			name: "valid YAML",
			data: []byte("dir: out\nscale: 0.5\ncombine: true"),
			dest: &testConfig{},
			want: testConfig{Dir: "out", Scale: 0.5, Combine: true},
		},
		{
			name: "absent keys keep prefilled values",
			data: []byte("dir: out"),
			dest: &testConfig{Scale: 0.75, Combine: true},
			want: testConfig{Dir: "out", Scale: 0.75, Combine: true},
		},
		{name: "nil data", data: nil, dest: &testConfig{}, wantErr: yamlutil.ErrNilData},
		{name: "blank data", data: []byte("  \n"), dest: &testConfig{}, wantErr: yamlutil.ErrNilData},
		{name: "nil destination", data: []byte("dir: out"), dest: nil, wantErr: yamlutil.ErrNilDestination},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := yamlutil.UnmarshalStrict(tt.data, tt.dest)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("UnmarshalStrict() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("UnmarshalStrict() error = %v", err)
			}
			if got := *tt.dest.(*testConfig); got != tt.want {
				t.Errorf("UnmarshalStrict() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestUnmarshalStrict_RejectsUnknownAndInvalid(t *testing.T) {
	t.Parallel()

	for _, data := range []string{"dir: out\nextra: 1", "dir: [unclosed"} {
		var cfg testConfig
		err := yamlutil.UnmarshalStrict([]byte(data), &cfg)
		if err == nil {
			t.Errorf("UnmarshalStrict(%q) error = nil, want error", data)
			continue
		}
		if !strings.HasPrefix(err.Error(), "yamlutil:") {
			t.Errorf("error %q lacks package prefix", err)
		}
	}
}

func TestUnmarshalStrict_InputSizeLimit(t *testing.T) {
	t.Parallel()

	data := []byte("dir: " + strings.Repeat("a", yamlutil.MaxInputSize))
	var cfg testConfig
	if err := yamlutil.UnmarshalStrict(data, &cfg); !errors.Is(err, yamlutil.ErrInputTooLarge) {
		t.Errorf("UnmarshalStrict() error = %v, want ErrInputTooLarge", err)
	}
}

// ---------------------------------------------------------------------------
// TestMarshal - Encoding with optional header
// ---------------------------------------------------------------------------

func TestMarshal(t *testing.T) {
	t.Parallel()

	cfg := testConfig{Dir: "out", Scale: 0.75, Combine: true}

	got, err := yamlutil.Marshal(cfg, "")
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	for _, want := range []string{"dir: out", "scale: 0.75", "combine: true"} {
		if !strings.Contains(string(got), want) {
			t.Errorf("Marshal() = %q, missing %q", got, want)
		}
	}

	withHeader, err := yamlutil.Marshal(cfg, "effective configuration\nsource: defaults")
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.HasPrefix(string(withHeader), "# effective configuration\n# source: defaults\n") {
		t.Errorf("Marshal() with header = %q", withHeader)
	}

	var back testConfig
	if err := yamlutil.UnmarshalStrict(withHeader, &back); err != nil {
		t.Fatalf("decoding output: %v", err)
	}
	if back != cfg {
		t.Errorf("decoded %+v, want %+v", back, cfg)
	}
}
