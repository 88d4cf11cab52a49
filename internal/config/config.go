package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-book2pdf/internal/fileutil"
	"github.com/alnah/go-book2pdf/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// DirName is the directory searched under the user config directory.
const DirName = "book2pdf"

// Field limits.
const (
	MaxPathLength  = 4096
	MinScale       = 0.1
	MaxScale       = 2.0
	MaxWindowSize  = 16384
	MaxSettleMs    = 10 * 60 * 1000
	MaxLogFileSize = 10 * 1024 // megabytes
)

// Log levels accepted in log.level.
var logLevels = []string{"trace", "debug", "info", "warn", "error"}

// Config holds the persistent settings of book2pdf.
type Config struct {
	Output  OutputConfig  `yaml:"output"`
	Print   PrintConfig   `yaml:"print"`
	Browser BrowserConfig `yaml:"browser"`
	Timing  TimingConfig  `yaml:"timing"`
	Log     LogConfig     `yaml:"log"`
	Assets  AssetsConfig  `yaml:"assets"`
}

// OutputConfig defines where and how artifacts are written.
type OutputConfig struct {
	Dir           string `yaml:"dir"`
	Combine       bool   `yaml:"combine"`
	PreservePages bool   `yaml:"preservePages"`
}

// PrintConfig defines print-to-PDF settings. Margins are in inches.
type PrintConfig struct {
	Scale           float64 `yaml:"scale"`
	MarginTop       float64 `yaml:"marginTop"`
	MarginRight     float64 `yaml:"marginRight"`
	MarginBottom    float64 `yaml:"marginBottom"`
	MarginLeft      float64 `yaml:"marginLeft"`
	PrintBackground bool    `yaml:"printBackground"`
}

// BrowserConfig defines how the local browser is launched.
type BrowserConfig struct {
	Bin          string `yaml:"bin"` // empty = ROD_BROWSER_BIN or auto-download
	NoSandbox    bool   `yaml:"noSandbox"`
	WindowWidth  int    `yaml:"windowWidth"`
	WindowHeight int    `yaml:"windowHeight"`
}

// TimingConfig defines settle delays in milliseconds and the per-page timeout.
type TimingConfig struct {
	RootSettleMs    int     `yaml:"rootSettleMs"`
	DocSettleMs     int     `yaml:"docSettleMs"`
	PageSettleMs    int     `yaml:"pageSettleMs"`
	MenuSettleMs    int     `yaml:"menuSettleMs"`
	CoverSettleMs   int     `yaml:"coverSettleMs"`
	ContentSettleMs int     `yaml:"contentSettleMs"`
	TimeoutSeconds  float64 `yaml:"timeoutSeconds"` // 0 = unbounded
}

// LogConfig defines logging options. File output is rotated.
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"` // empty = console only
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxBackups int    `yaml:"maxBackups"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
	Compress   bool   `yaml:"compress"`
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	Path string `yaml:"path"` // Empty = use embedded assets
}

// DefaultConfig returns the settings used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{Dir: "output_book2pdf", Combine: true},
		Print:  PrintConfig{Scale: 0.75, PrintBackground: true},
		Browser: BrowserConfig{
			WindowWidth:  1920,
			WindowHeight: 1080,
		},
		Timing: TimingConfig{
			RootSettleMs:    3000,
			DocSettleMs:     2000,
			PageSettleMs:    1000,
			MenuSettleMs:    2000,
			CoverSettleMs:   2000,
			ContentSettleMs: 1000,
			TimeoutSeconds:  30,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// Validate checks ranges and lengths. Called automatically by LoadConfig.
func (c *Config) Validate() error {
	paths := []struct {
		field, value string
	}{
		{"output.dir", c.Output.Dir},
		{"browser.bin", c.Browser.Bin},
		{"log.file", c.Log.File},
		{"assets.path", c.Assets.Path},
	}
	for _, p := range paths {
		if err := validateFieldLength(p.field, p.value, MaxPathLength); err != nil {
			return err
		}
	}

	if c.Print.Scale < MinScale || c.Print.Scale > MaxScale {
		return fmt.Errorf("%w: print.scale must be between %.1f and %.1f, got %.2f", ErrInvalidValue, MinScale, MaxScale, c.Print.Scale)
	}
	margins := []struct {
		field string
		value float64
	}{
		{"print.marginTop", c.Print.MarginTop},
		{"print.marginRight", c.Print.MarginRight},
		{"print.marginBottom", c.Print.MarginBottom},
		{"print.marginLeft", c.Print.MarginLeft},
	}
	for _, m := range margins {
		if m.value < 0 {
			return fmt.Errorf("%w: %s must be zero or positive, got %.2f", ErrInvalidValue, m.field, m.value)
		}
	}

	if err := validateRange("browser.windowWidth", c.Browser.WindowWidth, MaxWindowSize); err != nil {
		return err
	}
	if err := validateRange("browser.windowHeight", c.Browser.WindowHeight, MaxWindowSize); err != nil {
		return err
	}

	settles := []struct {
		field string
		value int
	}{
		{"timing.rootSettleMs", c.Timing.RootSettleMs},
		{"timing.docSettleMs", c.Timing.DocSettleMs},
		{"timing.pageSettleMs", c.Timing.PageSettleMs},
		{"timing.menuSettleMs", c.Timing.MenuSettleMs},
		{"timing.coverSettleMs", c.Timing.CoverSettleMs},
		{"timing.contentSettleMs", c.Timing.ContentSettleMs},
	}
	for _, s := range settles {
		if err := validateRange(s.field, s.value, MaxSettleMs); err != nil {
			return err
		}
	}
	if c.Timing.TimeoutSeconds < 0 {
		return fmt.Errorf("%w: timing.timeoutSeconds must be zero or positive, got %.2f", ErrInvalidValue, c.Timing.TimeoutSeconds)
	}

	if c.Log.Level != "" && !isLogLevel(c.Log.Level) {
		return fmt.Errorf("%w: log.level %q (must be one of %s)", ErrInvalidValue, c.Log.Level, strings.Join(logLevels, ", "))
	}
	if err := validateRange("log.maxSizeMB", c.Log.MaxSizeMB, MaxLogFileSize); err != nil {
		return err
	}
	if c.Log.MaxBackups < 0 || c.Log.MaxAgeDays < 0 {
		return fmt.Errorf("%w: log.maxBackups and log.maxAgeDays must be zero or positive", ErrInvalidValue)
	}

	return nil
}

func isLogLevel(level string) bool {
	for _, l := range logLevels {
		if strings.EqualFold(level, l) {
			return true
		}
	}
	return false
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// validateRange checks 0 <= value <= limit.
func validateRange(fieldName string, value, limit int) error {
	if value < 0 || value > limit {
		return fmt.Errorf("%w: %s must be between 0 and %d, got %d", ErrInvalidValue, fieldName, limit, value)
	}
	return nil
}

// LoadConfig loads configuration from a file path or config name. Keys absent
// from the file keep their DefaultConfig values; unknown keys are an error.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !fileutil.IsFilePath(nameOrPath) {
		var err error
		if configPath, err = resolveConfigPath(nameOrPath); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigParse, configPath, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, $XDG_CONFIG_HOME/book2pdf/
// (os.UserConfigDir elsewhere).
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	dirs := []string{"."}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, filepath.Join(userConfigDir, DirName))
	}

	tried := make([]string, 0, len(extensions)*len(dirs))
	for _, dir := range dirs {
		for _, ext := range extensions {
			path := filepath.Join(dir, name+ext)
			if fileutil.FileExists(path) {
				return path, nil
			}
			tried = append(tried, path)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}
