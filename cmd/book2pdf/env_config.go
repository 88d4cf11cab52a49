package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alnah/go-book2pdf/internal/config"
)

// envPrefix marks book2pdf's environment variables.
const envPrefix = "BOOK2PDF_"

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath string   // BOOK2PDF_CONFIG: config file name or path
	OutDir     string   // BOOK2PDF_OUT_DIR: output directory
	Timeout    *float64 // BOOK2PDF_TIMEOUT: per-page timeout in seconds
	Scale      *float64 // BOOK2PDF_SCALE: print scale
	NoSandbox  bool     // BOOK2PDF_NO_SANDBOX: disable the browser sandbox
	LogLevel   string   // BOOK2PDF_LOG_LEVEL: trace, debug, info, warn, error
	LogFile    string   // BOOK2PDF_LOG_FILE: rotated log file
	AssetPath  string   // BOOK2PDF_ASSET_PATH: cover template/style directory
}

// knownEnvVars lists valid BOOK2PDF_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"BOOK2PDF_CONFIG":     true,
	"BOOK2PDF_OUT_DIR":    true,
	"BOOK2PDF_TIMEOUT":    true,
	"BOOK2PDF_SCALE":      true,
	"BOOK2PDF_NO_SANDBOX": true,
	"BOOK2PDF_LOG_LEVEL":  true,
	"BOOK2PDF_LOG_FILE":   true,
	"BOOK2PDF_ASSET_PATH": true,
	"BOOK2PDF_CONTAINER":  true, // read by doctor
}

// loadEnvConfig reads configuration from environment variables.
// Numeric values that do not parse, or are negative, are ignored.
func loadEnvConfig(getenv func(string) string) *envConfig {
	cfg := &envConfig{
		ConfigPath: getenv("BOOK2PDF_CONFIG"),
		OutDir:     getenv("BOOK2PDF_OUT_DIR"),
		NoSandbox:  getenv("BOOK2PDF_NO_SANDBOX") == "1",
		LogLevel:   getenv("BOOK2PDF_LOG_LEVEL"),
		LogFile:    getenv("BOOK2PDF_LOG_FILE"),
		AssetPath:  getenv("BOOK2PDF_ASSET_PATH"),
	}
	cfg.Timeout = parseNonNegative(getenv("BOOK2PDF_TIMEOUT"))
	cfg.Scale = parseNonNegative(getenv("BOOK2PDF_SCALE"))
	return cfg
}

func parseNonNegative(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return nil
	}
	return &v
}

// warnUnknownEnvVars prints a warning for each unrecognized BOOK2PDF_*
// variable, catching typos like BOOK2PDF_OUTDIR.
func warnUnknownEnvVars(w io.Writer, environ []string) {
	for _, env := range environ {
		if !strings.HasPrefix(env, envPrefix) {
			continue
		}
		name, _, _ := strings.Cut(env, "=")
		if !knownEnvVars[name] {
			fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
		}
	}
}

// applyEnvConfig overrides cfg with every variable that is set. It runs
// after the config file is loaded and before flags are merged, giving
// flags > env > file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.OutDir != "" {
		cfg.Output.Dir = env.OutDir
	}
	if env.Timeout != nil {
		cfg.Timing.TimeoutSeconds = *env.Timeout
	}
	if env.Scale != nil {
		cfg.Print.Scale = *env.Scale
	}
	if env.NoSandbox {
		cfg.Browser.NoSandbox = true
	}
	if env.LogLevel != "" {
		cfg.Log.Level = env.LogLevel
	}
	if env.LogFile != "" {
		cfg.Log.File = env.LogFile
	}
	if env.AssetPath != "" {
		cfg.Assets.Path = env.AssetPath
	}
}
