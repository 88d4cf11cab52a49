package main

import (
	"context"
	"fmt"
	"io"
	"time"

	book2pdf "github.com/alnah/go-book2pdf"
	"github.com/alnah/go-book2pdf/internal/assets"
	"github.com/alnah/go-book2pdf/internal/config"
	"github.com/alnah/go-book2pdf/internal/logging"
)

// runDownload crawls the site named by the single positional argument and
// writes its pages, and by default their merge, to the output directory.
func runDownload(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseDownloadFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(positional) == 0 {
		return ErrNoURL
	}
	if len(positional) > 1 {
		return fmt.Errorf("%w: expected one URL, got %d arguments", ErrUsage, len(positional))
	}
	target := positional[0]

	// Fail on a malformed URL before paying for a browser launch
	if _, err := book2pdf.ParseTarget(target); err != nil {
		return err
	}

	warnUnknownEnvVars(env.Stderr, env.Environ())
	cfg, err := resolveDownloadConfig(flags, env)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg, flags.common, env.Stderr)
	if err != nil {
		return err
	}
	defer logger.Close()

	loader, err := newAssetLoader(cfg.Assets.Path)
	if err != nil {
		return err
	}

	progress := newProgress(env, flags.common.quiet)
	if tp, ok := progress.(*terminalProgress); ok {
		defer tp.stopSpinner()
	}

	opts := pipelineOptions(cfg)
	opts = append(opts,
		book2pdf.WithLogger(logger.Logger),
		book2pdf.WithProgress(progress),
		book2pdf.WithAssets(loader),
		book2pdf.WithSessionFactory(env.NewSession(book2pdf.RodConfig{
			Bin:          cfg.Browser.Bin,
			NoSandbox:    cfg.Browser.NoSandbox,
			WindowWidth:  cfg.Browser.WindowWidth,
			WindowHeight: cfg.Browser.WindowHeight,
			Logger:       logger.Logger,
		})),
	)

	start := time.Now()
	res, err := book2pdf.NewPipeline(opts...).Run(ctx, target)
	if res != nil && !flags.common.quiet {
		printDownloadSummary(env.Stdout, res, flags.common.verbose, time.Since(start))
	}
	return err
}

// resolveDownloadConfig layers config file, environment and explicit flags
// over the defaults, then validates the result.
func resolveDownloadConfig(flags *downloadFlags, env *Environment) (*config.Config, error) {
	envCfg := loadEnvConfig(env.Getenv)

	name := flags.common.config
	if name == "" {
		name = envCfg.ConfigPath
	}
	cfg := config.DefaultConfig()
	if name != "" {
		loaded, err := config.LoadConfig(name)
		if err != nil {
			return nil, &configError{name: name, err: err}
		}
		cfg = loaded
	}

	applyEnvConfig(envCfg, cfg)
	mergeDownloadFlags(flags, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeDownloadFlags copies explicitly set flags into cfg (CLI wins).
func mergeDownloadFlags(flags *downloadFlags, cfg *config.Config) {
	changed := flags.changed
	if changed == nil {
		changed = func(string) bool { return false }
	}

	if changed("outDir") {
		cfg.Output.Dir = flags.outDir
	}
	if changed("no-combine") {
		cfg.Output.Combine = !flags.noCombine
	}
	if changed("preserve-pages") {
		cfg.Output.PreservePages = flags.preservePages
	}
	if changed("timeout") {
		cfg.Timing.TimeoutSeconds = flags.timeout.seconds
	}
	if flags.common.logFile != "" {
		cfg.Log.File = flags.common.logFile
	}
}

// pipelineOptions maps configuration onto pipeline options.
func pipelineOptions(cfg *config.Config) []book2pdf.Option {
	ms := func(v int) time.Duration { return time.Duration(v) * time.Millisecond }

	return []book2pdf.Option{
		book2pdf.WithOutDir(cfg.Output.Dir),
		book2pdf.WithCombine(cfg.Output.Combine),
		book2pdf.WithPreservePages(cfg.Output.PreservePages),
		book2pdf.WithPrintOptions(book2pdf.PrintOptions{
			Scale:           cfg.Print.Scale,
			MarginTop:       cfg.Print.MarginTop,
			MarginRight:     cfg.Print.MarginRight,
			MarginBottom:    cfg.Print.MarginBottom,
			MarginLeft:      cfg.Print.MarginLeft,
			PrintBackground: cfg.Print.PrintBackground,
		}),
		book2pdf.WithTiming(book2pdf.Timing{
			RootSettle:    ms(cfg.Timing.RootSettleMs),
			DocSettle:     ms(cfg.Timing.DocSettleMs),
			PageSettle:    ms(cfg.Timing.PageSettleMs),
			MenuSettle:    ms(cfg.Timing.MenuSettleMs),
			CoverSettle:   ms(cfg.Timing.CoverSettleMs),
			ContentSettle: ms(cfg.Timing.ContentSettleMs),
		}),
		book2pdf.WithTimeout(time.Duration(cfg.Timing.TimeoutSeconds * float64(time.Second))),
	}
}

// newLogger builds the process logger from config and common flags.
func newLogger(cfg *config.Config, common commonFlags, console io.Writer) (*logging.Logger, error) {
	logger, err := logging.New(logging.Options{
		Level:      cfg.Log.Level,
		Quiet:      common.quiet,
		Verbose:    common.verbose,
		Console:    console,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})
	if err != nil {
		return nil, fmt.Errorf("configuring logs: %w", err)
	}
	return logger, nil
}

// newAssetLoader returns the embedded assets, overridden by files in path
// when path is set.
func newAssetLoader(path string) (assets.AssetLoader, error) {
	if path == "" {
		return assets.NewEmbeddedLoader(), nil
	}
	resolver, err := assets.NewAssetResolver(path)
	if err != nil {
		return nil, fmt.Errorf("loading assets from %s: %w", path, err)
	}
	return resolver, nil
}

// printDownloadSummary reports what a run produced.
func printDownloadSummary(w io.Writer, res *book2pdf.Result, verbose bool, elapsed time.Duration) {
	if res.Site == nil {
		return
	}
	fmt.Fprintf(w, "Rendered %d page(s), %d failed, in %s\n",
		len(res.Artifacts), len(res.Failed), elapsed.Round(time.Millisecond))

	if verbose {
		for _, a := range res.Artifacts {
			fmt.Fprintf(w, "  %s (%d bytes)\n", a.Path, a.Size)
		}
	}
	for _, f := range res.Failed {
		fmt.Fprintf(w, "  FAILED %02d %s: %v\n", f.Ordinal, f.Source, f.Err)
	}

	if res.CombinedPath != "" {
		pages := 0
		if res.Merge != nil {
			pages = res.Merge.Pages
		}
		fmt.Fprintf(w, "Combined %d page(s) into %s\n", pages, res.CombinedPath)
	}
	if res.CleanedUp {
		fmt.Fprintln(w, "Removed page files")
	}
}
