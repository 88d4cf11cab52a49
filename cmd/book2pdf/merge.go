package main

import (
	"fmt"

	book2pdf "github.com/alnah/go-book2pdf"
	"github.com/alnah/go-book2pdf/internal/config"
)

// runMerge merges the PDF files of a directory, in file name order.
func runMerge(args []string, env *Environment) error {
	flags, _, err := parseMergeFlags(args, env.Stderr)
	if err != nil {
		return err
	}

	cfg := config.DefaultConfig()
	envCfg := loadEnvConfig(env.Getenv)
	if name := firstNonEmpty(flags.common.config, envCfg.ConfigPath); name != "" {
		if cfg, err = config.LoadConfig(name); err != nil {
			return &configError{name: name, err: err}
		}
	}
	applyEnvConfig(envCfg, cfg)
	if flags.common.logFile != "" {
		cfg.Log.File = flags.common.logFile
	}

	logger, err := newLogger(cfg, flags.common, env.Stderr)
	if err != nil {
		return err
	}
	defer logger.Close()

	res, err := book2pdf.MergeDir(flags.dir, flags.output)
	if res != nil {
		for _, s := range res.Skipped {
			logger.Warn().Str("file", s.Path).Err(s.Err).Msg("skipped unreadable PDF")
		}
	}
	if err != nil {
		return err
	}

	logger.Debug().Strs("files", res.Merged).Msg("merge order")
	if !flags.common.quiet {
		fmt.Fprintf(env.Stdout, "Merged %d file(s), %d page(s), into %s\n", len(res.Merged), res.Pages, res.Output)
		if flags.common.verbose {
			for _, path := range res.Merged {
				fmt.Fprintf(env.Stdout, "  %s\n", path)
			}
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
