package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	flag "github.com/spf13/pflag"

	book2pdf "github.com/alnah/go-book2pdf"
)

// Timeout validation messages, shown by pflag after the flag name.
var (
	//lint:ignore ST1005 user-facing sentence
	ErrTimeoutNotNumber = errors.New("Not a number.")
	//lint:ignore ST1005 user-facing sentence
	ErrTimeoutNegative = errors.New("Must be zero or positive number.")
)

// Defaults of the merge command.
const (
	defaultMergeDir    = "output/pages"
	defaultMergeOutput = "merged.pdf"
)

// timeoutValue is a pflag.Value holding a per-page timeout in seconds.
// Set rejects anything that is not a finite number >= 0, so a bad value
// fails while flags are parsed, before a browser is launched.
type timeoutValue struct {
	seconds float64
}

func (t *timeoutValue) Set(s string) error {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return ErrTimeoutNotNumber
	}
	if v < 0 {
		return ErrTimeoutNegative
	}
	t.seconds = v
	return nil
}

func (t *timeoutValue) String() string {
	return strconv.FormatFloat(t.seconds, 'f', -1, 64)
}

func (t *timeoutValue) Type() string { return "seconds" }

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
	logFile string
}

// downloadFlags holds all flags for the download command.
type downloadFlags struct {
	common        commonFlags
	outDir        string
	noCombine     bool
	preservePages bool
	timeout       timeoutValue

	// changed records which flags were given explicitly; only those
	// override configuration.
	changed func(name string) bool
}

// mergeFlags holds all flags for the merge command.
type mergeFlags struct {
	common commonFlags
	dir    string
	output string
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show warnings and errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug output")
	fs.StringVar(&f.logFile, "log-file", "", "also write logs to a rotated file")
}

// buildDownloadFlagSet registers the download flags into a new FlagSet.
func buildDownloadFlagSet(f *downloadFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("download", flag.ContinueOnError)

	f.timeout.seconds = book2pdf.DefaultTimeout.Seconds()
	fs.StringVarP(&f.outDir, "outDir", "o", book2pdf.DefaultOutDir, "output directory")
	fs.BoolVar(&f.noCombine, "no-combine", false, "keep separate page files, skip the merge")
	fs.BoolVarP(&f.preservePages, "preserve-pages", "p", false, "keep page files after merging")
	fs.VarP(&f.timeout, "timeout", "t", "per-page timeout in seconds (0 = none)")
	addCommonFlags(fs, &f.common)

	f.changed = fs.Changed
	return fs
}

// buildMergeFlagSet registers the merge flags into a new FlagSet.
func buildMergeFlagSet(f *mergeFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("merge", flag.ContinueOnError)

	fs.StringVarP(&f.dir, "dir", "d", defaultMergeDir, "directory of PDF files to merge")
	fs.StringVarP(&f.output, "output", "o", defaultMergeOutput, "merged PDF file")
	addCommonFlags(fs, &f.common)

	return fs
}

// parseDownloadFlags parses download command flags and returns positional args.
func parseDownloadFlags(args []string, stderr io.Writer) (*downloadFlags, []string, error) {
	f := &downloadFlags{}
	fs := buildDownloadFlagSet(f)
	fs.SetOutput(io.Discard)
	fs.Usage = func() { printDownloadUsage(stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseMergeFlags parses merge command flags and returns positional args.
func parseMergeFlags(args []string, stderr io.Writer) (*mergeFlags, []string, error) {
	f := &mergeFlags{}
	fs := buildMergeFlagSet(f)
	fs.SetOutput(io.Discard)
	fs.Usage = func() { printMergeUsage(stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	if fs.NArg() > 0 {
		return nil, nil, fmt.Errorf("%w: unexpected argument %q", ErrUsage, fs.Arg(0))
	}
	return f, nil, nil
}
