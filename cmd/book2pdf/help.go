package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: book2pdf <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  download     Download a GitBook or Docusaurus site as PDF")
	fmt.Fprintln(w, "  merge        Merge a directory of PDF files into one")
	fmt.Fprintln(w, "  doctor       Check the browser and environment")
	fmt.Fprintln(w, "  completion   Generate shell completion script")
	fmt.Fprintln(w, "  version      Show version information")
	fmt.Fprintln(w, "  help         Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'book2pdf help <command>' for details on a specific command.")
}

func printCommonUsage(w io.Writer) {
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only show warnings and errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug output")
	fmt.Fprintln(w, "      --log-file <path>     Also write logs to a rotated file")
}

// printDownloadUsage prints usage for the download command.
func printDownloadUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: book2pdf download <url> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render every page of a documentation site to PDF, with a cover page,")
	fmt.Fprintln(w, "and merge them into <outDir>/<domain>-combined.pdf.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  url    Site address (http or https)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -o, --outDir <dir>        Output directory (default: output_book2pdf)")
	fmt.Fprintln(w, "      --no-combine          Keep separate page files, skip the merge")
	fmt.Fprintln(w, "  -p, --preserve-pages      Keep page files after merging")
	fmt.Fprintln(w, "  -t, --timeout <seconds>   Per-page timeout (default: 30, 0 = none)")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printMergeUsage prints usage for the merge command.
func printMergeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: book2pdf merge [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Merge the PDF files of a directory, sorted by file name, into one file.")
	fmt.Fprintln(w, "Unreadable files are skipped with a warning.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -d, --dir <dir>           Directory of PDF files (default: output/pages)")
	fmt.Fprintln(w, "  -o, --output <file>       Merged file (default: merged.pdf)")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: book2pdf doctor [--json] [--show-config] [-c <name>]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check the browser installation, sandbox settings and environment.")
	fmt.Fprintln(w, "Exits 1 when a blocking problem is found.")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) error {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return nil
	}

	switch args[0] {
	case "download":
		printDownloadUsage(env.Stdout)
	case "merge":
		printMergeUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "completion":
		printCompletionUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: book2pdf version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: book2pdf help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		printUsage(env.Stderr)
		return fmt.Errorf("%w: unknown command: %s", ErrUsage, args[0])
	}
	return nil
}
