// Package book2pdf exports GitBook and Docusaurus documentation sites to PDF
// using a headless browser.
//
// # Quick Start
//
// Create a pipeline and run it against the root of a site:
//
//	p := book2pdf.NewPipeline(
//	    book2pdf.WithOutDir("output_book2pdf"),
//	    book2pdf.WithTimeout(time.Minute),
//	)
//	res, err := p.Run(ctx, "https://docs.example.com")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.CombinedPath)
//
// # Pipeline
//
// A run goes through these stages, sharing one browser session:
//
//  1. Load the root and classify the site (GitBook or Docusaurus, else fail)
//  2. Move to the first documentation page when the root is a landing page
//  3. Expand collapsed navigation menus and collect internal links
//  4. Render a cover page, then every link, to <outDir>/pages/NN_<slug>.pdf
//  5. Merge the pages into <outDir>/<domain>-combined.pdf and remove them
//
// Pages that fail to render are recorded in Result.Failed and skipped; only
// browser startup, an unsupported site, and cancellation abort the run.
//
// # Merging
//
// MergeFiles and MergeDir concatenate existing PDF files without a browser.
// The object graphs of all inputs are renumbered into one document, so the
// output stays a single well-formed PDF:
//
//	res, err := book2pdf.MergeDir("output_book2pdf/pages", "book.pdf")
//
// # Custom Assets
//
// The cover page is built from an HTML template and a stylesheet. Override
// them with WithAssets and a directory laid out as:
//
//	assets/
//	├── styles/
//	│   └── cover.css
//	└── templates/
//	    └── cover.html
//
// # Browser Requirements
//
// Rendering requires Chrome/Chromium. The go-rod library automatically
// downloads a managed Chromium instance on first run (~/.cache/rod/browser/).
//
// For containers and CI environments, set ROD_NO_SANDBOX=1 to disable the
// Chrome sandbox. Use ROD_BROWSER_BIN to specify a custom Chrome binary.
package book2pdf
