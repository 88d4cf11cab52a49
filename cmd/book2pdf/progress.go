package main

import (
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
	"github.com/schollz/progressbar/v3"

	book2pdf "github.com/alnah/go-book2pdf"
)

// terminalProgress shows a spinner while the site is discovered and a bar
// while pages render.
type terminalProgress struct {
	w       io.Writer
	spinner *spinner.Spinner
	bar     *progressbar.ProgressBar
}

var _ book2pdf.Progress = (*terminalProgress)(nil)

// newProgress returns the progress display for a download, or nil when
// output is not interactive or quiet was requested.
func newProgress(env *Environment, quiet bool) book2pdf.Progress {
	if quiet || !env.Interactive {
		return nil
	}
	return &terminalProgress{w: env.Stderr}
}

func (p *terminalProgress) Discovering(target string) {
	p.spinner = spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriter(p.w))
	p.spinner.Suffix = " Discovering pages of " + target
	p.spinner.Start()
}

func (p *terminalProgress) Start(total int) {
	p.stopSpinner()
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.w),
		progressbar.OptionSetDescription("Rendering"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

func (p *terminalProgress) Advance(label string) {
	if p.bar == nil {
		return
	}
	p.bar.Describe(label)
	_ = p.bar.Add(1)
}

func (p *terminalProgress) Finish() {
	p.stopSpinner()
	if p.bar != nil {
		_ = p.bar.Finish()
		fmt.Fprintln(p.w)
	}
}

func (p *terminalProgress) stopSpinner() {
	if p.spinner != nil {
		p.spinner.Stop()
		p.spinner = nil
	}
}
