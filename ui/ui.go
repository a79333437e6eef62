// Package ui renders pagemerge's console output: the banner, progress while
// outputs are generated, a spinner during OCR, and the final summary.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

// Console writes user-facing messages. A quiet console discards everything.
type Console struct {
	out   io.Writer
	err   io.Writer
	quiet bool
}

// NewConsole returns a console on stdout/stderr. noColor disables ANSI
// colors globally, as the color package expects.
func NewConsole(quiet, noColor bool) *Console {
	if noColor {
		color.NoColor = true
	}
	return &Console{out: os.Stdout, err: os.Stderr, quiet: quiet}
}

// NewWriterConsole writes everything to w without colors; used in tests.
func NewWriterConsole(w io.Writer) *Console {
	return &Console{out: w, err: w}
}

func (c *Console) print(w io.Writer, attr color.Attribute, prefix, format string, args ...interface{}) {
	if c.quiet {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if w == os.Stdout || w == os.Stderr {
		color.New(attr).Fprintf(w, "%s %s\n", prefix, msg)
		return
	}
	fmt.Fprintf(w, "%s %s\n", prefix, msg)
}

func (c *Console) Success(format string, args ...interface{}) {
	c.print(c.out, color.FgGreen, "✓", format, args...)
}

func (c *Console) Warning(format string, args ...interface{}) {
	c.print(c.out, color.FgYellow, "⚠", format, args...)
}

func (c *Console) Error(format string, args ...interface{}) {
	c.print(c.err, color.FgRed, "✗", format, args...)
}

func (c *Console) Info(format string, args ...interface{}) {
	c.print(c.out, color.FgCyan, "ℹ", format, args...)
}

// Section prints a title underlined with '='.
func (c *Console) Section(title string) {
	if c.quiet {
		return
	}
	fmt.Fprintf(c.out, "\n%s\n%s\n", title, strings.Repeat("=", len([]rune(title))))
}

// Progress tracks generated outputs.
type Progress interface {
	Describe(desc string)
	Add(n int)
	Finish()
}

type nopProgress struct{}

func (nopProgress) Describe(string) {}
func (nopProgress) Add(int)         {}
func (nopProgress) Finish()         {}

type barProgress struct {
	bar *progressbar.ProgressBar
}

func (b *barProgress) Describe(desc string) { b.bar.Describe(desc) }
func (b *barProgress) Add(n int)            { _ = b.bar.Add(n) }
func (b *barProgress) Finish()              { _ = b.bar.Finish() }

// NewProgress returns a progress bar of total steps on stderr.
func (c *Console) NewProgress(total int, description string) Progress {
	if c.quiet || total <= 0 {
		return nopProgress{}
	}
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(c.err),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetItsString("files"),
		progressbar.OptionShowIts(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(c.err) }),
	)
	return &barProgress{bar: bar}
}

// Spinner shows indeterminate progress, e.g. while a page is OCR'd.
type Spinner interface {
	Start(msg string)
	Stop()
}

type nopSpinner struct{}

func (nopSpinner) Start(string) {}
func (nopSpinner) Stop()        {}

type termSpinner struct {
	s *spinner.Spinner
}

func (t *termSpinner) Start(msg string) {
	t.s.Suffix = " " + msg
	t.s.Start()
}

func (t *termSpinner) Stop() { t.s.Stop() }

func (c *Console) NewSpinner() Spinner {
	if c.quiet || c.err != os.Stderr {
		return nopSpinner{}
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(c.err))
	return &termSpinner{s: s}
}
