package style

import (
	"fmt"
	"io"
	"strings"

	"github.com/pterm/pterm"

	"github.com/nocturne-theme/nocturne-hook/pkg/lifecycle"
)

// Printer writes hook status lines.
type Printer struct {
	out    io.Writer
	colors bool
}

// NewPrinter creates a Printer for the given writer. Colors follow the
// terminal's capability.
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out, colors: ColorsEnabled()}
}

// Successf prints a success status line.
func (p *Printer) Successf(format string, args ...interface{}) {
	p.printf(pterm.Success.Prefix.Text, SuccessStyle, format, args...)
}

// Warnf prints a warning status line.
func (p *Printer) Warnf(format string, args ...interface{}) {
	p.printf(pterm.Warning.Prefix.Text, WarningStyle, format, args...)
}

// Errorf prints an error status line.
func (p *Printer) Errorf(format string, args ...interface{}) {
	p.printf(pterm.Error.Prefix.Text, ErrorStyle, format, args...)
}

// Infof prints a neutral status line.
func (p *Printer) Infof(format string, args ...interface{}) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

func (p *Printer) printf(prefix string, prefixStyle interface{ Render(...string) string }, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if p.colors {
		fmt.Fprintf(p.out, "%s %s\n", prefixStyle.Render(prefix), msg)
		return
	}
	fmt.Fprintf(p.out, "%s %s\n", prefix, msg)
}

// Report prints the outcome of a lifecycle run.
func (p *Printer) Report(verb string, report *lifecycle.Report, dryRun bool) {
	if dryRun {
		p.Infof("DRY RUN - no changes were made")
		for _, name := range report.Skipped {
			p.Infof("  would run %s", humanize(name))
		}
		return
	}

	for _, name := range report.Completed {
		p.Successf("%s", humanize(name))
	}
	for _, name := range report.Skipped {
		p.Warnf("%s skipped", humanize(name))
	}
	for _, name := range report.Unwound {
		p.Warnf("%s rolled back", humanize(name))
	}

	if len(report.Skipped) == 0 && len(report.Unwound) == 0 {
		p.Successf("%s complete", verb)
	} else {
		p.Warnf("%s finished with warnings", verb)
	}
}

func humanize(stepName string) string {
	return strings.ReplaceAll(stepName, "-", " ")
}
