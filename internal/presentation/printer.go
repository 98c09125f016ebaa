package presentation

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"adbpull/internal/app"
	"adbpull/internal/domain"
)

// Printer writes plain-text progress and summaries. It also serves as the
// engine observer when no TUI is running.
type Printer struct {
	Writer  io.Writer
	Verbose bool
}

func (p Printer) RootPlanned(plan domain.RootPlan) {
	fmt.Fprintf(p.Writer, "%7d files found in %s\n", plan.Found, plan.Root)
	fmt.Fprintf(p.Writer, "%7d to copy\n", len(plan.ToCopy()))
}

func (p Printer) RootFailed(failure domain.RootFailure) {
	fmt.Fprintf(p.Writer, "Unable to list %s: %v\n", failure.Root, failure.Err)
}

func (p Printer) Transferred(current, total int, result domain.TransferResult) {
	switch {
	case result.Status == domain.StatusFailed:
		fmt.Fprintln(p.Writer, failureLine(result))
	case p.Verbose:
		fmt.Fprintf(p.Writer, "[%d/%d] %s -> %s\n", current, total, result.File.AbsolutePath, result.TargetPath)
	}
	if result.MetadataWarning != nil {
		fmt.Fprintf(p.Writer, "Warning: %v\n", result.MetadataWarning)
	}
}

// PrintDryRun lists every planned copy. Skips are only listed in verbose mode.
func (p Printer) PrintDryRun(report app.Report) {
	for _, root := range report.Plan.Roots {
		for _, d := range root.Decisions {
			switch d.Action {
			case domain.ActionCopy:
				fmt.Fprintf(p.Writer, "would copy %s to %s\n", d.File.RelativePath, d.TargetPath)
			case domain.ActionSkipExisting, domain.ActionSkipExcluded:
				if p.Verbose {
					fmt.Fprintf(p.Writer, "would skip %s (%s)\n", d.File.RelativePath, d.Action)
				}
			}
		}
	}
	if len(report.Plan.Roots) > 1 {
		fmt.Fprintf(p.Writer, "\n%d total files to copy\n", report.Summary.Copied)
	}
	fmt.Fprintln(p.Writer)
	p.PrintSummary(report.Summary)
}

// PrintFailures lists failed transfers and unreachable roots.
func (p Printer) PrintFailures(report app.Report) {
	for _, f := range report.Plan.Failures {
		fmt.Fprintf(p.Writer, "Unable to list %s: %v\n", f.Root, f.Err)
	}
	for _, res := range report.Failed() {
		fmt.Fprintln(p.Writer, failureLine(res))
	}
}

func (p Printer) PrintSummary(summary domain.Summary) {
	fmt.Fprintln(p.Writer, SummaryLine(summary))
	if summary.RootsFailed > 0 {
		fmt.Fprintf(p.Writer, "%d source %s could not be listed.\n", summary.RootsFailed, plural(summary.RootsFailed, "root", "roots"))
	}
}

// SummaryLine renders the per-category counts on one line.
func SummaryLine(s domain.Summary) string {
	var parts []string
	if s.DryRun {
		parts = append(parts, fmt.Sprintf("Would copy %d %s (%s)", s.Copied, plural(s.Copied, "file", "files"), humanize.Bytes(s.BytesCopied)))
	} else {
		parts = append(parts, fmt.Sprintf("Copied %d %s (%s)", s.Copied, plural(s.Copied, "file", "files"), humanize.Bytes(s.BytesCopied)))
	}
	parts = append(parts,
		fmt.Sprintf("skipped %d existing", s.SkippedExisting),
		fmt.Sprintf("skipped %d excluded", s.SkippedExcluded),
	)
	if !s.DryRun {
		parts = append(parts, fmt.Sprintf("failed %d", s.Failed))
	}
	return strings.Join(parts, ", ") + "."
}

func failureLine(result domain.TransferResult) string {
	return fmt.Sprintf("Failed to copy %s: %v", result.File.AbsolutePath, result.Reason)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
