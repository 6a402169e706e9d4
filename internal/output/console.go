package output

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/anderschbe/password-strength-meter/internal/audit"
	"github.com/anderschbe/password-strength-meter/internal/meter"
	"github.com/anderschbe/password-strength-meter/internal/scoring"
	"github.com/charmbracelet/lipgloss"
)

// MeterWidth is the number of cells in the strength bar.
const MeterWidth = 20

// ConsoleFormatter formats output for console display
type ConsoleFormatter struct {
	w           io.Writer
	quiet       bool
	verbose     bool
	colorize    bool
	showPercent bool
	showText    bool
}

// NewConsoleFormatter creates a new ConsoleFormatter
func NewConsoleFormatter(w io.Writer, quiet, verbose, showPercent, showText bool) *ConsoleFormatter {
	return &ConsoleFormatter{
		w:           w,
		quiet:       quiet,
		verbose:     verbose,
		colorize:    true,
		showPercent: showPercent,
		showText:    showText,
	}
}

// meterColor follows the red to green gradient of the bar.
func meterColor(score scoring.Score) lipgloss.Color {
	switch {
	case score.IsFailure() || score < 34:
		return lipgloss.Color("9") // red
	case score < 68:
		return lipgloss.Color("11") // yellow
	default:
		return lipgloss.Color("10") // green
	}
}

// RenderMeter draws the bar, and the percent and label when enabled.
func (f *ConsoleFormatter) RenderMeter(r meter.Reading) string {
	filled := r.Percent * MeterWidth / 100
	if r.Percent > 0 && filled == 0 {
		filled = 1
	}

	fill := lipgloss.NewStyle()
	gray := lipgloss.NewStyle()
	if f.colorize {
		fill = fill.Foreground(meterColor(r.Score))
		gray = gray.Foreground(lipgloss.Color("8"))
	}

	var b strings.Builder
	b.WriteString(fill.Render(strings.Repeat("█", filled)))
	b.WriteString(gray.Render(strings.Repeat("░", MeterWidth-filled)))
	if f.showPercent {
		fmt.Fprintf(&b, " %3d%%", r.Percent)
	}
	if f.showText {
		b.WriteString("  ")
		b.WriteString(r.Text)
	}
	return b.String()
}

// FormatReading prints the meter for one password. Verbose mode adds the
// score breakdown.
func (f *ConsoleFormatter) FormatReading(r meter.Reading) error {
	if f.quiet {
		return nil
	}
	fmt.Fprintln(f.w, f.RenderMeter(r))
	if f.verbose {
		f.printDetails(r.Details, "  ")
	}
	return nil
}

func (f *ConsoleFormatter) printDetails(details []scoring.ScoringMetric, indent string) {
	dim := lipgloss.NewStyle()
	if f.colorize {
		dim = dim.Foreground(lipgloss.Color("8"))
	}
	for _, d := range details {
		status := "✓"
		if !d.Passed {
			status = "✗"
		}
		line := fmt.Sprintf("%s%s %+4d  %s", indent, status, d.Points, d.Name)
		if d.Note != "" {
			line += dim.Render(" (" + d.Note + ")")
		}
		fmt.Fprintln(f.w, line)
	}
}

// Format prints an audit report
func (f *ConsoleFormatter) Format(summary *audit.Summary) error {
	if f.quiet {
		return nil
	}

	f.printEntries(summary)
	f.printDistribution(summary)
	f.printFailures(summary)
	f.printLowest(summary)
	f.printConclusion(summary)

	return nil
}

// printEntries prints failed entries, or every entry in verbose mode
func (f *ConsoleFormatter) printEntries(summary *audit.Summary) {
	red := lipgloss.NewStyle()
	green := lipgloss.NewStyle()
	if f.colorize {
		red = red.Foreground(lipgloss.Color("9"))
		green = green.Foreground(lipgloss.Color("10"))
	}

	for _, e := range summary.Entries {
		if e.Passed && !f.verbose {
			continue
		}
		status := green.Render("✓")
		if !e.Passed {
			status = red.Render("✗")
		}
		who := ""
		if e.Username != "" {
			who = " (" + e.Username + ")"
		}
		fmt.Fprintf(f.w, "%s %s:%d %s%s [%d] %s\n", status, e.File, e.Line, e.Masked, who, e.Score, e.Label)
		if f.verbose {
			f.printDetails(e.Details, "    ")
		}
	}
}

type labelCount struct {
	label string
	count int
}

func sortedCounts(counts map[string]int) []labelCount {
	out := make([]labelCount, 0, len(counts))
	for label, count := range counts {
		out = append(out, labelCount{label, count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].label < out[j].label
	})
	return out
}

func (f *ConsoleFormatter) printDistribution(summary *audit.Summary) {
	if summary.TotalEntries == 0 {
		return
	}
	header := lipgloss.NewStyle().Bold(true)
	fmt.Fprintln(f.w)
	fmt.Fprintln(f.w, header.Render("Distribution"))
	for _, lc := range sortedCounts(summary.LabelCounts) {
		pct := float64(lc.count) / float64(summary.TotalEntries) * 100
		fmt.Fprintf(f.w, "  %s %4d (%5.1f%%)  %s\n", f.renderBar(lc.count, summary.TotalEntries, "12"), lc.count, pct, lc.label)
	}
}

func (f *ConsoleFormatter) printFailures(summary *audit.Summary) {
	if len(summary.FailureCounts) == 0 {
		return
	}
	header := lipgloss.NewStyle().Bold(true)
	fmt.Fprintln(f.w)
	fmt.Fprintln(f.w, header.Render("Failures"))
	for _, lc := range sortedCounts(summary.FailureCounts) {
		fmt.Fprintf(f.w, "  %-22s %d\n", lc.label, lc.count)
	}
}

func (f *ConsoleFormatter) printLowest(summary *audit.Summary) {
	if !f.verbose || summary.TotalEntries == 0 {
		return
	}
	header := lipgloss.NewStyle().Bold(true)
	fmt.Fprintln(f.w)
	fmt.Fprintln(f.w, header.Render("Lowest scoring"))
	for _, e := range summary.Lowest(5) {
		fmt.Fprintf(f.w, "  %4d  %s:%d %s\n", e.Score, e.File, e.Line, e.Masked)
	}
}

// printConclusion prints the pass/fail line
func (f *ConsoleFormatter) printConclusion(summary *audit.Summary) {
	style := lipgloss.NewStyle()
	if f.colorize {
		if summary.Success() {
			style = style.Foreground(lipgloss.Color("10"))
		} else {
			style = style.Foreground(lipgloss.Color("9"))
		}
	}
	duration := summary.Duration
	if duration == 0 && !summary.StartTime.IsZero() {
		duration = time.Since(summary.StartTime)
	}
	line := fmt.Sprintf("%d/%d passed in %d files", summary.PassedEntries, summary.TotalEntries, summary.TotalFiles)
	if summary.FailUnder > 0 {
		line += fmt.Sprintf(", fail under %d", summary.FailUnder)
	}
	fmt.Fprintf(f.w, "\n%s (%v)\n", style.Render(line), duration.Round(time.Millisecond))
}

func (f *ConsoleFormatter) renderBar(count, total int, color string) string {
	if total == 0 {
		return ""
	}
	barWidth := 10
	filled := (count * barWidth) / total
	if count > 0 && filled == 0 {
		filled = 1
	}
	fill := lipgloss.NewStyle()
	dim := lipgloss.NewStyle()
	if f.colorize {
		fill = fill.Foreground(lipgloss.Color(color))
		dim = dim.Foreground(lipgloss.Color("8"))
	}
	return fill.Render(strings.Repeat("█", filled)) + dim.Render(strings.Repeat("░", barWidth-filled))
}
