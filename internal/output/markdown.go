package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/anderschbe/password-strength-meter/internal/audit"
	"github.com/anderschbe/password-strength-meter/internal/meter"
)

// MarkdownFormatter formats output as Markdown
type MarkdownFormatter struct {
	w          io.Writer
	quiet      bool
	verbose    bool
	outputFile string
}

// NewMarkdownFormatter creates a new MarkdownFormatter
func NewMarkdownFormatter(w io.Writer, quiet, verbose bool, outputFile string) *MarkdownFormatter {
	return &MarkdownFormatter{
		w:          w,
		quiet:      quiet,
		verbose:    verbose,
		outputFile: outputFile,
	}
}

// FormatReading writes one reading as a small table.
func (f *MarkdownFormatter) FormatReading(r meter.Reading) error {
	var builder strings.Builder

	builder.WriteString("| Score | Percent | Strength |\n")
	builder.WriteString("|-------|---------|----------|\n")
	builder.WriteString(fmt.Sprintf("| %d | %d%% | %s |\n", r.Score, r.Percent, escapeCell(r.Text)))

	if f.verbose && len(r.Details) > 0 {
		builder.WriteString("\n| Check | Points | Passed |\n")
		builder.WriteString("|-------|--------|--------|\n")
		for _, d := range r.Details {
			builder.WriteString(fmt.Sprintf("| %s | %+d | %s |\n", escapeCell(d.Name), d.Points, getStatusEmoji(d.Passed)))
		}
	}

	return f.write(builder.String())
}

// Format formats the audit summary as Markdown
func (f *MarkdownFormatter) Format(summary *audit.Summary) error {
	var builder strings.Builder

	duration := summary.Duration
	if duration == 0 && !summary.StartTime.IsZero() {
		duration = time.Since(summary.StartTime)
	}

	// Header
	builder.WriteString("# Password Audit Report\n\n")
	builder.WriteString(fmt.Sprintf("**Generated:** %s\n\n", time.Now().Format("2006-01-02 15:04:05")))
	if summary.ProjectRoot != "" {
		builder.WriteString(fmt.Sprintf("**Root:** %s\n\n", summary.ProjectRoot))
	}
	builder.WriteString(fmt.Sprintf("**Duration:** %v\n\n", duration.Round(time.Millisecond)))
	builder.WriteString(strings.Repeat("-", 50) + "\n\n")

	// Summary Table
	builder.WriteString("## Summary\n\n")
	builder.WriteString("| Metric | Count |\n")
	builder.WriteString("|--------|-------|\n")
	builder.WriteString(fmt.Sprintf("| Files Scanned | %d |\n", summary.TotalFiles))
	builder.WriteString(fmt.Sprintf("| Candidates | %d |\n", summary.TotalEntries))
	builder.WriteString(fmt.Sprintf("| Passed | %d |\n", summary.PassedEntries))
	builder.WriteString(fmt.Sprintf("| Failed | %d |\n", summary.FailedEntries))
	builder.WriteString(fmt.Sprintf("| Fail Under | %d |\n", summary.FailUnder))
	builder.WriteString("\n")

	if len(summary.LabelCounts) > 0 {
		builder.WriteString("## Distribution\n\n")
		builder.WriteString("| Strength | Count |\n")
		builder.WriteString("|----------|-------|\n")
		for _, lc := range sortedCounts(summary.LabelCounts) {
			builder.WriteString(fmt.Sprintf("| %s | %d |\n", escapeCell(lc.label), lc.count))
		}
		builder.WriteString("\n")
	}

	// Detailed Results
	builder.WriteString("## Candidates\n\n")
	if summary.TotalEntries == 0 {
		builder.WriteString("*No candidates found to audit.*\n\n")
	} else {
		builder.WriteString("| Status | Location | Password | Score | Strength |\n")
		builder.WriteString("|--------|----------|----------|-------|----------|\n")
		for _, e := range summary.Entries {
			if !f.verbose && e.Passed {
				continue
			}
			builder.WriteString(fmt.Sprintf("| %s | %s:%d | `%s` | %d | %s |\n",
				getStatusEmoji(e.Passed), strings.TrimPrefix(e.File, "./"), e.Line, e.Masked, e.Score, escapeCell(e.Label)))
		}
		builder.WriteString("\n")
	}

	// Conclusion
	builder.WriteString("## Conclusion\n\n")
	if summary.Success() {
		builder.WriteString("✓ All candidates passed!\n")
	} else {
		builder.WriteString(fmt.Sprintf("✗ %d candidates failed\n", summary.FailedEntries))
	}

	return f.write(builder.String())
}

// write sends content to the output file or the writer
func (f *MarkdownFormatter) write(content string) error {
	if f.outputFile != "" {
		err := os.WriteFile(f.outputFile, []byte(content), 0644)
		if err != nil {
			return fmt.Errorf("error writing to file %s: %w", f.outputFile, err)
		}
		return nil
	}
	if f.quiet {
		return nil
	}
	fmt.Fprint(f.w, content)
	return nil
}

// getStatusEmoji returns an emoji for the status
func getStatusEmoji(success bool) string {
	if success {
		return "✅"
	}
	return "❌"
}

// escapeCell keeps labels from breaking table rows
func escapeCell(text string) string {
	return strings.ReplaceAll(text, "|", "\\|")
}
