package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/anderschbe/password-strength-meter/internal/audit"
	"github.com/anderschbe/password-strength-meter/internal/meter"
	"github.com/anderschbe/password-strength-meter/internal/scoring"
)

// Version is reported in JSON headers.
var Version = "1.0.0"

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	w          io.Writer
	quiet      bool
	verbose    bool
	indent     bool
	outputFile string
}

// NewJSONFormatter creates a new JSONFormatter
func NewJSONFormatter(w io.Writer, quiet bool, verbose bool, indent bool, outputFile string) *JSONFormatter {
	return &JSONFormatter{
		w:          w,
		quiet:      quiet,
		verbose:    verbose,
		indent:     indent,
		outputFile: outputFile,
	}
}

// JSONReading is a single scored password.
type JSONReading struct {
	Header  JSONHeader              `json:"header"`
	Score   scoring.Score           `json:"score"`
	Percent int                     `json:"percent"`
	Text    string                  `json:"text"`
	Failure string                  `json:"failure,omitempty"`
	Details []scoring.ScoringMetric `json:"details,omitempty"`
}

// FormatReading writes one meter reading. The password itself is never
// included, and the scoring steps only in verbose mode.
func (f *JSONFormatter) FormatReading(r meter.Reading) error {
	report := JSONReading{
		Header:  newHeader(),
		Score:   r.Score,
		Percent: r.Percent,
		Text:    r.Text,
	}
	if r.Score.IsFailure() {
		report.Failure = r.Score.Failure().String()
	}
	if f.verbose {
		report.Details = r.Details
	}
	return f.write(report)
}

// Format formats the audit summary as JSON
func (f *JSONFormatter) Format(summary *audit.Summary) error {
	duration := summary.Duration
	if duration == 0 && !summary.StartTime.IsZero() {
		duration = time.Since(summary.StartTime)
	}

	report := JSONReport{
		Header: newHeader(),
		Summary: JSONSummary{
			ProjectRoot:   summary.ProjectRoot,
			TotalFiles:    summary.TotalFiles,
			TotalEntries:  summary.TotalEntries,
			PassedEntries: summary.PassedEntries,
			FailedEntries: summary.FailedEntries,
			FailUnder:     summary.FailUnder,
			Labels:        summary.LabelCounts,
			Failures:      summary.FailureCounts,
			Duration:      duration.Round(time.Millisecond).String(),
		},
		Entries: make([]JSONEntry, len(summary.Entries)),
	}

	for i, e := range summary.Entries {
		report.Entries[i] = JSONEntry{
			File:     e.File,
			Line:     e.Line,
			Username: e.Username,
			Masked:   e.Masked,
			Score:    int(e.Score),
			Label:    e.Label,
			Failure:  e.Failure,
			Passed:   e.Passed,
			Details:  e.Details,
		}
	}

	return f.write(report)
}

func (f *JSONFormatter) write(v any) error {
	var jsonBytes []byte
	var err error

	if f.indent {
		jsonBytes, err = json.MarshalIndent(v, "", "  ")
	} else {
		jsonBytes, err = json.Marshal(v)
	}

	if err != nil {
		return fmt.Errorf("error marshaling JSON: %w", err)
	}

	// Write to file or the writer
	if f.outputFile != "" {
		err = os.WriteFile(f.outputFile, jsonBytes, 0644)
		if err != nil {
			return fmt.Errorf("error writing to file %s: %w", f.outputFile, err)
		}
		return nil
	}
	if f.quiet {
		return nil
	}
	fmt.Fprintln(f.w, string(jsonBytes))
	return nil
}

func newHeader() JSONHeader {
	return JSONHeader{
		Tool:      "pwmeter",
		Version:   Version,
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

// JSONReport represents the complete JSON audit report
type JSONReport struct {
	Header  JSONHeader  `json:"header"`
	Summary JSONSummary `json:"summary"`
	Entries []JSONEntry `json:"entries"`
}

// JSONHeader contains report metadata
type JSONHeader struct {
	Tool      string `json:"tool"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
}

// JSONSummary contains summary statistics
type JSONSummary struct {
	ProjectRoot   string         `json:"project_root,omitempty"`
	TotalFiles    int            `json:"total_files"`
	TotalEntries  int            `json:"total_entries"`
	PassedEntries int            `json:"passed_entries"`
	FailedEntries int            `json:"failed_entries"`
	FailUnder     int            `json:"fail_under"`
	Labels        map[string]int `json:"labels"`
	Failures      map[string]int `json:"failures,omitempty"`
	Duration      string         `json:"duration"`
}

// JSONEntry represents one audited candidate
type JSONEntry struct {
	File     string                  `json:"file"`
	Line     int                     `json:"line"`
	Username string                  `json:"username,omitempty"`
	Masked   string                  `json:"masked"`
	Score    int                     `json:"score"`
	Label    string                  `json:"label"`
	Failure  string                  `json:"failure,omitempty"`
	Passed   bool                    `json:"passed"`
	Details  []scoring.ScoringMetric `json:"details,omitempty"`
}
