// Package audit scores candidate password lists in bulk.
//
// A list has one candidate per line, either "password" or
// "username<TAB>password". Blank lines and lines starting with '#' are
// skipped. Reports carry masked passwords only.
package audit

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/anderschbe/password-strength-meter/internal/discovery"
	"github.com/anderschbe/password-strength-meter/internal/scoring"
)

// Entry is the result for one candidate.
type Entry struct {
	File     string
	Line     int
	Username string
	Masked   string
	Score    scoring.Score
	Label    string
	Failure  string // empty unless Score is a sentinel
	Passed   bool
	Details  []scoring.ScoringMetric
}

// Summary aggregates an audit run.
type Summary struct {
	ProjectRoot   string
	StartTime     time.Time
	Duration      time.Duration
	FailUnder     int
	TotalFiles    int
	TotalEntries  int
	PassedEntries int
	FailedEntries int
	LabelCounts   map[string]int // entries per classification label
	FailureCounts map[string]int // entries per failure reason
	Entries       []Entry
}

// Success reports whether every entry passed.
func (s *Summary) Success() bool {
	return s.FailedEntries == 0
}

// Lowest returns up to n entries ordered by ascending score. Sentinels sort
// below every graded score.
func (s *Summary) Lowest(n int) []Entry {
	sorted := make([]Entry, len(s.Entries))
	copy(sorted, s.Entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sortKey(sorted[i].Score) < sortKey(sorted[j].Score)
	})
	if n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

func sortKey(s scoring.Score) int {
	if s.IsFailure() {
		return -1000 - int(s.Failure())
	}
	return int(s)
}

// Auditor scores lists with fixed requirements and labels.
type Auditor struct {
	cfg       scoring.Config
	labels    scoring.LabelSet
	failUnder int
	verbose   bool
}

// New creates an Auditor. Entries scoring below failUnder fail the audit,
// as does every sentinel. verbose keeps per-entry score breakdowns.
func New(cfg scoring.Config, labels scoring.LabelSet, failUnder int, verbose bool) *Auditor {
	return &Auditor{
		cfg:       cfg,
		labels:    labels,
		failUnder: failUnder,
		verbose:   verbose,
	}
}

// NewSummary creates an empty Summary for root.
func (a *Auditor) NewSummary(root string) *Summary {
	return &Summary{
		ProjectRoot:   root,
		StartTime:     time.Now(),
		FailUnder:     a.failUnder,
		LabelCounts:   make(map[string]int),
		FailureCounts: make(map[string]int),
	}
}

// AuditFiles scores every discovered file into a new Summary.
func (a *Auditor) AuditFiles(root string, files []discovery.File) (*Summary, error) {
	summary := a.NewSummary(root)
	for _, file := range files {
		if err := a.auditFile(file, summary); err != nil {
			return nil, err
		}
	}
	summary.Duration = time.Since(summary.StartTime)
	return summary, nil
}

func (a *Auditor) auditFile(file discovery.File, summary *Summary) error {
	f, err := os.Open(file.Path)
	if err != nil {
		return fmt.Errorf("error opening %s: %w", file.RelPath, err)
	}
	defer f.Close()

	if err := a.AuditReader(file.RelPath, f, summary); err != nil {
		return err
	}
	return nil
}

// AuditReader scores every candidate in r, recording entries under name.
func (a *Auditor) AuditReader(name string, r io.Reader, summary *Summary) error {
	summary.TotalFiles++

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}

		username, password := splitLine(line)
		entry := a.score(password, username)
		entry.File = name
		entry.Line = lineNo
		summary.add(entry)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading %s: %w", name, err)
	}
	return nil
}

func (a *Auditor) score(password, username string) Entry {
	result := scoring.Evaluate(password, username, a.cfg)
	entry := Entry{
		Username: username,
		Masked:   Mask(password),
		Score:    result.Score,
		Label:    scoring.Classify(result.Score, password == "", a.labels),
		Passed:   !result.Score.IsFailure() && int(result.Score) >= a.failUnder,
	}
	if result.Score.IsFailure() {
		entry.Failure = result.Failure.String()
	}
	if a.verbose {
		entry.Details = result.Details
	}
	return entry
}

func (s *Summary) add(entry Entry) {
	s.TotalEntries++
	if entry.Passed {
		s.PassedEntries++
	} else {
		s.FailedEntries++
	}
	s.LabelCounts[entry.Label]++
	if entry.Failure != "" {
		s.FailureCounts[entry.Failure]++
	}
	s.Entries = append(s.Entries, entry)
}

func splitLine(line string) (username, password string) {
	if i := strings.IndexByte(line, '\t'); i >= 0 {
		return line[:i], line[i+1:]
	}
	return "", line
}

// MaskWidth is the width of every masked password.
const MaskWidth = 8

// Mask replaces a password with a fixed-width run of asterisks, so
// reports reveal neither its characters nor its length.
func Mask(password string) string {
	if password == "" {
		return ""
	}
	return strings.Repeat("*", MaskWidth)
}
