package scoring

import "sort"

// Step attaches a label to every score at or above Min.
type Step struct {
	Min  int    `json:"min" yaml:"min" mapstructure:"min"`
	Text string `json:"text" yaml:"text" mapstructure:"text"`
}

// ThresholdTable maps score lower bounds to labels. Build it with
// NewThresholdTable; the zero value classifies everything as "".
type ThresholdTable struct {
	steps []Step
}

// NewThresholdTable copies steps and orders them numerically by Min.
// A later step with the same Min replaces an earlier one.
func NewThresholdTable(steps ...Step) ThresholdTable {
	byMin := make(map[int]string, len(steps))
	for _, step := range steps {
		byMin[step.Min] = step.Text
	}
	sorted := make([]Step, 0, len(byMin))
	for min, text := range byMin {
		sorted = append(sorted, Step{Min: min, Text: text})
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Min < sorted[j].Min
	})
	return ThresholdTable{steps: sorted}
}

// Steps returns the ordered steps.
func (t ThresholdTable) Steps() []Step {
	out := make([]Step, len(t.steps))
	copy(out, t.steps)
	return out
}

// Len returns the number of steps.
func (t ThresholdTable) Len() int {
	return len(t.steps)
}

// Lookup returns the label of the greatest Min <= score. A score below every
// step falls back to the lowest step.
func (t ThresholdTable) Lookup(score int) string {
	if len(t.steps) == 0 {
		return ""
	}
	text := t.steps[0].Text
	for _, step := range t.steps {
		if step.Min > score {
			break
		}
		text = step.Text
	}
	return text
}

// LabelSet is the caller-supplied text for every outcome.
type LabelSet struct {
	TooShort            string
	ContainsUsername    string
	NotEnoughNumbers    string
	NotEnoughLetters    string
	NotEnoughSymbols    string
	NotEnoughUpperLower string

	// Prompt replaces the label while the input is empty
	Prompt string

	Thresholds ThresholdTable
}

// failureLabel returns the fixed label for a sentinel.
func (l LabelSet) failureLabel(f Failure) string {
	switch f {
	case FailureTooShort:
		return l.TooShort
	case FailureMatchesUsername:
		return l.ContainsUsername
	case FailureNotEnoughNumbers:
		return l.NotEnoughNumbers
	case FailureNotEnoughLetters:
		return l.NotEnoughLetters
	case FailureNotEnoughSymbols:
		return l.NotEnoughSymbols
	case FailureNotEnoughCaseMix:
		return l.NotEnoughUpperLower
	default:
		return ""
	}
}

// Classify maps score to its label. Sentinels bypass the threshold table.
// When emptyInput is set and score <= 0 the prompt label is returned instead.
func Classify(score Score, emptyInput bool, labels LabelSet) string {
	if emptyInput && score <= 0 {
		return labels.Prompt
	}
	if score.IsFailure() {
		return labels.failureLabel(score.Failure())
	}
	return labels.Thresholds.Lookup(int(score))
}
