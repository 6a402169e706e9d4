// Package meter binds the password scorer to an interactive input.
//
// A UI layer calls Update with the current field contents on every
// keystroke and renders the returned Reading. Listeners registered with
// OnScore fire on every update; OnText listeners fire only when the label
// text changes.
package meter

import (
	"sync"

	"github.com/anderschbe/password-strength-meter/internal/scoring"
)

// Reading is what a UI needs to draw the meter for one input value.
type Reading struct {
	Score   scoring.Score
	Percent int
	Text    string
	Empty   bool
	Details []scoring.ScoringMetric
}

// ScoreFunc receives the score of every update.
type ScoreFunc func(score scoring.Score)

// TextFunc receives the label whenever it differs from the previous one.
type TextFunc func(text string, score scoring.Score)

// Meter scores successive values of one input field.
type Meter struct {
	cfg    scoring.Config
	labels scoring.LabelSet

	mu       sync.Mutex
	lastText string
	onScore  []ScoreFunc
	onText   []TextFunc
}

// New creates a Meter. Its initial text is the prompt label.
func New(cfg scoring.Config, labels scoring.LabelSet) *Meter {
	return &Meter{
		cfg:      cfg,
		labels:   labels,
		lastText: labels.Prompt,
	}
}

// OnScore registers fn to be called after every Update.
func (m *Meter) OnScore(fn ScoreFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onScore = append(m.onScore, fn)
}

// OnText registers fn to be called when the label text changes.
func (m *Meter) OnText(fn TextFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onText = append(m.onText, fn)
}

// Text returns the label currently shown.
func (m *Meter) Text() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastText
}

// Update scores password and notifies listeners. Listeners run
// synchronously on the caller's goroutine, in registration order.
func (m *Meter) Update(password, username string) Reading {
	result := scoring.Evaluate(password, username, m.cfg)
	empty := password == ""
	reading := Reading{
		Score:   result.Score,
		Percent: result.Score.Percent(),
		Text:    scoring.Classify(result.Score, empty, m.labels),
		Empty:   empty,
		Details: result.Details,
	}

	m.mu.Lock()
	changed := reading.Text != m.lastText
	m.lastText = reading.Text
	scoreFns := append([]ScoreFunc(nil), m.onScore...)
	var textFns []TextFunc
	if changed {
		textFns = append(textFns, m.onText...)
	}
	m.mu.Unlock()

	for _, fn := range scoreFns {
		fn(reading.Score)
	}
	for _, fn := range textFns {
		fn(reading.Text, reading.Score)
	}
	return reading
}
