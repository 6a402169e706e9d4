// Package labels loads the user-facing text shown by the meter.
//
// The scorer never hardcodes text: every sentinel label, the empty-input
// prompt, and the threshold steps come from a Pack. Packs are YAML (or
// JSON) documents checked against the #Labels schema before decoding.
package labels

import (
	"fmt"
	"os"

	"github.com/anderschbe/password-strength-meter/internal/schema"
	"github.com/anderschbe/password-strength-meter/internal/scoring"
	"gopkg.in/yaml.v3"
)

// Pack is a set of labels as written in config or a label file.
type Pack struct {
	TooShort            string         `yaml:"tooShort,omitempty" json:"tooShort,omitempty" mapstructure:"tooShort"`
	ContainsUsername    string         `yaml:"containsUsername,omitempty" json:"containsUsername,omitempty" mapstructure:"containsUsername"`
	NotEnoughNumbers    string         `yaml:"notEnoughNumbers,omitempty" json:"notEnoughNumbers,omitempty" mapstructure:"notEnoughNumbers"`
	NotEnoughLetters    string         `yaml:"notEnoughLetters,omitempty" json:"notEnoughLetters,omitempty" mapstructure:"notEnoughLetters"`
	NotEnoughSymbols    string         `yaml:"notEnoughSymbols,omitempty" json:"notEnoughSymbols,omitempty" mapstructure:"notEnoughSymbols"`
	NotEnoughUpperLower string         `yaml:"notEnoughUpperLower,omitempty" json:"notEnoughUpperLower,omitempty" mapstructure:"notEnoughUpperLower"`
	Prompt              string         `yaml:"prompt,omitempty" json:"prompt,omitempty" mapstructure:"prompt"`
	Steps               []scoring.Step `yaml:"steps,omitempty" json:"steps,omitempty" mapstructure:"steps"`
}

// Default returns the stock English labels.
func Default() Pack {
	return Pack{
		TooShort:            "The password is too short",
		ContainsUsername:    "The password contains the username",
		NotEnoughNumbers:    "The password needs more numbers",
		NotEnoughLetters:    "The password needs more letters",
		NotEnoughSymbols:    "The password needs more symbols",
		NotEnoughUpperLower: "The password needs upper and lower case characters",
		Prompt:              "Type your password",
		Steps: []scoring.Step{
			{Min: 0, Text: "Weak; try combining letters & numbers"},
			{Min: 34, Text: "Medium; try using special characters"},
			{Min: 68, Text: "Strong password"},
		},
	}
}

// Merge returns p with every non-empty field of over applied. Steps are
// replaced as a whole, never merged step by step.
func (p Pack) Merge(over Pack) Pack {
	pick := func(base, o string) string {
		if o != "" {
			return o
		}
		return base
	}
	out := Pack{
		TooShort:            pick(p.TooShort, over.TooShort),
		ContainsUsername:    pick(p.ContainsUsername, over.ContainsUsername),
		NotEnoughNumbers:    pick(p.NotEnoughNumbers, over.NotEnoughNumbers),
		NotEnoughLetters:    pick(p.NotEnoughLetters, over.NotEnoughLetters),
		NotEnoughSymbols:    pick(p.NotEnoughSymbols, over.NotEnoughSymbols),
		NotEnoughUpperLower: pick(p.NotEnoughUpperLower, over.NotEnoughUpperLower),
		Prompt:              pick(p.Prompt, over.Prompt),
		Steps:               p.Steps,
	}
	if len(over.Steps) > 0 {
		out.Steps = over.Steps
	}
	return out
}

// LabelSet converts p into the scorer's immutable form.
func (p Pack) LabelSet() scoring.LabelSet {
	return scoring.LabelSet{
		TooShort:            p.TooShort,
		ContainsUsername:    p.ContainsUsername,
		NotEnoughNumbers:    p.NotEnoughNumbers,
		NotEnoughLetters:    p.NotEnoughLetters,
		NotEnoughSymbols:    p.NotEnoughSymbols,
		NotEnoughUpperLower: p.NotEnoughUpperLower,
		Prompt:              p.Prompt,
		Thresholds:          scoring.NewThresholdTable(p.Steps...),
	}
}

// Load reads a label pack from path. Fields the file omits are empty; merge
// the result over Default to fill them.
func Load(path string) (Pack, error) {
	v := schema.NewValidator()
	if err := v.LoadSchemas(); err != nil {
		return Pack{}, err
	}
	violations, err := v.CheckFile(path, schema.DefLabels)
	if err != nil {
		return Pack{}, err
	}
	if err := schema.JoinErrors(violations); err != nil {
		return Pack{}, err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return Pack{}, fmt.Errorf("reading label pack: %w", err)
	}
	var p Pack
	if err := yaml.Unmarshal(content, &p); err != nil {
		return Pack{}, fmt.Errorf("parsing label pack %s: %w", path, err)
	}
	return p, nil
}
