package scoring

import "regexp"

// Signal is the tri-state outcome of a character-class requirement.
type Signal int

const (
	// Insufficient means the class is required and absent.
	Insufficient Signal = -1
	// NotRequired means the class is absent but optional.
	NotRequired Signal = 0
	// Satisfied means the class is present.
	Satisfied Signal = 1
)

func (s Signal) String() string {
	switch s {
	case Insufficient:
		return "insufficient"
	case NotRequired:
		return "not_required"
	case Satisfied:
		return "satisfied"
	default:
		return "unknown"
	}
}

// Pattern is a character-class predicate over a whole string.
type Pattern struct {
	Name string
	re   *regexp.Regexp
}

// NewPattern compiles expr into a Pattern. It panics on an invalid
// expression, like regexp.MustCompile.
func NewPattern(name, expr string) Pattern {
	return Pattern{Name: name, re: regexp.MustCompile(expr)}
}

// Matches reports whether s contains at least one match.
func (p Pattern) Matches(s string) bool {
	return p.re != nil && p.re.MatchString(s)
}

// Built-in classes. The symbol set includes the comma.
var (
	Digits    = NewPattern("digits", `[0-9]`)
	Letters   = NewPattern("letters", `[A-Za-z]`)
	Symbols   = NewPattern("symbols", `[!,@#$%^&*?_~]`)
	MixedCase = NewPattern("mixed case", `[a-z].*[A-Z]|[A-Z].*[a-z]`)
)

// CountPattern checks whether s meets a minimum for pattern. Only presence
// is tested: any match satisfies min >= 1.
func CountPattern(s string, pattern Pattern, min int) Signal {
	switch {
	case pattern.Matches(s):
		return Satisfied
	case min <= 0:
		return NotRequired
	default:
		return Insufficient
	}
}
