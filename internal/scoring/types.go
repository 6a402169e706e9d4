package scoring

// Score is a password strength rating. Values -6..-1 are failure sentinels,
// 0..100 are graded strength.
type Score int

// Failure sentinels. Any of these short-circuits the remaining checks.
const (
	TooShort         Score = -1
	MatchesUsername  Score = -2
	NotEnoughNumbers Score = -3
	NotEnoughLetters Score = -4
	NotEnoughSymbols Score = -5
	NotEnoughCaseMix Score = -6
)

// MinScore and MaxScore bound a successful score.
const (
	MinScore Score = 0
	MaxScore Score = 100
)

// IsFailure reports whether s is one of the six failure sentinels.
func (s Score) IsFailure() bool {
	return s >= NotEnoughCaseMix && s <= TooShort
}

// Failure returns the failure reason for a sentinel, or FailureNone.
func (s Score) Failure() Failure {
	if !s.IsFailure() {
		return FailureNone
	}
	return Failure(-s)
}

// Percent returns the meter fill for s: sentinels render as an empty bar.
func (s Score) Percent() int {
	if s < 0 {
		return 0
	}
	return int(s)
}

// Failure identifies why scoring stopped early.
type Failure int

const (
	FailureNone Failure = iota
	FailureTooShort
	FailureMatchesUsername
	FailureNotEnoughNumbers
	FailureNotEnoughLetters
	FailureNotEnoughSymbols
	FailureNotEnoughCaseMix
)

// String returns the snake_case name used in reports.
func (f Failure) String() string {
	switch f {
	case FailureNone:
		return "none"
	case FailureTooShort:
		return "too_short"
	case FailureMatchesUsername:
		return "matches_username"
	case FailureNotEnoughNumbers:
		return "not_enough_numbers"
	case FailureNotEnoughLetters:
		return "not_enough_letters"
	case FailureNotEnoughSymbols:
		return "not_enough_symbols"
	case FailureNotEnoughCaseMix:
		return "not_enough_case_mix"
	default:
		return "unknown"
	}
}

// Score returns the sentinel for f. FailureNone maps to MinScore.
func (f Failure) Score() Score {
	if f <= FailureNone || f > FailureNotEnoughCaseMix {
		return MinScore
	}
	return Score(-f)
}

// ScoringMetric records one step of the scoring pipeline.
type ScoringMetric struct {
	Category string `json:"category"` // length, repetition, class, bonus, penalty, clamp
	Name     string `json:"name"`     // Human-readable name
	Points   int    `json:"points"`   // Points added (negative for penalties)
	Passed   bool   `json:"passed"`   // Whether this check passed
	Note     string `json:"note,omitempty"`
}

// Result is a score plus the breakdown that produced it.
type Result struct {
	Score   Score           `json:"score"`
	Failure Failure         `json:"-"`
	Reason  string          `json:"failure,omitempty"`
	Details []ScoringMetric `json:"details"`
}

// Scorer is implemented by anything that can rate a password.
type Scorer interface {
	Evaluate(password, username string) Result
}
