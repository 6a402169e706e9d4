package scoring

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Config holds the scoring requirements. It is a value type; build it once
// and pass it to every call.
type Config struct {
	// MinimumLength is the shortest accepted password, in runes
	MinimumLength int

	// MinimumNumbers, MinimumLetters and MinimumSymbols act as required flags:
	// 0 makes the class optional, anything higher requires one occurrence
	MinimumNumbers int
	MinimumLetters int
	MinimumSymbols int

	// RequireUpperLower requires both a lowercase and an uppercase letter
	RequireUpperLower bool

	// CheckUsername enables the username collision check for non-empty
	// usernames
	CheckUsername bool

	// UsernamePartialMatch also rejects passwords containing the username
	UsernamePartialMatch bool

	// LegacyLetterCheck tests the letter requirement with the digit pattern,
	// reproducing the behavior of the original jQuery meter
	LegacyLetterCheck bool
}

// DefaultConfig returns the stock requirements.
func DefaultConfig() Config {
	return Config{
		MinimumLength:        4,
		MinimumNumbers:       0,
		MinimumLetters:       1,
		MinimumSymbols:       0,
		RequireUpperLower:    false,
		CheckUsername:        true,
		UsernamePartialMatch: true,
	}
}

// Scoring weights.
const (
	pointsPerRune     = 4
	digitBonus        = 5
	symbolBonus       = 5
	mixedCaseBonus    = 10
	crossClassBonus   = 15
	homogeneityCharge = -10
)

// Calculate scores password against cfg. An empty username skips the
// username collision check.
func Calculate(password, username string, cfg Config) Score {
	return Evaluate(password, username, cfg).Score
}

// Evaluate runs the scoring pipeline and records each step. The first
// failing check ends the pipeline and its sentinel becomes the score.
func Evaluate(password, username string, cfg Config) Result {
	var details []ScoringMetric
	length := utf8.RuneCountInString(password)

	fail := func(f Failure, name, note string) Result {
		details = append(details, ScoringMetric{
			Category: "requirement",
			Name:     name,
			Points:   0,
			Passed:   false,
			Note:     note,
		})
		return Result{Score: f.Score(), Failure: f, Reason: f.String(), Details: details}
	}

	// Length gate
	if length < cfg.MinimumLength {
		return fail(FailureTooShort, "Minimum length",
			strconv.Itoa(length)+" < "+strconv.Itoa(cfg.MinimumLength))
	}

	score := length * pointsPerRune
	details = append(details, ScoringMetric{
		Category: "length",
		Name:     "Length",
		Points:   score,
		Passed:   true,
		Note:     strconv.Itoa(length) + " x " + strconv.Itoa(pointsPerRune),
	})

	penalty, repetition := repetitionPenalty(password, length)
	score += penalty
	details = append(details, repetition...)

	if cfg.CheckUsername && username != "" && collidesWithUsername(password, username, cfg.UsernamePartialMatch) {
		return fail(FailureMatchesUsername, "Username", "password matches or contains the username")
	}

	nums := CountPattern(password, Digits, cfg.MinimumNumbers)
	if nums == Insufficient {
		return fail(FailureNotEnoughNumbers, "Has numbers", "")
	}
	if nums == Satisfied {
		score += digitBonus
	}
	details = append(details, classMetric("Has numbers", nums, digitBonus))

	letterPattern := Letters
	if cfg.LegacyLetterCheck {
		letterPattern = Digits
	}
	chars := CountPattern(password, letterPattern, cfg.MinimumLetters)
	if chars == Insufficient {
		return fail(FailureNotEnoughLetters, "Has letters", "")
	}
	details = append(details, classMetric("Has letters", chars, 0))

	symbols := CountPattern(password, Symbols, cfg.MinimumSymbols)
	if symbols == Insufficient {
		return fail(FailureNotEnoughSymbols, "Has symbols", "")
	}
	if symbols == Satisfied {
		score += symbolBonus
	}
	details = append(details, classMetric("Has symbols", symbols, symbolBonus))

	upperLowerMin := 0
	if cfg.RequireUpperLower {
		upperLowerMin = 1
	}
	upLower := CountPattern(password, MixedCase, upperLowerMin)
	if upLower == Insufficient {
		return fail(FailureNotEnoughCaseMix, "Has upper and lower case", "")
	}
	if upLower == Satisfied {
		score += mixedCaseBonus
	}
	details = append(details, classMetric("Has upper and lower case", upLower, mixedCaseBonus))

	// Cross-class bonuses
	pairs := []struct {
		name string
		a, b Signal
	}{
		{"Numbers and letters", nums, chars},
		{"Numbers and symbols", nums, symbols},
		{"Letters and symbols", chars, symbols},
	}
	for _, pair := range pairs {
		both := pair.a == Satisfied && pair.b == Satisfied
		points := 0
		if both {
			points = crossClassBonus
			score += points
		}
		details = append(details, ScoringMetric{
			Category: "bonus",
			Name:     pair.name,
			Points:   points,
			Passed:   both,
		})
	}

	// Only numbers or only letters
	homogeneous := int(nums)*int(chars) < 1
	if homogeneous {
		score += homogeneityCharge
	}
	details = append(details, ScoringMetric{
		Category: "penalty",
		Name:     "Mixes numbers and letters",
		Points:   boolToInt(homogeneous) * homogeneityCharge,
		Passed:   !homogeneous,
	})

	clamped := clamp(score)
	if clamped != score {
		details = append(details, ScoringMetric{
			Category: "clamp",
			Name:     "Clamp to 0-100",
			Points:   clamped - score,
			Passed:   true,
			Note:     "raw score " + strconv.Itoa(score),
		})
	}

	return Result{Score: Score(clamped), Details: details}
}

// collidesWithUsername compares case-insensitively. Partial matching is a
// plain substring test; the username is never treated as a pattern.
func collidesWithUsername(password, username string, partial bool) bool {
	lowerPassword := cases.Lower(language.Und).String(password)
	lowerUsername := cases.Lower(language.Und).String(username)
	if lowerPassword == lowerUsername {
		return true
	}
	return partial && username != "" && strings.Contains(lowerPassword, lowerUsername)
}

func classMetric(name string, signal Signal, bonus int) ScoringMetric {
	points := 0
	if signal == Satisfied {
		points = bonus
	}
	return ScoringMetric{
		Category: "class",
		Name:     name,
		Points:   points,
		Passed:   signal != Insufficient,
		Note:     signal.String(),
	}
}

func clamp(score int) int {
	if score > int(MaxScore) {
		return int(MaxScore)
	}
	if score < int(MinScore) {
		return int(MinScore)
	}
	return score
}

// boolToInt converts a boolean to 0 or 1
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// PasswordScorer binds a Config to the Scorer interface.
type PasswordScorer struct {
	cfg Config
}

// NewPasswordScorer creates a PasswordScorer for cfg.
func NewPasswordScorer(cfg Config) *PasswordScorer {
	return &PasswordScorer{cfg: cfg}
}

// Evaluate scores password with the bound Config.
func (s *PasswordScorer) Evaluate(password, username string) Result {
	return Evaluate(password, username, s.cfg)
}
