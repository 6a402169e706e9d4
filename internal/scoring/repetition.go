package scoring

// FilterRepetition drops every unit of period runes that is immediately
// repeated by the following unit, and returns what is left.
//
// At index i the unit s[i:i+period] is compared with s[i+period:i+2*period].
// A match drops s[i] and skips the rest of the unit; otherwise s[i] is kept.
// When the second unit would run past the end no repetition is declared,
// so trailing runes always survive.
//
// The length difference between input and output is used as a penalty for
// predictable structure, e.g. FilterRepetition(1, "aaaa") == "a".
func FilterRepetition(period int, s string) string {
	if period < 1 {
		return s
	}
	runes := []rune(s)
	n := len(runes)
	out := make([]rune, 0, n)

	for i := 0; i < n; i++ {
		if i+2*period <= n && repeatsAt(runes, i, period) {
			i += period - 1
			continue
		}
		out = append(out, runes[i])
	}
	return string(out)
}

func repeatsAt(runes []rune, i, period int) bool {
	for j := 0; j < period; j++ {
		if runes[i+j] != runes[i+j+period] {
			return false
		}
	}
	return true
}

// repetitionPenalty is the total length lost by filtering at periods 1-4.
func repetitionPenalty(password string, length int) (int, []ScoringMetric) {
	var total int
	details := make([]ScoringMetric, 0, 4)
	for period := 1; period <= 4; period++ {
		lost := len([]rune(FilterRepetition(period, password))) - length
		total += lost
		details = append(details, ScoringMetric{
			Category: "repetition",
			Name:     repetitionNames[period-1],
			Points:   lost,
			Passed:   lost == 0,
		})
	}
	return total, details
}

var repetitionNames = [4]string{
	"Repeated characters",
	"Repeated pairs",
	"Repeated triples",
	"Repeated quads",
}
