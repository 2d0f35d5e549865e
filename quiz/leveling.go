package quiz

// Pass threshold is 70% of the level's questions. Compared as score*10 >= total*7
// so the check is exact for every total, not only multiples of ten.
const (
	passNumerator   = 7
	passDenominator = 10
)

// Passed reports whether score clears the pass threshold for total questions.
func Passed(score, total int) bool {
	if total <= 0 {
		return false
	}
	return score*passDenominator >= total*passNumerator
}

// ApplyLeveling unlocks the next tier when r passes the user's current highest
// tier. Re-attempts of cleared tiers and passes of the top tier change nothing.
// It returns the newly unlocked level and whether an unlock happened.
func ApplyLeveling(p *Progress, r Result) (Level, bool) {
	if !Passed(r.Score, r.TotalQuestions) {
		return p.HighestLevel, false
	}
	if r.Level != p.HighestLevel || r.Level >= MaxLevel {
		return p.HighestLevel, false
	}
	p.HighestLevel = r.Level + 1
	return p.HighestLevel, true
}
