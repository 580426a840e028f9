// Package eval scores typed answers against expected strings.
package eval

import (
	"strings"

	"github.com/agext/levenshtein"
)

// Hints reported for near-miss answers.
const (
	HintOneOff = "(almost there – 1 letter off)"
	HintTwoOff = "(close – 2 letters off)"
)

// Mode selects the matching rule for a question.
type Mode string

// Supported question modes.
const (
	ModeChoice Mode = "choice"
	ModeWrite  Mode = "write"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, bool) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeChoice:
		return ModeChoice, true
	case ModeWrite:
		return ModeWrite, true
	default:
		return "", false
	}
}

// Verdict is the outcome of evaluating one answer.
type Verdict struct {
	Correct bool
	Hint    string
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Distance returns the unit-cost edit distance between the normalized strings.
func Distance(a, b string) int {
	return levenshtein.Distance(normalize(a), normalize(b), nil)
}

// ExactMatch reports whether the strings are equal ignoring case and surrounding space.
func ExactMatch(user, expected string) bool {
	return normalize(user) == normalize(expected)
}

// FuzzyMatch accepts exact matches and answers one edit away.
func FuzzyMatch(user, expected string) bool {
	return ExactMatch(user, expected) || Distance(user, expected) <= 1
}

// ProximityHint describes how close a non-empty answer is. Answers more than
// two edits away get no hint.
func ProximityHint(user, expected string) string {
	if user == "" {
		return ""
	}
	switch Distance(user, expected) {
	case 1:
		return HintOneOff
	case 2:
		return HintTwoOff
	default:
		return ""
	}
}

// Evaluate applies the matching rule for mode. Multiple-choice answers come
// from a fixed option set and must match exactly.
func Evaluate(mode Mode, user, expected string) Verdict {
	if mode == ModeChoice {
		return Verdict{Correct: ExactMatch(user, expected)}
	}
	v := Verdict{Correct: FuzzyMatch(user, expected)}
	if !ExactMatch(user, expected) {
		v.Hint = ProximityHint(user, expected)
	}
	return v
}
