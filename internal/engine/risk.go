package engine

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"roadreport/internal/model"
)

var profanity = []string{"fuck", "shit", "bitch", "crap"}

// ScoreRisk scores one utterance for anomaly signals. Pure function of the
// text: identical input always yields the identical annotation. The checks
// are independent and additive; order never matters.
func ScoreRisk(text string) model.RiskAnnotation {
	score := 0
	length := utf8.RuneCountInString(text)

	if length < 5 {
		score += 2
	}
	if length > 500 {
		score += 3
	}

	if isAllUpper(text) {
		score += 2
	}

	if hasRepeatRun(text, 6) {
		score += 3
	}

	lower := strings.ToLower(text)
	if strings.Contains(lower, "no crash") && strings.Contains(lower, "accident") {
		score += 3
	}

	for _, w := range profanity {
		if strings.Contains(lower, w) {
			score += 3
			break
		}
	}

	level := model.RiskLow
	switch {
	case score >= 6:
		level = model.RiskHigh
	case score >= 3:
		level = model.RiskMedium
	}

	return model.RiskAnnotation{
		InputLength:    length,
		SuspicionScore: score,
		RiskLevel:      level,
	}
}

// isAllUpper reports whether the text contains at least one cased rune and
// no lowercase runes.
func isAllUpper(text string) bool {
	cased := false
	for _, r := range text {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			cased = true
		}
	}
	return cased
}

// hasRepeatRun reports whether any rune appears at least n times in a row.
// RE2 has no backreferences, so this is a plain scan.
func hasRepeatRun(text string, n int) bool {
	var prev rune
	run := 0
	for _, r := range text {
		if r == prev {
			run++
		} else {
			prev = r
			run = 1
		}
		if run >= n {
			return true
		}
	}
	return false
}
