package engine

import (
	"regexp"
	"strings"
	"unicode"

	"roadreport/internal/schema"
)

// Conversational fillers that never count as data, regardless of slot.
var fillers = map[string]bool{
	"hi": true, "hello": true, "hey": true, "hola": true, "sup": true,
	"yo": true, "ok": true, "okay": true, "thanks": true, "thank you": true,
	"cool": true, "start": true,
}

var greetings = map[string]bool{
	"hi": true, "hello": true, "hey": true, "hola": true, "sup": true,
	"start": true, "yo": true, "good morning": true, "good afternoon": true,
}

var classifierYearRe = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)

var noSynonyms = map[string]bool{"no": true, "n": true, "nope": true, "nah": true}

// IsGreeting reports whether the utterance is one of the canned greetings.
// Used by the complaint variant, which has no relevance classifier.
func IsGreeting(text string) bool {
	return greetings[strings.ToLower(strings.TrimSpace(text))]
}

// Classify decides whether the utterance is usable data for the slot being
// asked, and normalizes it when it is. One binary decision per turn: the
// classifier never partially accepts input (contrast Extract, which is
// multi-field and additive).
func Classify(slot *schema.Slot, text string) (bool, string) {
	clean := strings.TrimSpace(text)
	lower := strings.ToLower(clean)

	if fillers[lower] {
		return false, clean
	}

	switch slot.Kind {
	case schema.KindYear:
		if m := classifierYearRe.FindStringSubmatch(clean); m != nil {
			return true, m[1]
		}
		return false, clean
	case schema.KindYesNo:
		// A descriptive sentence without an explicit yes/no token is treated
		// as conversation. Coarse, but the contract for these slots.
		if yesSynonyms[lower] {
			return true, "YES"
		}
		if noSynonyms[lower] {
			return true, "NO"
		}
		return false, clean
	case schema.KindCount:
		if len([]rune(clean)) == 1 {
			if unicode.IsDigit([]rune(clean)[0]) {
				return true, clean
			}
			return false, clean
		}
	}

	if len([]rune(clean)) < 2 {
		return false, clean
	}
	return true, clean
}
