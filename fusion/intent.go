package fusion

import (
	"regexp"
	"strings"
)

// Intent is a coarse query classification used only to pick fusion weights
// and candidate pool size; it is a pure function of the query text, no ML.
type Intent string

const (
	IntentDefinitional Intent = "definitional"
	IntentExploratory  Intent = "exploratory"
)

var numericOrEntitySignal = regexp.MustCompile(`\d|\s[A-Z][a-z]+`)

const definitionalMaxWords = 12

// ClassifyIntent applies simple rules: short, interrogative queries that
// contain a numeric or named-entity signal are "definitional" (weights
// favor lexical precision); everything else is "exploratory" (weights
// favor dense recall).
func ClassifyIntent(query string) Intent {
	trimmed := strings.TrimSpace(query)
	words := strings.Fields(trimmed)

	interrogative := strings.HasSuffix(trimmed, "?") || startsWithQuestionWord(trimmed)
	short := len(words) > 0 && len(words) <= definitionalMaxWords
	hasSignal := numericOrEntitySignal.MatchString(trimmed)

	if interrogative && short && hasSignal {
		return IntentDefinitional
	}
	return IntentExploratory
}

var questionWords = []string{"what", "who", "when", "where", "how many", "how much", "which"}

func startsWithQuestionWord(q string) bool {
	lower := strings.ToLower(q)
	for _, w := range questionWords {
		if strings.HasPrefix(lower, w) {
			return true
		}
	}
	return false
}

// Weights returns the (vectorWeight, lexicalWeight, k) triple for an intent.
func Weights(intent Intent) (vectorWeight, lexicalWeight float64, k int) {
	if intent == IntentDefinitional {
		return 0.5, 0.5, 16
	}
	return 0.7, 0.3, 12
}
