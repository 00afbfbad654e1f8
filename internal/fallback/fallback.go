// Package fallback decides whether a generated answer admits it found
// nothing in the documents, in which case the UI offers a web-backed answer
// instead of showing the hedge verbatim.
package fallback

import (
	"strings"

	"docchat/internal/models"
)

// NeedsFallback reports whether answer contains any of the fixed hedge
// phrases, case-insensitively. This is a substring heuristic, not a
// semantic judgment: an answer that happens to contain a phrase while
// still being correct triggers the offer, and an unhedged wrong answer
// does not.
func NeedsFallback(answer string) bool {
	lower := strings.ToLower(answer)
	for _, phrase := range models.HedgePhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
