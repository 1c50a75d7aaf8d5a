// Package match finds the best fuzzy title match among existing calendar
// events for update operations.
package match

import (
	"strings"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Threshold is the minimum similarity for a candidate to count as a match.
const Threshold = 0.5

var dmp = diffmatchpatch.New()

// Similarity returns a 0-1 ratio of how alike two strings are, computed as
// 2*common/(len(a)+len(b)) over a character-level diff. Case-insensitive.
func Similarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" && b == "" {
		return 1
	}
	total := utf8.RuneCountInString(a) + utf8.RuneCountInString(b)
	if total == 0 {
		return 0
	}

	common := 0
	for _, d := range dmp.DiffMain(a, b, false) {
		if d.Type == diffmatchpatch.DiffEqual {
			common += utf8.RuneCountInString(d.Text)
		}
	}
	return 2 * float64(common) / float64(total)
}

// BestTitle returns the candidate most similar to query, provided its
// similarity exceeds Threshold. Ties break to the earliest candidate. The
// second return is false when nothing clears the threshold.
func BestTitle(query string, candidates []string) (string, bool) {
	best := ""
	bestScore := 0.0
	found := false

	for _, candidate := range candidates {
		score := Similarity(query, candidate)
		if score > Threshold && score > bestScore {
			best = candidate
			bestScore = score
			found = true
		}
	}

	return best, found
}
