package search

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// partialTokenSortRatio tokenizes both strings by whitespace, sorts each
// token set, then slides the shorter joined string as a window over the
// longer one, returning the best per-window edit-distance similarity as an
// integer in 0..100.
func partialTokenSortRatio(a, b string) int {
	sortedA := tokenSort(a)
	sortedB := tokenSort(b)
	if sortedA == "" || sortedB == "" {
		return 0
	}

	shorter, longer := sortedA, sortedB
	if len(longer) < len(shorter) {
		shorter, longer = longer, shorter
	}
	if len(longer) <= len(shorter) {
		return similarity(shorter, longer)
	}

	best := 0
	for i := 0; i+len(shorter) <= len(longer); i++ {
		window := longer[i : i+len(shorter)]
		if s := similarity(shorter, window); s > best {
			best = s
		}
	}
	return best
}

func similarity(a, b string) int {
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 100
	}
	dist := levenshtein.ComputeDistance(a, b)
	ratio := 1.0 - float64(dist)/float64(maxLen)
	if ratio < 0 {
		ratio = 0
	}
	return int(ratio * 100)
}

func tokenSort(s string) string {
	tokens := strings.Fields(strings.ToLower(s))
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}
