package textutil

import (
	"strings"

	"golang.org/x/text/cases"
)

// Normalize trims surrounding whitespace and applies Unicode case folding.
func Normalize(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ""
	}
	// Casers carry state; a fresh one per call keeps Normalize goroutine-safe.
	return cases.Fold().String(trimmed)
}

// Similarity returns the Ratcliff/Obershelp ratio 2*M/(len(a)+len(b)) over
// the normalized runes of a and b, where M is the total size of matching
// blocks found by recursively taking the longest common substring. Inputs
// that are empty after normalization score 0.
func Similarity(a, b string) float64 {
	ra := []rune(Normalize(a))
	rb := []rune(Normalize(b))
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	matched := matchingRunes(ra, rb)
	return 2 * float64(matched) / float64(len(ra)+len(rb))
}

func matchingRunes(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	i, j, size := longestCommonRun(a, b)
	if size == 0 {
		return 0
	}
	return size + matchingRunes(a[:i], b[:j]) + matchingRunes(a[i+size:], b[j+size:])
}

// longestCommonRun finds the longest common substring of a and b. Ties go to
// the earliest start in a, then the earliest start in b.
func longestCommonRun(a, b []rune) (int, int, int) {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	bestI, bestJ, bestSize := 0, 0, 0
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] != b[j-1] {
				curr[j] = 0
				continue
			}
			curr[j] = prev[j-1] + 1
			if curr[j] > bestSize {
				bestSize = curr[j]
				bestI = i - bestSize
				bestJ = j - bestSize
			}
		}
		prev, curr = curr, prev
	}
	return bestI, bestJ, bestSize
}

// CosineSimilarity computes the cosine similarity between two fingerprints.
// Returns 0 if either fingerprint is nil or has zero norm.
func CosineSimilarity(a, b *Fingerprint) float64 {
	if a == nil || b == nil || a.norm == 0 || b.norm == 0 {
		return 0
	}
	var dot float64
	for token, count := range a.tokens {
		if other, ok := b.tokens[token]; ok {
			dot += count * other
		}
	}
	if dot == 0 {
		return 0
	}
	score := dot / (a.norm * b.norm)
	if score > 1 {
		return 1
	}
	return score
}

// TokenSimilarity compares the token fingerprints of a and b.
func TokenSimilarity(a, b string) float64 {
	return CosineSimilarity(NewFingerprint(a), NewFingerprint(b))
}

// WordOverlap is the share of a's distinct lower-cased words that also occur
// in b. Words are split on whitespace only, so punctuation stays attached.
func WordOverlap(a, b string) float64 {
	words := strings.Fields(strings.ToLower(a))
	if len(words) == 0 {
		return 0
	}
	own := make(map[string]struct{}, len(words))
	for _, w := range words {
		own[w] = struct{}{}
	}
	other := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(b)) {
		other[w] = struct{}{}
	}
	shared := 0
	for w := range own {
		if _, ok := other[w]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(own))
}
