package textmatch

import "strings"

// SequenceRatio returns a normalized similarity between two texts in the
// range 0 (no overlap) to 1 (identical), computed as the longest common
// subsequence ratio over their whitespace-delimited token sequences.
// Comparison is case-sensitive; callers lower-case beforehand.
func SequenceRatio(a, b string) float64 {
	left := strings.Fields(a)
	right := strings.Fields(b)
	if len(left) == 0 && len(right) == 0 {
		return 1
	}
	if len(left) == 0 || len(right) == 0 {
		return 0
	}

	// Single-row LCS table keeps memory linear in the shorter sequence.
	if len(right) < len(left) {
		left, right = right, left
	}
	prev := make([]int, len(left)+1)
	curr := make([]int, len(left)+1)
	for i := 1; i <= len(right); i++ {
		for j := 1; j <= len(left); j++ {
			if right[i-1] == left[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}

	lcs := prev[len(left)]
	return 2 * float64(lcs) / float64(len(left)+len(right))
}

// TokenSetRatio returns the intersection-over-union of two token multisets.
// An empty query side yields 0; the union is floored at one element.
func TokenSetRatio(query, target []string) float64 {
	if len(query) == 0 {
		return 0
	}

	queryCounts := countTokens(query)
	targetCounts := countTokens(target)

	intersection := 0
	union := 0
	for tok, qn := range queryCounts {
		tn := targetCounts[tok]
		if qn < tn {
			intersection += qn
			union += tn
		} else {
			intersection += tn
			union += qn
		}
	}
	for tok, tn := range targetCounts {
		if _, seen := queryCounts[tok]; !seen {
			union += tn
		}
	}
	if union == 0 {
		union = 1
	}
	return float64(intersection) / float64(union)
}

func countTokens(tokens []string) map[string]int {
	counts := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		counts[tok]++
	}
	return counts
}
