// =============================================================================
// ExcelTools - Fuzzy Matching
// =============================================================================
//
// Similarity scoring used by the search and compare modules. Ratio implements
// the classic sequence-matcher score: twice the number of matching characters
// divided by the total length of both strings, with matches found by
// recursively locating the longest common substring.
//
// =============================================================================

package fuzzy

import "strings"

// Ratio returns a similarity score in [0, 1] for two strings.
// Identical strings score 1; strings with no characters in common score 0.
func Ratio(a, b string) float64 {
	if a == b {
		return 1
	}
	la, lb := len(a), len(b)
	if la == 0 || lb == 0 {
		return 0
	}
	matched := matchingChars([]byte(a), []byte(b))
	return 2 * float64(matched) / float64(la+lb)
}

// RatioFold is Ratio after lowercasing both inputs.
func RatioFold(a, b string) float64 {
	return Ratio(strings.ToLower(a), strings.ToLower(b))
}

// matchingChars counts the characters covered by the matching blocks of
// a and b: the longest common substring, plus the matches found by
// recursing on the pieces to its left and right.
func matchingChars(a, b []byte) int {
	ai, bi, size := longestCommonSubstring(a, b)
	if size == 0 {
		return 0
	}
	total := size
	total += matchingChars(a[:ai], b[:bi])
	total += matchingChars(a[ai+size:], b[bi+size:])
	return total
}

// longestCommonSubstring returns the start offsets and length of the
// longest substring common to a and b. Earlier positions win ties.
func longestCommonSubstring(a, b []byte) (ai, bi, size int) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0, 0
	}

	// prev[j] is the length of the common suffix ending at a[i-1], b[j-1].
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
				if cur[j] > size {
					size = cur[j]
					ai = i - size
					bi = j - size
				}
			} else {
				cur[j] = 0
			}
		}
		prev, cur = cur, prev
	}
	return ai, bi, size
}

// Match reports whether the two strings score at or above the threshold.
func Match(a, b string, threshold float64) bool {
	return RatioFold(a, b) >= threshold
}
