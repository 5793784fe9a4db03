// Package dedupe finds existing catalog entries that likely match a submitted
// card, so near-duplicate submissions can be flagged for review.
package dedupe

import (
	"strings"

	"github.com/mkeller/swu-tracker/backend/internal/models"
)

// Levenshtein returns the edit distance between two strings, case-insensitive
// and rune-aware.
func Levenshtein(a, b string) int {
	ra := []rune(strings.ToLower(a))
	rb := []rune(strings.ToLower(b))
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := 0; j <= len(rb); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// Similarity normalizes edit distance into [0, 1], where 1 means identical
// ignoring case. Two empty strings are identical.
func Similarity(a, b string) float64 {
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 1.0
	}
	return 1.0 - float64(Levenshtein(a, b))/float64(longest)
}

// aspectOverlap is the Jaccard index of two aspect sets, case-insensitive.
// Two empty sets overlap fully.
func aspectOverlap(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	sa := make(map[string]bool, len(a))
	for _, s := range a {
		sa[strings.ToLower(s)] = true
	}
	sb := make(map[string]bool, len(b))
	for _, s := range b {
		sb[strings.ToLower(s)] = true
	}

	shared := 0
	for k := range sb {
		if sa[k] {
			shared++
		}
	}
	union := len(sa) + len(sb) - shared
	return float64(shared) / float64(union)
}

// sameCardNumber compares card numbers tolerant of leading zeros, so "42"
// and "042" refer to the same slot. Non-numeric numbers compare verbatim.
func sameCardNumber(a, b string) bool {
	if strings.EqualFold(a, b) {
		return true
	}
	ta := strings.TrimLeft(a, "0")
	tb := strings.TrimLeft(b, "0")
	return ta != "" && ta == tb
}

// Weights of the score components. Name similarity dominates; the rest break
// ties between cards that share a name.
const (
	weightName     = 0.6
	weightSubtitle = 0.2
	weightType     = 0.1
	weightAspects  = 0.1
)

// MatchScore rates how likely two cards are the same logical card, in
// [0, 1]. Sharing a printed code or a non-empty (set, number) slot is a
// definitive match and short-circuits to 1. Otherwise the score blends name,
// subtitle, type, and aspect similarity; a component enters the blend only
// when both cards carry it, so a one-sided field never dilutes the average.
func MatchScore(a, b models.Card) float64 {
	if a.OfficialCode != "" && strings.EqualFold(a.OfficialCode, b.OfficialCode) {
		return 1.0
	}
	if a.SetCode != "" && a.CardNumber != "" &&
		strings.EqualFold(a.SetCode, b.SetCode) && sameCardNumber(a.CardNumber, b.CardNumber) {
		return 1.0
	}

	score := weightName * Similarity(a.Name, b.Name)
	total := weightName

	if a.Subtitle != "" && b.Subtitle != "" {
		score += weightSubtitle * Similarity(a.Subtitle, b.Subtitle)
		total += weightSubtitle
	}
	if a.Type != "" && b.Type != "" {
		if a.Type == b.Type {
			score += weightType
		}
		total += weightType
	}
	if len(a.Aspects) > 0 && len(b.Aspects) > 0 {
		score += weightAspects * aspectOverlap(a.Aspects, b.Aspects)
		total += weightAspects
	}
	return score / total
}
