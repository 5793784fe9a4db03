package dedupe

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mkeller/swu-tracker/backend/internal/models"
)

const (
	// fuzzyThreshold is the minimum name similarity for a fuzzy candidate.
	fuzzyThreshold = 0.85
	// maxFuzzyMatches caps how many fuzzy candidates one lookup returns.
	maxFuzzyMatches = 3
	// maxFuzzyScore keeps fuzzy candidates strictly below the score
	// reserved for exact identity matches.
	maxFuzzyScore = 0.99
)

// CatalogLookup is the read surface the finder needs from card storage.
// Lookups return (nil, nil) when nothing matches.
type CatalogLookup interface {
	FindByCode(ctx context.Context, officialCode string) (*models.Card, error)
	FindBySetAndNumber(ctx context.Context, setCode, cardNumber string) (*models.Card, error)
	SearchByName(ctx context.Context, name string, limit int) ([]models.Card, error)
}

// Finder locates likely duplicates of a submitted card in the catalog.
type Finder struct {
	catalog CatalogLookup
}

func NewFinder(catalog CatalogLookup) *Finder {
	return &Finder{catalog: catalog}
}

// searchLimit bounds the fuzzy candidate pool pulled from storage before
// scoring.
const searchLimit = 50

// FindDuplicates runs three passes over the catalog: exact printed-code
// match, exact (set, number) match, then fuzzy name matching. Exact hits
// score 1.0; fuzzy hits are capped below it. Candidates are deduplicated by
// (set, number) and ordered by score, best first.
func (f *Finder) FindDuplicates(ctx context.Context, card models.Card) ([]models.DuplicateCandidate, error) {
	var candidates []models.DuplicateCandidate
	seen := make(map[string]bool)

	mark := func(c models.Card) bool {
		k := strings.ToUpper(c.SetCode) + "|" + strings.ToUpper(c.CardNumber)
		if seen[k] {
			return false
		}
		seen[k] = true
		return true
	}

	if card.OfficialCode != "" {
		match, err := f.catalog.FindByCode(ctx, card.OfficialCode)
		if err != nil {
			return nil, fmt.Errorf("code lookup: %w", err)
		}
		if match != nil && mark(*match) {
			candidates = append(candidates, candidate(*match, 1.0,
				fmt.Sprintf("same printed code %s", match.OfficialCode), models.MatchExactCode))
		}
	}

	if card.SetCode != "" && card.CardNumber != "" {
		match, err := f.catalog.FindBySetAndNumber(ctx, card.SetCode, card.CardNumber)
		if err != nil {
			return nil, fmt.Errorf("set/number lookup: %w", err)
		}
		if match != nil && mark(*match) {
			candidates = append(candidates, candidate(*match, 1.0,
				fmt.Sprintf("same slot %s %s", match.SetCode, match.CardNumber), models.MatchExactSetNumber))
		}
	}

	if card.Name != "" {
		pool, err := f.catalog.SearchByName(ctx, card.Name, searchLimit)
		if err != nil {
			return nil, fmt.Errorf("name search: %w", err)
		}

		var fuzzy []models.DuplicateCandidate
		for _, match := range pool {
			if Similarity(card.Name, match.Name) < fuzzyThreshold {
				continue
			}
			score := MatchScore(card, match)
			if score > maxFuzzyScore {
				score = maxFuzzyScore
			}
			fuzzy = append(fuzzy, candidate(match, score,
				fmt.Sprintf("name resembles %q", match.Name), models.MatchFuzzyName))
		}
		sortCandidates(fuzzy)

		added := 0
		for _, c := range fuzzy {
			if added == maxFuzzyMatches {
				break
			}
			if !seen[strings.ToUpper(c.SetCode)+"|"+strings.ToUpper(c.CardNumber)] {
				seen[strings.ToUpper(c.SetCode)+"|"+strings.ToUpper(c.CardNumber)] = true
				candidates = append(candidates, c)
				added++
			}
		}
	}

	sortCandidates(candidates)
	return candidates, nil
}

func candidate(card models.Card, score float64, reason string, matchType models.MatchType) models.DuplicateCandidate {
	return models.DuplicateCandidate{
		Name:         card.Name,
		Subtitle:     card.Subtitle,
		SetCode:      card.SetCode,
		CardNumber:   card.CardNumber,
		OfficialCode: card.OfficialCode,
		MatchScore:   score,
		MatchReason:  reason,
		MatchType:    matchType,
	}
}

// sortCandidates orders by score descending, then set and number ascending
// for a stable presentation.
func sortCandidates(cs []models.DuplicateCandidate) {
	sort.Slice(cs, func(i, j int) bool {
		if cs[i].MatchScore != cs[j].MatchScore {
			return cs[i].MatchScore > cs[j].MatchScore
		}
		if cs[i].SetCode != cs[j].SetCode {
			return cs[i].SetCode < cs[j].SetCode
		}
		return cs[i].CardNumber < cs[j].CardNumber
	})
}
