package collection

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/mkeller/swu-tracker/backend/internal/models"
)

// Snapshot is the owned collection indexed by collection key.
type Snapshot map[string]models.CollectionRecord

// SnapshotByKey indexes a list of collection records by their key. Later
// records win on duplicate keys, matching storage upsert behavior.
func SnapshotByKey(records []models.CollectionRecord) Snapshot {
	snap := make(Snapshot, len(records))
	for _, r := range records {
		snap[r.Key] = r
	}
	return snap
}

// ownedQuantity sums the standard and foil quantities held for one catalog
// card. Keys are built from the card's own set attribute.
func ownedQuantity(snap Snapshot, card models.Card) int {
	total := 0
	for _, foil := range []bool{false, true} {
		key, err := MakeKey(card.SetCode, card.CardNumber, foil)
		if err != nil {
			continue
		}
		if rec, ok := snap[key]; ok {
			total += rec.Quantity
		}
	}
	return total
}

// playsetSize is the number of copies that completes a playset. Leaders and
// bases are limited to one copy per deck; everything else runs three.
func playsetSize(t models.CardType) int {
	if t.IsLeaderOrBase() {
		return 1
	}
	return 3
}

// bucketKey groups catalog entries that are the same logical card. Variant
// printings share name and subtitle, so two entries with the same pair count
// as one unique card.
func bucketKey(card models.Card) string {
	return strings.ToLower(card.Name) + "\x00" + strings.ToLower(card.Subtitle)
}

// cardNumberLess orders card numbers numerically when both sides are plain
// integers, so "9" sorts before "10". Non-numeric numbers fall back to
// lexicographic order after every numeric one.
func cardNumberLess(a, b string) bool {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	switch {
	case aerr == nil && berr == nil:
		return ai < bi
	case aerr == nil:
		return true
	case berr == nil:
		return false
	default:
		return a < b
	}
}

// ComputeStats summarizes ownership of one set's catalog against the owned
// snapshot, or nil when the catalog slice is empty. Unique counting groups
// variant printings of the same card; quantities for every printing in a
// group accumulate toward its playset.
func ComputeStats(cards []models.Card, snap Snapshot) *models.CollectionStats {
	if len(cards) == 0 {
		return nil
	}

	type group struct {
		rep      models.Card
		playset  int
		quantity int
	}

	groups := make(map[string]*group)
	var order []string
	for _, card := range cards {
		k := bucketKey(card)
		g, ok := groups[k]
		if !ok {
			g = &group{rep: card, playset: playsetSize(card.Type)}
			groups[k] = g
			order = append(order, k)
		} else if cardNumberLess(card.CardNumber, g.rep.CardNumber) {
			// The lowest-numbered printing represents the group.
			g.rep = card
		}
		g.quantity += ownedQuantity(snap, card)
	}

	stats := &models.CollectionStats{
		TotalUniqueCards: len(groups),
		Missing:          []models.Card{},
	}
	for _, k := range order {
		g := groups[k]
		if g.quantity == 0 {
			stats.Missing = append(stats.Missing, g.rep)
			continue
		}
		stats.OwnedUniqueCount++
		stats.OwnedTotal += g.quantity
		if g.quantity >= g.playset {
			stats.PlaysetsCount++
		}
	}

	sort.Slice(stats.Missing, func(i, j int) bool {
		return cardNumberLess(stats.Missing[i].CardNumber, stats.Missing[j].CardNumber)
	})

	if stats.TotalUniqueCards > 0 {
		ratio := float64(stats.OwnedUniqueCount) / float64(stats.TotalUniqueCards)
		stats.PercentComplete = int(math.Round(ratio * 100))
	}
	return stats
}

// StatsBySet computes per-set statistics for every set in the catalog.
// Sets with no catalog entries are skipped rather than reported as 0/0.
func StatsBySet(catalog map[string][]models.Card, snap Snapshot) map[string]models.CollectionStats {
	summary := make(map[string]models.CollectionStats, len(catalog))
	for setCode, cards := range catalog {
		if stats := ComputeStats(cards, snap); stats != nil {
			summary[setCode] = *stats
		}
	}
	return summary
}

// GlobalSummary sums owned quantities grouped by each record's own set field.
// Unlike StatsBySet it needs no catalog, so sets without catalog entries
// still report their quantities. Records lacking a set are skipped, never
// attributed to a fallback set.
func GlobalSummary(snap Snapshot) map[string]int {
	summary := make(map[string]int)
	for _, rec := range snap {
		if rec.SetCode == "" {
			continue
		}
		summary[rec.SetCode] += rec.Quantity
	}
	return summary
}
