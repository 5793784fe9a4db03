package models

import (
	"time"
)

type CardType string

const (
	CardTypeLeader  CardType = "Leader"
	CardTypeBase    CardType = "Base"
	CardTypeUnit    CardType = "Unit"
	CardTypeEvent   CardType = "Event"
	CardTypeUpgrade CardType = "Upgrade"
)

// IsLeaderOrBase reports whether the type is a deck cornerstone. Leaders and
// bases are limited to one copy per deck, which drives both the codec's type
// flag and the playset size used in collection statistics.
func (t CardType) IsLeaderOrBase() bool {
	return t == CardTypeLeader || t == CardTypeBase
}

type Card struct {
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	ID           string    `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"not null;index"`
	Subtitle     string    `json:"subtitle"`
	SetCode      string    `json:"set_code" gorm:"index"`
	CardNumber   string    `json:"card_number"`
	OfficialCode string    `json:"official_code" gorm:"index"` // printed code, e.g. SOR-042
	Rarity       string    `json:"rarity"`
	Type         CardType  `json:"type"`
	Aspects      []string  `json:"aspects" gorm:"serializer:json"`
}

// MatchType categorizes how a duplicate candidate was found.
type MatchType string

const (
	MatchExactCode      MatchType = "exact-code"
	MatchExactSetNumber MatchType = "exact-set-number"
	MatchFuzzyName      MatchType = "fuzzy-name"
)

// IsExact reports whether the match identifies the same physical card rather
// than a lookalike.
func (m MatchType) IsExact() bool {
	return m == MatchExactCode || m == MatchExactSetNumber
}

// DuplicateCandidate is one possible existing match for a submitted card.
// Candidates flag a submission for review; they never block it.
type DuplicateCandidate struct {
	Name         string    `json:"name"`
	Subtitle     string    `json:"subtitle,omitempty"`
	SetCode      string    `json:"set_code"`
	CardNumber   string    `json:"card_number"`
	OfficialCode string    `json:"official_code,omitempty"`
	MatchScore   float64   `json:"match_score"`
	MatchReason  string    `json:"match_reason"`
	MatchType    MatchType `json:"match_type"`
}

type CardSearchResult struct {
	Cards      []Card `json:"cards"`
	TotalCount int    `json:"total_count"`
}
