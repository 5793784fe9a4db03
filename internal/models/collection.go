package models

import (
	"time"
)

// CollectionRecord is one owned (set, number, foil) entry. The Key column is
// the collection key string and is the only identity that round-trips through
// storage; everything else is denormalized for display and export.
type CollectionRecord struct {
	Key        string    `json:"key" gorm:"primaryKey"`
	SetCode    string    `json:"set" gorm:"index"`
	CardNumber string    `json:"number"`
	Name       string    `json:"name"`
	Quantity   int       `json:"quantity"`
	Foil       bool      `json:"foil"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CollectionStats summarizes ownership of one set against the catalog.
type CollectionStats struct {
	TotalUniqueCards int    `json:"total_unique_cards"`
	OwnedUniqueCount int    `json:"owned_unique_count"`
	OwnedTotal       int    `json:"owned_total"`
	PlaysetsCount    int    `json:"playsets_count"`
	PercentComplete  int    `json:"percent_complete"`
	Missing          []Card `json:"missing"`
}
