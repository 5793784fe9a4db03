// Package services holds the long-lived application services: catalog access
// and the background CSV import worker.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mkeller/swu-tracker/backend/internal/cardcode"
	"github.com/mkeller/swu-tracker/backend/internal/models"
)

const catalogWriteBatchSize = 400

// CatalogStore provides card catalog reads and writes over the database.
// It satisfies the duplicate finder's lookup interface.
type CatalogStore struct {
	db *gorm.DB
}

func NewCatalogStore(db *gorm.DB) *CatalogStore {
	return &CatalogStore{db: db}
}

// FindByCode looks up a card by printed code, accepting the canonical form
// too. Returns (nil, nil) when no card matches.
func (s *CatalogStore) FindByCode(ctx context.Context, officialCode string) (*models.Card, error) {
	code := strings.ToUpper(strings.TrimSpace(officialCode))
	if cardcode.IsFullFormat(code) {
		printed, err := cardcode.FullToPrinted(code)
		if err == nil {
			code = printed
		}
	}

	var card models.Card
	err := s.db.WithContext(ctx).Where("official_code = ?", code).First(&card).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &card, nil
}

// FindBySetAndNumber looks up a card by its slot. Returns (nil, nil) when no
// card matches.
func (s *CatalogStore) FindBySetAndNumber(ctx context.Context, setCode, cardNumber string) (*models.Card, error) {
	var card models.Card
	err := s.db.WithContext(ctx).
		Where("set_code = ? AND card_number = ?", strings.ToUpper(setCode), cardNumber).
		First(&card).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &card, nil
}

// SearchByName returns up to limit cards whose names resemble the query,
// case-insensitive. The SQL filter is deliberately looser than a substring
// match: callers score the pool with edit distance, and a misspelled
// submission still has to reach that scoring.
func (s *CatalogStore) SearchByName(ctx context.Context, name string, limit int) ([]models.Card, error) {
	query := s.db.WithContext(ctx).Where("name LIKE ?", "%"+name+"%")
	if prefix := leadingToken(name); prefix != "" {
		query = s.db.WithContext(ctx).
			Where("name LIKE ? OR name LIKE ?", "%"+name+"%", prefix+"%")
	}

	var cards []models.Card
	if err := query.Limit(limit).Find(&cards).Error; err != nil {
		return nil, err
	}
	return cards, nil
}

// leadingToken is the first word of a name, shortened to at most four runes.
// Used as a LIKE prefix so a typo later in the name still pulls the real card
// into the candidate pool.
func leadingToken(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	runes := []rune(fields[0])
	if len(runes) > 4 {
		runes = runes[:4]
	}
	return string(runes)
}

// CardsBySet returns the full catalog for one set.
func (s *CatalogStore) CardsBySet(ctx context.Context, setCode string) ([]models.Card, error) {
	var cards []models.Card
	err := s.db.WithContext(ctx).
		Where("set_code = ?", strings.ToUpper(setCode)).
		Find(&cards).Error
	if err != nil {
		return nil, err
	}
	return cards, nil
}

// CatalogBySets returns the whole catalog grouped by set.
func (s *CatalogStore) CatalogBySets(ctx context.Context) (map[string][]models.Card, error) {
	var cards []models.Card
	if err := s.db.WithContext(ctx).Find(&cards).Error; err != nil {
		return nil, err
	}

	bySet := make(map[string][]models.Card)
	for _, c := range cards {
		bySet[c.SetCode] = append(bySet[c.SetCode], c)
	}
	return bySet, nil
}

// UpsertCards writes catalog entries in batches, replacing existing rows with
// the same ID. Cards missing an ID get one derived from their printed code.
func (s *CatalogStore) UpsertCards(ctx context.Context, cards []models.Card) error {
	for i := range cards {
		if cards[i].ID != "" {
			continue
		}
		full, err := cardcode.PrintedToFull(cards[i].OfficialCode, cards[i].Type)
		if err != nil {
			return fmt.Errorf("card %q: %w", cards[i].Name, err)
		}
		cards[i].ID = full
	}

	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		CreateInBatches(cards, catalogWriteBatchSize).Error
}
