package services

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mkeller/swu-tracker/backend/internal/dedupe"
	"github.com/mkeller/swu-tracker/backend/internal/models"
)

func testCatalogStore(t *testing.T, cards []models.Card) *CatalogStore {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	if err := db.AutoMigrate(&models.Card{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if len(cards) > 0 {
		if err := db.Create(&cards).Error; err != nil {
			t.Fatalf("seed catalog: %v", err)
		}
	}
	return NewCatalogStore(db)
}

func seedCards() []models.Card {
	return []models.Card{
		{ID: "01010005", Name: "Luke Skywalker", SetCode: "SOR", CardNumber: "005", OfficialCode: "SOR-005", Type: models.CardTypeUnit},
		{ID: "01010198", Name: "Chewbacca", SetCode: "SOR", CardNumber: "198", OfficialCode: "SOR-198", Type: models.CardTypeUnit},
		{ID: "01010042", Name: "Snowspeeder", SetCode: "SOR", CardNumber: "042", OfficialCode: "SOR-042", Type: models.CardTypeUnit},
	}
}

func TestSearchByNameToleratesTypos(t *testing.T) {
	store := testCatalogStore(t, seedCards())

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{name: "exact substring", query: "Skywalker", want: "Luke Skywalker"},
		{name: "typo in a later word", query: "Luke Skywalkr", want: "Luke Skywalker"},
		{name: "dropped letter in one word", query: "Chewbaca", want: "Chewbacca"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cards, err := store.SearchByName(context.Background(), tt.query, 10)
			if err != nil {
				t.Fatalf("SearchByName error: %v", err)
			}
			for _, c := range cards {
				if c.Name == tt.want {
					return
				}
			}
			t.Errorf("SearchByName(%q) pool %v does not contain %q", tt.query, cards, tt.want)
		})
	}
}

// A misspelled submission has no exact code or slot, so it must surface as a
// fuzzy candidate through the store-backed pool.
func TestFindDuplicatesThroughStoreWithMisspelledName(t *testing.T) {
	store := testCatalogStore(t, seedCards())
	finder := dedupe.NewFinder(store)

	candidates, err := finder.FindDuplicates(context.Background(), models.Card{Name: "Luke Skywalkr"})
	if err != nil {
		t.Fatalf("FindDuplicates error: %v", err)
	}

	if len(candidates) != 1 {
		t.Fatalf("got %d candidates, want 1: %+v", len(candidates), candidates)
	}
	got := candidates[0]
	if got.Name != "Luke Skywalker" || got.MatchType != models.MatchFuzzyName {
		t.Errorf("candidate = %+v, want fuzzy match on Luke Skywalker", got)
	}
	if got.MatchScore < 0.85 || got.MatchScore > 0.99 {
		t.Errorf("MatchScore = %v, want within [0.85, 0.99]", got.MatchScore)
	}
}

func TestFindByCodeAcceptsCanonicalForm(t *testing.T) {
	store := testCatalogStore(t, seedCards())

	card, err := store.FindByCode(context.Background(), "01010005")
	if err != nil {
		t.Fatalf("FindByCode error: %v", err)
	}
	if card == nil || card.Name != "Luke Skywalker" {
		t.Errorf("card = %+v, want Luke Skywalker", card)
	}

	missing, err := store.FindByCode(context.Background(), "SOR-999")
	if err != nil {
		t.Fatalf("FindByCode error: %v", err)
	}
	if missing != nil {
		t.Errorf("card = %+v, want nil for an uncataloged code", missing)
	}
}

func TestLeadingToken(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Luke Skywalker", "Luke"},
		{"Rey", "Rey"},
		{"  padded   name  ", "padd"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		if got := leadingToken(tt.name); got != tt.want {
			t.Errorf("leadingToken(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
