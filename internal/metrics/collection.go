package metrics

import (
	"log"

	"gorm.io/gorm"

	"github.com/mkeller/swu-tracker/backend/internal/models"
)

// UpdateCollectionMetrics queries the database and updates collection-related Prometheus metrics.
// Call this after collection changes or periodically.
func UpdateCollectionMetrics(db *gorm.DB) {
	if db == nil {
		return
	}

	// Total copies owned
	var totalCards int64
	if err := db.Model(&models.CollectionRecord{}).Select("COALESCE(SUM(quantity), 0)").Scan(&totalCards).Error; err != nil {
		log.Printf("Metrics: failed to count collection cards: %v", err)
	} else {
		CollectionCardsTotal.Set(float64(totalCards))
	}

	// Copies by set
	type setCount struct {
		SetCode  string
		Quantity int64
	}
	var setCounts []setCount
	if err := db.Model(&models.CollectionRecord{}).
		Select("set_code, COALESCE(SUM(quantity), 0) as quantity").
		Group("set_code").
		Scan(&setCounts).Error; err != nil {
		log.Printf("Metrics: failed to count cards by set: %v", err)
	} else {
		for _, sc := range setCounts {
			CollectionCardsBySet.WithLabelValues(sc.SetCode).Set(float64(sc.Quantity))
		}
	}

	// Card database size
	var cardCount int64
	if err := db.Model(&models.Card{}).Count(&cardCount).Error; err != nil {
		log.Printf("Metrics: failed to count cards: %v", err)
	} else {
		CardDatabaseSize.Set(float64(cardCount))
	}
}
