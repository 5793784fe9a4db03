package database

import (
	"errors"
	"log"

	"gorm.io/gorm"

	"github.com/mkeller/swu-tracker/backend/internal/collection"
	"github.com/mkeller/swu-tracker/backend/internal/models"
)

// RunMigrations runs any custom data migrations after schema changes
func RunMigrations(db *gorm.DB) error {
	if err := rebuildMismatchedKeys(db); err != nil {
		return err
	}
	return nil
}

// rebuildMismatchedKeys repairs collection rows written by old clients that
// derived the key's set segment from the set being viewed instead of the
// card's own set. Safe to run multiple times: a row whose key already agrees
// with its set column is left alone.
func rebuildMismatchedKeys(db *gorm.DB) error {
	var records []models.CollectionRecord
	if err := db.Find(&records).Error; err != nil {
		return err
	}

	repaired := 0
	for _, rec := range records {
		keySet, _, _, err := collection.ParseKey(rec.Key)
		if err != nil {
			log.Printf("Warning: skipping undecodable collection key %q: %v", rec.Key, err)
			continue
		}
		if keySet == rec.SetCode {
			continue
		}

		newKey, err := collection.MakeKey(rec.SetCode, rec.CardNumber, rec.Foil)
		if err != nil {
			log.Printf("Warning: cannot rebuild key for %q: %v", rec.Key, err)
			continue
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			var existing models.CollectionRecord
			found := tx.Where("key = ?", newKey).First(&existing).Error
			if found == nil {
				// The correct row already exists; merge quantities into it.
				if err := tx.Model(&existing).Update("quantity", existing.Quantity+rec.Quantity).Error; err != nil {
					return err
				}
				return tx.Delete(&models.CollectionRecord{}, "key = ?", rec.Key).Error
			}
			if !errors.Is(found, gorm.ErrRecordNotFound) {
				return found
			}
			if err := tx.Delete(&models.CollectionRecord{}, "key = ?", rec.Key).Error; err != nil {
				return err
			}
			rec.Key = newKey
			return tx.Create(&rec).Error
		})
		if err != nil {
			log.Printf("Warning: failed to rebuild key %q: %v", rec.Key, err)
			continue
		}
		repaired++
	}

	if repaired > 0 {
		log.Printf("Rebuilt %d mismatched collection keys", repaired)
	}
	return nil
}
