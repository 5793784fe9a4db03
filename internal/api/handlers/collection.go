package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm/clause"

	"github.com/mkeller/swu-tracker/backend/internal/collection"
	"github.com/mkeller/swu-tracker/backend/internal/csvio"
	"github.com/mkeller/swu-tracker/backend/internal/database"
	"github.com/mkeller/swu-tracker/backend/internal/metrics"
	"github.com/mkeller/swu-tracker/backend/internal/models"
	"github.com/mkeller/swu-tracker/backend/internal/services"
)

// CollectionHandler serves the owned-collection CRUD, statistics, and export.
type CollectionHandler struct {
	catalog *services.CatalogStore
}

func NewCollectionHandler(catalog *services.CatalogStore) *CollectionHandler {
	return &CollectionHandler{catalog: catalog}
}

// ListCollection returns owned records, optionally filtered by set.
// GET /api/collection?set=SOR
func (h *CollectionHandler) ListCollection(c *gin.Context) {
	db := database.GetDB()

	query := db.Order("key")
	if set := c.Query("set"); set != "" {
		query = query.Where("set_code = ?", strings.ToUpper(set))
	}

	var records []models.CollectionRecord
	if err := query.Find(&records).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "collection query failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"records": records, "total_count": len(records)})
}

// upsertRequest is the body for collection writes. The set must be the
// card's own set, not the set being browsed.
type upsertRequest struct {
	Set      string `json:"set" binding:"required"`
	Number   string `json:"number" binding:"required"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Foil     bool   `json:"foil"`
}

// UpsertEntry creates or replaces one owned record. A zero quantity removes
// the record.
// PUT /api/collection
func (h *CollectionHandler) UpsertEntry(c *gin.Context) {
	var req upsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload: " + err.Error()})
		return
	}
	if req.Quantity < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity cannot be negative"})
		return
	}

	key, err := collection.MakeKey(req.Set, req.Number, req.Foil)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	db := database.GetDB()

	if req.Quantity == 0 {
		if err := db.Delete(&models.CollectionRecord{}, "key = ?", key).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed: " + err.Error()})
			return
		}
		metrics.UpdateCollectionMetrics(db)
		c.JSON(http.StatusOK, gin.H{"key": key, "deleted": true})
		return
	}

	record := models.CollectionRecord{
		Key:        key,
		SetCode:    strings.ToUpper(strings.TrimSpace(req.Set)),
		CardNumber: strings.TrimSpace(req.Number),
		Name:       req.Name,
		Quantity:   req.Quantity,
		Foil:       req.Foil,
		UpdatedAt:  time.Now(),
	}
	if err := db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&record).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "write failed: " + err.Error()})
		return
	}

	metrics.UpdateCollectionMetrics(db)
	c.JSON(http.StatusOK, record)
}

// DeleteEntry removes one owned record by key.
// DELETE /api/collection/:key
func (h *CollectionHandler) DeleteEntry(c *gin.Context) {
	key := c.Param("key")
	if _, _, _, err := collection.ParseKey(key); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	db := database.GetDB()
	result := db.Delete(&models.CollectionRecord{}, "key = ?", key)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed: " + result.Error.Error()})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no record with that key"})
		return
	}

	metrics.UpdateCollectionMetrics(db)
	c.JSON(http.StatusOK, gin.H{"key": key, "deleted": true})
}

// GetStats reports completion statistics for one set.
// GET /api/collection/stats/:set
func (h *CollectionHandler) GetStats(c *gin.Context) {
	setCode := strings.ToUpper(c.Param("set"))

	cards, err := h.catalog.CardsBySet(c.Request.Context(), setCode)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "catalog query failed: " + err.Error()})
		return
	}
	if len(cards) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown set", "set": setCode})
		return
	}

	var records []models.CollectionRecord
	if err := database.GetDB().Find(&records).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "collection query failed: " + err.Error()})
		return
	}

	stats := collection.ComputeStats(cards, collection.SnapshotByKey(records))
	c.JSON(http.StatusOK, gin.H{"set": setCode, "stats": stats})
}

// GetSummary reports completion statistics for every set with catalog
// entries.
// GET /api/collection/summary
func (h *CollectionHandler) GetSummary(c *gin.Context) {
	catalog, err := h.catalog.CatalogBySets(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "catalog query failed: " + err.Error()})
		return
	}

	var records []models.CollectionRecord
	if err := database.GetDB().Find(&records).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "collection query failed: " + err.Error()})
		return
	}

	snap := collection.SnapshotByKey(records)
	summary := collection.StatsBySet(catalog, snap)

	// The missing lists make the global payload enormous; per-set stats
	// carry them instead.
	type setSummary struct {
		TotalUniqueCards int `json:"total_unique_cards"`
		OwnedUniqueCount int `json:"owned_unique_count"`
		OwnedTotal       int `json:"owned_total"`
		PlaysetsCount    int `json:"playsets_count"`
		PercentComplete  int `json:"percent_complete"`
	}
	out := make(map[string]setSummary, len(summary))
	for set, stats := range summary {
		out[set] = setSummary{
			TotalUniqueCards: stats.TotalUniqueCards,
			OwnedUniqueCount: stats.OwnedUniqueCount,
			OwnedTotal:       stats.OwnedTotal,
			PlaysetsCount:    stats.PlaysetsCount,
			PercentComplete:  stats.PercentComplete,
		}
	}

	// Raw quantity sums cover sets the catalog does not know about yet.
	c.JSON(http.StatusOK, gin.H{
		"sets":              out,
		"quantities_by_set": collection.GlobalSummary(snap),
	})
}

// ExportCSV streams the collection in the CSV interchange format.
// GET /api/collection/export
func (h *CollectionHandler) ExportCSV(c *gin.Context) {
	var records []models.CollectionRecord
	if err := database.GetDB().Find(&records).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "collection query failed: " + err.Error()})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="collection.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(csvio.GenerateCSV(records)))
}
