package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mkeller/swu-tracker/backend/internal/database"
	"github.com/mkeller/swu-tracker/backend/internal/metrics"
	"github.com/mkeller/swu-tracker/backend/internal/models"
	"github.com/mkeller/swu-tracker/backend/internal/services"
)

// AdminHandler serves health checks and operator endpoints.
type AdminHandler struct {
	catalog *services.CatalogStore
}

func NewAdminHandler(catalog *services.CatalogStore) *AdminHandler {
	return &AdminHandler{catalog: catalog}
}

// Health reports liveness and database reachability.
// GET /health
func (h *AdminHandler) Health(c *gin.Context) {
	db := database.GetDB()
	if db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "not initialized"})
		return
	}

	sqlDB, err := db.DB()
	if err != nil || sqlDB.Ping() != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "unreachable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// RefreshMetrics recomputes the collection gauges on demand.
// POST /api/admin/metrics/refresh
func (h *AdminHandler) RefreshMetrics(c *gin.Context) {
	metrics.UpdateCollectionMetrics(database.GetDB())
	c.JSON(http.StatusOK, gin.H{"refreshed": true})
}

// LoadCatalog upserts a batch of catalog cards.
// POST /api/admin/catalog
func (h *AdminHandler) LoadCatalog(c *gin.Context) {
	var cards []models.Card
	if err := c.ShouldBindJSON(&cards); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid card list: " + err.Error()})
		return
	}
	if len(cards) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty card list"})
		return
	}

	if err := h.catalog.UpsertCards(c.Request.Context(), cards); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "catalog write failed: " + err.Error()})
		return
	}

	metrics.UpdateCollectionMetrics(database.GetDB())
	c.JSON(http.StatusOK, gin.H{"loaded": len(cards)})
}
