// Package handlers implements the HTTP API surface.
package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mkeller/swu-tracker/backend/internal/cardcode"
	"github.com/mkeller/swu-tracker/backend/internal/dedupe"
	"github.com/mkeller/swu-tracker/backend/internal/metrics"
	"github.com/mkeller/swu-tracker/backend/internal/models"
)

const defaultSearchLimit = 50

// CardCatalog is the catalog surface the cards handler needs. CatalogStore
// satisfies it.
type CardCatalog interface {
	dedupe.CatalogLookup
	CardsBySet(ctx context.Context, setCode string) ([]models.Card, error)
}

// CardsHandler serves catalog queries, code resolution, and duplicate checks.
type CardsHandler struct {
	catalog CardCatalog
	finder  *dedupe.Finder
}

func NewCardsHandler(catalog CardCatalog) *CardsHandler {
	return &CardsHandler{
		catalog: catalog,
		finder:  dedupe.NewFinder(catalog),
	}
}

// ListCards returns catalog cards, filtered by set and/or name search.
// GET /api/cards?set=SOR&search=luke&limit=50
func (h *CardsHandler) ListCards(c *gin.Context) {
	limit := defaultSearchLimit
	if raw := c.Query("limit"); raw != "" {
		if val, err := strconv.Atoi(raw); err == nil && val > 0 && val <= 500 {
			limit = val
		}
	}

	var (
		cards []models.Card
		err   error
	)
	switch {
	case c.Query("search") != "":
		cards, err = h.catalog.SearchByName(c.Request.Context(), c.Query("search"), limit)
	case c.Query("set") != "":
		cards, err = h.catalog.CardsBySet(c.Request.Context(), c.Query("set"))
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "provide a set or search parameter"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "catalog query failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.CardSearchResult{Cards: cards, TotalCount: len(cards)})
}

// ResolveCode decodes a printed or canonical card code and returns both
// representations plus the catalog entry when one exists.
// GET /api/cards/resolve/:code
func (h *CardsHandler) ResolveCode(c *gin.Context) {
	raw := strings.TrimSpace(c.Param("code"))

	identity := cardcode.Parse(raw)
	if identity == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unrecognized card code", "code": raw})
		return
	}

	resp := gin.H{
		"identity":    identity,
		"special_set": cardcode.IsSpecialSet(identity.SetCode),
	}

	if cardcode.IsFullFormat(raw) {
		printed, err := cardcode.FullToPrinted(raw)
		if err == nil {
			resp["printed_code"] = printed
			resp["full_code"] = strings.ToUpper(strings.TrimSpace(raw))
		}
	} else {
		// Leader/Base status is unknown from the printed code alone; the
		// flag is settled once the catalog entry is attached below.
		full, err := cardcode.PrintedToFull(raw, "")
		if err == nil {
			resp["full_code"] = full
		}
	}

	if card, err := h.catalog.FindByCode(c.Request.Context(), raw); err == nil && card != nil {
		resp["card"] = card
		if full, err := cardcode.PrintedToFull(card.OfficialCode, card.Type); err == nil {
			resp["full_code"] = full
		}
	}

	c.JSON(http.StatusOK, resp)
}

// CheckDuplicates reports likely existing matches for a submitted card.
// POST /api/cards/check-duplicates
func (h *CardsHandler) CheckDuplicates(c *gin.Context) {
	var card models.Card
	if err := c.ShouldBindJSON(&card); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid card payload: " + err.Error()})
		return
	}
	if card.Name == "" && card.OfficialCode == "" && (card.SetCode == "" || card.CardNumber == "") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "card needs a name, a code, or a set and number"})
		return
	}

	candidates, err := h.finder.FindDuplicates(c.Request.Context(), card)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "duplicate check failed: " + err.Error()})
		return
	}

	result := "none"
	if len(candidates) > 0 {
		result = string(candidates[0].MatchType)
	}
	metrics.DuplicateChecksTotal.WithLabelValues(result).Inc()

	c.JSON(http.StatusOK, gin.H{
		"candidates": candidates,
		"has_exact":  len(candidates) > 0 && candidates[0].MatchType.IsExact(),
	})
}
