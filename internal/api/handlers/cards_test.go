package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/mkeller/swu-tracker/backend/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubCatalog serves the cards handler from a fixed card list.
type stubCatalog struct {
	cards []models.Card
}

func (s *stubCatalog) FindByCode(_ context.Context, code string) (*models.Card, error) {
	for i := range s.cards {
		if strings.EqualFold(s.cards[i].OfficialCode, code) {
			return &s.cards[i], nil
		}
	}
	return nil, nil
}

func (s *stubCatalog) FindBySetAndNumber(_ context.Context, set, number string) (*models.Card, error) {
	for i := range s.cards {
		if strings.EqualFold(s.cards[i].SetCode, set) && s.cards[i].CardNumber == number {
			return &s.cards[i], nil
		}
	}
	return nil, nil
}

func (s *stubCatalog) SearchByName(_ context.Context, name string, limit int) ([]models.Card, error) {
	var out []models.Card
	for _, c := range s.cards {
		if strings.Contains(strings.ToLower(c.Name), strings.ToLower(name)) {
			out = append(out, c)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *stubCatalog) CardsBySet(_ context.Context, set string) ([]models.Card, error) {
	var out []models.Card
	for _, c := range s.cards {
		if strings.EqualFold(c.SetCode, set) {
			out = append(out, c)
		}
	}
	return out, nil
}

func testRouter(catalog *stubCatalog) *gin.Engine {
	h := NewCardsHandler(catalog)
	router := gin.New()
	router.GET("/api/cards", h.ListCards)
	router.GET("/api/cards/resolve/:code", h.ResolveCode)
	router.POST("/api/cards/check-duplicates", h.CheckDuplicates)
	return router
}

func TestResolveCode(t *testing.T) {
	router := testRouter(&stubCatalog{cards: []models.Card{
		{
			ID: "01011005", Name: "Luke Skywalker", SetCode: "SOR",
			CardNumber: "005", OfficialCode: "SOR-005", Type: models.CardTypeLeader,
		},
	}})

	tests := []struct {
		name       string
		code       string
		wantStatus int
		wantFull   string
	}{
		{name: "printed code with catalog entry", code: "SOR-005", wantStatus: http.StatusOK, wantFull: "01011005"},
		{name: "canonical code", code: "01010042", wantStatus: http.StatusOK, wantFull: "01010042"},
		{name: "printed code without catalog entry", code: "SHD-100", wantStatus: http.StatusOK, wantFull: "02010100"},
		{name: "unrecognized code", code: "garbage", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/cards/resolve/"+tt.code, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d; body %s", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			var resp map[string]interface{}
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("bad response JSON: %v", err)
			}
			if got := resp["full_code"]; got != tt.wantFull {
				t.Errorf("full_code = %v, want %q", got, tt.wantFull)
			}
		})
	}
}

func TestResolveCodeUsesCatalogTypeFlag(t *testing.T) {
	// The printed code alone cannot tell a Leader from a Unit. When the
	// catalog knows the card, the canonical code must carry the flag.
	router := testRouter(&stubCatalog{cards: []models.Card{
		{Name: "Luke Skywalker", SetCode: "SOR", CardNumber: "005",
			OfficialCode: "SOR-005", Type: models.CardTypeLeader},
	}})

	req := httptest.NewRequest(http.MethodGet, "/api/cards/resolve/SOR-005", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response JSON: %v", err)
	}
	if got := resp["full_code"]; got != "01011005" {
		t.Errorf("full_code = %v, want the Leader-flagged 01011005", got)
	}
	if resp["card"] == nil {
		t.Error("catalog entry should be attached")
	}
}

func TestCheckDuplicates(t *testing.T) {
	router := testRouter(&stubCatalog{cards: []models.Card{
		{Name: "Chewbacca", SetCode: "SOR", CardNumber: "100", OfficialCode: "SOR-100"},
	}})

	t.Run("exact code match", func(t *testing.T) {
		body, _ := json.Marshal(models.Card{Name: "Chewbacca", OfficialCode: "SOR-100"})
		req := httptest.NewRequest(http.MethodPost, "/api/cards/check-duplicates", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
		}

		var resp struct {
			Candidates []models.DuplicateCandidate `json:"candidates"`
			HasExact   bool                        `json:"has_exact"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("bad response JSON: %v", err)
		}
		if !resp.HasExact {
			t.Error("has_exact = false, want true")
		}
		if len(resp.Candidates) != 1 || resp.Candidates[0].MatchScore != 1.0 {
			t.Errorf("candidates = %+v, want one exact match", resp.Candidates)
		}
	})

	t.Run("fuzzy match is not exact", func(t *testing.T) {
		body, _ := json.Marshal(models.Card{Name: "Chewbaca"})
		req := httptest.NewRequest(http.MethodPost, "/api/cards/check-duplicates", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		var resp struct {
			Candidates []models.DuplicateCandidate `json:"candidates"`
			HasExact   bool                        `json:"has_exact"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("bad response JSON: %v", err)
		}
		if resp.HasExact {
			t.Error("has_exact = true for a fuzzy-only match")
		}
		if len(resp.Candidates) != 1 || resp.Candidates[0].MatchScore > 0.99 {
			t.Errorf("candidates = %+v, want one capped fuzzy match", resp.Candidates)
		}
	})

	t.Run("empty submission rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/cards/check-duplicates", strings.NewReader("{}"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})
}

func TestListCards(t *testing.T) {
	router := testRouter(&stubCatalog{cards: []models.Card{
		{Name: "Luke Skywalker", SetCode: "SOR", CardNumber: "005"},
		{Name: "Boba Fett", SetCode: "SHD", CardNumber: "017"},
	}})

	t.Run("by set", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/cards?set=SOR", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		var resp models.CardSearchResult
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("bad response JSON: %v", err)
		}
		if resp.TotalCount != 1 || resp.Cards[0].Name != "Luke Skywalker" {
			t.Errorf("result = %+v, want the single SOR card", resp)
		}
	})

	t.Run("by search", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/cards?search=fett", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		var resp models.CardSearchResult
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("bad response JSON: %v", err)
		}
		if resp.TotalCount != 1 || resp.Cards[0].Name != "Boba Fett" {
			t.Errorf("result = %+v, want Boba Fett", resp)
		}
	})

	t.Run("no filter rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/cards", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})
}
