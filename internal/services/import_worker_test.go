package services

import (
	"strings"
	"testing"

	"github.com/mkeller/swu-tracker/backend/internal/models"
)

func TestRecordsForItems(t *testing.T) {
	items := []models.ImportItem{
		{Set: "SOR", Number: "005", Name: "Luke Skywalker", Quantity: 2},
		{Set: "SOR", Number: "005", Name: "Luke Skywalker", Quantity: 1, Foil: true},
		{Set: "SOR", Number: "005", Name: "Luke Skywalker", Quantity: 1}, // same key as the first
		{Set: "SHD", Number: "017", Name: "Boba Fett", Quantity: 3},
	}

	records, diagnostics := recordsForItems(items)

	if len(diagnostics) != 0 {
		t.Errorf("diagnostics = %v, want none", diagnostics)
	}
	if len(records) != 3 {
		t.Fatalf("len(records) = %d, want 3", len(records))
	}

	byKey := make(map[string]models.CollectionRecord)
	for _, r := range records {
		byKey[r.Key] = r
	}

	if got := byKey["SOR_005_std"].Quantity; got != 3 {
		t.Errorf("merged standard quantity = %d, want 3", got)
	}
	if got := byKey["SOR_005_foil"].Quantity; got != 1 {
		t.Errorf("foil quantity = %d, want 1", got)
	}
	if got := byKey["SHD_017_std"].Quantity; got != 3 {
		t.Errorf("SHD quantity = %d, want 3", got)
	}
}

func TestRecordsForItemsReportsBadRows(t *testing.T) {
	items := []models.ImportItem{
		{Set: "", Number: "005", Name: "No Set", Quantity: 1},
		{Set: "SOR", Number: "005", Name: "Luke Skywalker", Quantity: 1},
	}

	records, diagnostics := recordsForItems(items)

	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(records))
	}
	if len(diagnostics) != 1 || !strings.Contains(diagnostics[0], "No Set") {
		t.Errorf("diagnostics = %v, want one entry naming the bad row", diagnostics)
	}
}

func TestJobResponse(t *testing.T) {
	job := &models.ImportJob{
		ID:           "job-1",
		Status:       models.ImportStatusCompleted,
		Source:       "tracker-export",
		TotalRows:    10,
		ImportedRows: 8,
		Diagnostics:  `["line 3: bad quantity \"x\"","line 7: row is missing a name, set, or number"]`,
	}

	resp := JobResponse(job)

	if resp.ID != "job-1" || resp.Status != models.ImportStatusCompleted {
		t.Errorf("response identity = %+v", resp)
	}
	if len(resp.Diagnostics) != 2 {
		t.Errorf("diagnostics = %v, want 2 decoded entries", resp.Diagnostics)
	}
}

func TestJobResponseEmptyDiagnostics(t *testing.T) {
	resp := JobResponse(&models.ImportJob{ID: "job-2", Status: models.ImportStatusPending})
	if len(resp.Diagnostics) != 0 {
		t.Errorf("diagnostics = %v, want none", resp.Diagnostics)
	}
}
