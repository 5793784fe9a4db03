// Package csvio parses and generates the CSV interchange format used by
// third-party collection trackers. Headers vary wildly between exporters, so
// column detection is pattern-based rather than positional.
package csvio

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mkeller/swu-tracker/backend/internal/models"
)

var (
	// ErrEmptyInput is returned when the payload has no data rows.
	ErrEmptyInput = errors.New("csv has no data rows")
	// ErrMissingRequiredColumns is returned when the header lacks a name,
	// set, or number column. All three are required; quantity and foil are
	// the only optional columns.
	ErrMissingRequiredColumns = errors.New("name, set, or number column not recognized")
)

// Columns holds the detected index of each recognized column. -1 means the
// column is absent from the header.
type Columns struct {
	Name     int
	Set      int
	Number   int
	Quantity int
	Foil     int
}

// columnPatterns maps each field to its header patterns in priority order.
// Matching is case-insensitive substring: "Card Name" and "name" both bind
// the name column. Earlier patterns are more specific and win ties.
var columnPatterns = []struct {
	field    string
	patterns []string
}{
	{"name", []string{"name", "card name", "card", "title"}},
	{"set", []string{"set", "expansion", "edition"}},
	{"number", []string{"number", "collector number", "num", "no."}},
	{"quantity", []string{"quantity", "count", "qty", "amount"}},
	{"foil", []string{"foil", "finish", "printing", "variant"}},
}

// foilTokens are the cell values treated as "this row is a foil printing".
var foilTokens = map[string]bool{
	"foil": true,
	"f":    true,
	"1":    true,
	"yes":  true,
	"true": true,
}

// DetectColumns scans a header row and locates each recognized column. Each
// header cell binds to at most one field, and each field takes the first cell
// whose lowercased text contains one of its patterns. The error is
// ErrMissingRequiredColumns unless the name, set, and number columns were all
// located.
func DetectColumns(header []string) (Columns, error) {
	cols := Columns{Name: -1, Set: -1, Number: -1, Quantity: -1, Foil: -1}
	claimed := make(map[int]bool, len(header))

	for _, fp := range columnPatterns {
		idx := -1
	scan:
		for _, pattern := range fp.patterns {
			for i, cell := range header {
				if claimed[i] {
					continue
				}
				if strings.Contains(strings.ToLower(strings.TrimSpace(cell)), pattern) {
					idx = i
					break scan
				}
			}
		}
		if idx == -1 {
			continue
		}
		claimed[idx] = true
		switch fp.field {
		case "name":
			cols.Name = idx
		case "set":
			cols.Set = idx
		case "number":
			cols.Number = idx
		case "quantity":
			cols.Quantity = idx
		case "foil":
			cols.Foil = idx
		}
	}

	if cols.Name == -1 || cols.Set == -1 || cols.Number == -1 {
		return cols, ErrMissingRequiredColumns
	}
	return cols, nil
}

// SplitLine tokenizes one CSV line in a single pass. Cells may be wrapped in
// double quotes, inside which commas are literal and "" is an escaped quote.
func SplitLine(line string) []string {
	var (
		cells    []string
		cell     strings.Builder
		inQuotes bool
	)

	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case ch == '"':
			if inQuotes && i+1 < len(line) && line[i+1] == '"' {
				cell.WriteByte('"')
				i++
				continue
			}
			inQuotes = !inQuotes
		case ch == ',' && !inQuotes:
			cells = append(cells, strings.TrimSpace(cell.String()))
			cell.Reset()
		default:
			cell.WriteByte(ch)
		}
	}
	cells = append(cells, strings.TrimSpace(cell.String()))
	return cells
}

// cellAt returns the trimmed cell at idx, or "" when the row is too short.
func cellAt(cells []string, idx int) string {
	if idx < 0 || idx >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[idx])
}

// normalizeNumber left-pads purely numeric card numbers to three digits so
// imported rows line up with catalog numbering. Non-numeric numbers are kept
// verbatim.
func normalizeNumber(number string) string {
	if _, err := strconv.Atoi(number); err != nil {
		return number
	}
	for len(number) < 3 {
		number = "0" + number
	}
	return number
}

// ParseRow converts one data row into an import item. A non-empty reason
// explains why the row was skipped; it is diagnostic text, not an error.
func ParseRow(cells []string, cols Columns) (*models.ImportItem, string) {
	item := &models.ImportItem{
		Name:     cellAt(cells, cols.Name),
		Set:      strings.ToUpper(cellAt(cells, cols.Set)),
		Number:   normalizeNumber(cellAt(cells, cols.Number)),
		Quantity: 1,
	}

	if item.Name == "" || item.Set == "" || item.Number == "" {
		return nil, "row is missing a name, set, or number"
	}

	if qty := cellAt(cells, cols.Quantity); qty != "" {
		n, err := strconv.Atoi(qty)
		if err != nil {
			return nil, fmt.Sprintf("bad quantity %q", qty)
		}
		if n < 1 {
			return nil, fmt.Sprintf("quantity %d is not positive", n)
		}
		item.Quantity = n
	}

	item.Foil = foilTokens[strings.ToLower(cellAt(cells, cols.Foil))]
	return item, ""
}

// ParseCSV parses a full CSV payload into import items. Row-level problems
// are reported as "line N: reason" diagnostics and do not abort the import;
// only a missing header or an unrecognizable one does.
func ParseCSV(data string) ([]models.ImportItem, []string, error) {
	normalized := strings.ReplaceAll(data, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	lines := strings.Split(strings.TrimRight(normalized, "\n"), "\n")
	if len(lines) < 2 {
		return nil, nil, ErrEmptyInput
	}

	cols, err := DetectColumns(SplitLine(lines[0]))
	if err != nil {
		return nil, nil, fmt.Errorf("header %q: %w", lines[0], err)
	}

	var (
		items       []models.ImportItem
		diagnostics []string
	)
	for i, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		item, reason := ParseRow(SplitLine(line), cols)
		if item == nil {
			// Header is line 1, so data line i is file line i+2.
			diagnostics = append(diagnostics, fmt.Sprintf("line %d: %s", i+2, reason))
			continue
		}
		items = append(items, *item)
	}
	return items, diagnostics, nil
}
