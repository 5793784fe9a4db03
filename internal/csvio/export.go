package csvio

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mkeller/swu-tracker/backend/internal/models"
)

const exportHeader = "Name,Set,Number,Quantity,Foil"

// quoteCell wraps a cell in double quotes, doubling any embedded quotes.
// CSV-style escaping, not Go escaping.
func quoteCell(cell string) string {
	return `"` + strings.ReplaceAll(cell, `"`, `""`) + `"`
}

// quoteCellIfNeeded quotes only cells that would break tokenization bare.
func quoteCellIfNeeded(cell string) string {
	if !strings.ContainsAny(cell, ",\"\n") {
		return cell
	}
	return quoteCell(cell)
}

// GenerateCSV renders collection records in the interchange format accepted
// by ParseCSV. Names are always quoted since they routinely carry commas;
// rows are sorted so repeated exports of the same collection are
// byte-identical.
func GenerateCSV(records []models.CollectionRecord) string {
	rows := make([]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, fmt.Sprintf("%s,%s,%s,%d,%t",
			quoteCell(r.Name), quoteCellIfNeeded(r.SetCode), quoteCellIfNeeded(r.CardNumber), r.Quantity, r.Foil))
	}
	sort.Strings(rows)

	var b strings.Builder
	b.WriteString(exportHeader)
	b.WriteByte('\n')
	for _, row := range rows {
		b.WriteString(row)
		b.WriteByte('\n')
	}
	return b.String()
}
