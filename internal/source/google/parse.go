package google

import (
	"fmt"
	"strings"
	"time"

	"chitieu/internal/core"
)

// parseRow converts one sheet row into a transaction.
// Expected columns: A=id, B=kind, C=amount, D=category key, E=date
// (YYYY-MM-DD or RFC3339). Dates without an offset are interpreted in
// the configured zone.
func parseRow(row []interface{}, loc *time.Location) (core.Transaction, error) {
	cells := toStrings(row)
	if len(cells) < 5 {
		return core.Transaction{}, fmt.Errorf("expected 5 cells, got %d", len(cells))
	}

	amount, err := core.ParseAmount(cells[2])
	if err != nil {
		return core.Transaction{}, fmt.Errorf("amount %q: %w", cells[2], err)
	}

	dateStr := strings.TrimSpace(cells[4])
	date, err := time.Parse(time.RFC3339, dateStr)
	if err != nil {
		date, err = time.ParseInLocation("2006-01-02", dateStr, loc)
		if err != nil {
			return core.Transaction{}, fmt.Errorf("date %q: %w", dateStr, err)
		}
	}

	tx := core.Transaction{
		ID:       strings.TrimSpace(cells[0]),
		Kind:     core.TxKind(strings.ToLower(strings.TrimSpace(cells[1]))),
		Amount:   amount,
		Category: core.CategoryID(strings.TrimSpace(cells[3])),
		Date:     date,
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

func toStrings(row []interface{}) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = fmt.Sprintf("%v", v)
	}
	return out
}
