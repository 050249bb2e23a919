package google

import (
	"testing"
	"time"

	"chitieu/internal/core"
)

func row(cells ...interface{}) []interface{} { return cells }

func TestParseRow(t *testing.T) {
	hcm := time.FixedZone("UTC+7", 7*3600)

	cases := []struct {
		name    string
		row     []interface{}
		wantErr bool
		check   func(t *testing.T, tx core.Transaction)
	}{
		{
			name: "expense with plain date",
			row:  row("t1", "expense", "1.200.000", "eating", "2025-06-01"),
			check: func(t *testing.T, tx core.Transaction) {
				if tx.Amount != 1_200_000 || tx.Category != core.CategoryEating {
					t.Fatalf("tx = %+v", tx)
				}
				if tx.Date.Location() != hcm {
					t.Fatal("plain date must be parsed in the configured zone")
				}
			},
		},
		{
			name: "income with RFC3339 date",
			row:  row("t2", "Income", "9000000", "", "2025-06-02T08:30:00+07:00"),
			check: func(t *testing.T, tx core.Transaction) {
				if tx.Kind != core.Income {
					t.Fatalf("kind = %s", tx.Kind)
				}
			},
		},
		{name: "too few cells", row: row("t3", "expense", "100"), wantErr: true},
		{name: "bad amount", row: row("t4", "expense", "12x", "other", "2025-06-01"), wantErr: true},
		{name: "bad date", row: row("t5", "expense", "100", "other", "june first"), wantErr: true},
		{name: "bad kind", row: row("t6", "transfer", "100", "other", "2025-06-01"), wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tx, err := parseRow(tc.row, hcm)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", tx)
				}
				return
			}
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			tc.check(t, tx)
		})
	}
}
