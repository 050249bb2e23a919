package analytics

import (
	"time"

	"chitieu/internal/core"
)

// Summary holds rolling expense/income figures for a time window.
type Summary struct {
	TotalExpense    int64
	TotalIncome     int64
	AvgDailyExpense float64
	ExpenseCount    int
	IncomeCount     int
}

// WeeklySummary sums transactions dated within the 7 days before ref.
// The average divides by the fixed 7-day window, not by the number of
// days that actually saw spending.
func (a *Aggregator) WeeklySummary(txs []core.Transaction, ref time.Time) Summary {
	cutoff := ref.Add(-7 * 24 * time.Hour)

	var s Summary
	for _, tx := range txs {
		if tx.Date.Before(cutoff) {
			continue
		}
		switch tx.Kind {
		case core.Expense:
			s.TotalExpense += tx.Amount
			s.ExpenseCount++
		case core.Income:
			s.TotalIncome += tx.Amount
			s.IncomeCount++
		}
	}
	s.AvgDailyExpense = float64(s.TotalExpense) / 7
	return s
}

// MonthToDateSummary sums transactions of ref's calendar month from the
// 1st through ref's day inclusive. The average divides by the days
// elapsed so far in the month.
func (a *Aggregator) MonthToDateSummary(txs []core.Transaction, ref time.Time) Summary {
	local := ref.In(a.loc)

	var s Summary
	for _, tx := range txs {
		d := tx.Date.In(a.loc)
		if d.Year() != local.Year() || d.Month() != local.Month() || d.Day() > local.Day() {
			continue
		}
		switch tx.Kind {
		case core.Expense:
			s.TotalExpense += tx.Amount
			s.ExpenseCount++
		case core.Income:
			s.TotalIncome += tx.Amount
			s.IncomeCount++
		}
	}

	daysElapsed := local.Day()
	if daysElapsed > 31 {
		daysElapsed = 31
	}
	s.AvgDailyExpense = float64(s.TotalExpense) / float64(daysElapsed)
	return s
}
