package analytics

import (
	"testing"
	"time"

	"chitieu/internal/core"
)

func TestWeeklySummaryFixedDivisor(t *testing.T) {
	a := New(time.UTC)
	ref := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	txs := []core.Transaction{
		tx(core.Expense, 700, ref.Add(-24*time.Hour)),
		tx(core.Expense, 700, ref.Add(-48*time.Hour)),
		tx(core.Income, 5_000, ref.Add(-72*time.Hour)),
		tx(core.Expense, 999, ref.Add(-8*24*time.Hour)), // outside window
	}

	s := a.WeeklySummary(txs, ref)
	if s.TotalExpense != 1400 || s.ExpenseCount != 2 {
		t.Fatalf("expense total/count = %d/%d", s.TotalExpense, s.ExpenseCount)
	}
	if s.TotalIncome != 5_000 || s.IncomeCount != 1 {
		t.Fatalf("income total/count = %d/%d", s.TotalIncome, s.IncomeCount)
	}
	// Per calendar day, not per active day.
	if want := float64(1400) / 7; s.AvgDailyExpense != want {
		t.Fatalf("avg daily expense = %v, want %v", s.AvgDailyExpense, want)
	}
}

func TestWeeklySummaryEmpty(t *testing.T) {
	a := New(time.UTC)
	s := a.WeeklySummary(nil, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC))
	if s.TotalExpense != 0 || s.AvgDailyExpense != 0 || s.ExpenseCount != 0 {
		t.Fatalf("empty summary = %+v", s)
	}
}

func TestMonthToDateSummary(t *testing.T) {
	a := New(time.UTC)
	ref := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	txs := []core.Transaction{
		tx(core.Expense, 100, time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)),
		tx(core.Expense, 200, time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)),
		tx(core.Expense, 999, time.Date(2025, 6, 11, 9, 0, 0, 0, time.UTC)), // after ref day
		tx(core.Expense, 999, time.Date(2025, 5, 31, 9, 0, 0, 0, time.UTC)), // previous month
		tx(core.Income, 4_000, time.Date(2025, 6, 5, 9, 0, 0, 0, time.UTC)),
	}

	s := a.MonthToDateSummary(txs, ref)
	if s.TotalExpense != 300 || s.ExpenseCount != 2 {
		t.Fatalf("expense total/count = %d/%d", s.TotalExpense, s.ExpenseCount)
	}
	if s.TotalIncome != 4_000 || s.IncomeCount != 1 {
		t.Fatalf("income total/count = %d/%d", s.TotalIncome, s.IncomeCount)
	}
	if want := float64(300) / 10; s.AvgDailyExpense != want {
		t.Fatalf("avg daily expense = %v, want %v (10 days elapsed)", s.AvgDailyExpense, want)
	}
}

func TestMonthToDateIncludesRefDayTransactionsAfterRefTime(t *testing.T) {
	a := New(time.UTC)
	ref := time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)

	// Same calendar day but later wall-clock time still counts: the
	// window is day-granular, 1st through ref's day inclusive.
	txs := []core.Transaction{
		tx(core.Expense, 50, time.Date(2025, 6, 10, 23, 0, 0, 0, time.UTC)),
	}
	if s := a.MonthToDateSummary(txs, ref); s.TotalExpense != 50 {
		t.Fatalf("total = %d, want 50", s.TotalExpense)
	}
}
