// Package analytics derives day buckets and rolling summaries from a
// transaction list. Every function is a pure transformation of its
// inputs: no internal state, safe for concurrent and repeated calls.
package analytics

import (
	"sort"
	"time"

	"chitieu/internal/core"
)

const dayKeyFormat = "2006-01-02"

// DayBucket aggregates the transactions of one calendar day.
type DayBucket struct {
	Date         string // YYYY-MM-DD
	ExpenseTotal int64
	IncomeTotal  int64
	ExpenseCount int
}

// Aggregator buckets transactions by calendar day in one fixed zone.
// Day boundaries are wall-clock boundaries of that zone, never the
// machine-local one, so bucket edges are deterministic everywhere.
type Aggregator struct {
	loc *time.Location
}

func New(loc *time.Location) *Aggregator {
	if loc == nil {
		loc = time.UTC
	}
	return &Aggregator{loc: loc}
}

func (a *Aggregator) dayKey(t time.Time) string {
	return t.In(a.loc).Format(dayKeyFormat)
}

// BucketByDay groups transactions by calendar day, ascending by date.
// Zero-amount transactions count toward ExpenseCount but add nothing to
// the sums.
func (a *Aggregator) BucketByDay(txs []core.Transaction) []DayBucket {
	byDay := make(map[string]*DayBucket)
	for _, tx := range txs {
		key := a.dayKey(tx.Date)
		b, ok := byDay[key]
		if !ok {
			b = &DayBucket{Date: key}
			byDay[key] = b
		}
		switch tx.Kind {
		case core.Expense:
			b.ExpenseTotal += tx.Amount
			b.ExpenseCount++
		case core.Income:
			b.IncomeTotal += tx.Amount
		}
	}

	out := make([]DayBucket, 0, len(byDay))
	for _, b := range byDay {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// LastNDays returns exactly n buckets ending at ref's calendar day
// inclusive, oldest first. Days without transactions yield zero-valued
// buckets, so the window length never depends on data sparsity.
func (a *Aggregator) LastNDays(txs []core.Transaction, n int, ref time.Time) []DayBucket {
	if n <= 0 {
		return []DayBucket{}
	}

	index := a.indexByDay(txs)
	local := ref.In(a.loc)

	out := make([]DayBucket, 0, n)
	for i := n - 1; i >= 0; i-- {
		day := time.Date(local.Year(), local.Month(), local.Day()-i, 0, 0, 0, 0, a.loc)
		key := day.Format(dayKeyFormat)
		if b, ok := index[key]; ok {
			out = append(out, b)
		} else {
			out = append(out, DayBucket{Date: key})
		}
	}
	return out
}

// MonthCalendar returns one bucket per calendar day of ref's month, from
// day 1 through the month's last day, gaps zero-filled.
func (a *Aggregator) MonthCalendar(txs []core.Transaction, ref time.Time) []DayBucket {
	index := a.indexByDay(txs)
	local := ref.In(a.loc)
	lastDay := time.Date(local.Year(), local.Month()+1, 0, 0, 0, 0, 0, a.loc).Day()

	out := make([]DayBucket, 0, lastDay)
	for day := 1; day <= lastDay; day++ {
		key := time.Date(local.Year(), local.Month(), day, 0, 0, 0, 0, a.loc).Format(dayKeyFormat)
		if b, ok := index[key]; ok {
			out = append(out, b)
		} else {
			out = append(out, DayBucket{Date: key})
		}
	}
	return out
}

// PeakSpendingDay returns the bucket with the strictly greatest positive
// expense total. Ties keep the earliest bucket. ok is false when no
// bucket has positive expense.
func PeakSpendingDay(buckets []DayBucket) (DayBucket, bool) {
	var peak DayBucket
	found := false
	for _, b := range buckets {
		if b.ExpenseTotal <= 0 {
			continue
		}
		if !found || b.ExpenseTotal > peak.ExpenseTotal {
			peak = b
			found = true
		}
	}
	return peak, found
}

func (a *Aggregator) indexByDay(txs []core.Transaction) map[string]DayBucket {
	buckets := a.BucketByDay(txs)
	index := make(map[string]DayBucket, len(buckets))
	for _, b := range buckets {
		index[b.Date] = b
	}
	return index
}
