package budget

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"chitieu/internal/core"
	memkv "chitieu/internal/kv/memory"
)

func newTestStore(t *testing.T) (*Store, *memkv.Store) {
	t.Helper()
	mem := memkv.New()
	s := NewStore(mem, nil)
	if err := s.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return s, mem
}

func expense(id string, amount int64, cat core.CategoryID, date time.Time) core.Transaction {
	return core.Transaction{ID: id, Kind: core.Expense, Amount: amount, Category: cat, Date: date}
}

var day1 = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func TestInitializeFreshTotalsAreZero(t *testing.T) {
	s, _ := newTestStore(t)

	if got := s.Totals(); got != (Totals{}) {
		t.Fatalf("fresh totals = %+v, want all zero", got)
	}
	if got := len(s.CategoryStatus()); got != 8 {
		t.Fatalf("expected 8 category statuses, got %d", got)
	}
}

func TestInitializeIsIdempotent(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	if err := s.SetMonthlyLimit(ctx, core.CategoryEating, 1_000_000); err != nil {
		t.Fatalf("set limit: %v", err)
	}
	if err := s.Initialize(ctx); err != nil {
		t.Fatalf("second initialize: %v", err)
	}

	st := s.CategoryStatus()[0]
	if st.MonthlyLimit != 1_000_000 {
		t.Fatalf("limit lost across initialize: %d", st.MonthlyLimit)
	}
	if st.Spent != 0 {
		t.Fatalf("spent must be forced to zero, got %d", st.Spent)
	}
}

func TestInitializeIgnoresPersistedSpent(t *testing.T) {
	ctx := context.Background()
	mem := memkv.New()

	first := NewStore(mem, nil)
	if err := first.Initialize(ctx); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	txs := []core.Transaction{expense("t1", 700_000, core.CategoryEating, day1)}
	if err := first.RecomputeSpending(ctx, txs); err != nil {
		t.Fatalf("recompute: %v", err)
	}

	// A new store over the same blob must not trust the stored spent.
	second := NewStore(mem, nil)
	if err := second.Initialize(ctx); err != nil {
		t.Fatalf("re-initialize: %v", err)
	}
	if got := second.Totals().TotalSpent; got != 0 {
		t.Fatalf("spent rederived from storage: got %d, want 0", got)
	}
}

func TestInitializeMalformedBlobRecreatesDefaults(t *testing.T) {
	ctx := context.Background()
	mem := memkv.New()
	if err := mem.Set(ctx, BlobKey, "{not json"); err != nil {
		t.Fatalf("seed blob: %v", err)
	}

	s := NewStore(mem, nil)
	if err := s.Initialize(ctx); err != nil {
		t.Fatalf("initialize over malformed blob must not fail: %v", err)
	}
	if got := len(s.CategoryStatus()); got != 8 {
		t.Fatalf("expected defaults recreated, got %d categories", got)
	}
}

func TestSetMonthlyLimitValidation(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	if err := s.SetMonthlyLimit(ctx, core.CategoryEating, -1); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("negative limit: got %v, want ErrInvalidAmount", err)
	}
	if err := s.SetMonthlyLimit(ctx, "groceries", 100); !errors.Is(err, core.ErrUnknownCategory) {
		t.Fatalf("unknown category: got %v, want ErrUnknownCategory", err)
	}
	if err := s.SetMonthlyLimit(ctx, core.CategoryEating, 0); err != nil {
		t.Fatalf("zero limit means no limit and is valid: %v", err)
	}
}

func TestOverBudgetStatusAndWarning(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	if err := s.SetMonthlyLimit(ctx, core.CategoryEating, 1_000_000); err != nil {
		t.Fatalf("set limit: %v", err)
	}
	txs := []core.Transaction{
		expense("t1", 900_000, core.CategoryEating, day1),
		expense("t2", 300_000, core.CategoryEating, day1),
	}
	if err := s.RecomputeSpending(ctx, txs); err != nil {
		t.Fatalf("recompute: %v", err)
	}

	st := s.CategoryStatus()[0]
	if st.Category.ID != core.CategoryEating {
		t.Fatalf("unexpected first category %s", st.Category.ID)
	}
	if st.MonthlyLimit != 1_000_000 || st.Spent != 1_200_000 {
		t.Fatalf("limit/spent = %d/%d", st.MonthlyLimit, st.Spent)
	}
	if st.Percentage != 100 {
		t.Fatalf("percentage must clamp at 100, got %v", st.Percentage)
	}
	if st.Remaining != 0 {
		t.Fatalf("remaining must clamp at 0, got %d", st.Remaining)
	}
	if !st.IsOverBudget {
		t.Fatal("isOverBudget must be true when spent > limit")
	}

	sev, err := s.Warning(core.CategoryEating)
	if err != nil {
		t.Fatalf("warning: %v", err)
	}
	if sev != SeverityDanger {
		t.Fatalf("severity = %s, want danger", sev)
	}
}

func TestWarningThresholds(t *testing.T) {
	cases := []struct {
		name  string
		limit int64
		spent int64
		want  Severity
	}{
		{"no limit never warns", 0, 5_000_000, SeverityNone},
		{"below info", 1_000_000, 799_999, SeverityNone},
		{"info at 80", 1_000_000, 800_000, SeverityInfo},
		{"warning at 90", 1_000_000, 900_000, SeverityWarning},
		{"danger at 100", 1_000_000, 1_000_000, SeverityDanger},
		{"danger past 100", 1_000_000, 2_500_000, SeverityDanger},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, _ := newTestStore(t)
			ctx := context.Background()
			if err := s.SetMonthlyLimit(ctx, core.CategoryBills, tc.limit); err != nil {
				t.Fatalf("set limit: %v", err)
			}
			txs := []core.Transaction{expense("t1", tc.spent, core.CategoryBills, day1)}
			if err := s.RecomputeSpending(ctx, txs); err != nil {
				t.Fatalf("recompute: %v", err)
			}
			sev, err := s.Warning(core.CategoryBills)
			if err != nil {
				t.Fatalf("warning: %v", err)
			}
			if sev != tc.want {
				t.Errorf("severity = %s, want %s", sev, tc.want)
			}
		})
	}

	s, _ := newTestStore(t)
	if _, err := s.Warning("groceries"); !errors.Is(err, core.ErrUnknownCategory) {
		t.Fatalf("unknown category warning: got %v", err)
	}
}

func TestRecomputeSpendingIsIdempotent(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	if err := s.SetMonthlyLimit(ctx, core.CategoryTransport, 500_000); err != nil {
		t.Fatalf("set limit: %v", err)
	}
	txs := []core.Transaction{
		expense("t1", 120_000, core.CategoryTransport, day1),
		expense("t2", 80_000, core.CategoryEating, day1),
		{ID: "t3", Kind: core.Income, Amount: 9_000_000, Date: day1},
	}

	if err := s.RecomputeSpending(ctx, txs); err != nil {
		t.Fatalf("first recompute: %v", err)
	}
	first := s.CategoryStatus()
	if err := s.RecomputeSpending(ctx, txs); err != nil {
		t.Fatalf("second recompute: %v", err)
	}
	second := s.CategoryStatus()

	if !reflect.DeepEqual(first, second) {
		t.Fatal("recomputing with identical input changed the status")
	}
	if first[2].Spent != 120_000 {
		t.Fatalf("transport spent = %d, want 120000", first[2].Spent)
	}
}

func TestRecomputeIgnoresUnknownCategoriesAndIncome(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	txs := []core.Transaction{
		expense("t1", 50_000, "groceries", day1), // unknown: invisible, not an error
		expense("t2", 0, core.CategoryOther, day1),
		{ID: "t3", Kind: core.Income, Amount: 300_000, Category: core.CategoryOther, Date: day1},
	}
	if err := s.RecomputeSpending(ctx, txs); err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if got := s.Totals().TotalSpent; got != 0 {
		t.Fatalf("total spent = %d, want 0", got)
	}
}

func TestPersistenceFailureLeavesStateUnchanged(t *testing.T) {
	s, mem := newTestStore(t)
	ctx := context.Background()

	if err := s.SetMonthlyLimit(ctx, core.CategoryEating, 1_000_000); err != nil {
		t.Fatalf("set limit: %v", err)
	}

	mem.FailWrites = true
	err := s.SetMonthlyLimit(ctx, core.CategoryEating, 9_999_999)
	if !errors.Is(err, core.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}

	// In-memory state must still show the last committed limit.
	if got := s.CategoryStatus()[0].MonthlyLimit; got != 1_000_000 {
		t.Fatalf("limit after failed write = %d, want 1000000", got)
	}

	err = s.RecomputeSpending(ctx, []core.Transaction{expense("t1", 1, core.CategoryEating, day1)})
	if !errors.Is(err, core.ErrPersistence) {
		t.Fatalf("expected ErrPersistence from recompute, got %v", err)
	}
	if got := s.Totals().TotalSpent; got != 0 {
		t.Fatalf("spent after failed recompute = %d, want 0", got)
	}
}

func TestTotalsClampRemainingPerCategory(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	if err := s.SetMonthlyLimit(ctx, core.CategoryEating, 1_000_000); err != nil {
		t.Fatalf("set limit: %v", err)
	}
	if err := s.SetMonthlyLimit(ctx, core.CategoryBills, 2_000_000); err != nil {
		t.Fatalf("set limit: %v", err)
	}
	txs := []core.Transaction{
		expense("t1", 1_500_000, core.CategoryEating, day1), // over by 500k
		expense("t2", 500_000, core.CategoryBills, day1),    // 1.5M left
	}
	if err := s.RecomputeSpending(ctx, txs); err != nil {
		t.Fatalf("recompute: %v", err)
	}

	got := s.Totals()
	want := Totals{TotalBudget: 3_000_000, TotalSpent: 2_000_000, TotalRemaining: 1_500_000}
	if got != want {
		t.Fatalf("totals = %+v, want %+v", got, want)
	}
}

func TestSetNotifications(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	if !s.NotificationsEnabled(core.CategoryHealth) {
		t.Fatal("notifications default on")
	}
	if err := s.SetNotifications(ctx, core.CategoryHealth, false); err != nil {
		t.Fatalf("set notifications: %v", err)
	}
	if s.NotificationsEnabled(core.CategoryHealth) {
		t.Fatal("notifications should be off")
	}
	if err := s.SetNotifications(ctx, "groceries", true); !errors.Is(err, core.ErrUnknownCategory) {
		t.Fatalf("unknown category: got %v", err)
	}
}
