package budget

import (
	"context"
	"errors"
	"testing"

	"chitieu/internal/core"
)

func TestRecommendFixedWeights(t *testing.T) {
	recs, err := Recommend(10_000_000)
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if len(recs) != 7 {
		t.Fatalf("expected 7 recommendations, got %d", len(recs))
	}

	byLabel := make(map[string]Recommendation, len(recs))
	for _, r := range recs {
		byLabel[r.Label] = r
	}

	cases := []struct {
		label             string
		category          core.CategoryID
		recommended       int64
		min, max          int64
	}{
		{"Ăn uống", core.CategoryEating, 1_500_000, 1_000_000, 2_500_000},
		{"Hóa đơn", core.CategoryBills, 2_000_000, 500_000, 3_000_000},
		{"Tiết kiệm", "", 2_000_000, 1_000_000, 3_000_000},
		{"Giải trí", core.CategoryEntertainment, 1_000_000, 200_000, 1_500_000},
		{"Mua sắm", core.CategoryShopping, 1_000_000, 0, 1_500_000},
		{"Di chuyển", core.CategoryTransport, 1_000_000, 300_000, 1_500_000},
		{"Khác", core.CategoryOther, 1_500_000, 0, 2_000_000},
	}
	for _, tc := range cases {
		r, ok := byLabel[tc.label]
		if !ok {
			t.Errorf("missing recommendation %q", tc.label)
			continue
		}
		if r.Category != tc.category {
			t.Errorf("%s: category = %q, want %q", tc.label, r.Category, tc.category)
		}
		if r.Recommended != tc.recommended || r.Min != tc.min || r.Max != tc.max {
			t.Errorf("%s: got {rec:%d min:%d max:%d}, want {rec:%d min:%d max:%d}",
				tc.label, r.Recommended, r.Min, r.Max, tc.recommended, tc.min, tc.max)
		}
	}
}

func TestRecommendEdgeIncomes(t *testing.T) {
	if _, err := Recommend(-1); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("negative income: got %v, want ErrInvalidAmount", err)
	}

	recs, err := Recommend(0)
	if err != nil {
		t.Fatalf("zero income: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("zero income must yield empty set, got %d", len(recs))
	}
}

func TestApplyRecommendations(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	// Pre-existing limit on a category outside the weight table.
	if err := s.SetMonthlyLimit(ctx, core.CategoryHealth, 777_000); err != nil {
		t.Fatalf("set limit: %v", err)
	}

	if err := s.ApplyRecommendations(ctx, 10_000_000); err != nil {
		t.Fatalf("apply: %v", err)
	}

	want := map[core.CategoryID]int64{
		core.CategoryEating:        1_500_000,
		core.CategoryBills:         2_000_000,
		core.CategoryEntertainment: 1_000_000,
		core.CategoryShopping:      1_000_000,
		core.CategoryTransport:     1_000_000,
		core.CategoryOther:         1_500_000,
		core.CategoryHealth:        777_000, // untouched: no recommendation row
		core.CategoryEducation:     0,       // untouched: no recommendation row
	}
	for _, st := range s.CategoryStatus() {
		if got := st.MonthlyLimit; got != want[st.Category.ID] {
			t.Errorf("%s: limit = %d, want %d", st.Category.ID, got, want[st.Category.ID])
		}
	}
}

func TestApplyRecommendationsRejectsNegativeIncome(t *testing.T) {
	s, _ := newTestStore(t)
	if err := s.ApplyRecommendations(context.Background(), -500); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("got %v, want ErrInvalidAmount", err)
	}
}
