package budget

import (
	"context"
	"math"

	"chitieu/internal/core"
)

// Recommendation is a suggested monthly limit derived from income.
// Min and Max are advisory display bounds; Recommended is never clamped
// by them. Category is empty for rows with no spending category
// (savings).
type Recommendation struct {
	Category    core.CategoryID
	Label       string
	Recommended int64
	Min         int64
	Max         int64
}

// weight describes one row of the fixed recommendation table.
// minFixed < 0 means the floor is minShare of income instead of a fixed
// amount.
type weight struct {
	category core.CategoryID
	label    string
	share    float64
	minFixed int64
	minShare float64
	maxShare float64
}

var recommendationWeights = []weight{
	{category: core.CategoryEating, label: "Ăn uống", share: 0.15, minFixed: 1_000_000, maxShare: 0.25},
	{category: core.CategoryBills, label: "Hóa đơn", share: 0.20, minFixed: 500_000, maxShare: 0.30},
	{category: "", label: "Tiết kiệm", share: 0.20, minFixed: -1, minShare: 0.10, maxShare: 0.30},
	{category: core.CategoryEntertainment, label: "Giải trí", share: 0.10, minFixed: 200_000, maxShare: 0.15},
	{category: core.CategoryShopping, label: "Mua sắm", share: 0.10, minFixed: 0, maxShare: 0.15},
	{category: core.CategoryTransport, label: "Di chuyển", share: 0.10, minFixed: 300_000, maxShare: 0.15},
	{category: core.CategoryOther, label: "Khác", share: 0.15, minFixed: 0, maxShare: 0.20},
}

// Recommend computes suggested monthly limits as fixed shares of income.
// Zero income yields an empty set; negative income is invalid.
func Recommend(totalIncome int64) ([]Recommendation, error) {
	if totalIncome < 0 {
		return nil, core.ErrInvalidAmount
	}
	if totalIncome == 0 {
		return []Recommendation{}, nil
	}

	income := float64(totalIncome)
	out := make([]Recommendation, 0, len(recommendationWeights))
	for _, w := range recommendationWeights {
		min := w.minFixed
		if w.minFixed < 0 {
			min = roundAmount(income * w.minShare)
		}
		out = append(out, Recommendation{
			Category:    w.category,
			Label:       w.label,
			Recommended: roundAmount(income * w.share),
			Min:         min,
			Max:         roundAmount(income * w.maxShare),
		})
	}
	return out, nil
}

// ApplyRecommendations writes each recommendation's rounded value as the
// matching category's new monthly limit. Rows without a spending
// category are skipped; categories without a recommendation keep their
// existing limit.
func (s *Store) ApplyRecommendations(ctx context.Context, totalIncome int64) error {
	recs, err := Recommend(totalIncome)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	next := s.cloneLocked()
	for _, rec := range recs {
		if rec.Category == "" {
			continue
		}
		b, ok := next[rec.Category]
		if !ok {
			continue
		}
		b.MonthlyLimit = rec.Recommended
		b.UpdatedAt = now
		next[rec.Category] = b
	}

	if err := s.save(ctx, next); err != nil {
		return err
	}
	s.budgets = next

	s.logger.InfoContext(ctx, "Budget recommendations applied", "income", totalIncome)
	return nil
}

func roundAmount(v float64) int64 {
	return int64(math.Round(v))
}
