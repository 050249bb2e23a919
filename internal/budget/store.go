// Package budget tracks one monthly spending limit per category and
// derives live spending status from the transaction log.
//
// Spent figures are never trusted from durable storage: they are zeroed
// at initialization and rederived by RecomputeSpending from the raw
// transaction set, so stored totals can never drift from the ledger.
package budget

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"chitieu/internal/core"
	"chitieu/internal/kv"
)

// BlobKey is the fixed storage key for the serialized budget map.
const BlobKey = "user_budgets"

type Severity string

const (
	SeverityNone    Severity = "none"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
)

// record is the persisted per-category budget. Spent is written for
// inspection only and ignored on load.
type record struct {
	CategoryID           core.CategoryID `json:"categoryId"`
	Name                 string          `json:"name"`
	Color                string          `json:"color"`
	Icon                 string          `json:"icon"`
	MonthlyLimit         int64           `json:"monthlyLimit"`
	Spent                int64           `json:"spent"`
	NotificationsEnabled bool            `json:"notificationsEnabled"`
	CreatedAt            time.Time       `json:"createdAt"`
	UpdatedAt            time.Time       `json:"updatedAt"`
}

// CategoryStatus is the live view of one category's budget.
// Percentage is clamped to [0,100] for display; IsOverBudget is the
// authoritative over-limit signal.
type CategoryStatus struct {
	Category             core.Category
	MonthlyLimit         int64
	Spent                int64
	Percentage           float64
	Remaining            int64
	IsOverBudget         bool
	NotificationsEnabled bool
}

// Totals aggregates budget figures across all categories.
type Totals struct {
	TotalBudget    int64
	TotalSpent     int64
	TotalRemaining int64
}

// Store owns the durable budget configuration. Mutations follow
// write-then-commit: the new state is persisted first and replaces the
// in-memory map only after the write succeeds, so a failed write leaves
// the previous consistent state visible.
type Store struct {
	mu      sync.Mutex
	kv      kv.Store
	logger  *slog.Logger
	now     func() time.Time
	budgets map[core.CategoryID]record
}

func NewStore(store kv.Store, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		kv:      store,
		logger:  logger,
		now:     time.Now,
		budgets: make(map[core.CategoryID]record),
	}
}

// Initialize loads the persisted budget map, creates a zero-limit record
// for every built-in category that lacks one, and forces spent to zero
// everywhere. Idempotent. An unparseable blob is treated as absent.
func (s *Store) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok, err := s.kv.Get(ctx, BlobKey)
	if err != nil {
		return fmt.Errorf("%w: load budgets: %v", core.ErrPersistence, err)
	}

	loaded := make(map[core.CategoryID]record)
	if ok {
		if err := json.Unmarshal([]byte(raw), &loaded); err != nil {
			s.logger.WarnContext(ctx, "Stored budgets unreadable, recreating defaults",
				"key", BlobKey, "error", err)
			loaded = make(map[core.CategoryID]record)
		}
	}

	now := s.now()
	next := make(map[core.CategoryID]record, len(core.Categories()))
	for _, cat := range core.Categories() {
		rec, exists := loaded[cat.ID]
		if !exists {
			rec = record{
				CategoryID:           cat.ID,
				MonthlyLimit:         0,
				NotificationsEnabled: true,
				CreatedAt:            now,
				UpdatedAt:            now,
			}
		}
		// Static category fields always come from the built-in table.
		rec.Name = cat.Name
		rec.Color = cat.Color
		rec.Icon = cat.Icon
		rec.Spent = 0
		next[cat.ID] = rec
	}

	if err := s.save(ctx, next); err != nil {
		return err
	}
	s.budgets = next

	s.logger.InfoContext(ctx, "Budgets initialized", "categories", len(next))
	return nil
}

// SetMonthlyLimit sets a category's monthly limit and refreshes its
// updatedAt timestamp. The write is durable before success is returned.
func (s *Store) SetMonthlyLimit(ctx context.Context, id core.CategoryID, amount int64) error {
	if amount < 0 {
		return core.ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.budgets[id]
	if !ok {
		return fmt.Errorf("%w: %s", core.ErrUnknownCategory, id)
	}

	rec.MonthlyLimit = amount
	rec.UpdatedAt = s.now()

	next := s.cloneLocked()
	next[id] = rec
	if err := s.save(ctx, next); err != nil {
		return err
	}
	s.budgets = next

	s.logger.InfoContext(ctx, "Monthly limit updated", "category", id, "limit", amount)
	return nil
}

// SetNotifications toggles alert publication for a category.
func (s *Store) SetNotifications(ctx context.Context, id core.CategoryID, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.budgets[id]
	if !ok {
		return fmt.Errorf("%w: %s", core.ErrUnknownCategory, id)
	}

	rec.NotificationsEnabled = enabled
	rec.UpdatedAt = s.now()

	next := s.cloneLocked()
	next[id] = rec
	if err := s.save(ctx, next); err != nil {
		return err
	}
	s.budgets = next
	return nil
}

// RecomputeSpending resets every category's spent figure to zero and
// refolds the supplied transactions into it. Only expense transactions
// with a known category count; everything else is invisible to the
// budget view. The caller pre-filters the list to the desired time
// window. The reset-then-refold sequence is atomic to readers.
func (s *Store) RecomputeSpending(ctx context.Context, txs []core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	totals := make(map[core.CategoryID]int64)
	for _, tx := range txs {
		if tx.Kind != core.Expense {
			continue
		}
		if _, ok := s.budgets[tx.Category]; !ok {
			continue
		}
		totals[tx.Category] += tx.Amount
	}

	next := s.cloneLocked()
	for id, rec := range next {
		rec.Spent = totals[id]
		next[id] = rec
	}

	if err := s.save(ctx, next); err != nil {
		return err
	}
	s.budgets = next

	s.logger.DebugContext(ctx, "Spending recomputed",
		"transactions", len(txs), "categories_with_spend", len(totals))
	return nil
}

// CategoryStatus returns the live status of every category in canonical
// order.
func (s *Store) CategoryStatus() []CategoryStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]CategoryStatus, 0, len(core.Categories()))
	for _, cat := range core.Categories() {
		rec := s.budgets[cat.ID]
		out = append(out, CategoryStatus{
			Category:             cat,
			MonthlyLimit:         rec.MonthlyLimit,
			Spent:                rec.Spent,
			Percentage:           clampedPercentage(rec.MonthlyLimit, rec.Spent),
			Remaining:            remaining(rec.MonthlyLimit, rec.Spent),
			IsOverBudget:         rec.Spent > rec.MonthlyLimit,
			NotificationsEnabled: rec.NotificationsEnabled,
		})
	}
	return out
}

// Warning returns the severity derived from the uncapped spend ratio:
// >=100% danger, >=90% warning, >=80% info, otherwise none. A category
// without a limit never warns.
func (s *Store) Warning(id core.CategoryID) (Severity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.budgets[id]
	if !ok {
		return SeverityNone, fmt.Errorf("%w: %s", core.ErrUnknownCategory, id)
	}
	return severity(rec.MonthlyLimit, rec.Spent), nil
}

// Totals sums budget, spend and clamped remaining across all categories.
func (s *Store) Totals() Totals {
	s.mu.Lock()
	defer s.mu.Unlock()

	var t Totals
	for _, rec := range s.budgets {
		t.TotalBudget += rec.MonthlyLimit
		t.TotalSpent += rec.Spent
		t.TotalRemaining += remaining(rec.MonthlyLimit, rec.Spent)
	}
	return t
}

// NotificationsEnabled reports whether alerts are enabled for a category.
func (s *Store) NotificationsEnabled(id core.CategoryID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.budgets[id]
	return ok && rec.NotificationsEnabled
}

func (s *Store) cloneLocked() map[core.CategoryID]record {
	next := make(map[core.CategoryID]record, len(s.budgets))
	for id, rec := range s.budgets {
		next[id] = rec
	}
	return next
}

func (s *Store) save(ctx context.Context, next map[core.CategoryID]record) error {
	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("%w: encode budgets: %v", core.ErrPersistence, err)
	}
	if err := s.kv.Set(ctx, BlobKey, string(data)); err != nil {
		return fmt.Errorf("%w: save budgets: %v", core.ErrPersistence, err)
	}
	return nil
}

func clampedPercentage(limit, spent int64) float64 {
	if limit <= 0 {
		return 0
	}
	pct := float64(spent) / float64(limit) * 100
	if pct > 100 {
		return 100
	}
	return pct
}

func remaining(limit, spent int64) int64 {
	if r := limit - spent; r > 0 {
		return r
	}
	return 0
}

func severity(limit, spent int64) Severity {
	if limit <= 0 {
		return SeverityNone
	}
	pct := float64(spent) / float64(limit) * 100
	switch {
	case pct >= 100:
		return SeverityDanger
	case pct >= 90:
		return SeverityWarning
	case pct >= 80:
		return SeverityInfo
	default:
		return SeverityNone
	}
}
