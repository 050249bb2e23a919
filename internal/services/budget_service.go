// Package services provides business logic and orchestration.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"chitieu/internal/amqp"
	"chitieu/internal/analytics"
	"chitieu/internal/budget"
	"chitieu/internal/core"
	"chitieu/internal/source"
)

// AlertPublisher publishes budget warning messages. *amqp.Client
// satisfies it; tests use a fake.
type AlertPublisher interface {
	PublishBudgetAlert(ctx context.Context, msg *amqp.BudgetAlertMessage) error
}

// BudgetService ties the transaction source, the budget store and the
// aggregator together. The store never filters by date itself; this
// service owns the "current calendar month" window used for budget
// recomputation.
type BudgetService struct {
	store  *budget.Store
	agg    *analytics.Aggregator
	source source.TransactionLister
	alerts AlertPublisher
	loc    *time.Location
	now    func() time.Time
}

func NewBudgetService(store *budget.Store, agg *analytics.Aggregator, src source.TransactionLister, alerts AlertPublisher, loc *time.Location) *BudgetService {
	if loc == nil {
		loc = time.UTC
	}
	return &BudgetService{
		store:  store,
		agg:    agg,
		source: src,
		alerts: alerts,
		loc:    loc,
		now:    time.Now,
	}
}

func (s *BudgetService) Store() *budget.Store {
	return s.store
}

func (s *BudgetService) Aggregator() *analytics.Aggregator {
	return s.agg
}

// RefreshCurrentMonth refolds this month's transactions into the budget
// store and publishes alerts for categories in a warning state. Alert
// publish failures are logged, never surfaced: the recomputation has
// already committed locally.
func (s *BudgetService) RefreshCurrentMonth(ctx context.Context) error {
	txs, err := s.source.ListTransactions(ctx)
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}

	month := s.filterCurrentMonth(txs)
	if err := s.store.RecomputeSpending(ctx, month); err != nil {
		return fmt.Errorf("recompute spending: %w", err)
	}

	s.publishWarnings(ctx)
	return nil
}

// Transactions returns the full transaction set from the source.
func (s *BudgetService) Transactions(ctx context.Context) ([]core.Transaction, error) {
	return s.source.ListTransactions(ctx)
}

// LastNDays returns the trailing n-day bucket window ending today.
func (s *BudgetService) LastNDays(ctx context.Context, n int) ([]analytics.DayBucket, error) {
	txs, err := s.source.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return s.agg.LastNDays(txs, n, s.now()), nil
}

// WeeklySummary returns the rolling 7-day summary ending now.
func (s *BudgetService) WeeklySummary(ctx context.Context) (analytics.Summary, error) {
	txs, err := s.source.ListTransactions(ctx)
	if err != nil {
		return analytics.Summary{}, fmt.Errorf("list transactions: %w", err)
	}
	return s.agg.WeeklySummary(txs, s.now()), nil
}

// MonthToDateSummary returns this month's summary through today.
func (s *BudgetService) MonthToDateSummary(ctx context.Context) (analytics.Summary, error) {
	txs, err := s.source.ListTransactions(ctx)
	if err != nil {
		return analytics.Summary{}, fmt.Errorf("list transactions: %w", err)
	}
	return s.agg.MonthToDateSummary(txs, s.now()), nil
}

// MonthCalendar returns one bucket per day of the current month, plus
// the peak spending day when one exists.
func (s *BudgetService) MonthCalendar(ctx context.Context) ([]analytics.DayBucket, *analytics.DayBucket, error) {
	txs, err := s.source.ListTransactions(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list transactions: %w", err)
	}
	calendar := s.agg.MonthCalendar(txs, s.now())
	if peak, ok := analytics.PeakSpendingDay(calendar); ok {
		return calendar, &peak, nil
	}
	return calendar, nil, nil
}

func (s *BudgetService) filterCurrentMonth(txs []core.Transaction) []core.Transaction {
	now := s.now().In(s.loc)
	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		d := tx.Date.In(s.loc)
		if d.Year() == now.Year() && d.Month() == now.Month() {
			out = append(out, tx)
		}
	}
	return out
}

func (s *BudgetService) publishWarnings(ctx context.Context) {
	for _, st := range s.store.CategoryStatus() {
		if !st.NotificationsEnabled {
			continue
		}
		sev, err := s.store.Warning(st.Category.ID)
		if err != nil || sev == budget.SeverityNone {
			continue
		}
		if s.alerts == nil {
			slog.DebugContext(ctx, "Alert publisher not configured, skipping",
				"category", st.Category.ID, "severity", sev)
			continue
		}
		msg := amqp.NewBudgetAlertMessage(st.Category.ID, string(sev), st.MonthlyLimit, st.Spent)
		if err := s.alerts.PublishBudgetAlert(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "Failed to publish budget alert",
				"category", st.Category.ID, "severity", sev, "error", err)
			// Don't fail the refresh - the recomputation is committed
		}
	}
}
