// Package worker consumes budget alert messages and turns them into
// user notifications.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"chitieu/internal/amqp"
	applog "chitieu/internal/log"
)

// AlertWorker delivers budget alerts. Repeated alerts for the same
// category and severity are suppressed within the cooldown window so a
// category stuck over its limit does not notify on every refresh.
type AlertWorker struct {
	logger   *applog.Logger
	cooldown time.Duration
	now      func() time.Time

	mu       sync.Mutex
	lastSent map[string]time.Time
}

func NewAlertWorker(logger *applog.Logger, cooldown time.Duration) *AlertWorker {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	if cooldown <= 0 {
		cooldown = time.Hour
	}
	return &AlertWorker{
		logger:   logger.WithComponent(applog.ComponentWorker),
		cooldown: cooldown,
		now:      time.Now,
		lastSent: make(map[string]time.Time),
	}
}

// HandleAlertMessage processes a single budget alert from AMQP.
// Returning an error makes the consumer nack and requeue the message,
// so only transient problems should surface as errors; malformed or
// suppressed alerts are acked by returning nil.
func (w *AlertWorker) HandleAlertMessage(ctx context.Context, msg *amqp.BudgetAlertMessage) error {
	if msg == nil {
		return nil
	}
	if err := validateAlert(msg); err != nil {
		w.logger.WarnContext(ctx, "Dropping invalid alert message",
			applog.FieldError, err)
		return nil
	}

	if !w.shouldDeliver(msg) {
		w.logger.DebugContext(ctx, "Alert suppressed by cooldown",
			applog.FieldCategory, msg.Category,
			applog.FieldSeverity, msg.Severity)
		return nil
	}

	w.deliver(ctx, msg)
	return nil
}

// validateAlert rejects messages a buggy or outdated publisher could
// emit.
func validateAlert(msg *amqp.BudgetAlertMessage) error {
	if msg.Category == "" {
		return fmt.Errorf("missing category")
	}
	switch msg.Severity {
	case "info", "warning", "danger":
	default:
		return fmt.Errorf("unknown severity %q", msg.Severity)
	}
	if msg.Spent < 0 || msg.MonthlyLimit < 0 {
		return fmt.Errorf("negative amounts (spent=%d, limit=%d)", msg.Spent, msg.MonthlyLimit)
	}
	return nil
}

func (w *AlertWorker) shouldDeliver(msg *amqp.BudgetAlertMessage) bool {
	key := string(msg.Category) + ":" + msg.Severity

	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	if last, ok := w.lastSent[key]; ok && now.Sub(last) < w.cooldown {
		return false
	}
	w.lastSent[key] = now
	return true
}

// deliver emits the notification. Delivery is a structured log line;
// push transport hooks in here when one exists.
func (w *AlertWorker) deliver(ctx context.Context, msg *amqp.BudgetAlertMessage) {
	w.logger.InfoContext(ctx, "Budget alert delivered",
		applog.FieldCategory, msg.Category,
		applog.FieldSeverity, msg.Severity,
		applog.FieldSpent, msg.Spent,
		applog.FieldLimit, msg.MonthlyLimit,
		"percentage", msg.Percentage,
		"at", msg.Timestamp.Format(time.RFC3339))
}

// CleanupStale drops cooldown entries older than twice the cooldown so
// the map does not grow without bound on long-running workers.
func (w *AlertWorker) CleanupStale() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	cutoff := w.now().Add(-2 * w.cooldown)
	removed := 0
	for key, at := range w.lastSent {
		if at.Before(cutoff) {
			delete(w.lastSent, key)
			removed++
		}
	}
	return removed
}
