package amqp

import (
	"encoding/json"
	"time"

	"chitieu/internal/core"
)

// BudgetAlertMessage notifies consumers that a category crossed a
// warning threshold during a spending recomputation. Amount figures are
// whole đồng; Percentage is the uncapped spend ratio.
type BudgetAlertMessage struct {
	Category     core.CategoryID `json:"category"`
	Severity     string          `json:"severity"`
	MonthlyLimit int64           `json:"monthlyLimit"`
	Spent        int64           `json:"spent"`
	Percentage   float64         `json:"percentage"`
	Timestamp    time.Time       `json:"timestamp"`
}

func NewBudgetAlertMessage(category core.CategoryID, severity string, limit, spent int64) *BudgetAlertMessage {
	pct := 0.0
	if limit > 0 {
		pct = float64(spent) / float64(limit) * 100
	}
	return &BudgetAlertMessage{
		Category:     category,
		Severity:     severity,
		MonthlyLimit: limit,
		Spent:        spent,
		Percentage:   pct,
		Timestamp:    time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *BudgetAlertMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// BudgetAlertMessageFromJSON creates a message from JSON bytes.
func BudgetAlertMessageFromJSON(data []byte) (*BudgetAlertMessage, error) {
	var msg BudgetAlertMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
