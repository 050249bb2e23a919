package amqp

import (
	"testing"

	"chitieu/internal/core"
)

func TestBudgetAlertMessageCodec(t *testing.T) {
	msg := NewBudgetAlertMessage(core.CategoryEating, "danger", 1_000_000, 1_200_000)
	if msg.Percentage != 120 {
		t.Fatalf("percentage = %v, want uncapped 120", msg.Percentage)
	}

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	got, err := BudgetAlertMessageFromJSON(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Category != core.CategoryEating || got.Severity != "danger" ||
		got.MonthlyLimit != 1_000_000 || got.Spent != 1_200_000 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestBudgetAlertMessageNoLimit(t *testing.T) {
	msg := NewBudgetAlertMessage(core.CategoryOther, "none", 0, 500)
	if msg.Percentage != 0 {
		t.Fatalf("percentage without a limit = %v, want 0", msg.Percentage)
	}
}

func TestBudgetAlertMessageFromJSONInvalid(t *testing.T) {
	if _, err := BudgetAlertMessageFromJSON([]byte("{bad")); err == nil {
		t.Fatal("expected decode error")
	}
}
