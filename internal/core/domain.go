package core

import (
	"errors"
	"time"
)

const (
	Expense TxKind = "expense"
	Income  TxKind = "income"
)

type (
	TxKind string

	// CategoryID is the stable key of a built-in spending category.
	// Budgets and transactions reference categories by this key, never
	// by display name.
	CategoryID string

	Category struct {
		ID    CategoryID
		Name  string
		Color string
		Icon  string
	}

	// Transaction is a single ledger record supplied by an external
	// source. The engine never mutates transactions.
	Transaction struct {
		ID       string
		Kind     TxKind
		Amount   int64 // whole đồng, always >= 0
		Category CategoryID
		Date     time.Time
	}
)

const (
	CategoryEating        CategoryID = "eating"
	CategoryShopping      CategoryID = "shopping"
	CategoryTransport     CategoryID = "transport"
	CategoryEntertainment CategoryID = "entertainment"
	CategoryBills         CategoryID = "bills"
	CategoryHealth        CategoryID = "health"
	CategoryEducation     CategoryID = "education"
	CategoryOther         CategoryID = "other"
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrUnknownCategory = errors.New("unknown category")
	ErrPersistence     = errors.New("persistence failure")
	ErrInvalidKind     = errors.New("invalid transaction kind")
)

// builtinCategories is the fixed category set. Order is the canonical
// display order used by every per-category listing.
var builtinCategories = []Category{
	{ID: CategoryEating, Name: "Ăn uống", Color: "#ef4444", Icon: "🍔"},
	{ID: CategoryShopping, Name: "Mua sắm", Color: "#3b82f6", Icon: "🛍️"},
	{ID: CategoryTransport, Name: "Di chuyển", Color: "#f59e0b", Icon: "🚗"},
	{ID: CategoryEntertainment, Name: "Giải trí", Color: "#8b5cf6", Icon: "🎮"},
	{ID: CategoryBills, Name: "Hóa đơn", Color: "#10b981", Icon: "📱"},
	{ID: CategoryHealth, Name: "Y tế", Color: "#ec4899", Icon: "🏥"},
	{ID: CategoryEducation, Name: "Học tập", Color: "#6366f1", Icon: "📚"},
	{ID: CategoryOther, Name: "Khác", Color: "#6b7280", Icon: "📦"},
}

// Categories returns the built-in category set in canonical order.
func Categories() []Category {
	out := make([]Category, len(builtinCategories))
	copy(out, builtinCategories)
	return out
}

// CategoryByID looks up a built-in category by its stable key.
func CategoryByID(id CategoryID) (Category, bool) {
	for _, c := range builtinCategories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

func (k TxKind) Validate() error {
	switch k {
	case Expense, Income:
		return nil
	default:
		return ErrInvalidKind
	}
}

func (t Transaction) Validate() error {
	if err := t.Kind.Validate(); err != nil {
		return err
	}
	if t.Amount < 0 {
		return ErrInvalidAmount
	}
	if t.Date.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}
