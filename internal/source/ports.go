package source

import (
	"context"

	"chitieu/internal/core"
)

// TransactionLister is the port to the external transaction source.
// The engine only ever reads the list; it never mutates it.
type TransactionLister interface {
	// ListTransactions returns the current transaction set.
	ListTransactions(ctx context.Context) ([]core.Transaction, error)
}
