package memory

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"chitieu/internal/core"
)

// Store is an in-memory transaction source, seedable from a plain-text
// file for local development.
type Store struct {
	mu    sync.Mutex
	items []core.Transaction
}

func New(txs ...core.Transaction) *Store {
	return &Store{items: append([]core.Transaction(nil), txs...)}
}

// NewFromFiles seeds the store from <base>/seed_transactions.txt.
// Each line holds "id|kind|amount|category|date"; blank lines and lines
// starting with # are skipped, as are lines that do not parse.
func NewFromFiles(base string) *Store {
	return New(readSeedFile(filepath.Join(base, "seed_transactions.txt"))...)
}

// Add appends a transaction after validating it.
func (s *Store) Add(tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, tx)
	return nil
}

// ListTransactions implements source.TransactionLister.
func (s *Store) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, len(s.items))
	copy(out, s.items)
	return out, nil
}

func readSeedFile(path string) []core.Transaction {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var out []core.Transaction
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		tx, err := parseSeedLine(line)
		if err != nil {
			continue
		}
		out = append(out, tx)
	}
	return out
}

func parseSeedLine(line string) (core.Transaction, error) {
	parts := strings.Split(line, "|")
	if len(parts) != 5 {
		return core.Transaction{}, fmt.Errorf("expected 5 fields, got %d", len(parts))
	}

	amount, err := strconv.ParseInt(strings.TrimSpace(parts[2]), 10, 64)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("amount: %w", err)
	}
	date, err := time.Parse(time.RFC3339, strings.TrimSpace(parts[4]))
	if err != nil {
		date, err = time.Parse("2006-01-02", strings.TrimSpace(parts[4]))
		if err != nil {
			return core.Transaction{}, fmt.Errorf("date: %w", err)
		}
	}

	tx := core.Transaction{
		ID:       strings.TrimSpace(parts[0]),
		Kind:     core.TxKind(strings.TrimSpace(parts[1])),
		Amount:   amount,
		Category: core.CategoryID(strings.TrimSpace(parts[3])),
		Date:     date,
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}
