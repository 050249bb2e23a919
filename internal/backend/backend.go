// Package backend assembles the storage, transaction source and alert
// transport selected by configuration.
package backend

import (
	"chitieu/internal/amqp"
	"chitieu/internal/kv"
	"chitieu/internal/source"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Result contains the assembled dependencies and an optional cleanup
// function. Alerts is nil when AMQP is not configured.
type Result struct {
	KV      kv.Store
	Source  source.TransactionLister
	Alerts  *amqp.Client
	Cleanup CleanupFunc
}

// StoreType selects the budget blob store implementation.
type StoreType string

const (
	SQLiteStore StoreType = "sqlite"
	MemoryStore StoreType = "memory"
)

func (st StoreType) IsValid() bool {
	switch st {
	case SQLiteStore, MemoryStore:
		return true
	default:
		return false
	}
}

// SourceType selects where transactions are read from.
type SourceType string

const (
	MemorySource SourceType = "memory"
	SheetsSource SourceType = "sheets"
)

func (st SourceType) IsValid() bool {
	switch st {
	case MemorySource, SheetsSource:
		return true
	default:
		return false
	}
}
