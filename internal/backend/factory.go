package backend

import (
	"context"
	"fmt"

	"chitieu/internal/amqp"
	"chitieu/internal/config"
	"chitieu/internal/kv"
	memkv "chitieu/internal/kv/memory"
	sqlitekv "chitieu/internal/kv/sqlite"
	applog "chitieu/internal/log"
	"chitieu/internal/source"
	gsource "chitieu/internal/source/google"
	memsource "chitieu/internal/source/memory"
)

// Factory builds the configured backend set.
type Factory struct {
	logger *applog.Logger
}

func NewFactory(logger *applog.Logger) *Factory {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &Factory{
		logger: logger.WithComponent(applog.ComponentBackend),
	}
}

// Create assembles the blob store, transaction source and optional AMQP
// client from the application config. An unreachable AMQP broker is
// logged and skipped rather than failing startup; alerts are optional.
func (f *Factory) Create(ctx context.Context, cfg *config.Config) (*Result, error) {
	store, storeCleanup, err := f.createStore(cfg)
	if err != nil {
		return nil, err
	}

	src, err := f.createSource(ctx, cfg)
	if err != nil {
		if storeCleanup != nil {
			_ = storeCleanup()
		}
		return nil, err
	}

	var alerts *amqp.Client
	if cfg.AMQPEnabled() {
		alerts, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without alerts",
				applog.FieldError, err)
			alerts = nil
		} else {
			f.logger.Info("Initialized AMQP client",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
		}
	}

	cleanup := func() error {
		if alerts != nil {
			if err := alerts.Close(); err != nil {
				f.logger.Warn("Failed to close AMQP client", applog.FieldError, err)
			}
		}
		if storeCleanup != nil {
			return storeCleanup()
		}
		return nil
	}

	return &Result{
		KV:      store,
		Source:  src,
		Alerts:  alerts,
		Cleanup: cleanup,
	}, nil
}

func (f *Factory) createStore(cfg *config.Config) (kv.Store, CleanupFunc, error) {
	storeType := StoreType(cfg.DataBackend)
	if !storeType.IsValid() {
		return nil, nil, fmt.Errorf("invalid data backend: %s", cfg.DataBackend)
	}

	switch storeType {
	case SQLiteStore:
		store, err := sqlitekv.New(cfg.SQLiteDBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
		}
		f.logger.Info("Initialized SQLite store", "db_path", cfg.SQLiteDBPath)
		return store, store.Close, nil
	default:
		f.logger.Info("Initialized in-memory store")
		return memkv.New(), nil, nil
	}
}

func (f *Factory) createSource(ctx context.Context, cfg *config.Config) (source.TransactionLister, error) {
	sourceType := SourceType(cfg.TxSource)
	if !sourceType.IsValid() {
		return nil, fmt.Errorf("invalid transaction source: %s", cfg.TxSource)
	}

	switch sourceType {
	case SheetsSource:
		cli, err := gsource.NewFromEnv(ctx, cfg.Location())
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Google Sheets source: %w", err)
		}
		f.logger.Info("Initialized Google Sheets source", "sheet", cfg.GoogleSheetName)
		return cli, nil
	default:
		src := memsource.NewFromFiles(cfg.SeedDataDir)
		f.logger.Info("Initialized memory source", "data_directory", cfg.SeedDataDir)
		return src, nil
	}
}
