package backend

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/ledger"
	"fintrack/internal/ledger/google"
	"fintrack/internal/ledger/memory"
	"fintrack/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.InfoContext(ctx, "Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &BackendResult{
		Store:   repo,
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(ctx context.Context, config Config) (*BackendResult, error) {
	store := memory.New()
	if config.SeedDir != "" {
		seeded, err := memory.NewFromFiles(config.SeedDir)
		if err != nil {
			return nil, fmt.Errorf("failed to seed memory backend: %w", err)
		}
		store = seeded
	}

	transactions, _ := store.ListTransactions(ctx)
	f.logger.InfoContext(ctx, "Initialized memory backend",
		"seed_dir", config.SeedDir,
		"transactions", len(transactions))

	return &BackendResult{
		Store:   store,
		Cleanup: store.Close,
	}, nil
}

// CreateMirror connects to the Google spreadsheet that mirrors the ledger.
func (f *DefaultFactory) CreateMirror(ctx context.Context, config MirrorConfig) (ledger.Mirror, error) {
	client, err := google.New(ctx, google.Config{
		SpreadsheetID:      config.SpreadsheetID,
		TransactionsSheet:  config.TransactionsSheet,
		BudgetsSheet:       config.BudgetsSheet,
		ServiceAccountFile: config.ServiceAccountFile,
		ServiceAccountJSON: config.ServiceAccountJSON,
		OAuthClientFile:    config.OAuthClientFile,
		OAuthClientJSON:    config.OAuthClientJSON,
		OAuthTokenFile:     config.OAuthTokenFile,
		OAuthTokenJSON:     config.OAuthTokenJSON,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets mirror: %w", err)
	}

	f.logger.InfoContext(ctx, "Initialized Google Sheets mirror", "spreadsheet_id", config.SpreadsheetID)
	return client, nil
}
