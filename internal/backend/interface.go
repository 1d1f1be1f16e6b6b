package backend

import (
	"context"

	"fintrack/internal/ledger"
)

// CleanupFunc releases the resources held by a backend.
type CleanupFunc func() error

// BackendResult contains the store instance and optional cleanup function
type BackendResult struct {
	Store   ledger.Store
	Cleanup CleanupFunc
}

// Factory creates stores and mirrors based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
	CreateMirror(ctx context.Context, config MirrorConfig) (ledger.Mirror, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Memory backend seed directory; empty starts with an empty ledger.
	SeedDir string
}

// MirrorConfig selects the spreadsheet that receives the ledger copy.
type MirrorConfig struct {
	SpreadsheetID      string
	TransactionsSheet  string
	BudgetsSheet       string
	ServiceAccountFile string
	ServiceAccountJSON string
	OAuthClientFile    string
	OAuthClientJSON    string
	OAuthTokenFile     string
	OAuthTokenJSON     string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
