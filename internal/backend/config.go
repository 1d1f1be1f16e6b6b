package backend

import (
	"fmt"

	"fintrack/internal/config"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type:         backendType,
		SQLiteDBPath: appConfig.SQLiteDBPath,
		SeedDir:      appConfig.SeedDir,
	}, nil
}

// MirrorFromAppConfig extracts the spreadsheet settings used by the mirror worker.
func MirrorFromAppConfig(appConfig *config.Config) MirrorConfig {
	return MirrorConfig{
		SpreadsheetID:      appConfig.GoogleSpreadsheetID,
		TransactionsSheet:  appConfig.GoogleTransactionsSheet,
		BudgetsSheet:       appConfig.GoogleBudgetsSheet,
		ServiceAccountFile: appConfig.GoogleServiceAccountFile,
		ServiceAccountJSON: appConfig.GoogleServiceAccountJSON,
		OAuthClientFile:    appConfig.GoogleOAuthClientFile,
		OAuthClientJSON:    appConfig.GoogleOAuthClientJSON,
		OAuthTokenFile:     appConfig.GoogleOAuthTokenFile,
		OAuthTokenJSON:     appConfig.GoogleOAuthTokenJSON,
	}
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	switch c.Type {
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for sqlite backend")
		}
	case MemoryBackend:
		// An empty SeedDir is allowed.
	}

	return nil
}

// GetBackendTypeStrings returns all valid backend type strings
func GetBackendTypeStrings() []string {
	return []string{SQLiteBackend.String(), MemoryBackend.String()}
}
