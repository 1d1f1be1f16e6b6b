package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fintrack/internal/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"":      slog.LevelInfo,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestNew_JSONFormatAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Format: "json", Component: ComponentLedger, Output: &buf})

	logger.Info("Transaction created", FieldTransactionID, "t1")
	logger.Debug("hidden")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "Transaction created", rec["msg"])
	assert.Equal(t, ComponentLedger, rec[FieldComponent])
	assert.Equal(t, "t1", rec[FieldTransactionID])
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"), "debug records are filtered")
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Format: "json", Component: ComponentApp, Output: &buf})
	base.WithComponent(ComponentWorker).Warn("Retrying")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, ComponentWorker, rec[FieldComponent])
	assert.Equal(t, ComponentApp, base.Component())
}

func TestFromContext(t *testing.T) {
	assert.Equal(t, "unknown", FromContext(context.Background()).Component())

	logger := New(Config{Component: ComponentHTTP, Output: &bytes.Buffer{}})
	var got *Logger
	h := Middleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Same(t, logger, got)
}

func TestRequestIDMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Format: "json", Output: &buf})
	chain := Middleware(logger)(RequestIDMiddleware(func(r *http.Request) string {
		return r.Header.Get("X-Request-ID")
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		FromContext(r.Context()).InfoContext(r.Context(), "handled")
	})))

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	req.Header.Set("X-Request-ID", "abc123")
	chain.ServeHTTP(httptest.NewRecorder(), req)

	assert.Contains(t, buf.String(), `"request_id":"abc123"`)
}

func TestStructuredLogger(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Format: "json", Output: &buf}))
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodPost, "/api/transactions", nil)
	sl.LogHTTPEnd(ctx, req, http.StatusInternalServerError, 12, "10.0.0.1")
	assert.Contains(t, buf.String(), `"level":"ERROR"`)
	assert.Contains(t, buf.String(), `"status_code":500`)
	buf.Reset()

	tx := core.Transaction{
		ID:       "t1",
		Amount:   decimal.RequireFromString("4.5"),
		Category: core.Shopping,
		Type:     core.Expense,
		Date:     time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
	}
	sl.LogLedgerChange(ctx, "Transaction created", OpCreate, NewFields().WithTransaction(tx))
	assert.Contains(t, buf.String(), `"amount":"4.50"`)
	assert.Contains(t, buf.String(), `"operation":"create"`)
	buf.Reset()

	sl.LogError(ctx, "Failed", errors.New("boom"), ComponentStorage, OpList, nil)
	assert.Contains(t, buf.String(), `"error":"boom"`)
}
