package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/ledger"

	"golang.org/x/oauth2"
	goauth "golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Config selects the spreadsheet and credentials. Service account credentials
// win over OAuth client + token when both are present.
type Config struct {
	SpreadsheetID      string
	TransactionsSheet  string
	BudgetsSheet       string
	ServiceAccountJSON string
	ServiceAccountFile string
	OAuthClientJSON    string
	OAuthClientFile    string
	OAuthTokenJSON     string
	OAuthTokenFile     string
}

// Client mirrors the ledger into two sheets: one row per transaction keyed by
// id, one row per budget keyed by (month, category).
type Client struct {
	values            valuesAPI
	transactionsSheet string
	budgetsSheet      string
}

var _ ledger.Mirror = (*Client)(nil)

var (
	transactionHeader = []interface{}{"ID", "Date", "Type", "Category", "Description", "Amount"}
	budgetHeader      = []interface{}{"Month", "Category", "Amount"}
)

// valuesAPI is the subset of the Sheets values API the mirror needs.
type valuesAPI interface {
	Get(ctx context.Context, rng string) ([][]interface{}, error)
	Update(ctx context.Context, rng string, rows [][]interface{}) error
	Clear(ctx context.Context, rng string) error
}

// New creates a Sheets mirror from cfg.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return newClient(&sheetsValues{svc: svc, spreadsheetID: cfg.SpreadsheetID}, cfg), nil
}

func newClient(values valuesAPI, cfg Config) *Client {
	c := &Client{
		values:            values,
		transactionsSheet: strings.TrimSpace(cfg.TransactionsSheet),
		budgetsSheet:      strings.TrimSpace(cfg.BudgetsSheet),
	}
	if c.transactionsSheet == "" {
		c.transactionsSheet = "Transactions"
	}
	if c.budgetsSheet == "" {
		c.budgetsSheet = "Budgets"
	}
	return c
}

// newSheetsService authenticates with a service account, or with an OAuth
// client and a token produced by oauth-init.
func newSheetsService(ctx context.Context, cfg Config) (*gsheet.Service, error) {
	saJSON, err := inlineOrFile(cfg.ServiceAccountJSON, cfg.ServiceAccountFile)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	if len(saJSON) > 0 {
		slog.InfoContext(ctx, "Creating Google Sheets service with Service Account",
			"credentials_size", len(saJSON),
			"scope", gsheet.SpreadsheetsScope)
		svc, err := gsheet.NewService(ctx,
			goption.WithCredentialsJSON(saJSON),
			goption.WithScopes(gsheet.SpreadsheetsScope),
		)
		if err != nil {
			return nil, fmt.Errorf("create sheets service: %w", err)
		}
		return svc, nil
	}

	clientJSON, err := inlineOrFile(cfg.OAuthClientJSON, cfg.OAuthClientFile)
	if err != nil {
		return nil, fmt.Errorf("read oauth client file: %w", err)
	}
	tokenJSON, err := inlineOrFile(cfg.OAuthTokenJSON, cfg.OAuthTokenFile)
	if err != nil {
		return nil, fmt.Errorf("read oauth token file: %w", err)
	}
	if len(clientJSON) == 0 || len(tokenJSON) == 0 {
		return nil, errors.New("missing credentials (set GOOGLE_SERVICE_ACCOUNT_JSON/FILE or GOOGLE_OAUTH_CLIENT_* with GOOGLE_OAUTH_TOKEN_*)")
	}

	oauthCfg, err := oauthConfigFromJSON(clientJSON)
	if err != nil {
		return nil, err
	}
	var token oauth2.Token
	if err := json.Unmarshal(tokenJSON, &token); err != nil {
		return nil, fmt.Errorf("oauth token: %w", err)
	}

	slog.InfoContext(ctx, "Creating Google Sheets service with OAuth token", "has_refresh_token", token.RefreshToken != "")
	ctx = context.WithValue(ctx, oauth2.HTTPClient, newHTTPClientWithPooling())
	svc, err := gsheet.NewService(ctx, goption.WithHTTPClient(oauthCfg.Client(ctx, &token)))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return svc, nil
}

// OAuthClientConfig loads the OAuth client from cfg with the spreadsheet scope,
// for tools that mint the token the mirror later uses.
func OAuthClientConfig(cfg Config) (*oauth2.Config, error) {
	clientJSON, err := inlineOrFile(cfg.OAuthClientJSON, cfg.OAuthClientFile)
	if err != nil {
		return nil, fmt.Errorf("read oauth client file: %w", err)
	}
	if len(clientJSON) == 0 {
		return nil, errors.New("missing OAuth client (set GOOGLE_OAUTH_CLIENT_JSON or GOOGLE_OAUTH_CLIENT_FILE)")
	}
	return oauthConfigFromJSON(clientJSON)
}

func oauthConfigFromJSON(clientJSON []byte) (*oauth2.Config, error) {
	oauthCfg, err := goauth.ConfigFromJSON(clientJSON, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("oauth config: %w", err)
	}
	return oauthCfg, nil
}

func inlineOrFile(inline, path string) ([]byte, error) {
	if s := strings.TrimSpace(inline); s != "" {
		return []byte(s), nil
	}
	if p := strings.TrimSpace(path); p != "" {
		return os.ReadFile(p)
	}
	return nil, nil
}

// newHTTPClientWithPooling keeps connections to the Sheets API warm across
// the worker's lifetime.
func newHTTPClientWithPooling() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		MaxConnsPerHost:       50,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}
	return &http.Client{Transport: transport, Timeout: 60 * time.Second}
}

// UpsertTransaction rewrites the row holding tx.ID, or writes a new row after the last one.
func (c *Client) UpsertTransaction(ctx context.Context, tx core.Transaction) error {
	rows, err := c.values.Get(ctx, c.transactionsSheet+"!A:F")
	if err != nil {
		return fmt.Errorf("read %s: %w", c.transactionsSheet, err)
	}
	row := findRow(rows, func(cols []string) bool { return safeGet(cols, 0) == tx.ID })
	if row == 0 {
		row = nextRow(rows)
		if row == 1 {
			if err := c.values.Update(ctx, c.transactionsSheet+"!A1:F1", [][]interface{}{transactionHeader}); err != nil {
				return fmt.Errorf("write %s header: %w", c.transactionsSheet, err)
			}
			row = 2
		}
	}
	rng := fmt.Sprintf("%s!A%d:F%d", c.transactionsSheet, row, row)
	if err := c.values.Update(ctx, rng, [][]interface{}{transactionRow(tx)}); err != nil {
		return fmt.Errorf("update %s: %w", rng, err)
	}
	slog.InfoContext(ctx, "Transaction mirrored", "transaction_id", tx.ID, "range", rng)
	return nil
}

// DeleteTransaction blanks the row holding id. Unknown ids are ignored.
func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	rows, err := c.values.Get(ctx, c.transactionsSheet+"!A:F")
	if err != nil {
		return fmt.Errorf("read %s: %w", c.transactionsSheet, err)
	}
	row := findRow(rows, func(cols []string) bool { return safeGet(cols, 0) == id })
	if row == 0 {
		slog.WarnContext(ctx, "Transaction not present in sheet, nothing to delete", "transaction_id", id)
		return nil
	}
	rng := fmt.Sprintf("%s!A%d:F%d", c.transactionsSheet, row, row)
	if err := c.values.Clear(ctx, rng); err != nil {
		return fmt.Errorf("clear %s: %w", rng, err)
	}
	slog.InfoContext(ctx, "Transaction removed from sheet", "transaction_id", id, "range", rng)
	return nil
}

func (c *Client) UpsertBudget(ctx context.Context, b core.Budget) error {
	rows, err := c.values.Get(ctx, c.budgetsSheet+"!A:C")
	if err != nil {
		return fmt.Errorf("read %s: %w", c.budgetsSheet, err)
	}
	month := b.Month.String()
	row := findRow(rows, func(cols []string) bool {
		return safeGet(cols, 0) == month && safeGet(cols, 1) == b.Category
	})
	if row == 0 {
		row = nextRow(rows)
		if row == 1 {
			if err := c.values.Update(ctx, c.budgetsSheet+"!A1:C1", [][]interface{}{budgetHeader}); err != nil {
				return fmt.Errorf("write %s header: %w", c.budgetsSheet, err)
			}
			row = 2
		}
	}
	rng := fmt.Sprintf("%s!A%d:C%d", c.budgetsSheet, row, row)
	if err := c.values.Update(ctx, rng, [][]interface{}{budgetRow(b)}); err != nil {
		return fmt.Errorf("update %s: %w", rng, err)
	}
	return nil
}

// Replace clears both sheets and writes the full ledger.
func (c *Client) Replace(ctx context.Context, txs []core.Transaction, budgets []core.Budget) error {
	txRows := make([][]interface{}, 0, len(txs)+1)
	txRows = append(txRows, transactionHeader)
	for _, tx := range txs {
		txRows = append(txRows, transactionRow(tx))
	}
	if err := c.replaceSheet(ctx, c.transactionsSheet, txRows); err != nil {
		return err
	}

	bRows := make([][]interface{}, 0, len(budgets)+1)
	bRows = append(bRows, budgetHeader)
	for _, b := range budgets {
		bRows = append(bRows, budgetRow(b))
	}
	return c.replaceSheet(ctx, c.budgetsSheet, bRows)
}

func (c *Client) replaceSheet(ctx context.Context, sheet string, rows [][]interface{}) error {
	if err := c.values.Clear(ctx, sheet+"!A:Z"); err != nil {
		return fmt.Errorf("clear %s: %w", sheet, err)
	}
	if err := c.values.Update(ctx, sheet+"!A1", rows); err != nil {
		return fmt.Errorf("write %s: %w", sheet, err)
	}
	return nil
}

func transactionRow(tx core.Transaction) []interface{} {
	return []interface{}{
		tx.ID,
		tx.Date.Format("2006-01-02"),
		string(tx.Type),
		tx.Category,
		tx.Description,
		tx.Amount.StringFixed(2),
	}
}

func budgetRow(b core.Budget) []interface{} {
	return []interface{}{b.Month.String(), b.Category, b.Amount.StringFixed(2)}
}

// findRow returns the 1-based sheet row matching match, or 0.
func findRow(rows [][]interface{}, match func([]string) bool) int {
	for i, r := range rows {
		if match(toStrings(r)) {
			return i + 1
		}
	}
	return 0
}

func nextRow(rows [][]interface{}) int {
	return len(rows) + 1
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}

type sheetsValues struct {
	svc           *gsheet.Service
	spreadsheetID string
}

func (s *sheetsValues) Get(ctx context.Context, rng string) ([][]interface{}, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

func (s *sheetsValues) Update(ctx context.Context, rng string, rows [][]interface{}) error {
	_, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, rng, &gsheet.ValueRange{Values: rows}).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	return err
}

func (s *sheetsValues) Clear(ctx context.Context, rng string) error {
	_, err := s.svc.Spreadsheets.Values.Clear(s.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).Context(ctx).Do()
	return err
}
