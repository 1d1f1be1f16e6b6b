package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"fintrack/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newParser(t *testing.T, contentType, body string) *RequestBodyParser {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	if contentType != "" {
		r.Header.Set("Content-Type", contentType)
	}
	return NewRequestBodyParser(httptest.NewRecorder(), r)
}

func TestRequestBodyParser_JSON(t *testing.T) {
	p := newParser(t, "application/json", `{"amount": 12.10, "description": " Lunch\u0007 ", "flag": true}`)
	require.NoError(t, p.Parse())

	assert.True(t, p.IsJSON())
	assert.Equal(t, "12.10", p.Get("amount"), "json numbers keep their exact text")
	assert.Equal(t, "Lunch", p.Get("description"))
	assert.Equal(t, "true", p.Get("flag"))
	assert.True(t, p.Has("flag"))
	assert.False(t, p.Has("missing"))
	assert.Equal(t, "", p.Get("missing"))
}

func TestRequestBodyParser_Form(t *testing.T) {
	p := newParser(t, "application/x-www-form-urlencoded", "amount=9.5&category=travel")
	require.NoError(t, p.Parse())

	assert.False(t, p.IsJSON())
	assert.Equal(t, "9.5", p.Get("amount"))
	assert.Equal(t, "travel", p.Get("category"))
}

func TestRequestBodyParser_Malformed(t *testing.T) {
	p := newParser(t, "application/json", `{"amount": `)
	err := p.Parse()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errMalformedBody))
	assert.Equal(t, err, p.Parse(), "parse result is memoized")
}

func TestRequestBodyParser_TooLarge(t *testing.T) {
	body := `{"description":"` + strings.Repeat("x", maxBodyBytes) + `"}`
	p := newParser(t, "application/json", body)
	assert.ErrorIs(t, p.Parse(), errMalformedBody)
}

func TestParseTransaction(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{"valid", `{"amount":"45.20","description":"Groceries run","category":"groceries","date":"2025-05-03","type":"Expense"}`, ""},
		{"missing amount", `{"description":"x","category":"Other","date":"2025-05-03","type":"expense"}`, "amount"},
		{"bad amount", `{"amount":"abc","description":"x","category":"Other","date":"2025-05-03","type":"expense"}`, "amount"},
		{"bad date", `{"amount":"1","description":"x","category":"Other","date":"03/05/2025","type":"expense"}`, "date"},
		{"bad type", `{"amount":"1","description":"x","category":"Other","date":"2025-05-03","type":"refund"}`, "type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newParser(t, "application/json", tt.body)
			require.NoError(t, p.Parse())
			tx, err := ParseTransaction(p)
			if tt.wantField == "" {
				require.NoError(t, err)
				assert.Equal(t, core.Groceries, tx.Category)
				assert.Equal(t, core.Expense, tx.Type)
				assert.Equal(t, "45.2", tx.Amount.String())
				assert.Equal(t, time.Date(2025, 5, 3, 0, 0, 0, 0, time.UTC), tx.Date)
				return
			}
			var ve *core.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.wantField, ve.Field)
		})
	}
}

func TestParseBudget_DefaultsToCurrentMonth(t *testing.T) {
	now := time.Date(2025, 6, 14, 10, 0, 0, 0, time.UTC)

	p := newParser(t, "", "category=Travel&amount=300")
	require.NoError(t, p.Parse())
	b, err := ParseBudget(p, now)
	require.NoError(t, err)
	assert.Equal(t, core.Month{Year: 2025, Month: time.June}, b.Month)
	assert.Equal(t, core.Travel, b.Category)

	p = newParser(t, "application/json", `{"category":"Travel","amount":300,"month":"2025-13"}`)
	require.NoError(t, p.Parse())
	_, err = ParseBudget(p, now)
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter(url.Values{"q": {" rent "}, "category": {"rent/mortgage"}, "type": {"EXPENSE"}})
	require.NoError(t, err)
	assert.Equal(t, core.Filter{Query: "rent", Category: core.RentMortgage, Type: core.Expense}, f)

	_, err = ParseFilter(url.Values{"type": {"transfer"}})
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestParseMonthQuery(t *testing.T) {
	m, err := ParseMonthQuery(url.Values{}, "month")
	require.NoError(t, err)
	assert.True(t, m.IsZero())

	m, err = ParseMonthQuery(url.Values{"month": {"2024-02"}}, "month")
	require.NoError(t, err)
	assert.Equal(t, core.Month{Year: 2024, Month: time.February}, m)
}

func TestParseReferenceTime(t *testing.T) {
	rome, err := time.LoadLocation("Europe/Rome")
	require.NoError(t, err)
	now := time.Date(2025, 6, 14, 10, 0, 0, 0, rome)

	tests := []struct {
		name string
		at   string
		want time.Time
	}{
		{"absent", "", now},
		{"month", "2025-02", time.Date(2025, 2, 1, 0, 0, 0, 0, rome)},
		{"date", "2025-02-10", time.Date(2025, 2, 10, 0, 0, 0, 0, rome)},
		{"instant", "2025-01-31T23:30:00Z", time.Date(2025, 2, 1, 0, 30, 0, 0, rome)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := url.Values{}
			if tt.at != "" {
				q.Set("at", tt.at)
			}
			got, err := ParseReferenceTime(q, now)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v, want %v", got, tt.want)
			assert.Equal(t, rome, got.Location())
		})
	}

	_, err = ParseReferenceTime(url.Values{"at": {"yesterday"}}, now)
	var ve *core.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "at", ve.Field)
}
