// Package http provides the JSON API server and its handlers.
//
// This file implements utilities for parsing and validating HTTP request data.
// Bodies may be JSON or form-encoded; both are read through RequestBodyParser
// so handlers never care which one the client sent.

package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/core"
)

const maxBodyBytes = 1 << 20

// errMalformedBody marks a body that could not be decoded at all (400), as
// opposed to a decoded body with invalid fields (422).
var errMalformedBody = errors.New("malformed request body")

// RequestBodyParser handles different content types for request body parsing.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]interface{}
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser reads the request body (at most 1 MiB) once and keeps
// it for subsequent parsing.
func NewRequestBodyParser(w http.ResponseWriter, r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	p.body, p.err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if p.err != nil {
		p.err = fmt.Errorf("%w: %v", errMalformedBody, p.err)
	}
	return p
}

// Parse decodes the body as JSON when it looks like a JSON object, otherwise
// as form data. JSON numbers keep their exact text.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	trimmed := bytes.TrimSpace(p.body)
	if len(trimmed) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if trimmed[0] == '{' || trimmed[0] == '[' || strings.HasPrefix(p.contentType, "application/json") {
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		p.jsonData = make(map[string]interface{})
		if err := dec.Decode(&p.jsonData); err != nil {
			p.jsonData = nil
			p.err = fmt.Errorf("%w: %v", errMalformedBody, err)
			return p.err
		}
		return nil
	}

	form, err := url.ParseQuery(string(trimmed))
	if err != nil {
		p.err = fmt.Errorf("%w: %v", errMalformedBody, err)
		return p.err
	}
	p.formData = form
	return nil
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// Has reports whether key was present in the body, even if empty.
func (p *RequestBodyParser) Has(key string) bool {
	if p.jsonData != nil {
		_, ok := p.jsonData[key]
		return ok
	}
	if p.formData != nil {
		_, ok := p.formData[key]
		return ok
	}
	return false
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// ParseTransaction builds a transaction from the body fields amount,
// description, category, date and type. Field problems are returned as
// *core.ValidationError.
func ParseTransaction(p *RequestBodyParser) (core.Transaction, error) {
	amountStr := p.Get("amount")
	if amountStr == "" {
		return core.Transaction{}, &core.ValidationError{Field: "amount", Reason: "is required"}
	}
	amount, err := core.ParseAmount(amountStr)
	if err != nil {
		return core.Transaction{}, &core.ValidationError{Field: "amount", Reason: "must be a number"}
	}

	date, err := core.ParseDate(p.Get("date"))
	if err != nil {
		return core.Transaction{}, err
	}

	kind, err := core.ParseKind(p.Get("type"))
	if err != nil {
		return core.Transaction{}, err
	}

	return core.Transaction{
		Amount:      amount,
		Description: p.Get("description"),
		Category:    core.NormalizeCategory(p.Get("category")),
		Date:        date,
		Type:        kind,
	}, nil
}

// ParseBudget builds a budget from the body fields category, amount and month.
// A missing month means the month containing now.
func ParseBudget(p *RequestBodyParser, now time.Time) (core.Budget, error) {
	amountStr := p.Get("amount")
	if amountStr == "" {
		return core.Budget{}, &core.ValidationError{Field: "amount", Reason: "is required"}
	}
	amount, err := core.ParseAmount(amountStr)
	if err != nil {
		return core.Budget{}, &core.ValidationError{Field: "amount", Reason: "must be a number"}
	}

	month := core.MonthOf(now, now.Location())
	if v := p.Get("month"); v != "" {
		if month, err = core.ParseMonth(v); err != nil {
			return core.Budget{}, err
		}
	}

	return core.Budget{
		Category: core.NormalizeCategory(p.Get("category")),
		Amount:   amount,
		Month:    month,
	}, nil
}

// ParseFilter reads the q, category and type query parameters.
func ParseFilter(query url.Values) (core.Filter, error) {
	f := core.Filter{Query: strings.TrimSpace(query.Get("q"))}
	if c := strings.TrimSpace(query.Get("category")); c != "" {
		f.Category = core.NormalizeCategory(c)
	}
	if t := strings.TrimSpace(query.Get("type")); t != "" {
		kind, err := core.ParseKind(t)
		if err != nil {
			return core.Filter{}, err
		}
		f.Type = kind
	}
	return f, nil
}

// ParseMonthQuery reads an optional YYYY-MM month parameter. Absent means zero.
func ParseMonthQuery(query url.Values, key string) (core.Month, error) {
	v := strings.TrimSpace(query.Get(key))
	if v == "" {
		return core.Month{}, nil
	}
	return core.ParseMonth(v)
}

// ParseReferenceTime reads the "at" parameter as an RFC3339 instant, a
// YYYY-MM-DD date or a YYYY-MM month, interpreted in now's location. Absent
// means now.
func ParseReferenceTime(query url.Values, now time.Time) (time.Time, error) {
	v := strings.TrimSpace(query.Get("at"))
	if v == "" {
		return now, nil
	}
	loc := now.Location()
	if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
		return t.In(loc), nil
	}
	if t, err := time.ParseInLocation("2006-01-02", v, loc); err == nil {
		return t, nil
	}
	if m, err := core.ParseMonth(v); err == nil {
		return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, loc), nil
	}
	return time.Time{}, &core.ValidationError{Field: "at", Reason: "must be RFC3339, YYYY-MM-DD or YYYY-MM"}
}
