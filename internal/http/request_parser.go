// Package http exposes the ledger over a JSON API.
//
// This file turns query strings and request bodies into the raw form types
// core validates, so handlers never parse values themselves.

package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"fiscora/internal/core"
)

// maxBodyBytes bounds every request body the parser reads.
const maxBodyBytes = 1 << 20

// MonthParams holds parsed year/month values from request parameters.
type MonthParams struct {
	Year  int
	Month int
}

// ParseMonthParams extracts year and month from query parameters. Missing,
// unparseable or out-of-range values fall back to now.
func ParseMonthParams(query url.Values, now time.Time) MonthParams {
	params := MonthParams{
		Year:  now.Year(),
		Month: int(now.Month()),
	}

	if v := strings.TrimSpace(query.Get("year")); v != "" {
		if y, err := strconv.Atoi(v); err == nil && y >= 1 && y <= 9999 {
			params.Year = y
		}
	}
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		if m, err := strconv.Atoi(v); err == nil && m >= 1 && m <= 12 {
			params.Month = m
		}
	}

	return params
}

// parseIncoming reads the income query flag. ok is false when it is absent
// or not a boolean.
func parseIncoming(query url.Values) (incoming bool, ok bool) {
	v := strings.TrimSpace(query.Get("income"))
	if v == "" {
		return false, false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, false
	}
	return b, true
}

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing.
func NewRequestBodyParser(w http.ResponseWriter, r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	p.body, p.err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	return p
}

// Parse attempts to parse the body as JSON or form data.
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

	if trimmed[0] == '{' || strings.HasPrefix(p.contentType, "application/json") {
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		p.jsonData = make(map[string]any)
		if err := dec.Decode(&p.jsonData); err != nil {
			p.jsonData = nil
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(trimmed))
	return p.err
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

// Bool reads key as a checkbox-style flag: true, on and 1 are set,
// everything else is not.
func (p *RequestBodyParser) Bool(key string) bool {
	switch strings.ToLower(p.Get(key)) {
	case "true", "on", "1":
		return true
	}
	return false
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// TransactionForm collects the transaction fields of the body.
func (p *RequestBodyParser) TransactionForm() core.TransactionForm {
	return core.TransactionForm{
		Amount:       p.Get("amount"),
		Incoming:     p.Bool("incoming"),
		Description:  p.Get("description"),
		StartDate:    p.Get("startDate"),
		Recurring:    p.Bool("recurring"),
		EndDate:      p.Get("endDate"),
		Interval:     p.Get("interval"),
		DaysInterval: p.Get("daysInterval"),
		Type:         p.Get("type"),
	}
}

func (p *RequestBodyParser) BudgetForm() core.BudgetForm {
	return core.BudgetForm{
		Name:        p.Get("name"),
		Description: p.Get("description"),
		Amount:      p.Get("amount"),
		StartDate:   p.Get("startDate"),
		EndDate:     p.Get("endDate"),
	}
}

func (p *RequestBodyParser) BudgetExpenseForm() core.BudgetExpenseForm {
	return core.BudgetExpenseForm{
		Name:            p.Get("name"),
		Description:     p.Get("description"),
		AllocatedAmount: p.Get("allocatedAmount"),
		CurrentAmount:   p.Get("currentAmount"),
	}
}

// stringValue converts a decoded JSON value to its form representation.
// null and nested values read as empty.
func stringValue(v any) string {
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

// sanitizeInput removes control characters except tab, newline and
// carriage return, and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}
