// Package api implements the backend ports against a remote ledger API.
// Every call forwards the caller's bearer token taken from the context.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"fiscora/internal/core"
	"fiscora/internal/middleware/session"
)

// Client talks to the remote ledger API.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	logger  *slog.Logger
}

// NewClient builds a client for baseURL (for example https://host/api/).
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("parse API URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("API URL must be http(s), got %q", baseURL)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: u,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}, nil
}

// FetchAuthorized performs one authenticated request. endpoint is relative
// to the base URL and may carry a query string. A non-nil body is sent as
// JSON. The caller owns the response body.
func (c *Client) FetchAuthorized(ctx context.Context, endpoint, token, method string, body any) (*http.Response, error) {
	ref, err := url.Parse(strings.TrimLeft(endpoint, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse endpoint %q: %w", endpoint, err)
	}
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.ResolveReference(ref).String(), reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.http.Do(req)
}

// do runs FetchAuthorized with the context token and decodes a 2xx JSON
// response into out (skipped when out is nil).
func (c *Client) do(ctx context.Context, method, endpoint string, body, out any) error {
	token, ok := session.TokenFromContext(ctx)
	if !ok {
		return core.ErrUnauthorized
	}
	start := time.Now()
	resp, err := c.FetchAuthorized(ctx, endpoint, token, method, body)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	c.logger.DebugContext(ctx, "Remote API call",
		"component", "backend",
		"method", method,
		"endpoint", endpoint,
		"status_code", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds())

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s %s: %w", method, endpoint, core.ErrNotFound)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%s %s: %w", method, endpoint, core.ErrUnauthorized)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: unexpected status %d: %s", method, endpoint, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, endpoint, err)
	}
	return nil
}

// Ping checks that the remote API answers at all.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL.ResolveReference(&url.URL{Path: "ping"}).String(), nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	resp.Body.Close()
	if resp.StatusCode >= 500 {
		return fmt.Errorf("ping: status %d", resp.StatusCode)
	}
	return nil
}

func transactionsQuery(f core.TransactionFilter) string {
	q := url.Values{}
	if f.Period.Year != 0 {
		q.Set("year", strconv.Itoa(f.Period.Year))
		if f.Period.Month != 0 {
			q.Set("month", strconv.Itoa(f.Period.Month))
		}
	}
	if f.Incoming != nil {
		q.Set("income", strconv.FormatBool(*f.Incoming))
	}
	if len(q) == 0 {
		return "transactions"
	}
	return "transactions?" + q.Encode()
}

// ListTransactions returns the remote listing as is. Records with
// unparseable dates come back with zero dates so aggregation can report
// and skip them rather than failing the whole listing.
func (c *Client) ListTransactions(ctx context.Context, f core.TransactionFilter) ([]core.Transaction, error) {
	var records []transactionRecord
	if err := c.do(ctx, http.MethodGet, transactionsQuery(f), nil, &records); err != nil {
		return nil, err
	}
	out := make([]core.Transaction, 0, len(records))
	for _, r := range records {
		out = append(out, r.toCore())
	}
	return out, nil
}

func (c *Client) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	var r transactionRecord
	if err := c.do(ctx, http.MethodGet, "transactions/"+strconv.FormatInt(id, 10), nil, &r); err != nil {
		return core.Transaction{}, err
	}
	return r.toCore(), nil
}

func (c *Client) CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	var r transactionRecord
	if err := c.do(ctx, http.MethodPost, "transactions", recordFromCore(tx), &r); err != nil {
		return core.Transaction{}, err
	}
	return r.toCore(), nil
}

func (c *Client) UpdateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	var r transactionRecord
	if err := c.do(ctx, http.MethodPut, "transactions/"+strconv.FormatInt(tx.ID, 10), recordFromCore(tx), &r); err != nil {
		return core.Transaction{}, err
	}
	return r.toCore(), nil
}

func (c *Client) DeleteTransaction(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "transactions/"+strconv.FormatInt(id, 10), nil, nil)
}

func (c *Client) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	var out []core.Budget
	if err := c.do(ctx, http.MethodGet, "budgets", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetBudget(ctx context.Context, id string) (core.Budget, error) {
	var b core.Budget
	err := c.do(ctx, http.MethodGet, "budgets/"+url.PathEscape(id), nil, &b)
	return b, err
}

func (c *Client) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	var out core.Budget
	err := c.do(ctx, http.MethodPost, "budgets", b, &out)
	return out, err
}

func (c *Client) UpdateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	var out core.Budget
	err := c.do(ctx, http.MethodPut, "budgets/"+url.PathEscape(b.ID), b, &out)
	return out, err
}

func (c *Client) DeleteBudget(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "budgets/"+url.PathEscape(id), nil, nil)
}

func (c *Client) AddBudgetExpense(ctx context.Context, e core.BudgetExpense) (core.BudgetExpense, error) {
	var out core.BudgetExpense
	err := c.do(ctx, http.MethodPost, "budgets/"+url.PathEscape(e.BudgetID)+"/expenses", e, &out)
	return out, err
}

func (c *Client) UpdateBudgetExpense(ctx context.Context, e core.BudgetExpense) (core.BudgetExpense, error) {
	var out core.BudgetExpense
	endpoint := fmt.Sprintf("budgets/%s/expenses/%d", url.PathEscape(e.BudgetID), e.ID)
	err := c.do(ctx, http.MethodPut, endpoint, e, &out)
	return out, err
}

func (c *Client) DeleteBudgetExpense(ctx context.Context, budgetID string, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("budgets/%s/expenses/%d", url.PathEscape(budgetID), id), nil, nil)
}

func (c *Client) Intervals(ctx context.Context) ([]string, error) {
	return c.catalog(ctx, "intervals")
}

func (c *Client) IncomeTypes(ctx context.Context) ([]string, error) {
	return c.catalog(ctx, "income")
}

func (c *Client) ExpenseTypes(ctx context.Context) ([]string, error) {
	return c.catalog(ctx, "expense")
}

func (c *Client) catalog(ctx context.Context, kind string) ([]string, error) {
	var out []string
	if err := c.do(ctx, http.MethodGet, "transactions/types/"+kind, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
