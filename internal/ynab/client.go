// Package ynab is a thin client for the YNAB REST API, covering only what
// reconciliation needs: categories, a transaction window, memo/category
// patches, and inserts.
package ynab

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/avast/retry-go"

	"ledgermail/internal/common"
	"ledgermail/internal/model"
)

const defaultBaseURL = "https://api.ynab.com/v1"

// MemoMaxLen is the ledger's memo length limit.
const MemoMaxLen = 200

// Client talks to one YNAB budget.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string
	token      string
	budgetID   string
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint, for tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithLogger sets the client logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a client for the given budget.
func New(token, budgetID string, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: YNAB access token", common.ErrMissingConfig)
	}
	if budgetID == "" {
		return nil, fmt.Errorf("%w: YNAB budget ID", common.ErrMissingConfig)
	}

	c := &Client{
		token:    token,
		budgetID: budgetID,
		baseURL:  defaultBaseURL,
		logger:   slog.Default(),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Categories fetches the budget's category list, flattened across groups.
func (c *Client) Categories(ctx context.Context) ([]model.Category, error) {
	var payload struct {
		Data struct {
			CategoryGroups []struct {
				Name       string `json:"name"`
				Hidden     bool   `json:"hidden"`
				Deleted    bool   `json:"deleted"`
				Categories []struct {
					ID      string `json:"id"`
					Name    string `json:"name"`
					Hidden  bool   `json:"hidden"`
					Deleted bool   `json:"deleted"`
				} `json:"categories"`
			} `json:"category_groups"`
		} `json:"data"`
	}

	if err := c.get(ctx, "/budgets/"+c.budgetID+"/categories", &payload); err != nil {
		return nil, fmt.Errorf("fetching categories: %w", err)
	}

	var categories []model.Category
	for _, group := range payload.Data.CategoryGroups {
		if group.Deleted {
			continue
		}
		for _, cat := range group.Categories {
			if cat.Deleted {
				continue
			}
			categories = append(categories, model.Category{
				ID:     cat.ID,
				Name:   cat.Name,
				Hidden: cat.Hidden || group.Hidden,
			})
		}
	}
	return categories, nil
}

// Transactions fetches transactions on or after since.
func (c *Client) Transactions(ctx context.Context, since time.Time) ([]model.LedgerTransaction, error) {
	var payload struct {
		Data struct {
			Transactions []struct {
				ID           string           `json:"id"`
				Date         string           `json:"date"`
				Amount       model.Milliunits `json:"amount"`
				Memo         string           `json:"memo"`
				Cleared      string           `json:"cleared"`
				Approved     bool             `json:"approved"`
				PayeeName    string           `json:"payee_name"`
				CategoryID   string           `json:"category_id"`
				CategoryName string           `json:"category_name"`
				AccountID    string           `json:"account_id"`
				Deleted      bool             `json:"deleted"`
			} `json:"transactions"`
		} `json:"data"`
	}

	path := "/budgets/" + c.budgetID + "/transactions?since_date=" + url.QueryEscape(since.Format("2006-01-02"))
	if err := c.get(ctx, path, &payload); err != nil {
		return nil, fmt.Errorf("fetching transactions: %w", err)
	}

	transactions := make([]model.LedgerTransaction, 0, len(payload.Data.Transactions))
	for _, t := range payload.Data.Transactions {
		if t.Deleted {
			continue
		}
		date, err := time.Parse("2006-01-02", t.Date)
		if err != nil {
			return nil, fmt.Errorf("parsing transaction date %q: %w", t.Date, err)
		}
		transactions = append(transactions, model.LedgerTransaction{
			ID:           t.ID,
			Date:         date,
			Amount:       t.Amount,
			Memo:         t.Memo,
			PayeeName:    t.PayeeName,
			CategoryID:   t.CategoryID,
			CategoryName: t.CategoryName,
			AccountID:    t.AccountID,
			Cleared:      t.Cleared == "cleared" || t.Cleared == "reconciled",
			Approved:     t.Approved,
		})
	}
	return transactions, nil
}

// UpdateTransaction patches memo and/or category on an existing
// transaction. Nil patch fields are not sent.
func (c *Client) UpdateTransaction(ctx context.Context, id string, patch model.TransactionPatch) error {
	fields := map[string]any{}
	if patch.Memo != nil {
		fields["memo"] = *patch.Memo
	}
	if patch.CategoryID != nil {
		fields["category_id"] = *patch.CategoryID
	}
	if len(fields) == 0 {
		return nil
	}

	body := map[string]any{"transaction": fields}
	if err := c.write(ctx, http.MethodPut, "/budgets/"+c.budgetID+"/transactions/"+id, body, nil); err != nil {
		return fmt.Errorf("updating transaction %s: %w", id, err)
	}
	return nil
}

// CreateTransaction inserts a new transaction and returns its ID.
func (c *Client) CreateTransaction(ctx context.Context, txn model.NewTransaction) (string, error) {
	fields := map[string]any{
		"account_id": txn.AccountID,
		"date":       txn.Date.Format("2006-01-02"),
		"amount":     int64(txn.Amount),
		"payee_name": txn.PayeeName,
	}
	if txn.Memo != "" {
		fields["memo"] = txn.Memo
	}
	if txn.CategoryID != "" {
		fields["category_id"] = txn.CategoryID
	}

	var payload struct {
		Data struct {
			Transaction struct {
				ID string `json:"id"`
			} `json:"transaction"`
		} `json:"data"`
	}
	body := map[string]any{"transaction": fields}
	if err := c.write(ctx, http.MethodPost, "/budgets/"+c.budgetID+"/transactions", body, &payload); err != nil {
		return "", fmt.Errorf("creating transaction: %w", err)
	}
	return payload.Data.Transaction.ID, nil
}

// apiError carries the HTTP status for retry decisions.
type apiError struct {
	status int
	body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("YNAB API error (status %d): %s", e.status, e.body)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// write wraps mutations in a short retry on transient API failures.
func (c *Client) write(ctx context.Context, method, path string, in, out any) error {
	return retry.Do(
		func() error {
			return c.do(ctx, method, path, in, out)
		},
		retry.RetryIf(func(err error) bool {
			var apiErr *apiError
			if errors.As(err, &apiErr) {
				return apiErr.status == http.StatusTooManyRequests || apiErr.status >= 500
			}
			return false
		}),
		retry.Attempts(3),
		retry.Delay(2*time.Second),
		retry.LastErrorOnly(true),
	)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var reqBody io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrLedgerUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &apiError{status: resp.StatusCode, body: string(data)}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}
