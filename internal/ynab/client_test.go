package ynab

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgermail/internal/model"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New("test-token", "budget-1", WithBaseURL(server.URL))
	require.NoError(t, err)
	return client, server
}

func TestNewValidation(t *testing.T) {
	_, err := New("", "budget-1")
	assert.Error(t, err)

	_, err = New("token", "")
	assert.Error(t, err)
}

func TestCategories(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/budgets/budget-1/categories", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"category_groups": []map[string]any{
					{
						"name": "Everyday",
						"categories": []map[string]any{
							{"id": "cat-1", "name": "Groceries"},
							{"id": "cat-2", "name": "Baby Supplies", "hidden": true},
							{"id": "cat-3", "name": "Gone", "deleted": true},
						},
					},
					{
						"name":    "Old Group",
						"deleted": true,
						"categories": []map[string]any{
							{"id": "cat-4", "name": "Should Not Appear"},
						},
					},
				},
			},
		})
	}))

	categories, err := client.Categories(context.Background())
	require.NoError(t, err)

	require.Len(t, categories, 2)
	assert.Equal(t, model.Category{ID: "cat-1", Name: "Groceries"}, categories[0])
	assert.Equal(t, model.Category{ID: "cat-2", Name: "Baby Supplies", Hidden: true}, categories[1])
}

func TestTransactions(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/budgets/budget-1/transactions", r.URL.Path)
		assert.Equal(t, "2024-06-01", r.URL.Query().Get("since_date"))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"transactions": []map[string]any{
					{
						"id":            "t1",
						"date":          "2024-06-04",
						"amount":        -42170,
						"payee_name":    "Amazon.com",
						"category_id":   "cat-1",
						"category_name": "Groceries",
						"account_id":    "acct-1",
						"cleared":       "cleared",
						"approved":      true,
					},
					{
						"id":      "t2",
						"date":    "2024-06-05",
						"amount":  -5000,
						"deleted": true,
					},
				},
			},
		})
	}))

	since := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	txns, err := client.Transactions(context.Background(), since)
	require.NoError(t, err)

	require.Len(t, txns, 1)
	txn := txns[0]
	assert.Equal(t, "t1", txn.ID)
	assert.Equal(t, model.Milliunits(-42170), txn.Amount)
	assert.Equal(t, "Amazon.com", txn.PayeeName)
	assert.Equal(t, time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC), txn.Date)
	assert.True(t, txn.Cleared)
	assert.True(t, txn.Approved)
}

func TestUpdateTransaction(t *testing.T) {
	var gotBody map[string]map[string]any
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/budgets/budget-1/transactions/t1", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"data":{}}`))
	}))

	memo := "Baby Wipes x 2 ($18.99)"
	categoryID := "cat-2"
	err := client.UpdateTransaction(context.Background(), "t1", model.TransactionPatch{
		Memo:       &memo,
		CategoryID: &categoryID,
	})
	require.NoError(t, err)

	assert.Equal(t, memo, gotBody["transaction"]["memo"])
	assert.Equal(t, categoryID, gotBody["transaction"]["category_id"])
}

func TestUpdateTransactionEmptyPatchIsNoop(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		t.Fatal("no request expected for an empty patch")
	}))

	require.NoError(t, client.UpdateTransaction(context.Background(), "t1", model.TransactionPatch{}))
}

func TestCreateTransaction(t *testing.T) {
	var gotBody map[string]map[string]any
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/budgets/budget-1/transactions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"transaction": map[string]any{"id": "new-1"}},
		})
	}))

	id, err := client.CreateTransaction(context.Background(), model.NewTransaction{
		Date:      time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC),
		AccountID: "acct-1",
		PayeeName: "John Smith",
		Memo:      "splitting dinner",
		Amount:    25000,
	})
	require.NoError(t, err)
	assert.Equal(t, "new-1", id)

	assert.Equal(t, "acct-1", gotBody["transaction"]["account_id"])
	assert.Equal(t, "2024-06-05", gotBody["transaction"]["date"])
	assert.Equal(t, float64(25000), gotBody["transaction"]["amount"])
	assert.Equal(t, "John Smith", gotBody["transaction"]["payee_name"])
}

func TestWriteRetriesOnServerError(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"data":{"transaction":{"id":"new-1"}}}`))
	}))

	id, err := client.CreateTransaction(context.Background(), model.NewTransaction{
		Date:      time.Now(),
		AccountID: "acct-1",
		PayeeName: "John Smith",
		Amount:    1000,
	})
	require.NoError(t, err)
	assert.Equal(t, "new-1", id)
	assert.Equal(t, int32(2), calls.Load())
}

func TestWriteDoesNotRetryClientError(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))

	_, err := client.CreateTransaction(context.Background(), model.NewTransaction{
		Date:      time.Now(),
		AccountID: "acct-1",
		PayeeName: "John Smith",
		Amount:    1000,
	})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}
