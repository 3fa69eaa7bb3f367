package model

import "time"

// TransactionPatch is a partial update to an existing ledger transaction.
// Nil fields are left untouched.
type TransactionPatch struct {
	Memo       *string
	CategoryID *string
}

// NewTransaction is a request to insert a transaction into the ledger.
type NewTransaction struct {
	Date       time.Time
	AccountID  string
	PayeeName  string
	Memo       string
	CategoryID string
	Amount     Milliunits
}
