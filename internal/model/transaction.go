package model

import (
	"fmt"
	"math"
	"time"
)

// Milliunits is the ledger's fixed-point amount representation:
// one dollar is 1000 milliunits, outflows are negative.
type Milliunits int64

// MilliunitsFromDollars converts a dollar amount to milliunits.
func MilliunitsFromDollars(dollars float64) Milliunits {
	return Milliunits(math.Round(dollars * 1000))
}

// Dollars converts milliunits back to a dollar amount.
func (m Milliunits) Dollars() float64 {
	return float64(m) / 1000.0
}

func (m Milliunits) String() string {
	if m < 0 {
		return fmt.Sprintf("-$%.2f", -m.Dollars())
	}
	return fmt.Sprintf("$%.2f", m.Dollars())
}

// LedgerTransaction is a transaction as the budgeting service stores it.
// The service owns these records; this program only reads them and requests
// memo/category mutations or inserts, never deletes.
type LedgerTransaction struct {
	Date         time.Time
	ID           string
	PayeeName    string
	Memo         string
	CategoryID   string
	CategoryName string
	AccountID    string
	Amount       Milliunits
	Cleared      bool
	Approved     bool
}

// Uncategorized reports whether the transaction has no category assigned.
func (t *LedgerTransaction) Uncategorized() bool {
	return t.CategoryID == ""
}
