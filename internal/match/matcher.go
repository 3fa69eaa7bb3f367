// Package match reconciles parsed Amazon orders against transactions the
// ledger already holds.
package match

import (
	"strings"
	"time"

	"ledgermail/internal/model"
)

// Matcher finds the ledger transaction belonging to a parsed order. It
// remembers matches it has handed out so no transaction is claimed by two
// orders within one run.
type Matcher struct {
	used           map[string]bool
	vendorMarker   string
	vendorCategory string
	dateBufferDays int
}

// Options configure a Matcher.
type Options struct {
	// VendorMarker matches against the payee text, case-insensitively.
	VendorMarker string
	// VendorCategory accepts transactions the ledger already filed under
	// the vendor's own category even when the payee text differs.
	VendorCategory string
	// DateBufferDays is the +/- window around the order date.
	DateBufferDays int
}

// NewMatcher creates a Matcher.
func NewMatcher(opts Options) *Matcher {
	if opts.VendorMarker == "" {
		opts.VendorMarker = "amazon"
	}
	if opts.DateBufferDays <= 0 {
		opts.DateBufferDays = 1
	}
	return &Matcher{
		vendorMarker:   strings.ToLower(opts.VendorMarker),
		vendorCategory: opts.VendorCategory,
		dateBufferDays: opts.DateBufferDays,
		used:           make(map[string]bool),
	}
}

// Match returns the single best candidate for the order, or nil. All
// criteria are required: vendor payee or vendor category, exact
// sign-normalized amount, date within the buffer, not already claimed this
// run. Ties break deterministically: closest date first, then smallest ID.
func (m *Matcher) Match(order model.ParsedOrder, transactions []model.LedgerTransaction) *model.LedgerTransaction {
	// Orders are debits: a $42.17 order is -42170 milliunits in the ledger.
	want := -model.MilliunitsFromDollars(order.Total)

	var best *model.LedgerTransaction
	bestDiff := 0
	for i := range transactions {
		txn := &transactions[i]
		if m.used[txn.ID] {
			continue
		}
		if txn.Amount != want {
			continue
		}
		diff := daysApart(order.Date, txn.Date)
		if diff > m.dateBufferDays {
			continue
		}
		if !m.vendorMatch(txn) {
			continue
		}

		if best == nil || diff < bestDiff || (diff == bestDiff && txn.ID < best.ID) {
			best = txn
			bestDiff = diff
		}
	}

	if best != nil {
		m.used[best.ID] = true
	}
	return best
}

func (m *Matcher) vendorMatch(txn *model.LedgerTransaction) bool {
	if strings.Contains(strings.ToLower(txn.PayeeName), m.vendorMarker) {
		return true
	}
	return m.vendorCategory != "" && txn.CategoryName == m.vendorCategory
}

func daysApart(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	diff := int(da.Sub(db).Hours() / 24)
	if diff < 0 {
		diff = -diff
	}
	return diff
}
