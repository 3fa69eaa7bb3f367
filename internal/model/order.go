package model

import "time"

// LineItem is one product line extracted from an order email. Price is nil
// when the source email does not state one, which is common in forwarded
// confirmations.
type LineItem struct {
	Price    *float64
	Name     string
	Link     string
	Quantity int
}

// ParsedOrder is a structured Amazon order extracted from one email. A
// single email can carry several orders; each is matched and mutated
// independently.
type ParsedOrder struct {
	Date        time.Time
	EmailID     string
	OrderNumber string
	DetailsURL  string
	SubjectItem string
	Items       []LineItem
	Total       float64
}

// ParsedPayment is a structured Venmo payment extracted from one email.
// Amount is signed: positive for money received, negative for money sent.
type ParsedPayment struct {
	Date         time.Time
	EmailID      string
	Counterparty string
	Note         string
	Amount       float64
}
