// Package model defines the core domain types used throughout the application.
package model

import (
	"strings"
	"time"
)

// RawEmail is a fetched inbox message. It is immutable once fetched; only
// the mail source mutates its labels, and only after a successful ledger
// mutation.
type RawEmail struct {
	Date    time.Time
	ID      string
	From    string
	To      string
	Subject string
	Body    string
	Labels  []string
}

// HasLabel reports whether the email carries the given label
// (case-insensitive, matching Gmail's behavior).
func (e *RawEmail) HasLabel(name string) bool {
	for _, l := range e.Labels {
		if strings.EqualFold(l, name) {
			return true
		}
	}
	return false
}
