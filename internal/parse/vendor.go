package parse

import (
	"strings"

	"ledgermail/internal/model"
)

// Vendor names for routing and success markers.
const (
	VendorAmazon = "amazon"
	VendorVenmo  = "venmo"
)

// DetectVendor routes an email to its integration by subject pattern,
// falling back to the sender domain for unforwarded notifications.
// Returns "" for unrecognized mail, which the run skips without marking.
func DetectVendor(email *model.RawEmail) string {
	subject := strings.ToLower(email.Subject)

	switch {
	case strings.Contains(email.Subject, "Ordered:") || strings.Contains(subject, "order"):
		return VendorAmazon
	case strings.Contains(subject, "paid you"),
		strings.Contains(subject, "sent you"),
		strings.Contains(subject, "you paid"),
		strings.Contains(subject, "charged you"):
		return VendorVenmo
	}

	sender := strings.ToLower(email.From)
	switch {
	case strings.Contains(sender, "@amazon.com"):
		return VendorAmazon
	case strings.Contains(sender, "@venmo.com"):
		return VendorVenmo
	}
	return ""
}
