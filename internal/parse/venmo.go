package parse

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"ledgermail/internal/common"
	"ledgermail/internal/model"
)

var (
	venmoAmountRe = regexp.MustCompile(`\$?([\d,]+\.\d{2})`)
	venmoPartyRe  = regexp.MustCompile(`(?i)^(.+?)\s*(?:paid you|sent you|charged you)`)
	venmoPayeeRe  = regexp.MustCompile(`(?i)you paid\s+(.+?)\s*\$`)
	venmoNoteRe   = regexp.MustCompile(`(?i)(?:Note|For|Description)[:\s]+["']?([^"'<\n]+)`)
)

// Venmo parses a payment notification email. Venmo emails carry exactly
// one transaction. The amount is signed: "paid you"/"sent you" is money in
// (positive), "charged you"/"you paid" is money out (negative).
func Venmo(email *model.RawEmail) (model.ParsedPayment, error) {
	subject := strings.TrimSpace(email.Subject)
	body := html.UnescapeString(email.Body)
	lowerSubject := strings.ToLower(subject)

	isCharge := strings.Contains(lowerSubject, "charged you") || strings.Contains(lowerSubject, "you paid")

	m := venmoAmountRe.FindStringSubmatch(subject)
	if m == nil {
		m = venmoAmountRe.FindStringSubmatch(body)
	}
	if m == nil {
		return model.ParsedPayment{}, fmt.Errorf("%w: no amount in %q", common.ErrUnparseableEmail, subject)
	}
	amount := parseDollars(m[1])
	if isCharge {
		amount = -amount
	}

	counterparty := "Unknown"
	if pm := venmoPayeeRe.FindStringSubmatch(subject); pm != nil {
		counterparty = strings.TrimSpace(pm[1])
	} else if pm := venmoPartyRe.FindStringSubmatch(subject); pm != nil {
		counterparty = strings.TrimSpace(stripForwardPrefix(pm[1]))
	}

	note := ""
	if nm := venmoNoteRe.FindStringSubmatch(body); nm != nil {
		note = strings.TrimSpace(nm[1])
	}

	return model.ParsedPayment{
		EmailID:      email.ID,
		Counterparty: counterparty,
		Note:         note,
		Amount:       amount,
		Date:         email.Date,
	}, nil
}

// stripForwardPrefix removes "Fwd:" style prefixes a forwarding client
// prepends to the subject.
func stripForwardPrefix(s string) string {
	for {
		trimmed := strings.TrimSpace(s)
		lower := strings.ToLower(trimmed)
		switch {
		case strings.HasPrefix(lower, "fwd:"):
			s = trimmed[4:]
		case strings.HasPrefix(lower, "fw:"):
			s = trimmed[3:]
		case strings.HasPrefix(lower, "re:"):
			s = trimmed[3:]
		default:
			return trimmed
		}
	}
}
