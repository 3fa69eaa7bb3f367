package classify

import (
	"regexp"
	"strings"

	"ledgermail/internal/model"
)

var (
	amazonLinkRe = regexp.MustCompile(`(?i)Amazon Link:\s*https?://\S+`)
	urlRe        = regexp.MustCompile(`https?://\S+`)
	spaceRe      = regexp.MustCompile(`\s+`)
)

// CleanText strips URLs and collapses whitespace so keyword matching sees
// only the descriptive text.
func CleanText(text string) string {
	text = amazonLinkRe.ReplaceAllString(text, "")
	text = urlRe.ReplaceAllString(text, "")
	return strings.TrimSpace(spaceRe.ReplaceAllString(text, " "))
}

// OrderText selects the single most representative line item of an order
// for classification. An explicit price wins (highest first); otherwise
// source order decides, with the subject-line item treated as most
// prominent. Empty return means classification is skipped, not an error.
func OrderText(o model.ParsedOrder) string {
	var priced *model.LineItem
	for i := range o.Items {
		it := &o.Items[i]
		if it.Price == nil {
			continue
		}
		if priced == nil || *it.Price > *priced.Price {
			priced = it
		}
	}
	if priced != nil {
		return CleanText(priced.Name)
	}
	if o.SubjectItem != "" {
		return CleanText(o.SubjectItem)
	}
	if len(o.Items) > 0 {
		return CleanText(o.Items[0].Name)
	}
	return ""
}

// PaymentText combines a payment's counterparty and note for
// classification. Venmo payments are trivially single-item.
func PaymentText(p model.ParsedPayment) string {
	parts := make([]string, 0, 2)
	if p.Counterparty != "" {
		parts = append(parts, p.Counterparty)
	}
	if p.Note != "" {
		parts = append(parts, p.Note)
	}
	return CleanText(strings.Join(parts, " "))
}
