package match

import (
	"fmt"
	"strings"

	"ledgermail/internal/model"
)

// TruncationMarker is appended when a memo is cut to fit the ledger's
// length limit.
const TruncationMarker = "..."

// BuildMemo rebuilds a transaction memo from the order's line items:
// "<name> x <qty> ($<price>): <link>" per item, joined with " | ". Parts
// the source email didn't provide are omitted. Falls back to the
// subject-line item, then the bare order number.
func BuildMemo(order model.ParsedOrder) string {
	if len(order.Items) == 0 {
		if order.SubjectItem != "" {
			if order.DetailsURL != "" {
				return fmt.Sprintf("%s: %s", order.SubjectItem, order.DetailsURL)
			}
			return order.SubjectItem
		}
		return fmt.Sprintf("Order %s", order.OrderNumber)
	}

	parts := make([]string, 0, len(order.Items))
	for _, item := range order.Items {
		var b strings.Builder
		b.WriteString(item.Name)
		if item.Quantity > 1 {
			fmt.Fprintf(&b, " x %d", item.Quantity)
		}
		if item.Price != nil {
			fmt.Fprintf(&b, " ($%.2f)", *item.Price)
		}
		if item.Link != "" {
			fmt.Fprintf(&b, ": %s", item.Link)
		}
		parts = append(parts, b.String())
	}
	return strings.Join(parts, " | ")
}

// Truncate cuts a memo to at most limit runes, ending it in exactly one
// truncation marker. A memo that already fits is returned unchanged, even
// if it happens to end in the marker itself.
func Truncate(memo string, limit int) string {
	runes := []rune(memo)
	if len(runes) <= limit {
		return memo
	}
	if limit <= len(TruncationMarker) {
		return TruncationMarker[:limit]
	}
	cut := strings.TrimRight(string(runes[:limit-len(TruncationMarker)]), ". ")
	return cut + TruncationMarker
}
