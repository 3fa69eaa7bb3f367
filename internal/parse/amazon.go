// Package parse extracts structured transactions from raw vendor emails.
// The parsers are text and regex heuristics over forwarded notification
// bodies; they are independent of each other and of the mail transport.
package parse

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"
	"time"

	"ledgermail/internal/common"
	"ledgermail/internal/model"
)

var (
	orderNumberRe = regexp.MustCompile(`\d{3}-\d{7}-\d{7}`)
	orderTotalRe  = regexp.MustCompile(`(?i)(?:Order\s+Total|Grand\s+Total|Total)[:\s]*\$?([\d,]+\.\d{2})`)
	dollarRe      = regexp.MustCompile(`\$([\d,]+\.\d{2})`)
	fwdDateRe     = regexp.MustCompile(`Date:\s+[A-Za-z]+,\s+([A-Za-z]+\s+\d{1,2},\s+\d{4})`)
	subjectItemRe = regexp.MustCompile(`Ordered:\s*["']([^"']+)`)
	productLinkRe = regexp.MustCompile(`(?is)<a[^>]*href="([^"]*/dp/[A-Z0-9]{10}[^"]*)"[^>]*>(.*?)</a>`)
	quantityRe    = regexp.MustCompile(`(?i)(?:Qty|Quantity)[:\s]*(\d+)`)
	tagRe         = regexp.MustCompile(`<[^>]+>`)
)

// Amazon parses an order confirmation email into one or more orders. A
// forwarded digest can carry several orders; each one matches and mutates
// independently downstream, so each gets its own record here.
func Amazon(email *model.RawEmail) ([]model.ParsedOrder, error) {
	body := html.UnescapeString(email.Body)

	subjectItem := ""
	if m := subjectItemRe.FindStringSubmatch(email.Subject); m != nil {
		subjectItem = strings.TrimSpace(m[1])
	}

	orderDate := email.Date
	// Forwarded emails carry the original send date in the forwarding
	// header; that is the real order date.
	if m := fwdDateRe.FindStringSubmatch(body); m != nil {
		if d, err := time.Parse("Jan 2, 2006", normalizeMonth(m[1])); err == nil {
			orderDate = d
		}
	}

	var orders []model.ParsedOrder
	seen := make(map[string]bool)
	for _, seg := range splitOrders(body) {
		if seg.orderNumber != "" && seen[seg.orderNumber] {
			continue
		}

		total, ok := extractTotal(seg.text)
		if seg.orderNumber == "" && !ok {
			continue
		}
		seen[seg.orderNumber] = true

		order := model.ParsedOrder{
			EmailID:     email.ID,
			OrderNumber: seg.orderNumber,
			Date:        orderDate,
			Total:       total,
			SubjectItem: subjectItem,
			Items:       extractItems(seg.text),
		}
		if seg.orderNumber != "" {
			order.DetailsURL = fmt.Sprintf(
				"https://www.amazon.com/gp/your-account/order-details?orderID=%s", seg.orderNumber)
		}
		orders = append(orders, order)
	}

	if len(orders) == 0 {
		return nil, fmt.Errorf("%w: no order number or total in %q", common.ErrUnparseableEmail, email.Subject)
	}
	return orders, nil
}

// orderSegment is the slice of body text belonging to one order number.
type orderSegment struct {
	orderNumber string
	text        string
}

// splitOrders slices the body at each distinct order number so that totals
// and items attach to the right order. A body with no order number is a
// single anonymous segment.
func splitOrders(body string) []orderSegment {
	locs := orderNumberRe.FindAllStringIndex(body, -1)
	if len(locs) == 0 {
		return []orderSegment{{text: body}}
	}

	// Collapse repeated mentions of the same number to its first position.
	firstAt := make(map[string]int)
	var numbers []string
	for _, loc := range locs {
		n := body[loc[0]:loc[1]]
		if _, ok := firstAt[n]; !ok {
			firstAt[n] = loc[0]
			numbers = append(numbers, n)
		}
	}

	segments := make([]orderSegment, 0, len(numbers))
	for i, n := range numbers {
		start := firstAt[n]
		end := len(body)
		if i+1 < len(numbers) {
			end = firstAt[numbers[i+1]]
		}
		// The total often precedes the first order number in forwarded
		// digests, so the first segment gets the preamble too.
		if i == 0 {
			start = 0
		}
		segments = append(segments, orderSegment{orderNumber: n, text: body[start:end]})
	}
	return segments
}

func extractTotal(text string) (float64, bool) {
	if m := orderTotalRe.FindStringSubmatch(text); m != nil {
		return parseDollars(m[1]), true
	}
	// Fallback: the first dollar amount in a forwarded confirmation is
	// usually the order total.
	if m := dollarRe.FindStringSubmatch(text); m != nil {
		return parseDollars(m[1]), true
	}
	return 0, false
}

// extractItems pulls product names from product-detail links, in source
// order. The first-listed item is the most prominent one.
func extractItems(text string) []model.LineItem {
	matches := productLinkRe.FindAllStringSubmatch(text, -1)
	var items []model.LineItem
	seen := make(map[string]bool)
	for _, m := range matches {
		if len(items) >= 5 {
			break
		}
		name := strings.TrimSpace(tagRe.ReplaceAllString(m[2], " "))
		name = strings.Join(strings.Fields(name), " ")
		if len(name) <= 5 || seen[name] {
			continue
		}
		seen[name] = true

		item := model.LineItem{Name: name, Link: m[1], Quantity: 1}
		// Price and quantity, when stated, follow the product link closely.
		tail := trailing(text, m[0], 200)
		if pm := dollarRe.FindStringSubmatch(tail); pm != nil {
			price := parseDollars(pm[1])
			item.Price = &price
		}
		if qm := quantityRe.FindStringSubmatch(tail); qm != nil {
			if q, err := strconv.Atoi(qm[1]); err == nil && q > 0 {
				item.Quantity = q
			}
		}
		items = append(items, item)
	}
	return items
}

// trailing returns up to n bytes of text following the first occurrence of
// marker.
func trailing(text, marker string, n int) string {
	idx := strings.Index(text, marker)
	if idx < 0 {
		return ""
	}
	start := idx + len(marker)
	end := start + n
	if end > len(text) {
		end = len(text)
	}
	return text[start:end]
}

func parseDollars(s string) float64 {
	f, _ := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	return f
}

// normalizeMonth maps full month names to the abbreviated form the date
// layout expects. Forwarding clients emit both.
func normalizeMonth(s string) string {
	for full, abbr := range map[string]string{
		"January": "Jan", "February": "Feb", "March": "Mar", "April": "Apr",
		"June": "Jun", "July": "Jul", "August": "Aug", "September": "Sep",
		"October": "Oct", "November": "Nov", "December": "Dec",
	} {
		if strings.Contains(s, full) {
			return strings.Replace(s, full, abbr, 1)
		}
	}
	return s
}
