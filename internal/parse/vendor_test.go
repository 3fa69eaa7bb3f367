package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ledgermail/internal/model"
)

func TestDetectVendor(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		from    string
		want    string
	}{
		{
			name:    "amazon ordered subject",
			subject: `Fwd: Ordered: "Baby Wipes"`,
			want:    VendorAmazon,
		},
		{
			name:    "amazon order subject",
			subject: "Fwd: Your Amazon.com order has shipped",
			want:    VendorAmazon,
		},
		{
			name:    "venmo paid you",
			subject: "Fwd: John Smith paid you $25.00",
			want:    VendorVenmo,
		},
		{
			name:    "venmo sent you",
			subject: "Fwd: John Smith sent you $5.00",
			from:    "someone@gmail.com",
			want:    VendorVenmo,
		},
		{
			name:    "venmo charge",
			subject: "Fwd: Maria Garcia charged you $10.00",
			want:    VendorVenmo,
		},
		{
			name:    "amazon sender fallback",
			subject: "Shipment update",
			from:    "ship-confirm@amazon.com",
			want:    VendorAmazon,
		},
		{
			name:    "venmo sender fallback",
			subject: "Payment update",
			from:    "venmo@venmo.com",
			want:    VendorVenmo,
		},
		{
			name:    "unrecognized",
			subject: "Lunch on Friday?",
			from:    "friend@example.com",
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			email := &model.RawEmail{Subject: tt.subject, From: tt.from}
			assert.Equal(t, tt.want, DetectVendor(email))
		})
	}
}
