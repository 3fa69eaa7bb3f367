package parse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgermail/internal/model"
)

func TestVenmo(t *testing.T) {
	received := time.Date(2024, 6, 5, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name             string
		subject          string
		body             string
		wantCounterparty string
		wantAmount       float64
		wantNote         string
	}{
		{
			name:             "payment received",
			subject:          "Fwd: John Smith paid you $25.00",
			body:             `Note: "splitting dinner"`,
			wantCounterparty: "John Smith",
			wantAmount:       25.00,
			wantNote:         "splitting dinner",
		},
		{
			name:             "charge is an outflow",
			subject:          "Fwd: Maria Garcia charged you $132.50",
			body:             "For: utilities",
			wantCounterparty: "Maria Garcia",
			wantAmount:       -132.50,
			wantNote:         "utilities",
		},
		{
			name:             "you paid is an outflow",
			subject:          "Fwd: You paid John Smith $15.00",
			body:             "",
			wantCounterparty: "John Smith",
			wantAmount:       -15.00,
		},
		{
			name:             "amount from body when subject omits it",
			subject:          "Fwd: John Smith sent you money",
			body:             "John Smith sent you $5.00",
			wantCounterparty: "John Smith",
			wantAmount:       5.00,
		},
		{
			name:             "thousands separator",
			subject:          "Fwd: Maria Garcia paid you $1,250.00",
			body:             "",
			wantCounterparty: "Maria Garcia",
			wantAmount:       1250.00,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			email := &model.RawEmail{
				ID:      "v-1",
				Subject: tt.subject,
				Body:    tt.body,
				Date:    received,
			}

			payment, err := Venmo(email)
			require.NoError(t, err)

			assert.Equal(t, tt.wantCounterparty, payment.Counterparty)
			assert.InDelta(t, tt.wantAmount, payment.Amount, 0.001)
			assert.Equal(t, tt.wantNote, payment.Note)
			assert.Equal(t, received, payment.Date)
			assert.Equal(t, "v-1", payment.EmailID)
		})
	}
}

func TestVenmoNoAmount(t *testing.T) {
	email := &model.RawEmail{
		ID:      "v-2",
		Subject: "Fwd: John Smith paid you",
		Body:    "no numbers here",
	}

	_, err := Venmo(email)
	assert.Error(t, err)
}
