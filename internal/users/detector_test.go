package users

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgermail/internal/model"
)

func testUsers() []User {
	return []User{
		{
			Name:         "Alex",
			Emails:       []string{"alex@example.com"},
			Aliases:      []string{"Alex P"},
			VenmoAccount: "acct-alex-venmo",
		},
		{
			Name:                    "Sam",
			Emails:                  []string{"sam@example.com"},
			Aliases:                 []string{"Sam Lee"},
			VenmoAccount:            "acct-sam-venmo",
			AmazonAccount:           "acct-sam-amazon",
			ValidateAmazonRecipient: true,
		},
	}
}

func TestDetect(t *testing.T) {
	d := NewDetector(testUsers())

	tests := []struct {
		name  string
		email model.RawEmail
		want  string
	}{
		{
			name:  "to header wins",
			email: model.RawEmail{To: "Alex <alex@example.com>", From: "sam@example.com"},
			want:  "Alex",
		},
		{
			name:  "from header when to is unknown",
			email: model.RawEmail{To: "inbox@forwarder.example", From: "Sam <sam@example.com>"},
			want:  "Sam",
		},
		{
			name:  "alias in body",
			email: model.RawEmail{Body: "Your package for Sam Lee has shipped"},
			want:  "Sam",
		},
		{
			name:  "alias in subject",
			email: model.RawEmail{Subject: "Order for Alex P"},
			want:  "Alex",
		},
		{
			name:  "case insensitive address",
			email: model.RawEmail{To: "ALEX@EXAMPLE.COM"},
			want:  "Alex",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.Detect(&tt.email)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Name)
		})
	}
}

func TestDetectNoMatch(t *testing.T) {
	d := NewDetector(testUsers())
	assert.Nil(t, d.Detect(&model.RawEmail{
		To:      "stranger@example.com",
		From:    "noreply@amazon.com",
		Subject: "Your order",
		Body:    "nothing identifying",
	}))
}

func TestDetectEmptyConfig(t *testing.T) {
	d := NewDetector(nil)
	assert.Nil(t, d.Detect(&model.RawEmail{To: "alex@example.com"}))
}

func TestRecipientMatches(t *testing.T) {
	users := testUsers()
	shared := users[1]   // validates recipient
	personal := users[0] // does not

	assert.True(t, personal.RecipientMatches("anything at all"))

	assert.True(t, shared.RecipientMatches("Shipping to: Sam Lee, 123 Main St"))
	assert.True(t, shared.RecipientMatches("ordered by sam"))
	assert.False(t, shared.RecipientMatches("Shipping to: Alex P"))
}
