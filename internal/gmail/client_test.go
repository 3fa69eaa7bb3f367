package gmail

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"

	gmailapi "google.golang.org/api/gmail/v1"
)

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		name     string
		days     int
		excludes []string
		want     string
	}{
		{
			name: "lookback only",
			days: 7,
			want: "newer_than:7d",
		},
		{
			name:     "with exclusions",
			days:     3,
			excludes: []string{LabelMatched, LabelCreated},
			want:     "newer_than:3d -label:ledgermail/matched -label:ledgermail/created",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildQuery(tt.days, tt.excludes))
		})
	}
}

func TestExtractBody(t *testing.T) {
	htmlData := base64.URLEncoding.EncodeToString([]byte("<b>order</b>"))
	plainData := base64.URLEncoding.EncodeToString([]byte("plain text"))

	tests := []struct {
		name string
		msg  *gmailapi.Message
		want string
	}{
		{
			name: "prefers html part",
			msg: &gmailapi.Message{Payload: &gmailapi.MessagePart{
				Parts: []*gmailapi.MessagePart{
					{MimeType: "text/plain", Body: &gmailapi.MessagePartBody{Data: plainData}},
					{MimeType: "text/html", Body: &gmailapi.MessagePartBody{Data: htmlData}},
				},
			}},
			want: "<b>order</b>",
		},
		{
			name: "plain when no html",
			msg: &gmailapi.Message{Payload: &gmailapi.MessagePart{
				Parts: []*gmailapi.MessagePart{
					{MimeType: "text/plain", Body: &gmailapi.MessagePartBody{Data: plainData}},
				},
			}},
			want: "plain text",
		},
		{
			name: "nested multipart",
			msg: &gmailapi.Message{Payload: &gmailapi.MessagePart{
				Parts: []*gmailapi.MessagePart{
					{
						MimeType: "multipart/alternative",
						Parts: []*gmailapi.MessagePart{
							{MimeType: "text/html", Body: &gmailapi.MessagePartBody{Data: htmlData}},
						},
					},
				},
			}},
			want: "<b>order</b>",
		},
		{
			name: "top-level body fallback",
			msg: &gmailapi.Message{Payload: &gmailapi.MessagePart{
				Body: &gmailapi.MessagePartBody{Data: plainData},
			}},
			want: "plain text",
		},
		{
			name: "no payload",
			msg:  &gmailapi.Message{},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractBody(tt.msg))
		})
	}
}
