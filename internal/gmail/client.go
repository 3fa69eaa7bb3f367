// Package gmail reads vendor emails from a Gmail inbox and records
// processing outcomes as Gmail labels.
package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"ledgermail/internal/common"
	"ledgermail/internal/model"
)

// Labels applied to mail after processing. Their presence is the only
// record of past runs, so an unlabeled email is always retried.
const (
	LabelMatched   = "ledgermail/matched"
	LabelCreated   = "ledgermail/created"
	LabelProcessed = "ledgermail/processed"
)

// Client reads and labels messages in a single Gmail account.
type Client struct {
	service *gmailapi.Service
	logger  *slog.Logger

	mu       sync.Mutex
	labelIDs map[string]string // label name -> Gmail label ID
}

// New creates a client over an already-authenticated HTTP client.
func New(ctx context.Context, httpClient *http.Client, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	service, err := gmailapi.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("creating gmail service: %w", err)
	}

	return &Client{
		service:  service,
		logger:   logger,
		labelIDs: make(map[string]string),
	}, nil
}

// BuildQuery returns the search query for one poll. Exclusions skip
// mail already labeled in a previous run.
func BuildQuery(lookbackDays int, excludeLabels []string) string {
	parts := []string{fmt.Sprintf("newer_than:%dd", lookbackDays)}
	for _, label := range excludeLabels {
		parts = append(parts, "-label:"+label)
	}
	return strings.Join(parts, " ")
}

// Fetch lists messages matching query and loads each one in full.
func (c *Client) Fetch(ctx context.Context, query string) ([]*model.RawEmail, error) {
	resp, err := c.service.Users.Messages.List("me").Q(query).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: listing messages: %v", common.ErrMailUnavailable, err)
	}

	c.logger.Debug("gmail query complete", "query", query, "count", len(resp.Messages))

	emails := make([]*model.RawEmail, 0, len(resp.Messages))
	for _, ref := range resp.Messages {
		email, err := c.fetchMessage(ctx, ref.Id)
		if err != nil {
			c.logger.Warn("skipping unreadable message", "message_id", ref.Id, "error", err)
			continue
		}
		emails = append(emails, email)
	}
	return emails, nil
}

func (c *Client) fetchMessage(ctx context.Context, id string) (*model.RawEmail, error) {
	msg, err := c.service.Users.Messages.Get("me", id).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("getting message: %w", err)
	}

	email := &model.RawEmail{
		ID:   id,
		Date: time.Unix(msg.InternalDate/1000, 0),
	}

	if msg.Payload != nil {
		for _, header := range msg.Payload.Headers {
			switch header.Name {
			case "From":
				email.From = header.Value
			case "To":
				email.To = header.Value
			case "Subject":
				email.Subject = header.Value
			}
		}
	}

	email.Body = extractBody(msg)
	email.Labels, err = c.labelNames(ctx, msg.LabelIds)
	if err != nil {
		return nil, err
	}
	return email, nil
}

// Mark applies a label to a message, creating the label if needed.
func (c *Client) Mark(ctx context.Context, emailID, label string) error {
	labelID, err := c.ensureLabel(ctx, label)
	if err != nil {
		return err
	}

	_, err = c.service.Users.Messages.Modify("me", emailID, &gmailapi.ModifyMessageRequest{
		AddLabelIds: []string{labelID},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: labeling message %s: %v", common.ErrMailUnavailable, emailID, err)
	}

	c.logger.Debug("labeled message", "message_id", emailID, "label", label)
	return nil
}

// ensureLabel resolves a label name to its Gmail ID, creating it on
// first use.
func (c *Client) ensureLabel(ctx context.Context, name string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if id, ok := c.labelIDs[name]; ok {
		return id, nil
	}

	if err := c.loadLabelsLocked(ctx); err != nil {
		return "", err
	}
	if id, ok := c.labelIDs[name]; ok {
		return id, nil
	}

	created, err := c.service.Users.Labels.Create("me", &gmailapi.Label{
		Name:                  name,
		LabelListVisibility:   "labelShow",
		MessageListVisibility: "show",
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("%w: creating label %s: %v", common.ErrMailUnavailable, name, err)
	}

	c.labelIDs[name] = created.Id
	c.logger.Info("created gmail label", "label", name)
	return created.Id, nil
}

func (c *Client) labelNames(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	byID := make(map[string]string, len(c.labelIDs))
	for name, id := range c.labelIDs {
		byID[id] = name
	}

	names := make([]string, 0, len(ids))
	for _, id := range ids {
		name, ok := byID[id]
		if !ok {
			if err := c.loadLabelsLocked(ctx); err != nil {
				return nil, err
			}
			for n, i := range c.labelIDs {
				byID[i] = n
			}
			name, ok = byID[id]
			if !ok {
				// System labels like UNREAD pass through as-is.
				name = id
			}
		}
		names = append(names, name)
	}
	return names, nil
}

func (c *Client) loadLabelsLocked(ctx context.Context) error {
	resp, err := c.service.Users.Labels.List("me").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: listing labels: %v", common.ErrMailUnavailable, err)
	}
	for _, label := range resp.Labels {
		c.labelIDs[label.Name] = label.Id
	}
	return nil
}

// extractBody pulls the message text, preferring HTML parts and
// descending into nested multiparts.
func extractBody(msg *gmailapi.Message) string {
	if msg.Payload == nil {
		return ""
	}
	if body := findPart(msg.Payload.Parts, "text/html"); body != "" {
		return body
	}
	if body := findPart(msg.Payload.Parts, "text/plain"); body != "" {
		return body
	}
	if msg.Payload.Body != nil && msg.Payload.Body.Data != "" {
		if data, err := base64.URLEncoding.DecodeString(msg.Payload.Body.Data); err == nil {
			return string(data)
		}
	}
	return ""
}

func findPart(parts []*gmailapi.MessagePart, mimeType string) string {
	for _, part := range parts {
		if part.MimeType == mimeType && part.Body != nil && part.Body.Data != "" {
			if data, err := base64.URLEncoding.DecodeString(part.Body.Data); err == nil {
				return string(data)
			}
		}
		if body := findPart(part.Parts, mimeType); body != "" {
			return body
		}
	}
	return ""
}
