// Package users maps forwarded emails to the household member they belong
// to, and from there to the right ledger accounts.
package users

import (
	"strings"

	"ledgermail/internal/model"
)

// User is one configured household member.
type User struct {
	Name          string   `mapstructure:"name"`
	VenmoAccount  string   `mapstructure:"venmo_account"`
	AmazonAccount string   `mapstructure:"amazon_account"`
	Emails        []string `mapstructure:"emails"`
	Aliases       []string `mapstructure:"aliases"`
	// ValidateAmazonRecipient requires the user's name to appear in the
	// email body before an Amazon order is attributed to them. Set for
	// users who share their Amazon account with family.
	ValidateAmazonRecipient bool `mapstructure:"validate_amazon_recipient"`
}

// Detector resolves which user an email belongs to.
type Detector struct {
	users []User
}

// NewDetector creates a detector over the configured users.
func NewDetector(users []User) *Detector {
	return &Detector{users: users}
}

// Detect finds the owning user. Priority: To header, then From header
// (for unforwarded mail), then user names in the subject or body. Returns
// nil when no user matches.
func (d *Detector) Detect(email *model.RawEmail) *User {
	if u := d.byAddress(email.To); u != nil {
		return u
	}
	if u := d.byAddress(email.From); u != nil {
		return u
	}

	text := strings.ToLower(email.Subject + " " + email.Body)
	for i := range d.users {
		u := &d.users[i]
		for _, alias := range u.Aliases {
			if alias != "" && strings.Contains(text, strings.ToLower(alias)) {
				return u
			}
		}
	}
	return nil
}

func (d *Detector) byAddress(header string) *User {
	header = strings.ToLower(header)
	if header == "" {
		return nil
	}
	for i := range d.users {
		u := &d.users[i]
		for _, addr := range u.Emails {
			if addr != "" && strings.Contains(header, strings.ToLower(addr)) {
				return u
			}
		}
	}
	return nil
}

// RecipientMatches reports whether an Amazon order body names this user as
// the recipient. Always true for users who do not share their account.
func (u *User) RecipientMatches(body string) bool {
	if !u.ValidateAmazonRecipient {
		return true
	}
	lower := strings.ToLower(body)
	for _, alias := range u.Aliases {
		if alias != "" && strings.Contains(lower, strings.ToLower(alias)) {
			return true
		}
	}
	return strings.Contains(lower, strings.ToLower(u.Name))
}
