package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSet() *CategorySet {
	return NewCategorySet([]Category{
		{ID: "cat-1", Name: "Groceries 🛒"},
		{ID: "cat-2", Name: "Baby Supplies"},
		{ID: "cat-3", Name: "Old Stuff", Hidden: true},
	})
}

func TestCategorySetResolve(t *testing.T) {
	set := newTestSet()

	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{name: "exact match", input: "Baby Supplies", want: "Baby Supplies", ok: true},
		{name: "case-insensitive", input: "baby supplies", want: "Baby Supplies", ok: true},
		{name: "ledger emoji decoration ignored", input: "Groceries", want: "Groceries 🛒", ok: true},
		{name: "punctuation ignored", input: "baby-supplies", want: "Baby Supplies", ok: true},
		{name: "unknown", input: "Vacations", ok: false},
		{name: "hidden categories excluded", input: "Old Stuff", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := set.Resolve(tt.input)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestCategorySetLookups(t *testing.T) {
	set := newTestSet()

	id, ok := set.IDFor("Baby Supplies")
	require.True(t, ok)
	assert.Equal(t, "cat-2", id)

	name, ok := set.NameFor("cat-1")
	require.True(t, ok)
	assert.Equal(t, "Groceries 🛒", name)

	_, ok = set.IDFor("Old Stuff")
	assert.False(t, ok)

	assert.Equal(t, 2, set.Len())
	assert.Equal(t, []string{"Groceries 🛒", "Baby Supplies"}, set.Names())
}

func TestHasLabel(t *testing.T) {
	email := &RawEmail{Labels: []string{"INBOX", "ledgermail/matched"}}
	assert.True(t, email.HasLabel("ledgermail/matched"))
	assert.True(t, email.HasLabel("LEDGERMAIL/MATCHED"))
	assert.False(t, email.HasLabel("ledgermail/created"))
}
