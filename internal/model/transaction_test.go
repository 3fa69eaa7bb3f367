package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMilliunitsFromDollars(t *testing.T) {
	tests := []struct {
		name    string
		dollars float64
		want    Milliunits
	}{
		{name: "whole dollars", dollars: 42.0, want: 42000},
		{name: "cents", dollars: 42.17, want: 42170},
		{name: "negative", dollars: -42.17, want: -42170},
		{name: "zero", dollars: 0, want: 0},
		{name: "rounds half up", dollars: 0.0015, want: 2},
		{name: "float noise", dollars: 19.99, want: 19990},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MilliunitsFromDollars(tt.dollars))
		})
	}
}

func TestMilliunitsRoundTrip(t *testing.T) {
	assert.InDelta(t, 42.17, MilliunitsFromDollars(42.17).Dollars(), 0.0001)
	assert.InDelta(t, -7.50, MilliunitsFromDollars(-7.50).Dollars(), 0.0001)
}

func TestMilliunitsString(t *testing.T) {
	assert.Equal(t, "$42.17", Milliunits(42170).String())
	assert.Equal(t, "-$42.17", Milliunits(-42170).String())
	assert.Equal(t, "$0.00", Milliunits(0).String())
}

func TestUncategorized(t *testing.T) {
	assert.True(t, (&LedgerTransaction{}).Uncategorized())
	assert.False(t, (&LedgerTransaction{CategoryID: "cat-1"}).Uncategorized())
}
