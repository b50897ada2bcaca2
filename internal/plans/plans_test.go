package plans

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"monthly", "monthly"},
		{"Monthly", "monthly"},
		{"MONTHLY", "monthly"},
		{"6month", "6month"},
		{"6-month", "6month"},
		{"6-Month", "6month"},
		{" 6 month ", "6month"},
		{"", ""},
		{"---", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestCatalog_Lookup(t *testing.T) {
	tests := []struct {
		name      string
		plan      string
		wantKey   string
		wantPrice int64
		wantOK    bool
	}{
		{name: "monthly", plan: "monthly", wantKey: "monthly", wantPrice: 800000, wantOK: true},
		{name: "mixed case", plan: "MonThly", wantKey: "monthly", wantPrice: 800000, wantOK: true},
		{name: "six months", plan: "6month", wantKey: "6month", wantPrice: 4500000, wantOK: true},
		{name: "six months with hyphen", plan: "6-MONTH", wantKey: "6month", wantPrice: 4500000, wantOK: true},
		{name: "unknown plan", plan: "yearly", wantKey: "yearly", wantOK: false},
		{name: "empty plan", plan: "", wantKey: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, price, ok := Default.Lookup(tt.plan)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantKey, key)
			assert.Equal(t, tt.wantPrice, price)
		})
	}
}

func TestCatalog_CustomPrices(t *testing.T) {
	c := Catalog{"monthly": 100}

	_, price, ok := c.Lookup("monthly")
	assert.True(t, ok)
	assert.Equal(t, int64(100), price)

	_, _, ok = c.Lookup("6month")
	assert.False(t, ok)
}
