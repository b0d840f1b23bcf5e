package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVNDAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "0"},
		{"1.500.000", "1500000"},
		{"1.500.000 ₫", "1500000"},
		{"-300.000", "-300000"},
		{"300.000 VNĐ", "300000"},
		{"250000đ", "250000"},
		{"(50.000)", "-50000"},
		{"12.345,5", "12345.5"},
		{"1,234,567", "1234567"},
		{"1,234.50", "1234.5"},
		{"1.5", "1.5"},
		{"2,5", "2.5"},
		{"150,000", "150000"},
		{"+700000", "700000"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseVNDAmount(tt.in)
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s, want %s", got, tt.want)
		})
	}
}

func TestParseVNDAmountRejectsGarbage(t *testing.T) {
	_, err := parseVNDAmount("mười nghìn")
	assert.Error(t, err)
}

func TestParseSheetDate(t *testing.T) {
	for _, in := range []string{"05/03/2024", "5/3/2024", "05-03-2024", "2024-03-05", "2024-03-05T00:00:00Z"} {
		d, err := parseSheetDate(in)
		require.NoError(t, err, in)
		assert.Equal(t, "2024-03-05", d.Format("2006-01-02"), in)
	}

	d, err := parseSheetDate("")
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	_, err = parseSheetDate("March 5")
	assert.Error(t, err)
}

func TestGetString(t *testing.T) {
	row := []interface{}{" a ", float64(1500000), nil, true}
	assert.Equal(t, "a", getString(row, 0))
	assert.Equal(t, "1500000", getString(row, 1))
	assert.Equal(t, "", getString(row, 2))
	assert.Equal(t, "true", getString(row, 3))
	assert.Equal(t, "", getString(row, 9))
}
