package utils

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeMoney(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want string
	}{
		{"string", "12.345", "12.35"},
		{"padded string", "  7 ", "7.00"},
		{"float half up", 2.675, "2.68"},
		{"float", 80.0, "80.00"},
		{"int", 40, "40.00"},
		{"uint64", uint64(15), "15.00"},
		{"json number", json.Number("0.005"), "0.01"},
		{"decimal", decimal.RequireFromString("1.004"), "1.00"},
		{"exponent", "1e2", "100.00"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeMoney(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.String())
		})
	}
}

func TestNormalizeMoneyRejects(t *testing.T) {
	for _, in := range []any{nil, "", "abc", "NaN", math.NaN(), math.Inf(1), math.Inf(-1), struct{}{}} {
		_, err := NormalizeMoney(in)
		assert.ErrorIs(t, err, ErrInvalidFormat, "input %#v", in)
	}
}

func TestAmountBounds(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want error
	}{
		{"twenty integer digits", "12345678901234567890.1234", ErrOutOfRange},
		{"at the limit", "10000000000", ErrOutOfRange},
		{"negative at the limit", "-10000000000", ErrOutOfRange},
		{"huge exponent", "1e50000000", ErrOutOfRange},
		{"zero with huge exponent", "0e50000000", ErrOutOfRange},
		{"rounds up to the limit", "9999999999.99999", ErrOutOfRange},
		{"uint64", uint64(math.MaxUint64), ErrOutOfRange},
		{"tiny exponent", "1e-50000000", ErrInvalidFormat},
		{"too many places", "0.000000000000000000001", ErrInvalidFormat},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseAmount(tc.in)
			assert.ErrorIs(t, err, tc.want)
			_, err = NormalizeMoney(tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	d, err := ParseAmount("9999999999.9999")
	require.NoError(t, err)
	assert.Equal(t, "9999999999.9999", d.String())
	assert.NoError(t, CheckAmount(decimal.RequireFromString("-9999999999")))
	assert.NoError(t, CheckAmount(decimal.Zero))
}

func TestNormalizeMoneyDeterministic(t *testing.T) {
	a, err := NormalizeMoney("19.995")
	require.NoError(t, err)
	b, err := NormalizeMoney(19.995)
	require.NoError(t, err)
	assert.True(t, a.Equal(b.Decimal))
	assert.Equal(t, "20.00", a.String())
}

func TestParseAmountKeepsStoragePrecision(t *testing.T) {
	d, err := ParseAmount("100.005")
	require.NoError(t, err)
	assert.Equal(t, "100.005", d.String())

	d, err = ParseAmount(1.234567)
	require.NoError(t, err)
	assert.Equal(t, "1.2346", d.String())
}

func TestMoneyJSON(t *testing.T) {
	b, err := json.Marshal(map[string]Money{"total": NewMoney(decimal.NewFromInt(80))})
	require.NoError(t, err)
	assert.JSONEq(t, `{"total": 80.00}`, string(b))
	assert.Contains(t, string(b), "80.00")

	var m Money
	require.NoError(t, json.Unmarshal([]byte(`"12.345"`), &m))
	assert.Equal(t, "12.35", m.String())
	require.NoError(t, json.Unmarshal([]byte(`3.1`), &m))
	assert.Equal(t, "3.10", m.String())
}

func TestMoneyScan(t *testing.T) {
	var m Money
	require.NoError(t, m.Scan(float64(0.1)+float64(0.2)))
	assert.Equal(t, "0.30", m.String())
	require.NoError(t, m.Scan([]byte("150.0100")))
	assert.Equal(t, "150.01", m.String())
	require.NoError(t, m.Scan(int64(5)))
	assert.Equal(t, "5.00", m.String())
	require.NoError(t, m.Scan(nil))
	assert.True(t, m.IsZero())
}
