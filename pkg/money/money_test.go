package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatementAmount(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1.234.567,89", "1234567.89"},
		{"200,00-", "-200"},
		{"-200,00", "-200"},
		{"(1.000,00)", "-1000"},
		{"$ 4.500,25", "4500.25"},
		{"0,01", "0.01"},
		{"12,00", "12"},
		{"–350,10", "-350.1"}, // en-dash minus from OCR
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseStatementAmount(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.String())
		})
	}

	t.Run("rejects empty input", func(t *testing.T) {
		_, err := ParseStatementAmount("   ")
		assert.Error(t, err)
	})

	t.Run("rejects non-numeric input", func(t *testing.T) {
		_, err := ParseStatementAmount("SALDO")
		assert.Error(t, err)
	})
}

func TestAmountPattern(t *testing.T) {
	t.Run("finds amounts in a movement line", func(t *testing.T) {
		line := "05/06/25 TRANSFERENCIA RECIBIDA 123456 1.500,00 20.750,25"
		got := AmountPattern.FindAllString(line, -1)
		assert.Equal(t, []string{"1.500,00", "20.750,25"}, got)
	})

	t.Run("matches trailing minus", func(t *testing.T) {
		assert.True(t, AmountPattern.MatchString("200,00-"))
	})
}

func TestNormalizeCurrency(t *testing.T) {
	assert.Equal(t, "ARS", NormalizeCurrency(""))
	assert.Equal(t, "ARS", NormalizeCurrency("pesos"))
	assert.Equal(t, "USD", NormalizeCurrency("usd"))
	assert.Equal(t, "ARS", NormalizeCurrency("ars"))
}
