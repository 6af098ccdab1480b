package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
		ok    bool
	}{
		{"four digit year", "05/06/2024", time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC), true},
		{"two digit year below pivot", "31/12/69", time.Date(2069, 12, 31, 0, 0, 0, 0, time.UTC), true},
		{"two digit year at pivot", "01/01/70", time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"two digit year above pivot", "15/08/99", time.Date(1999, 8, 15, 0, 0, 0, 0, time.UTC), true},
		{"dash separators", "15-08-2024", time.Date(2024, 8, 15, 0, 0, 0, 0, time.UTC), true},
		{"single digit day and month", "5/6/2024", time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC), true},
		{"month out of range", "05/13/2024", time.Time{}, false},
		{"day out of range", "32/01/2024", time.Time{}, false},
		{"nonexistent leap day", "29/02/2023", time.Time{}, false},
		{"not a date", "saldo anterior", time.Time{}, false},
		{"empty", "", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeDate(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, tt.want.Equal(got), "got %v", got)
			}
		})
	}
}

func TestLeadingDate(t *testing.T) {
	t.Run("date at line start", func(t *testing.T) {
		date, rest, ok := LeadingDate("05/06/2024 TRANSFERENCIA RECIBIDA 1.500,00")
		require.True(t, ok)
		assert.Equal(t, time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC), date)
		assert.Equal(t, " TRANSFERENCIA RECIBIDA 1.500,00", rest)
	})

	t.Run("no leading date", func(t *testing.T) {
		_, rest, ok := LeadingDate("SALDO ANTERIOR 10.000,00")
		assert.False(t, ok)
		assert.Equal(t, "SALDO ANTERIOR 10.000,00", rest)
	})

	t.Run("date mid line is not leading", func(t *testing.T) {
		_, _, ok := LeadingDate("SALDO AL 30/06/2024 15.800,00")
		assert.False(t, ok)
	})
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "05/06/2024", FormatDate(time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "", FormatDate(time.Time{}))
}
