package validate

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   any
		want float64
		ok   bool
	}{
		{42, 42, true},
		{int64(-3), -3, true},
		{2.5, 2.5, true},
		{json.Number("1e3"), 1000, true},
		{"  7.25 ", 7.25, true},
		{"abc", 0, false},
		{"NaN", 0, false},
		{"0x1F", 0, false},
		{"", 0, false},
		{true, 0, false},
		{nil, 0, false},
		{[]any{1}, 0, false},
	}

	for _, tt := range tests {
		got, ok := parseNumber(tt.in)
		assert.Equal(t, tt.ok, ok, "%v", tt.in)
		if tt.ok {
			assert.InDelta(t, tt.want, got, 1e-9)
		}
	}
}

func TestParseDate(t *testing.T) {
	ok := []any{
		"2024-05-01",
		"2024-05-01T10:30:00Z",
		"2024-05-01T10:30:00.123+02:00",
		"2024-05-01T10:30",
		"2024-05-01 10:30:00",
		"05/01/2024",
		"May 1, 2024",
		1714521600000,
		json.Number("1714521600000"),
		time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	}
	for _, v := range ok {
		_, parsed := parseDate(v)
		assert.True(t, parsed, "%v", v)
	}

	bad := []any{"", "yesterday", "2024-13-01", true, nil, time.Time{}}
	for _, v := range bad {
		_, parsed := parseDate(v)
		assert.False(t, parsed, "%v", v)
	}

	got, _ := parseDate(1714521600000)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), got)
}

func TestIsBlank(t *testing.T) {
	assert.True(t, isBlank(nil))
	assert.True(t, isBlank(""))
	assert.False(t, isBlank(" "))
	assert.False(t, isBlank(0))
	assert.False(t, isBlank(false))
}

func TestIsBoolean(t *testing.T) {
	assert.True(t, isBoolean(true))
	assert.True(t, isBoolean(false))
	assert.True(t, isBoolean("true"))
	assert.True(t, isBoolean("false"))
	assert.False(t, isBoolean("TRUE"))
	assert.False(t, isBoolean(1))
}
