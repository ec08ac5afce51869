package validate

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/anantsangtani/filterbuilder/pkg/filterbuilder/schema"
)

// dateLayouts are tried in order when a date value is a string.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	time.RFC1123Z,
	time.RFC1123,
	"Jan 2, 2006",
	"January 2, 2006",
}

// isBlank reports whether v counts as "no value": nil or the empty string.
func isBlank(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}

// parseNumber accepts Go numbers, json.Number and decimal strings.
// Booleans, hex integers and NaN are not numbers.
func parseNumber(v any) (float64, bool) {
	if f, ok := schema.Number(v); ok {
		return f, !math.IsNaN(f)
	}
	s, ok := v.(string)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// parseDate accepts time.Time, strings in any of dateLayouts, and numbers
// as Unix milliseconds.
func parseDate(v any) (time.Time, bool) {
	switch val := v.(type) {
	case time.Time:
		return val, !val.IsZero()
	case string:
		s := strings.TrimSpace(val)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	}
	if ms, ok := schema.Number(v); ok && !math.IsNaN(ms) && !math.IsInf(ms, 0) {
		return time.UnixMilli(int64(ms)).UTC(), true
	}
	return time.Time{}, false
}

// isBoolean accepts true, false and their string spellings.
func isBoolean(v any) bool {
	switch val := v.(type) {
	case bool:
		return true
	case string:
		return val == "true" || val == "false"
	}
	return false
}

func display(v any) string {
	return fmt.Sprint(v)
}
