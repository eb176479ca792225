// Package timeparse converts heterogeneous time values to epoch seconds.
package timeparse

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/haic-lab/haicmetrics/haicerr"
)

// Layouts accepted for offset-naive ISO strings, tried in order.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// AsFloat coerces a numeric value of any JSON-ish type to float64.
func AsFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// Parse converts an epoch number or an ISO-8601 string to epoch seconds.
//
// Numbers are taken as epoch seconds verbatim. Strings with a trailing 'Z'
// are UTC; offset-aware strings are parsed as-is; offset-naive strings are
// assumed UTC and a diagnostic note is appended to notes (when non-nil).
func Parse(v any, notes *[]string) (float64, error) {
	if f, ok := AsFloat(v); ok {
		return f, nil
	}

	s, ok := v.(string)
	if !ok {
		return 0, haicerr.New(haicerr.CodeTimeFormat, "unsupported time value type %T", v)
	}
	s = strings.TrimSpace(s)

	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return epochSeconds(t), nil
	}

	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			if notes != nil {
				*notes = append(*notes, "Naive ISO datetime provided; assuming UTC.")
			}
			return epochSeconds(t), nil
		}
	}

	return 0, haicerr.New(haicerr.CodeTimeFormat, "invalid ISO datetime: %q", s)
}

// ParseLenient is the forgiving variant used for record timestamps: it never
// errors, returning ok=false when the value carries no usable time signal.
// Numeric values above 1e12 are taken as epoch milliseconds.
func ParseLenient(v any) (float64, bool) {
	if v == nil {
		return 0, false
	}
	if f, ok := AsFloat(v); ok {
		if f > 1e12 {
			f /= 1000.0
		}
		return f, true
	}
	if _, isString := v.(string); !isString {
		return 0, false
	}
	f, err := Parse(v, nil)
	if err != nil {
		return 0, false
	}
	return f, true
}

func epochSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
