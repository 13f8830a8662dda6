// internal/common/coerce/coerce.go

// Package coerce turns loosely typed values from decoded model output into
// the narrow types the pipeline works with. Every function returns nil
// instead of failing when the value cannot be interpreted.
package coerce

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var placeholders = map[string]bool{
	"": true, "null": true, "none": true, "unknown": true, "n/a": true, "na": true, "-": true,
}

// String accepts strings and numbers (a pincode often arrives as a number).
func String(v interface{}) *string {
	switch val := v.(type) {
	case string:
		s := strings.TrimSpace(val)
		if placeholders[strings.ToLower(s)] {
			return nil
		}
		return &s
	case float64:
		s := strconv.FormatFloat(val, 'f', -1, 64)
		return &s
	default:
		return nil
	}
}

var currencyMarkers = []string{"₹", "rs.", "rs", "inr", "$"}

var numberPattern = regexp.MustCompile(`^([0-9]+(?:\.[0-9]+)?)\s*(lakhs?|lacs?|crores?|k|years?|yrs?)?$`)

var multipliers = map[string]float64{
	"lakh": 1e5, "lakhs": 1e5, "lac": 1e5, "lacs": 1e5,
	"crore": 1e7, "crores": 1e7,
	"k": 1e3,
}

// Float accepts non-negative numbers or numeric strings such as
// "₹2,50,000", "Rs. 1.5 lakh" or "42 years". Negative values are nil.
func Float(v interface{}) *float64 {
	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case string:
		parsed, ok := parseNumber(val)
		if !ok {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func parseNumber(s string) (float64, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, marker := range currencyMarkers {
		if strings.HasPrefix(s, marker) {
			s = strings.TrimSpace(strings.TrimPrefix(s, marker))
			break
		}
	}
	s = strings.TrimSuffix(s, "/-")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	m := numberPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	if mult, ok := multipliers[m[2]]; ok {
		f *= mult
	}
	return f, true
}

// Int is Float rounded to the nearest integer.
func Int(v interface{}) *int {
	f := Float(v)
	if f == nil || *f > math.MaxInt32 {
		return nil
	}
	i := int(math.Round(*f))
	return &i
}

// Bool accepts booleans and the strings yes, no, true and false.
func Bool(v interface{}) *bool {
	switch val := v.(type) {
	case bool:
		return &val
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "yes", "true":
			b := true
			return &b
		case "no", "false":
			b := false
			return &b
		}
	}
	return nil
}

// Strings keeps the non-empty string elements of an array. A single string
// becomes a one-element list.
func Strings(v interface{}) []string {
	out := []string{}
	switch val := v.(type) {
	case []interface{}:
		for _, item := range val {
			if s := String(item); s != nil {
				out = append(out, *s)
			}
		}
	case string:
		if s := String(val); s != nil {
			out = append(out, *s)
		}
	}
	return out
}
