package table

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ValueType defines the storage type for cell values
type ValueType string

const (
	ValueTypeString  ValueType = "string"
	ValueTypeNumeric ValueType = "numeric"
	ValueTypeBoolean ValueType = "boolean"
	ValueTypeMissing ValueType = "missing"
)

// Value represents a typed cell value with explicit missingness
type Value struct {
	Type       ValueType `json:"type"`
	StringVal  *string   `json:"string_val,omitempty"`
	NumericVal *float64  `json:"numeric_val,omitempty"`
	BooleanVal *bool     `json:"boolean_val,omitempty"`
	IsMissing  bool      `json:"is_missing"`
}

// Missing creates a missing value
func Missing() Value {
	return Value{Type: ValueTypeMissing, IsMissing: true}
}

// String creates a string value; an empty string is missing
func String(s string) Value {
	if s == "" {
		return Missing()
	}
	return Value{Type: ValueTypeString, StringVal: &s}
}

// Number creates a numeric value; NaN is missing
func Number(n float64) Value {
	if math.IsNaN(n) {
		return Missing()
	}
	return Value{Type: ValueTypeNumeric, NumericVal: &n}
}

// Bool creates a boolean value
func Bool(b bool) Value {
	return Value{Type: ValueTypeBoolean, BooleanVal: &b}
}

// Coerce converts a raw cell string into the most specific typed value.
// Numeric parsing wins over string; empty cells are missing.
func Coerce(raw string) Value {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Missing()
	}
	if n, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return Number(n)
	}
	// Decimal-comma exports (manual CSV re-saves) still parse as numbers
	if strings.Count(trimmed, ",") == 1 && !strings.Contains(trimmed, ".") {
		if n, err := strconv.ParseFloat(strings.Replace(trimmed, ",", ".", 1), 64); err == nil {
			return Number(n)
		}
	}
	return String(trimmed)
}

// AsString returns the string representation and whether one exists.
// Numeric and boolean values do not qualify as strings.
func (v Value) AsString() (string, bool) {
	if v.IsMissing || v.StringVal == nil {
		return "", false
	}
	return *v.StringVal, true
}

// AsNumber returns the numeric representation and whether one exists.
// String values that parse as numbers qualify.
func (v Value) AsNumber() (float64, bool) {
	if v.IsMissing {
		return math.NaN(), false
	}
	if v.NumericVal != nil {
		return *v.NumericVal, true
	}
	if v.BooleanVal != nil {
		if *v.BooleanVal {
			return 1, true
		}
		return 0, true
	}
	if v.StringVal != nil {
		if n, err := strconv.ParseFloat(strings.TrimSpace(*v.StringVal), 64); err == nil {
			return n, true
		}
	}
	return math.NaN(), false
}

// Float returns the numeric representation or NaN when missing/non-numeric
func (v Value) Float() float64 {
	n, ok := v.AsNumber()
	if !ok {
		return math.NaN()
	}
	return n
}

// IsString reports whether the value carries text (not parseable as a number)
func (v Value) IsString() bool {
	return !v.IsMissing && v.StringVal != nil
}

// Render formats the value for human-facing output; missing renders empty
func (v Value) Render() string {
	switch {
	case v.IsMissing:
		return ""
	case v.NumericVal != nil:
		return strconv.FormatFloat(*v.NumericVal, 'g', -1, 64)
	case v.BooleanVal != nil:
		return strconv.FormatBool(*v.BooleanVal)
	case v.StringVal != nil:
		return *v.StringVal
	}
	return ""
}

func (v Value) String() string {
	if v.IsMissing {
		return "<missing>"
	}
	return fmt.Sprintf("%s(%s)", v.Type, v.Render())
}
