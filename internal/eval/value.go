package eval

import (
	"fmt"
	"strconv"
	"strings"

	"nwlint/internal/types"
)

// ValueKind tags the closed union of compile-time values.
type ValueKind int

const (
	IntValue ValueKind = iota
	FloatValue
	StringValue
	VectorValue
)

// Value is a compile-time constant value. Exactly one of the payload fields
// is meaningful, selected by Kind, so every consumer switches exhaustively
// instead of branching on a runtime type tag.
type Value struct {
	Kind    ValueKind
	Int     int64
	Float   float64
	Str     string
	X, Y, Z float64
}

// IntVal builds an int value.
func IntVal(i int64) Value { return Value{Kind: IntValue, Int: i} }

// FloatVal builds a float value.
func FloatVal(f float64) Value { return Value{Kind: FloatValue, Float: f} }

// StrVal builds a string value.
func StrVal(s string) Value { return Value{Kind: StringValue, Str: s} }

// VectorVal builds a vector value.
func VectorVal(x, y, z float64) Value { return Value{Kind: VectorValue, X: x, Y: y, Z: z} }

// Type returns the NWScript type of the value.
func (v Value) Type() types.Type {
	switch v.Kind {
	case IntValue:
		return types.TypeInt
	case FloatValue:
		return types.TypeFloat
	case StringValue:
		return types.TypeString
	default:
		return types.TypeVector
	}
}

func (v Value) String() string {
	switch v.Kind {
	case IntValue:
		return strconv.FormatInt(v.Int, 10)
	case FloatValue:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case StringValue:
		return fmt.Sprintf("%q", v.Str)
	default:
		return fmt.Sprintf("[%g, %g, %g]", v.X, v.Y, v.Z)
	}
}

// IsZero reports whether the value is a numeric zero, used by the
// division-by-zero checks.
func (v Value) IsZero() bool {
	switch v.Kind {
	case IntValue:
		return v.Int == 0
	case FloatValue:
		return v.Float == 0
	default:
		return false
	}
}

// asFloat widens an int or float value for mixed arithmetic.
func (v Value) asFloat() float64 {
	if v.Kind == IntValue {
		return float64(v.Int)
	}
	return v.Float
}

// ParseInt parses a decimal or 0x-prefixed integer lexeme.
func ParseInt(raw string) (int64, error) {
	if strings.HasPrefix(raw, "0x") || strings.HasPrefix(raw, "0X") {
		return strconv.ParseInt(raw[2:], 16, 64)
	}
	return strconv.ParseInt(raw, 10, 64)
}

// ParseFloat parses a float lexeme, tolerating the trailing f/F suffix.
func ParseFloat(raw string) (float64, error) {
	trimmed := strings.TrimSuffix(strings.TrimSuffix(raw, "f"), "F")
	return strconv.ParseFloat(trimmed, 64)
}
