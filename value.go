// FILE: tunable/value.go
package tunable

import (
	"fmt"
	"strconv"
)

// Kind is the type tag of a stored value.
type Kind int

const (
	// KindDouble is a float64 value, tuned with a slider.
	KindDouble Kind = iota
	// KindBool is a boolean value, tuned with a switch.
	KindBool
	// KindColor is a Color value, tuned one channel at a time.
	KindColor
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindDouble:
		return "double"
	case KindBool:
		return "bool"
	case KindColor:
		return "color"
	default:
		return "unknown"
	}
}

// Value is a tagged variant holding exactly one of a double, a bool or a color.
// The zero Value is the double 0.
type Value struct {
	kind Kind
	d    float64
	b    bool
	c    Color
}

// Double returns a double Value.
func Double(v float64) Value { return Value{kind: KindDouble, d: v} }

// Bool returns a bool Value.
func Bool(v bool) Value { return Value{kind: KindBool, b: v} }

// ColorValue returns a color Value.
func ColorValue(c Color) Value { return Value{kind: KindColor, c: c} }

// Kind reports which payload the value holds.
func (v Value) Kind() Kind { return v.kind }

// Double returns the double payload, or 0 for other kinds.
func (v Value) Double() float64 { return v.d }

// Bool returns the bool payload, or false for other kinds.
func (v Value) Bool() bool { return v.b }

// Color returns the color payload, or the zero Color for other kinds.
func (v Value) Color() Color { return v.c }

// Equal reports whether both values have the same kind and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindDouble:
		return v.d == o.d
	case KindBool:
		return v.b == o.b
	case KindColor:
		return v.c == o.c
	}
	return false
}

// Any returns the payload as float64, bool or Color.
func (v Value) Any() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindColor:
		return v.c
	default:
		return v.d
	}
}

// String formats the payload; colors use the canonical rgba form.
func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindColor:
		return v.c.String()
	case KindDouble:
		return strconv.FormatFloat(v.d, 'g', -1, 64)
	default:
		return fmt.Sprintf("Value(%d)", int(v.kind))
	}
}
