package apophis

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ValueTag identifies the dynamic type of a Value.
type ValueTag int

const (
	// TagNull is the null value.
	TagNull ValueTag = iota

	// TagInt is a 64-bit signed integer.
	TagInt

	// TagFloat is a 64-bit float.
	TagFloat

	// TagStr is a string.
	TagStr

	// TagBool is a boolean.
	TagBool
)

// Value is the closed dynamically-typed variant stored in a shared
// environment. The set is deliberately limited to what survives the
// serialized hand-off across the bridge: integer, float, string, boolean,
// and null. Anything richer must never enter an environment.
type Value struct {
	tag ValueTag
	i   int64
	f   float64
	s   string
	b   bool
}

// Null returns the null value.
func Null() Value { return Value{tag: TagNull} }

// Int returns an integer value.
func Int(i int64) Value { return Value{tag: TagInt, i: i} }

// Float returns a float value.
func Float(f float64) Value { return Value{tag: TagFloat, f: f} }

// Str returns a string value.
func Str(s string) Value { return Value{tag: TagStr, s: s} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{tag: TagBool, b: b} }

// Tag returns the value's dynamic type tag.
func (v Value) Tag() ValueTag { return v.tag }

// AsInt returns the integer payload. Valid only when Tag() == TagInt.
func (v Value) AsInt() int64 { return v.i }

// AsFloat returns the float payload. Valid only when Tag() == TagFloat.
func (v Value) AsFloat() float64 { return v.f }

// AsStr returns the string payload. Valid only when Tag() == TagStr.
func (v Value) AsStr() string { return v.s }

// AsBool returns the boolean payload. Valid only when Tag() == TagBool.
func (v Value) AsBool() bool { return v.b }

// IsNumber reports whether the value is an integer or a float.
func (v Value) IsNumber() bool { return v.tag == TagInt || v.tag == TagFloat }

// floatVal widens the value to a float. Valid only for numbers.
func (v Value) floatVal() float64 {
	if v.tag == TagInt {
		return float64(v.i)
	}
	return v.f
}

// Truthy reports the value's truthiness under the script subset's rules:
// null, false, zero, and the empty string are falsy; everything else is
// truthy.
func (v Value) Truthy() bool {
	switch v.tag {
	case TagNull:
		return false
	case TagInt:
		return v.i != 0
	case TagFloat:
		return v.f != 0
	case TagStr:
		return v.s != ""
	case TagBool:
		return v.b
	}
	return false
}

// String renders the value the way the script subset's print primitive
// does: True/False for booleans, None for null, and floats always with a
// decimal point.
func (v Value) String() string {
	switch v.tag {
	case TagNull:
		return "None"
	case TagInt:
		return strconv.FormatInt(v.i, 10)
	case TagFloat:
		return formatFloat(v.f)
	case TagStr:
		return v.s
	case TagBool:
		if v.b {
			return "True"
		}
		return "False"
	}
	return "None"
}

func formatFloat(f float64) string {
	if math.IsInf(f, 1) {
		return "inf"
	}
	if math.IsInf(f, -1) {
		return "-inf"
	}
	if math.IsNaN(f) {
		return "nan"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	// Whole floats keep their decimal point so 2.0 never prints as 2.
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// RubyLiteral renders the value as a Ruby expression, for injection into
// the bridge preamble.
func (v Value) RubyLiteral() string {
	switch v.tag {
	case TagNull:
		return "nil"
	case TagInt:
		return strconv.FormatInt(v.i, 10)
	case TagFloat:
		return formatFloat(v.f)
	case TagStr:
		return quoteRuby(v.s)
	case TagBool:
		if v.b {
			return "true"
		}
		return "false"
	}
	return "nil"
}

// quoteRuby produces a double-quoted Ruby string literal. '#' is escaped so
// interpolation can never fire inside injected data.
func quoteRuby(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '#':
			b.WriteString(`\#`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// Equal reports value equality. Integers and floats compare numerically
// across tags, matching the script subset's == operator.
func (v Value) Equal(o Value) bool {
	if v.IsNumber() && o.IsNumber() {
		return v.floatVal() == o.floatVal()
	}
	if v.tag != o.tag {
		return false
	}
	switch v.tag {
	case TagNull:
		return true
	case TagStr:
		return v.s == o.s
	case TagBool:
		return v.b == o.b
	}
	return false
}

// Interface converts the value to its plain Go representation, suitable
// for encoding/json and msgpack marshaling.
func (v Value) Interface() interface{} {
	switch v.tag {
	case TagInt:
		return v.i
	case TagFloat:
		return v.f
	case TagStr:
		return v.s
	case TagBool:
		return v.b
	}
	return nil
}

// FromInterface converts a decoded JSON or msgpack scalar into a Value.
// It returns an error for aggregates or any type outside the closed set.
func FromInterface(x interface{}) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case string:
		return Str(t), nil
	case int:
		return Int(int64(t)), nil
	case int8:
		return Int(int64(t)), nil
	case int16:
		return Int(int64(t)), nil
	case int32:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case uint:
		return Int(int64(t)), nil
	case uint8:
		return Int(int64(t)), nil
	case uint16:
		return Int(int64(t)), nil
	case uint32:
		return Int(int64(t)), nil
	case uint64:
		return Int(int64(t)), nil
	case float32:
		return Float(float64(t)), nil
	case float64:
		return Float(t), nil
	}
	return Null(), fmt.Errorf("unrepresentable environment value of type %T", x)
}
