package apophis

import "testing"

// TestValueString checks print-style rendering.
func TestValueString(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{Int(42), "42"},
		{Int(-1), "-1"},
		{Float(2), "2.0"},
		{Float(0.5), "0.5"},
		{Float(1e21), "1e+21"},
		{Str("hi"), "hi"},
		{Bool(true), "True"},
		{Bool(false), "False"},
		{Null(), "None"},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

// TestValueRubyLiteral checks preamble emission, in particular string
// escaping: interpolation must never fire inside injected data.
func TestValueRubyLiteral(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{Int(7), "7"},
		{Float(2), "2.0"},
		{Bool(true), "true"},
		{Bool(false), "false"},
		{Null(), "nil"},
		{Str("plain"), `"plain"`},
		{Str(`say "hi"`), `"say \"hi\""`},
		{Str("a#{1}b"), `"a\#{1}b"`},
		{Str("line\nbreak\ttab"), `"line\nbreak\ttab"`},
		{Str(`back\slash`), `"back\\slash"`},
	}
	for _, tt := range tests {
		if got := tt.v.RubyLiteral(); got != tt.want {
			t.Errorf("RubyLiteral() = %q, want %q", got, tt.want)
		}
	}
}

// TestValueEqual checks cross-tag numeric equality and strict equality
// elsewhere.
func TestValueEqual(t *testing.T) {
	if !Int(2).Equal(Float(2)) {
		t.Error("Int(2) should equal Float(2)")
	}
	if Int(0).Equal(Bool(false)) {
		t.Error("Int(0) should not equal Bool(false)")
	}
	if !Null().Equal(Null()) {
		t.Error("Null should equal Null")
	}
	if Str("a").Equal(Str("b")) {
		t.Error("distinct strings should not be equal")
	}
}

// TestValueTruthiness checks the falsy set.
func TestValueTruthiness(t *testing.T) {
	falsy := []Value{Null(), Int(0), Float(0), Str(""), Bool(false)}
	for _, v := range falsy {
		if v.Truthy() {
			t.Errorf("%v should be falsy", v)
		}
	}
	truthy := []Value{Int(-1), Float(0.1), Str("0"), Bool(true)}
	for _, v := range truthy {
		if !v.Truthy() {
			t.Errorf("%v should be truthy", v)
		}
	}
}

// TestFromInterfaceRejectsAggregates checks that values outside the
// closed scalar set are refused.
func TestFromInterfaceRejectsAggregates(t *testing.T) {
	for _, x := range []interface{}{[]interface{}{1}, map[string]interface{}{"k": 1}} {
		if _, err := FromInterface(x); err == nil {
			t.Errorf("FromInterface(%T) should fail", x)
		}
	}
}
