package apophis

import (
	"errors"
	"testing"
)

// TestParseMalformed checks that unparseable text fails with a positioned
// MalformedSyntaxError.
func TestParseMalformed(t *testing.T) {
	inputs := []string{
		"x = ",
		"print(",
		"if :",
		"1 +",
		"x = 'unterminated",
		"def (a):\n    pass",
		"x == 1 == 2",
		"1 = x",
		"x = $",
	}
	for _, in := range inputs {
		_, err := Parse(in)
		var mse *MalformedSyntaxError
		if !errors.As(err, &mse) {
			t.Errorf("Parse(%q) error = %v, want MalformedSyntaxError", in, err)
		}
	}
}

// TestParseInconsistentIndentation checks that a dedent to a depth never
// seen before is rejected.
func TestParseInconsistentIndentation(t *testing.T) {
	_, err := Parse("if x:\n        pass\n    pass")
	var mse *MalformedSyntaxError
	if !errors.As(err, &mse) {
		t.Fatalf("error = %v, want MalformedSyntaxError", err)
	}
}

// TestParsePrecedence checks operator precedence and associativity
// through evaluation.
func TestParsePrecedence(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"1 + 2 * 3", "7"},
		{"(1 + 2) * 3", "9"},
		{"2 ** 3 ** 2", "512"},     // right-associative
		{"-2 ** 2", "-4"},          // unary binds looser than power
		{"10 - 4 - 3", "3"},        // left-associative
		{"7 % 3 + 1", "2"},
		{"1 + 1 == 2 and 2 < 3", "True"},
		{"not 1 == 2", "True"},
		{"False or not False", "True"},
	}
	for _, tt := range tests {
		out, err := NewSandbox().Run("print("+tt.expr+")", NewEnvironment())
		if err != nil {
			t.Errorf("%s: %v", tt.expr, err)
			continue
		}
		if out != tt.want+"\n" {
			t.Errorf("print(%s) = %q, want %q", tt.expr, out, tt.want+"\n")
		}
	}
}

// TestParseRejectableConstructs checks that the constructs outside the
// allow-list parse successfully; rejection is the validator's job.
func TestParseRejectableConstructs(t *testing.T) {
	inputs := []string{
		"import os",
		"import os, sys",
		"x = y.attr",
		"x = y[0]",
		"for i in x:\n    pass",
	}
	for _, in := range inputs {
		if _, err := Parse(in); err != nil {
			t.Errorf("Parse(%q) failed: %v", in, err)
		}
	}
}
