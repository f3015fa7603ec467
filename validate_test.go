package apophis

import (
	"errors"
	"testing"
)

// TestValidateAcceptsSubset checks that representative allowed programs
// pass validation.
func TestValidateAcceptsSubset(t *testing.T) {
	programs := []string{
		"x = 1",
		"print(1 + 2 * 3 ** 2 % 4 / 5)",
		"x = -1\ny = +2.5\nz = not True",
		"if x == 1:\n    pass\nelse:\n    pass",
		"while x < 10 and x != 5 or x >= 7:\n    break\n    continue",
		"def f(a, b):\n    return a <= b\nprint(f(1, 2), end='')",
		"x = None",
	}
	for _, prog := range programs {
		mod, err := Parse(prog)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", prog, err)
		}
		if err := Validate(mod); err != nil {
			t.Errorf("Validate(%q) = %v, want nil", prog, err)
		}
	}
}

// TestValidateRejectsByKind checks that each disallowed construct fails
// with a SyntaxRejectedError carrying the offending kind.
func TestValidateRejectsByKind(t *testing.T) {
	tests := []struct {
		prog string
		kind NodeKind
	}{
		{"import os", KindImport},
		{"x = 1\nimport os", KindImport},
		{"x = y.attr", KindAttribute},
		{"x = y[0]", KindSubscript},
		{"for i in x:\n    pass", KindFor},
	}
	for _, tt := range tests {
		mod, err := Parse(tt.prog)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", tt.prog, err)
		}
		err = Validate(mod)
		var sr *SyntaxRejectedError
		if !errors.As(err, &sr) {
			t.Errorf("Validate(%q) = %v, want SyntaxRejectedError", tt.prog, err)
			continue
		}
		if sr.Kind != tt.kind {
			t.Errorf("Validate(%q) rejected %s, want %s", tt.prog, sr.Kind, tt.kind)
		}
	}
}

// TestRejectedSegmentHasNoSideEffects checks that rejection happens
// before execution: no assignment from a rejected program may land.
func TestRejectedSegmentHasNoSideEffects(t *testing.T) {
	env := NewEnvironment()
	_, err := NewSandbox().Run("x = 1\nimport os", env)
	if !IsSyntaxRejected(err) {
		t.Fatalf("err = %v, want SyntaxRejectedError", err)
	}
	if _, ok := env.Get("x"); ok {
		t.Error("assignment executed before the segment was rejected")
	}
}
