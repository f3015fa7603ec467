package apophis

import (
	"context"
	"errors"
	"testing"
)

// recordingEngine counts executions so tests can assert what ran.
type recordingEngine struct {
	calls []string
}

func (e *recordingEngine) Execute(source string) (string, error) {
	e.calls = append(e.calls, source)
	return StubEngine{}.Execute(source)
}

// TestDriverConcreteScenario checks the canonical document: the script
// channel sets x, Malbolge emits "s", the script channel prints 1 with no
// trailing newline, giving "s1".
func TestDriverConcreteScenario(t *testing.T) {
	interp := NewInterpreter()
	out, err := interp.RunOnce(context.Background(), ":x = 1\n>b\n:print(x, end='')")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if out != "s1" {
		t.Errorf("output = %q, want %q", out, "s1")
	}
}

// TestDriverOutputOrder checks strict source-order concatenation across
// alternating channels that share no variables.
func TestDriverOutputOrder(t *testing.T) {
	doc := ":print('a')\n>b\n:print('c')\nQ\n:print('d')"
	out, err := NewInterpreter().RunOnce(context.Background(), doc)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if out != "a\nsc\nd\n" {
		t.Errorf("output = %q, want %q", out, "a\nsc\nd\n")
	}
}

// TestDriverSharedEnvironment checks that one environment threads through
// every script segment of a document.
func TestDriverSharedEnvironment(t *testing.T) {
	env := NewEnvironment()
	out, err := NewInterpreter().Run(context.Background(), ":x = 20\n>b\n:x = x + 1\n:print(x + 21)", env)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if out != "s42\n" {
		t.Errorf("output = %q, want %q", out, "s42\n")
	}
	if v, ok := env.Get("x"); !ok || !v.Equal(Int(21)) {
		t.Errorf("x = %v, want 21", v)
	}
}

// TestDriverAbortsOnFailure checks the top-level failure policy: the
// first component error stops the document and later segments never run.
func TestDriverAbortsOnFailure(t *testing.T) {
	engine := &recordingEngine{}
	interp := NewInterpreter(WithEngine(engine))

	_, err := interp.RunOnce(context.Background(), ":print(\n>b")
	var segErr *SegmentError
	if !errors.As(err, &segErr) {
		t.Fatalf("err = %v, want SegmentError", err)
	}
	if segErr.Channel != ChannelScript || segErr.Order != 0 {
		t.Errorf("failure attributed to %s segment %d, want script segment 0", segErr.Channel, segErr.Order)
	}
	var mse *MalformedSyntaxError
	if !errors.As(err, &mse) {
		t.Errorf("err = %v, want wrapped MalformedSyntaxError", err)
	}
	if len(engine.calls) != 0 {
		t.Errorf("later segment executed after failure: %v", engine.calls)
	}
}

// TestDriverUnsupportedProgram checks the esoteric engine's typed failure
// surfacing through the driver.
func TestDriverUnsupportedProgram(t *testing.T) {
	_, err := NewInterpreter().RunOnce(context.Background(), "gibberish")
	var ue *UnsupportedProgramError
	if !errors.As(err, &ue) {
		t.Fatalf("err = %v, want wrapped UnsupportedProgramError", err)
	}
}

// TestDriverSkipsWhitespaceSegments checks that an all-whitespace segment
// is skipped instead of dispatched.
func TestDriverSkipsWhitespaceSegments(t *testing.T) {
	engine := &recordingEngine{}
	interp := NewInterpreter(WithEngine(engine))

	out, err := interp.RunOnce(context.Background(), ": \n>b")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if out != "s" {
		t.Errorf("output = %q, want %q", out, "s")
	}
	if len(engine.calls) != 1 {
		t.Errorf("engine calls = %v, want exactly the Malbolge segment", engine.calls)
	}
}

// TestDriverEmptyDocument checks that an empty document produces empty
// output.
func TestDriverEmptyDocument(t *testing.T) {
	out, err := NewInterpreter().RunOnce(context.Background(), "# nothing here\n")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if out != "" {
		t.Errorf("output = %q, want empty", out)
	}
}

// TestDriverCrossLanguageState checks script→Ruby→script state flow
// through a whole document.
func TestDriverCrossLanguageState(t *testing.T) {
	requireRuby(t)
	doc := ":x = 2\n;y = x * 21\n:print(y)"
	out, err := NewInterpreter().RunOnce(context.Background(), doc)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if out != "42\n" {
		t.Errorf("output = %q, want %q", out, "42\n")
	}
}
