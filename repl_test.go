package apophis

import (
	"context"
	"io"
	"testing"
)

// scriptedSession feeds fixed lines to a REPL and records its output.
type scriptedSession struct {
	lines  []string
	pos    int
	output []string
}

func (s *scriptedSession) readLine() (string, error) {
	if s.pos >= len(s.lines) {
		return "", io.EOF
	}
	line := s.lines[s.pos]
	s.pos++
	return line, nil
}

func (s *scriptedSession) writeLine(line string) error {
	s.output = append(s.output, line)
	return nil
}

func newScriptedREPL(lines ...string) (*REPL, *scriptedSession) {
	session := &scriptedSession{lines: lines}
	return NewREPL(NewInterpreter(), session.readLine, session.writeLine), session
}

// TestREPLVariablePersistence checks that the session environment
// survives across iterations.
func TestREPLVariablePersistence(t *testing.T) {
	repl, session := newScriptedREPL(":x = 1", ":print(x)")
	if err := repl.Loop(context.Background()); err != nil {
		t.Fatalf("Loop failed: %v", err)
	}
	if len(session.output) != 1 || session.output[0] != "1" {
		t.Errorf("output = %v, want [\"1\"]", session.output)
	}
	if v, ok := repl.Env().Get("x"); !ok || !v.Equal(Int(1)) {
		t.Errorf("session x = %v, want 1", v)
	}
}

// TestREPLTerminatesOnEmptyLine checks that an empty line ends the
// session and no further lines are read.
func TestREPLTerminatesOnEmptyLine(t *testing.T) {
	repl, session := newScriptedREPL(":x = 1", "", ":print(unreached)")
	if err := repl.Loop(context.Background()); err != nil {
		t.Fatalf("Loop failed: %v", err)
	}
	if session.pos != 2 {
		t.Errorf("read %d lines, want 2 (stop at the empty line)", session.pos)
	}
	if len(session.output) != 0 {
		t.Errorf("output = %v, want none", session.output)
	}
}

// TestREPLTerminatesOnEOF checks end-of-input termination.
func TestREPLTerminatesOnEOF(t *testing.T) {
	repl, _ := newScriptedREPL(":x = 1")
	if err := repl.Loop(context.Background()); err != nil {
		t.Errorf("Loop at EOF should return nil, got %v", err)
	}
}

// TestREPLReportsErrorsAndContinues checks that a failing line is
// reported but does not end the session or reset its environment.
func TestREPLReportsErrorsAndContinues(t *testing.T) {
	repl, session := newScriptedREPL(":x = 1", ":import os", ":print(x)")
	if err := repl.Loop(context.Background()); err != nil {
		t.Fatalf("Loop failed: %v", err)
	}
	if len(session.output) != 2 {
		t.Fatalf("output = %v, want an error line and \"1\"", session.output)
	}
	if session.output[1] != "1" {
		t.Errorf("final output = %q, want %q", session.output[1], "1")
	}
}

// TestREPLMixedChannels checks a Malbolge line in an interactive session.
func TestREPLMixedChannels(t *testing.T) {
	repl, session := newScriptedREPL(">b")
	if err := repl.Loop(context.Background()); err != nil {
		t.Fatalf("Loop failed: %v", err)
	}
	if len(session.output) != 1 || session.output[0] != "s" {
		t.Errorf("output = %v, want [\"s\"]", session.output)
	}
}
