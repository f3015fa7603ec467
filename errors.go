package apophis

import (
	"errors"
	"fmt"
)

// MalformedSyntaxError reports script-channel text that could not be lexed or
// parsed at all. The Line and Col fields are 1-based positions into the
// segment text (after desugaring), not into the whole document.
type MalformedSyntaxError struct {
	// Line is the 1-based line of the failure within the segment.
	Line int

	// Col is the 1-based column of the failure.
	Col int

	// Msg describes what the parser or lexer expected.
	Msg string
}

func (e *MalformedSyntaxError) Error() string {
	return fmt.Sprintf("malformed syntax at %d:%d: %s", e.Line, e.Col, e.Msg)
}

// SyntaxRejectedError reports a program that parsed but contains a syntax
// node kind outside the sandbox allow-list. Kind identifies the offending
// construct so a front-end can render a useful message.
type SyntaxRejectedError struct {
	// Kind is the disallowed node kind.
	Kind NodeKind
}

func (e *SyntaxRejectedError) Error() string {
	return fmt.Sprintf("syntax rejected: %s is not allowed in the sandbox", e.Kind)
}

// EvalError reports a fault raised while executing an accepted program:
// an undefined name, incompatible operand types, division by zero, a call
// to an unknown function.
type EvalError struct {
	// Msg describes the fault.
	Msg string
}

func (e *EvalError) Error() string {
	return "eval error: " + e.Msg
}

func evalErrorf(format string, args ...interface{}) *EvalError {
	return &EvalError{Msg: fmt.Sprintf(format, args...)}
}

// SubprocessError reports a failed bridge invocation: the secondary-language
// interpreter was missing, was killed, or exited non-zero.
type SubprocessError struct {
	// Interpreter is the command that was (or could not be) launched.
	Interpreter string

	// ExitCode is the process exit status, or -1 if the process never ran
	// or was killed.
	ExitCode int

	// Stderr holds the diagnostic stream, trimmed, for rendering.
	Stderr string

	// Err is the underlying launch or wait error, if any.
	Err error
}

func (e *SubprocessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("subprocess failure: %s: %v", e.Interpreter, e.Err)
	}
	return fmt.Sprintf("subprocess failure: %s exited with status %d: %s", e.Interpreter, e.ExitCode, e.Stderr)
}

func (e *SubprocessError) Unwrap() error { return e.Err }

// UnsupportedProgramError reports esoteric-channel input outside the
// engine's recognized program set.
type UnsupportedProgramError struct {
	// Source is the rejected program text.
	Source string
}

func (e *UnsupportedProgramError) Error() string {
	return fmt.Sprintf("unsupported esoteric program %q", e.Source)
}

// InvalidExtensionError reports a document path whose extension is not an
// accepted Apophis source extension.
type InvalidExtensionError struct {
	// Path is the offending file path.
	Path string
}

func (e *InvalidExtensionError) Error() string {
	return fmt.Sprintf("invalid extension: %s: Apophis files must use .apop or .apo", e.Path)
}

// SegmentError wraps a component failure with the position of the segment
// that triggered it. The driver attaches this so callers can tell which
// channel and which part of the document failed.
type SegmentError struct {
	// Channel is the segment's language channel.
	Channel Channel

	// Order is the segment's position in the document, starting at 0.
	Order int

	// Err is the originating component error.
	Err error
}

func (e *SegmentError) Error() string {
	return fmt.Sprintf("segment %d (%s): %v", e.Order, e.Channel, e.Err)
}

func (e *SegmentError) Unwrap() error { return e.Err }

// IsSyntaxRejected reports whether err is, or wraps, a SyntaxRejectedError.
func IsSyntaxRejected(err error) bool {
	var sr *SyntaxRejectedError
	return errors.As(err, &sr)
}
