package apophis

import (
	"context"
	"io"
	"strings"
)

// REPL drives an interactive session over the hybrid interpreter. The
// front-end supplies a line-reader and a line-writer; the REPL depends on
// nothing else, never on a concrete terminal.
//
// One session environment is created when the session starts and survives
// across iterations; that is what gives the REPL variable persistence
// from one line to the next. The session ends at end of input or on an
// empty line.
type REPL struct {
	// ReadLine returns the next input line without its trailing newline.
	// It reports io.EOF at end of input.
	ReadLine func() (string, error)

	// WriteLine emits one line of output to the user.
	WriteLine func(string) error

	interp *Interpreter
	env    *Environment
}

// NewREPL returns a session over interp using the given line functions.
// The session environment starts empty.
func NewREPL(interp *Interpreter, readLine func() (string, error), writeLine func(string) error) *REPL {
	return &REPL{
		ReadLine:  readLine,
		WriteLine: writeLine,
		interp:    interp,
		env:       NewEnvironment(),
	}
}

// Env exposes the session environment, so front-ends can preload or
// persist it between invocations.
func (r *REPL) Env() *Environment { return r.env }

// Loop runs the session until end of input, an empty line, or a write
// failure. Each non-empty input line is passed whole to the hybrid driver
// as a document using the session's environment; non-empty output is
// emitted immediately. Component errors do not end the session: they are
// reported through WriteLine and the loop continues, since an interactive
// user's next line should not be hostage to the last one.
func (r *REPL) Loop(ctx context.Context) error {
	for {
		line, err := r.ReadLine()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if line == "" {
			return nil
		}

		out, err := r.interp.Run(ctx, line, r.env)
		if err != nil {
			if werr := r.WriteLine("error: " + err.Error()); werr != nil {
				return werr
			}
			continue
		}
		if out != "" {
			if werr := r.WriteLine(strings.TrimRight(out, "\n")); werr != nil {
				return werr
			}
		}
	}
}
