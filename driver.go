package apophis

import (
	"context"
	"strings"
)

// Interpreter is the hybrid driver: it segments raw Apophis source and
// dispatches each segment to the executor owning its channel, threading a
// single shared environment through the whole document.
type Interpreter struct {
	sandbox *Sandbox
	bridge  *Bridge
	engine  Engine
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithEngine substitutes the esoteric engine. The default is StubEngine.
func WithEngine(engine Engine) Option {
	return func(ip *Interpreter) { ip.engine = engine }
}

// WithBridge substitutes the secondary-language bridge, for a different
// interpreter path or a warning hook. The default launches "ruby".
func WithBridge(bridge *Bridge) Option {
	return func(ip *Interpreter) { ip.bridge = bridge }
}

// NewInterpreter returns a driver with the default component set: the
// in-process sandbox, a bridge launching "ruby", and the stub Malbolge
// engine.
func NewInterpreter(opts ...Option) *Interpreter {
	ip := &Interpreter{
		sandbox: NewSandbox(),
		bridge:  NewBridge("ruby"),
		engine:  StubEngine{},
	}
	for _, opt := range opts {
		opt(ip)
	}
	return ip
}

// Run executes a hybrid document against env and returns the
// concatenation of every segment's output in source order.
//
// Dispatch is strictly sequential: a segment never starts before the
// previous segment's output and environment mutations are committed,
// because later segments may read variables written by earlier ones in
// either language. Segments whose text is entirely whitespace are
// skipped. The first component failure aborts the remainder of the
// document and is surfaced wrapped in a SegmentError naming the
// originating channel and segment position.
func (ip *Interpreter) Run(ctx context.Context, source string, env *Environment) (string, error) {
	var out strings.Builder
	for _, seg := range Split(source) {
		if strings.TrimSpace(seg.Text) == "" {
			continue
		}
		var text string
		var err error
		switch seg.Channel {
		case ChannelScript:
			text, err = ip.sandbox.Run(seg.Text, env)
		case ChannelRuby:
			text, err = ip.bridge.Run(ctx, seg.Text, env)
		case ChannelMalbolge:
			text, err = ip.engine.Execute(seg.Text)
		}
		if err != nil {
			return "", &SegmentError{Channel: seg.Channel, Order: seg.Order, Err: err}
		}
		out.WriteString(text)
	}
	return out.String(), nil
}

// RunOnce executes a document with a fresh, throwaway environment. This
// is the one-shot entry point front-ends use when no state should persist
// past the call.
func (ip *Interpreter) RunOnce(ctx context.Context, source string) (string, error) {
	return ip.Run(ctx, source, NewEnvironment())
}
