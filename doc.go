// Package apophis implements the Apophis hybrid language: a single source
// document interleaving three embedded languages, a restricted Python-like
// scripting subset, Ruby run out-of-process, and Malbolge, executed as one
// program with shared mutable state.
//
// # Document Format
//
// Apophis source is line-oriented UTF-8. Each line routes to a language
// channel by its first character:
//
//	:print('from the sandbox')     script channel (restricted subset)
//	;puts 'from ruby'              ruby channel (out of process)
//	>b                             everything else is Malbolge
//	# comments and blank lines are dropped
//
// Consecutive same-channel lines form one segment; segments execute in
// source order and their outputs concatenate into the document's output:
//
//	interp := apophis.NewInterpreter()
//	out, err := interp.RunOnce(context.Background(), source)
//
// # Shared State
//
// A single Environment threads through every script and Ruby segment of a
// document (and across lines of a REPL session). Script assignments are
// visible to later Ruby segments and vice versa:
//
//	env := apophis.NewEnvironment()
//	interp.Run(ctx, ":x = 2", env)
//	interp.Run(ctx, ";puts x * 21", env)   // prints 42
//
// Environment values form a closed scalar set (integer, float, string,
// boolean, null) so that state survives the serialized hand-off across the
// process boundary. Environments can be snapshotted to MessagePack with
// Snapshot/RestoreSnapshot, which is how the CLI persists REPL sessions.
//
// # The Sandbox
//
// Script segments run in-process through a desugar → parse → validate →
// evaluate pipeline. The validator enforces a strict allow-list over a
// sealed enumeration of syntax node kinds; imports, attribute access,
// subscripting, and anything else outside the list is rejected before any
// of the segment executes. The only capability reachable from inside a
// program is the print primitive (spelled print or puts). A small sugar
// layer accepts end-terminated blocks and the elsif/unless/until aliases.
//
// # The Bridge
//
// Ruby segments run as a subprocess (ruby -e). The environment is injected
// as a preamble of assignment statements; an epilogue collects the
// post-execution local scope and writes it as JSON to stderr, which the
// bridge merges back. Stdout is reserved for the program's real output.
//
// # The Esoteric Engine
//
// Malbolge segments go to a pluggable Engine. The bundled StubEngine
// recognizes two literal programs ("Q" and ">b"); a real virtual machine
// can be substituted with WithEngine. The Encode utility applies
// Malbolge's 94-entry instruction encryption to text.
package apophis
