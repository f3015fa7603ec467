package apophis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os/exec"
	"strconv"
	"strings"
)

// scopeMarker is the internal variable the epilogue uses to collect the
// Ruby scope. It is excluded from the snapshot so it never leaks into the
// shared environment.
const scopeMarker = "__apophis_scope__"

// Bridge executes Ruby-channel text out of process and exchanges variable
// state with the shared environment through a serialized side channel.
//
// The protocol is preamble/epilogue injection: the environment is
// serialized into Ruby assignment statements prepended to the caller's
// text, and an appended epilogue collects every local variable left in
// scope (except the internal marker), packs the JSON-representable ones
// into a hash, and writes it to standard error. Standard output stays
// reserved for the program's real printed output. This injection is the
// only way values cross the process boundary, and it is lossy for any
// value JSON cannot represent.
type Bridge struct {
	// Interpreter is the command used to run the secondary language,
	// normally "ruby". It is invoked as: Interpreter -e <script>.
	Interpreter string

	// Warn, if non-nil, is called when a post-execution scope snapshot
	// cannot be parsed. Malformed snapshots are skipped without failing
	// the segment; the hook exists so callers can surface the skip.
	Warn func(msg string)
}

// NewBridge returns a bridge that launches the given interpreter command.
func NewBridge(interpreter string) *Bridge {
	return &Bridge{Interpreter: interpreter}
}

// Run executes text with the secondary-language interpreter and returns
// the process's standard output verbatim.
//
// Run blocks until the subprocess exits; cancellation, if needed, comes
// from ctx, and a forced termination surfaces as SubprocessError. After a
// successful exit the diagnostic-stream snapshot is merged into env,
// overwriting existing keys and adding new ones. A snapshot that fails to
// parse leaves env untouched (no partial merge) and is not an error: the
// segment's output is still returned.
func (b *Bridge) Run(ctx context.Context, text string, env *Environment) (string, error) {
	script := b.composeScript(text, env)

	cmd := exec.CommandContext(ctx, b.Interpreter, "-e", script)
	setProcessGroup(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		serr := &SubprocessError{
			Interpreter: b.Interpreter,
			ExitCode:    -1,
			Stderr:      strings.TrimSpace(stderr.String()),
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			serr.ExitCode = exitErr.ExitCode()
		} else {
			serr.Err = err
		}
		if ctx.Err() != nil {
			serr.Err = ctx.Err()
		}
		return "", serr
	}

	b.mergeScope(stderr.Bytes(), env)
	return stdout.String(), nil
}

// composeScript builds the combined preamble+text+epilogue unit.
func (b *Bridge) composeScript(text string, env *Environment) string {
	var sb strings.Builder
	sb.WriteString("require 'json'\n")
	for _, name := range env.Names() {
		v, _ := env.Get(name)
		sb.WriteString(name)
		sb.WriteString(" = ")
		sb.WriteString(v.RubyLiteral())
		sb.WriteByte('\n')
	}
	sb.WriteString(text)
	sb.WriteByte('\n')
	sb.WriteString(scopeEpilogue)
	return sb.String()
}

// scopeEpilogue collects the post-execution local scope and writes it to
// stderr as one JSON line. Values outside the JSON scalar set are dropped
// rather than raising, so a segment that builds richer Ruby objects still
// syncs its scalars back.
const scopeEpilogue = scopeMarker + ` = {}
local_variables.each do |__apophis_name__|
  next if __apophis_name__ == :` + scopeMarker + `
  __apophis_value__ = binding.local_variable_get(__apophis_name__)
  next unless __apophis_value__.is_a?(Numeric) || __apophis_value__.is_a?(String) ||
    __apophis_value__ == true || __apophis_value__ == false || __apophis_value__.nil?
  ` + scopeMarker + `[__apophis_name__.to_s] = __apophis_value__
end
STDERR.puts(JSON.generate(` + scopeMarker + `))
`

// mergeScope parses the diagnostic stream's final line as a JSON scope
// snapshot and merges it into env. The merge is all-or-nothing; a payload
// that does not parse is skipped silently (modulo the Warn hook) so the
// segment's useful output is not discarded over a bookkeeping failure.
func (b *Bridge) mergeScope(diag []byte, env *Environment) {
	line := lastNonEmptyLine(diag)
	if line == "" {
		b.warnf("no scope snapshot on diagnostic stream")
		return
	}
	staged, err := parseScopeSnapshot([]byte(line))
	if err != nil {
		b.warnf("skipping scope snapshot: " + err.Error())
		return
	}
	for name, v := range staged {
		env.Set(name, v)
	}
}

func (b *Bridge) warnf(msg string) {
	if b.Warn != nil {
		b.Warn(msg)
	}
}

// parseScopeSnapshot decodes a JSON object of scalar values. Integral
// numbers stay integers; anything non-scalar fails the whole snapshot.
func parseScopeSnapshot(payload []byte) (map[string]Value, error) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	var raw map[string]interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	staged := make(map[string]Value, len(raw))
	for name, x := range raw {
		if num, ok := x.(json.Number); ok {
			if i, err := strconv.ParseInt(num.String(), 10, 64); err == nil {
				staged[name] = Int(i)
				continue
			}
			f, err := num.Float64()
			if err != nil {
				return nil, err
			}
			staged[name] = Float(f)
			continue
		}
		v, err := FromInterface(x)
		if err != nil {
			return nil, err
		}
		staged[name] = v
	}
	return staged, nil
}

func lastNonEmptyLine(data []byte) string {
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.TrimSpace(lines[i]) != "" {
			return lines[i]
		}
	}
	return ""
}
