package apophis

import (
	"fmt"
	"os"
	"sort"

	"github.com/vmihailenco/msgpack/v5"
)

// Environment is the single mutable variable scope threaded through a
// document execution or a REPL session. Exactly one instance exists per
// execution; it is owned by the driver and mutated in place by the sandbox
// executor and the bridge. Environments are never shared across independent
// documents or sessions.
//
// Variables hold closed-set scalar Values so that the environment stays
// serializable at every hand-off across the process boundary. Function
// definitions made in script segments are kept in a separate table: they
// persist across segments of the same execution but never cross the bridge.
type Environment struct {
	vars  map[string]Value
	funcs map[string]*Function
}

// NewEnvironment returns an empty environment.
func NewEnvironment() *Environment {
	return &Environment{
		vars:  make(map[string]Value),
		funcs: make(map[string]*Function),
	}
}

// Get returns the value bound to name and whether it exists.
func (env *Environment) Get(name string) (Value, bool) {
	v, ok := env.vars[name]
	return v, ok
}

// Set binds name to value, replacing any previous binding.
func (env *Environment) Set(name string, v Value) {
	env.vars[name] = v
}

// Names returns the bound variable names in sorted order. Sorting keeps
// bridge preambles and snapshots deterministic.
func (env *Environment) Names() []string {
	names := make([]string, 0, len(env.vars))
	for name := range env.vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of bound variables.
func (env *Environment) Len() int { return len(env.vars) }

// setFunc registers a function definition. Later definitions shadow
// earlier ones, like reassignment.
func (env *Environment) setFunc(fn *Function) {
	env.funcs[fn.Name] = fn
}

// getFunc looks up a function definition by name.
func (env *Environment) getFunc(name string) (*Function, bool) {
	fn, ok := env.funcs[name]
	return fn, ok
}

// Snapshot serializes the environment's variables to MessagePack. Function
// definitions are not part of a snapshot for the same reason they do not
// cross the bridge.
func (env *Environment) Snapshot() ([]byte, error) {
	plain := make(map[string]interface{}, len(env.vars))
	for name, v := range env.vars {
		plain[name] = v.Interface()
	}
	return msgpack.Marshal(plain)
}

// RestoreSnapshot merges a Snapshot payload into the environment,
// overwriting existing keys and adding new ones. Keys holding values
// outside the closed scalar set fail the whole restore; nothing is merged.
func (env *Environment) RestoreSnapshot(data []byte) error {
	var plain map[string]interface{}
	if err := msgpack.Unmarshal(data, &plain); err != nil {
		return fmt.Errorf("restore snapshot: %w", err)
	}
	staged := make(map[string]Value, len(plain))
	for name, x := range plain {
		v, err := FromInterface(x)
		if err != nil {
			return fmt.Errorf("restore snapshot: key %q: %w", name, err)
		}
		staged[name] = v
	}
	for name, v := range staged {
		env.vars[name] = v
	}
	return nil
}

// SaveSession writes the environment's snapshot to a file. Used by the
// REPL front-end to carry a session's variables across invocations.
func SaveSession(path string, env *Environment) error {
	data, err := env.Snapshot()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadSession reads a session file written by SaveSession into env.
// A missing file is not an error: the session simply starts empty.
func LoadSession(path string, env *Environment) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return env.RestoreSnapshot(data)
}
