// Package task defines task definitions and the built-in task registry.
package task

import (
	"context"
	"io"
	"sort"

	"github.com/rig-run/rig/pkg/types"
)

// Action is the callable a task runs when dispatched.
type Action func(ctx context.Context, call *Call) error

// Call carries everything an action needs for one dispatch.
type Call struct {
	// Command is the command string the operator typed.
	Command string
	// Params holds the parsed option values keyed by canonical option name.
	Params map[string]any
	// Positional holds the non-option tokens left after parsing.
	Positional []string
	// RawOptions is the raw option token list, including any synthetic
	// tap binding token.
	RawOptions []string
	// Config is the loaded global configuration document.
	Config *types.Config
	// Link is the tap registration the command was rerouted through, when
	// the command named a linked tap.
	Link *types.TapLink
	// Env is the service environment attached by injection, when the task
	// declared it requires one.
	Env map[string]string
	// Silent suppresses interactive prompts.
	Silent bool
	// Stdout is where the action writes user-facing output.
	Stdout io.Writer
}

// Tap returns the tap name bound to this call, or "" for direct commands.
func (c *Call) Tap() string {
	if v, ok := c.Params["tap"].(string); ok {
		return v
	}
	return ""
}

// OptionSpec declares one option in a task's schema.
type OptionSpec struct {
	Description string
	Alias       []string
	Default     any
	Required    bool
}

// Definition is a named, invocable task with a declared option schema.
// Built-in definitions are fixed at process start; tap-contributed
// definitions are merged in per invocation and never persisted.
type Definition struct {
	Name        string
	Alias       []string
	Action      Action
	Description string
	Example     string
	Options     map[string]OptionSpec
	// Inject marks tasks whose invocation must be handed to the service
	// injector before execution.
	Inject bool
}

// Set is a task collection keyed by task name.
type Set map[string]*Definition

// Merge returns a new set with custom definitions layered over s.
// Custom definitions win on name collision; s is left untouched.
func (s Set) Merge(custom Set) Set {
	merged := make(Set, len(s)+len(custom))
	for name, def := range s {
		merged[name] = def
	}
	for name, def := range custom {
		merged[name] = def
	}
	return merged
}

// Lookup finds a definition by name or alias.
func (s Set) Lookup(name string) (*Definition, bool) {
	if def, ok := s[name]; ok {
		return def, true
	}
	for _, def := range s {
		for _, alias := range def.Alias {
			if alias == name {
				return def, true
			}
		}
	}
	return nil, false
}

// Names returns the task names in sorted order.
func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
