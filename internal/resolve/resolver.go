// Package resolve maps an invoked command to exactly one executable task:
// either a direct built-in lookup, or a reroute through a linked tap with
// the tap's custom tasks merged in.
package resolve

import (
	"context"
	"fmt"

	"github.com/rig-run/rig/internal/argparse"
	"github.com/rig-run/rig/internal/config"
	"github.com/rig-run/rig/internal/logging"
	"github.com/rig-run/rig/internal/tap"
	"github.com/rig-run/rig/internal/task"
	"github.com/rig-run/rig/pkg/types"
)

// TapHandlerName is the fixed built-in task all tap-forwarded commands are
// rerouted through.
const TapHandlerName = "tap"

// Invocation is the transient result of resolving one command. It is
// consumed immediately by the validator and executor, then discarded.
type Invocation struct {
	// Task is the resolved definition, built-in or tap-contributed.
	Task *task.Definition
	// Options is the raw option token list. For tap-rerouted commands it
	// carries the synthetic tap binding token at the second-to-last
	// position, keeping a trailing help token last.
	Options []string
	// Params is the structured parse of the original option tokens.
	Params *argparse.Params
	// Command is the command string the operator typed.
	Command string
	// Link is set when the command was rerouted through a tap.
	Link *types.TapLink
	// HelpRequested mirrors Params.HelpRequested for the dispatcher.
	HelpRequested bool
	// InjectedTap names the tap bound into Params, or "" for direct
	// lookups.
	InjectedTap string
	// Env is the service environment attached by injection.
	Env map[string]string
}

// Injector attaches a tap's on-disk environment to an invocation for tasks
// that declare they require it.
type Injector interface {
	Inject(inv *Invocation, appName, injectPath string) (*Invocation, error)
}

// InjectorFunc adapts a function to the Injector interface.
type InjectorFunc func(inv *Invocation, appName, injectPath string) (*Invocation, error)

// Inject implements Injector.
func (f InjectorFunc) Inject(inv *Invocation, appName, injectPath string) (*Invocation, error) {
	return f(inv, appName, injectPath)
}

// Resolver decides whether a command is a built-in task, a linked tap name,
// or unresolved.
type Resolver struct {
	store    *config.Store
	base     *task.Registry
	injector Injector
}

// New creates a resolver over the built-in registry and the global config
// store. The injector may be nil when no task requires injection.
func New(store *config.Store, base *task.Registry, injector Injector) *Resolver {
	return &Resolver{store: store, base: base, injector: injector}
}

// Resolve maps the command to an invocation. Tap links are consulted before
// built-ins, so a tap name shadows a same-named built-in. An unresolved
// command yields (nil, nil); the validator turns that into the not-found
// outcome.
func (r *Resolver) Resolve(ctx context.Context, command string, options []string) (*Invocation, error) {
	doc, err := r.store.Load()
	if err != nil {
		return nil, err
	}

	// A link without a path is inert and falls through to direct lookup.
	if link := doc.TapLinks[command]; link.Configured() {
		return r.resolveTap(ctx, doc, link, command, options)
	}

	return r.resolveDirect(doc, command, options)
}

func (r *Resolver) resolveTap(_ context.Context, doc *types.Config, link *types.TapLink, command string, options []string) (*Invocation, error) {
	tasks := r.base.Snapshot()

	if link.Tasks != "" {
		merged, err := tap.LoadCustomTasks(tap.LoadContext{
			Config:  doc,
			Tasks:   tasks,
			Command: command,
			Options: options,
		}, link.Tasks)
		if err != nil {
			return nil, err
		}
		tasks = merged
		logging.Debug().Str("tap", command).Str("entry", link.Tasks).Msg("merged custom tap tasks")
	}

	handler, ok := tasks.Lookup(TapHandlerName)
	if !ok {
		return nil, fmt.Errorf("generic %q handler missing from task set", TapHandlerName)
	}

	params, err := argparse.Parse(handler, options, doc)
	if err != nil {
		return nil, err
	}
	// The invoked command becomes the tap the generic handler operates on.
	params.Values["tap"] = command

	inv := &Invocation{
		Task:          handler,
		Options:       insertTapToken(options, command),
		Params:        params,
		Command:       command,
		Link:          link,
		HelpRequested: params.HelpRequested,
		InjectedTap:   command,
	}

	if handler.Inject && r.injector != nil {
		injected, err := r.injector.Inject(inv, command, link.Path)
		if err != nil {
			return nil, fmt.Errorf("inject services for tap %q: %w", command, err)
		}
		inv = injected
	}

	return inv, nil
}

func (r *Resolver) resolveDirect(doc *types.Config, command string, options []string) (*Invocation, error) {
	def, ok := r.base.Get(command)
	if !ok {
		return nil, nil
	}

	params, err := argparse.Parse(def, options, doc)
	if err != nil {
		return nil, err
	}

	return &Invocation{
		Task:          def,
		Options:       options,
		Params:        params,
		Command:       command,
		HelpRequested: params.HelpRequested,
	}, nil
}

// insertTapToken splices the synthetic tap binding into the raw token list
// at the second-to-last position, keeping a trailing help token as the true
// last element so help detection is undisturbed.
func insertTapToken(options []string, command string) []string {
	token := "tap=" + command

	out := make([]string, 0, len(options)+1)
	if argparse.TrailingHelp(options) {
		out = append(out, options[:len(options)-1]...)
		out = append(out, token, options[len(options)-1])
	} else {
		out = append(out, options...)
		out = append(out, token)
	}
	return out
}
