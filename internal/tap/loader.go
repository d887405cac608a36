package tap

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dop251/goja"
	"github.com/rig-run/rig/internal/shell"
	"github.com/rig-run/rig/internal/task"
	"github.com/rig-run/rig/pkg/types"
)

// ErrTapLoad is the sentinel carried by every LoadError. A failed tap module
// load is fatal to the process: the merged task set cannot be partially
// trusted, so the CLI layer logs and exits non-zero.
var ErrTapLoad = errors.New("tap task module load failed")

// LoadError reports a tap task module that could not be loaded or executed.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load tap task module %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return ErrTapLoad }

// LoadContext is the resolution context handed to a tap module factory.
type LoadContext struct {
	Config  *types.Config
	Tasks   task.Set
	Command string
	Options []string
}

// LoadCustomTasks loads the tap's task module at entryPath and merges its
// definitions over the base set, custom definitions winning on collision.
//
// The module is a JavaScript file whose module.exports is either a static
// mapping of task definitions or a factory function that receives the
// resolution context and returns one.
func LoadCustomTasks(lctx LoadContext, entryPath string) (task.Set, error) {
	src, err := os.ReadFile(entryPath)
	if err != nil {
		return nil, &LoadError{Path: entryPath, Err: err}
	}

	vm := goja.New()
	module := vm.NewObject()
	exports := vm.NewObject()
	_ = module.Set("exports", exports)
	_ = vm.Set("module", module)
	_ = vm.Set("exports", exports)

	if _, err := vm.RunScript(entryPath, string(src)); err != nil {
		return nil, &LoadError{Path: entryPath, Err: err}
	}

	exported := module.Get("exports")
	if factory, ok := goja.AssertFunction(exported); ok {
		result, err := factory(goja.Undefined(), vm.ToValue(lctx.jsContext()))
		if err != nil {
			return nil, &LoadError{Path: entryPath, Err: err}
		}
		exported = result
	}

	custom, err := definitionsFromExport(vm, exported, entryPath)
	if err != nil {
		return nil, &LoadError{Path: entryPath, Err: err}
	}

	return lctx.Tasks.Merge(custom), nil
}

// jsContext is the plain-data view of the resolution context a factory sees.
func (lctx LoadContext) jsContext() map[string]any {
	ctx := map[string]any{
		"command": lctx.Command,
		"options": lctx.Options,
		"tasks":   lctx.Tasks.Names(),
	}
	if lctx.Config != nil {
		ctx["variables"] = lctx.Config.Variables
	}
	return ctx
}

func definitionsFromExport(vm *goja.Runtime, exported goja.Value, entryPath string) (task.Set, error) {
	if exported == nil || goja.IsUndefined(exported) || goja.IsNull(exported) {
		return nil, fmt.Errorf("module exports nothing")
	}

	obj := exported.ToObject(vm)
	custom := make(task.Set)
	for _, name := range obj.Keys() {
		def, err := definitionFromJS(vm, name, obj.Get(name))
		if err != nil {
			return nil, fmt.Errorf("task %q: %w", name, err)
		}
		custom[name] = def
	}

	if len(custom) == 0 {
		return nil, fmt.Errorf("module exports no tasks")
	}
	return custom, nil
}

func definitionFromJS(vm *goja.Runtime, name string, value goja.Value) (*task.Definition, error) {
	if value == nil || goja.IsUndefined(value) || goja.IsNull(value) {
		return nil, fmt.Errorf("definition is not an object")
	}
	obj := value.ToObject(vm)

	def := &task.Definition{
		Name:        name,
		Description: stringField(obj, "description"),
		Example:     stringField(obj, "example"),
		Alias:       stringSliceField(obj, "alias"),
		Inject:      boolField(obj, "inject"),
		Options:     make(map[string]task.OptionSpec),
	}

	if opts := obj.Get("options"); opts != nil && !goja.IsUndefined(opts) && !goja.IsNull(opts) {
		optsObj := opts.ToObject(vm)
		for _, optName := range optsObj.Keys() {
			spec, err := optionSpecFromJS(vm, optsObj.Get(optName))
			if err != nil {
				return nil, fmt.Errorf("option %q: %w", optName, err)
			}
			def.Options[optName] = spec
		}
	}

	if action := obj.Get("action"); action != nil {
		if fn, ok := goja.AssertFunction(action); ok {
			def.Action = jsAction(vm, name, fn)
			return def, nil
		}
	}
	if exec := stringField(obj, "exec"); exec != "" {
		def.Action = execAction(exec)
	}
	// Neither action nor exec: metadata-only, surfaced at dispatch time.

	return def, nil
}

func optionSpecFromJS(vm *goja.Runtime, value goja.Value) (task.OptionSpec, error) {
	if value == nil || goja.IsUndefined(value) || goja.IsNull(value) {
		return task.OptionSpec{}, fmt.Errorf("spec is not an object")
	}
	obj := value.ToObject(vm)

	spec := task.OptionSpec{
		Description: stringField(obj, "description"),
		Alias:       stringSliceField(obj, "alias"),
		Required:    boolField(obj, "required"),
	}
	if d := obj.Get("default"); d != nil && !goja.IsUndefined(d) && !goja.IsNull(d) {
		switch v := d.Export().(type) {
		case bool:
			spec.Default = v
		case int64:
			spec.Default = int(v)
		case float64:
			spec.Default = int(v)
		default:
			spec.Default = fmt.Sprint(v)
		}
	}
	return spec, nil
}

// jsAction wraps a module-defined action function. The goja runtime is not
// goroutine safe; one invocation runs one action, so the single runtime
// owned by the loader is enough.
func jsAction(vm *goja.Runtime, name string, fn goja.Callable) task.Action {
	return func(_ context.Context, call *task.Call) error {
		payload := map[string]any{
			"command":    call.Command,
			"params":     call.Params,
			"positional": call.Positional,
			"options":    call.RawOptions,
			"env":        call.Env,
		}
		if call.Link != nil {
			payload["tapPath"] = call.Link.Path
		}

		result, err := fn(goja.Undefined(), vm.ToValue(payload))
		if err != nil {
			return fmt.Errorf("task %q action: %w", name, err)
		}
		if result != nil && !goja.IsUndefined(result) && !goja.IsNull(result) {
			fmt.Fprintln(call.Stdout, result.String())
		}
		return nil
	}
}

// execAction runs a module-defined shell command string in the tap's
// repository directory, with any injected environment layered on.
func execAction(command string) task.Action {
	return func(ctx context.Context, call *task.Call) error {
		dir := ""
		if call.Link != nil {
			dir = call.Link.Path
		}

		runner := shell.NewRunner(dir).WithEnv(call.Env)
		res, err := runner.Run(ctx, command)
		if err != nil {
			return err
		}

		fmt.Fprint(call.Stdout, res.Stdout)
		if res.ExitCode != 0 {
			return fmt.Errorf("command %q exited with status %d: %s",
				command, res.ExitCode, res.Stderr)
		}
		return nil
	}
}

func stringField(obj *goja.Object, key string) string {
	v := obj.Get(key)
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return ""
	}
	s, _ := v.Export().(string)
	return s
}

func boolField(obj *goja.Object, key string) bool {
	v := obj.Get(key)
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return false
	}
	b, _ := v.Export().(bool)
	return b
}

func stringSliceField(obj *goja.Object, key string) []string {
	v := obj.Get(key)
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil
	}
	raw, ok := v.Export().([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
