// Package builtin provides the task set fixed at process start.
package builtin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rig-run/rig/internal/config"
	"github.com/rig-run/rig/internal/prompt"
	"github.com/rig-run/rig/internal/shell"
	"github.com/rig-run/rig/internal/tap"
	"github.com/rig-run/rig/internal/task"
)

// Deps are the collaborators built-in actions need beyond the call itself.
type Deps struct {
	Store   *config.Store
	Confirm prompt.ConfirmFunc
}

// DefaultRegistry creates the built-in task registry.
func DefaultRegistry(deps Deps) *task.Registry {
	reg := task.NewRegistry(
		tapTask(),
		linkTask(deps),
		unlinkTask(deps),
		configTask(deps),
	)
	reg.Register(listTask(reg))
	return reg
}

// tapTask is the generic handler all tap-forwarded commands are rerouted
// through. The resolver binds the invoked command as the "tap" parameter.
func tapTask() *task.Definition {
	return &task.Definition{
		Name:        "tap",
		Description: "Run a command inside a linked tap repository",
		Example:     "rig <tap> <command...>",
		Inject:      true,
		Options: map[string]task.OptionSpec{
			"tap": {Description: "name of the tap the command operates on"},
		},
		Action: tapAction,
	}
}

func tapAction(ctx context.Context, call *task.Call) error {
	name := call.Tap()
	if name == "" {
		return errors.New("no tap bound to this invocation")
	}

	link := call.Link
	if link == nil && call.Config != nil {
		link = call.Config.TapLinks[name]
	}
	if !link.Configured() {
		return fmt.Errorf("tap %q is not linked", name)
	}

	if len(call.Positional) == 0 {
		fmt.Fprintf(call.Stdout, "%s -> %s\n", link.Name, link.Path)
		if link.Description != "" {
			fmt.Fprintln(call.Stdout, link.Description)
		}
		if link.Tasks != "" {
			fmt.Fprintf(call.Stdout, "custom tasks: %s\n", link.Tasks)
		}
		return nil
	}

	command := strings.Join(call.Positional, " ")
	res, err := shell.NewRunner(link.Path).WithEnv(call.Env).Run(ctx, command)
	if err != nil {
		return err
	}

	fmt.Fprint(call.Stdout, res.Stdout)
	if res.ExitCode != 0 {
		return fmt.Errorf("tap %q: command exited with status %d: %s",
			name, res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	return nil
}

func linkTask(deps Deps) *task.Definition {
	return &task.Definition{
		Name:        "link",
		Description: "Link a tap repository so its name becomes a command",
		Example:     "rig link ./mytap --name mytap",
		Options: map[string]task.OptionSpec{
			"name": {
				Description: "tap name; defaults to the manifest name or the directory name",
				Alias:       []string{"n"},
			},
		},
		Action: func(_ context.Context, call *task.Call) error {
			if len(call.Positional) == 0 {
				return errors.New("usage: rig link <location> [--name <tap>]")
			}

			location, err := filepath.Abs(call.Positional[0])
			if err != nil {
				return err
			}

			name, _ := call.Params["name"].(string)
			if name == "" {
				if manifest, err := tap.ReadManifest(location); err == nil && manifest != nil {
					name = manifest.Name
				}
			}
			if name == "" {
				name = filepath.Base(location)
			}

			link, err := tap.Register(deps.Store, call.Silent, name, location, deps.Confirm)
			if errors.Is(err, tap.ErrOverwriteDeclined) {
				fmt.Fprintf(call.Stdout, "canceled: kept existing link for %q\n", name)
				return nil
			}
			if err != nil {
				return err
			}

			if err := tap.AddLink(deps.Store, link); err != nil {
				return err
			}

			fmt.Fprintf(call.Stdout, "linked tap %q -> %s\n", link.Name, link.Path)
			if link.Tasks != "" {
				fmt.Fprintf(call.Stdout, "custom tasks: %s\n", link.Tasks)
			}
			return nil
		},
	}
}

func unlinkTask(deps Deps) *task.Definition {
	return &task.Definition{
		Name:        "unlink",
		Description: "Remove a linked tap",
		Example:     "rig unlink mytap",
		Action: func(_ context.Context, call *task.Call) error {
			if len(call.Positional) == 0 {
				return errors.New("usage: rig unlink <tap>")
			}
			name := call.Positional[0]

			if err := tap.RemoveLink(deps.Store, name); err != nil {
				return err
			}
			fmt.Fprintf(call.Stdout, "unlinked tap %q\n", name)
			return nil
		},
	}
}

func configTask(deps Deps) *task.Definition {
	return &task.Definition{
		Name:        "config",
		Description: "Show the resolved global configuration",
		Example:     "rig config",
		Action: func(_ context.Context, call *task.Call) error {
			doc, err := deps.Store.Load()
			if err != nil {
				return err
			}

			data, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return err
			}

			fmt.Fprintf(call.Stdout, "# %s\n%s\n", deps.Store.Path(), data)
			return nil
		},
	}
}

func listTask(reg *task.Registry) *task.Definition {
	return &task.Definition{
		Name:        "list",
		Alias:       []string{"ls"},
		Description: "List built-in tasks and linked taps",
		Example:     "rig list",
		Action: func(_ context.Context, call *task.Call) error {
			fmt.Fprintln(call.Stdout, "tasks:")
			for _, def := range reg.List() {
				fmt.Fprintf(call.Stdout, "  %-10s %s\n", def.Name, def.Description)
			}

			if call.Config == nil || len(call.Config.TapLinks) == 0 {
				return nil
			}

			fmt.Fprintln(call.Stdout, "taps:")
			names := make([]string, 0, len(call.Config.TapLinks))
			for name := range call.Config.TapLinks {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				link := call.Config.TapLinks[name]
				fmt.Fprintf(call.Stdout, "  %-10s %s\n", name, link.Path)
			}
			return nil
		},
	}
}
