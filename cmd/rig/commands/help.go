package commands

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/rig-run/rig/internal/task"
)

// renderTaskHelp prints a task's description, example, and option table.
func renderTaskHelp(w io.Writer, def *task.Definition) {
	fmt.Fprintf(w, "rig %s", def.Name)
	if len(def.Alias) > 0 {
		fmt.Fprintf(w, " (alias: %s)", strings.Join(def.Alias, ", "))
	}
	fmt.Fprintln(w)

	if def.Description != "" {
		fmt.Fprintf(w, "\n  %s\n", def.Description)
	}
	if def.Example != "" {
		fmt.Fprintf(w, "\nExample:\n  %s\n", def.Example)
	}

	if len(def.Options) == 0 {
		return
	}

	names := make([]string, 0, len(def.Options))
	for name := range def.Options {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(w, "\nOptions:")
	for _, name := range names {
		spec := def.Options[name]

		label := "--" + name
		for _, alias := range spec.Alias {
			if len(alias) == 1 {
				label = "-" + alias + ", " + label
				break
			}
		}

		desc := spec.Description
		if spec.Default != nil {
			desc = fmt.Sprintf("%s (default: %v)", desc, spec.Default)
		}
		if spec.Required {
			desc += " (required)"
		}
		fmt.Fprintf(w, "  %-20s %s\n", label, strings.TrimSpace(desc))
	}
}
