package commands

import (
	"bytes"
	"testing"

	"github.com/rig-run/rig/internal/task"
	"github.com/stretchr/testify/assert"
)

func TestRenderTaskHelp(t *testing.T) {
	def := &task.Definition{
		Name:        "deploy",
		Alias:       []string{"d"},
		Description: "Deploy the app",
		Example:     "rig mytap deploy --env prod",
		Options: map[string]task.OptionSpec{
			"env":   {Description: "target environment", Alias: []string{"e"}, Default: "staging"},
			"token": {Description: "auth token", Required: true},
		},
	}

	var out bytes.Buffer
	renderTaskHelp(&out, def)
	help := out.String()

	assert.Contains(t, help, "rig deploy (alias: d)")
	assert.Contains(t, help, "Deploy the app")
	assert.Contains(t, help, "rig mytap deploy --env prod")
	assert.Contains(t, help, "-e, --env")
	assert.Contains(t, help, "(default: staging)")
	assert.Contains(t, help, "--token")
	assert.Contains(t, help, "(required)")
}

func TestRenderTaskHelpWithoutOptions(t *testing.T) {
	var out bytes.Buffer
	renderTaskHelp(&out, &task.Definition{Name: "list", Description: "List tasks"})

	assert.Contains(t, out.String(), "rig list")
	assert.NotContains(t, out.String(), "Options:")
}
