package argparse

import (
	"testing"

	"github.com/rig-run/rig/internal/task"
	"github.com/rig-run/rig/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func deployTask() *task.Definition {
	return &task.Definition{
		Name: "deploy",
		Options: map[string]task.OptionSpec{
			"env": {
				Description: "target environment",
				Alias:       []string{"e", "environment"},
				Default:     "staging",
			},
			"count": {
				Description: "replica count",
				Default:     1,
			},
			"verbose": {
				Description: "verbose output",
				Alias:       []string{"v"},
				Default:     false,
			},
			"token": {
				Description: "auth token",
				Required:    true,
			},
		},
	}
}

func TestParseAppliesDefaults(t *testing.T) {
	params, err := Parse(deployTask(), []string{"--token", "abc"}, nil)
	require.NoError(t, err)

	assert.Equal(t, "staging", params.Values["env"])
	assert.Equal(t, 1, params.Values["count"])
	assert.Equal(t, false, params.Values["verbose"])
	assert.Equal(t, "abc", params.Values["token"])
}

func TestParseHonorsAliases(t *testing.T) {
	params, err := Parse(deployTask(), []string{"--token", "abc", "-e", "prod", "-v"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "prod", params.Values["env"])
	assert.Equal(t, true, params.Values["verbose"])

	params, err = Parse(deployTask(), []string{"--token", "abc", "--environment", "prod"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "prod", params.Values["env"])
}

func TestParseMissingRequiredOption(t *testing.T) {
	_, err := Parse(deployTask(), []string{"-e", "prod"}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingOption)

	var missing *MissingOptionError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "deploy", missing.Task)
	assert.Equal(t, "token", missing.Option)
}

func TestParseConfigVariablesFillUnsetOptions(t *testing.T) {
	cfg := &types.Config{Variables: map[string]string{"token": "from-config"}}

	params, err := Parse(deployTask(), nil, cfg)
	require.NoError(t, err)
	assert.Equal(t, "from-config", params.Values["token"])
}

func TestParseTrailingHelp(t *testing.T) {
	params, err := Parse(deployTask(), []string{"--help"}, nil)
	require.NoError(t, err)
	assert.True(t, params.HelpRequested)

	params, err = Parse(deployTask(), []string{"-e", "prod", "-h"}, nil)
	require.NoError(t, err)
	assert.True(t, params.HelpRequested)

	// Required options are not enforced on a help request.
	assert.NotContains(t, params.Values, "token")
}

func TestParseUnknownFlagsTolerated(t *testing.T) {
	def := &task.Definition{Name: "tap", Options: map[string]task.OptionSpec{}}

	params, err := Parse(def, []string{"--verbose"}, nil)
	require.NoError(t, err)
	assert.Empty(t, params.Values)
}

func TestParsePositionalTokens(t *testing.T) {
	params, err := Parse(deployTask(), []string{"--token", "abc", "api", "worker"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"api", "worker"}, params.Positional)
}

func TestTrailingHelp(t *testing.T) {
	assert.True(t, TrailingHelp([]string{"--verbose", "--help"}))
	assert.True(t, TrailingHelp([]string{"-h"}))
	assert.False(t, TrailingHelp([]string{"--help", "--verbose"}))
	assert.False(t, TrailingHelp(nil))
}
