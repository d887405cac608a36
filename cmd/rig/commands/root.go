// Package commands provides the CLI surface for rig.
package commands

import (
	"errors"
	"fmt"

	"github.com/rig-run/rig/internal/builtin"
	"github.com/rig-run/rig/internal/config"
	"github.com/rig-run/rig/internal/inject"
	"github.com/rig-run/rig/internal/logging"
	"github.com/rig-run/rig/internal/prompt"
	"github.com/rig-run/rig/internal/resolve"
	"github.com/rig-run/rig/internal/tap"
	"github.com/rig-run/rig/internal/task"
	"github.com/spf13/cobra"
)

var (
	// Version information set at build time
	Version   = "0.1.0"
	BuildTime = "dev"
)

// Global flags
var (
	silent     bool
	logLevel   string
	printLogs  bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "rig [flags] <command> [options]",
	Short: "rig - extensible task runner",
	Long: `rig resolves a typed command against its built-in task set and any
linked tap repositories, then executes the resolved task.

Link a tap with 'rig link <location>'; afterwards the tap's name is a
command that forwards into it, including any custom tasks the tap
contributes through a tasks/index.js module. Global flags must precede
the command.`,
	Version:       Version,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          dispatch,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&silent, "silent", false, "Never prompt; overwrite confirmations are declined")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "INFO", "Log level (DEBUG|INFO|WARN|ERROR)")
	rootCmd.PersistentFlags().BoolVar(&printLogs, "print-logs", false, "Pretty-print logs to stderr")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Global config file (default: standard location)")

	// Stop flag parsing at the first non-flag token so task options reach
	// the resolver untouched.
	rootCmd.Flags().SetInterspersed(false)

	rootCmd.SetVersionTemplate(fmt.Sprintf("rig %s (%s)\n", Version, BuildTime))
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func dispatch(cmd *cobra.Command, args []string) error {
	logging.Init(logging.Config{
		Level:  logging.ParseLevel(logLevel),
		Output: cmd.ErrOrStderr(),
		Pretty: printLogs,
	})
	logging.BindInvocation()

	if len(args) == 0 {
		return cmd.Help()
	}
	command, options := args[0], args[1:]

	store := config.DefaultStore()
	if configPath != "" {
		store = config.NewStore(configPath)
	}

	doc, err := store.Load()
	if err != nil {
		logging.Fatal().Err(err).Str("path", store.Path()).Msg("global config is unreadable")
	}
	if doc.LogLevel != "" && !cmd.Flags().Changed("log-level") {
		logging.Init(logging.Config{
			Level:  logging.ParseLevel(doc.LogLevel),
			Output: cmd.ErrOrStderr(),
			Pretty: printLogs,
		})
	}

	registry := builtin.DefaultRegistry(builtin.Deps{
		Store:   store,
		Confirm: prompt.Stdio(cmd.InOrStdin(), cmd.ErrOrStderr()),
	})

	resolver := resolve.New(store, registry, resolve.InjectorFunc(inject.Inject))

	inv, err := resolver.Resolve(cmd.Context(), command, options)
	if err != nil {
		// A malformed tap module leaves the task set untrustworthy; shut
		// down rather than resolve against a partially merged set.
		var loadErr *tap.LoadError
		if errors.As(err, &loadErr) {
			logging.Fatal().
				Str("tap", command).
				Str("path", loadErr.Path).
				Err(loadErr.Err).
				Msg("tap task module failed to load")
		}
		return err
	}

	inv, ok := resolve.Validate(inv, inv != nil && inv.HelpRequested)
	if !ok {
		return fmt.Errorf("no such command %q; run 'rig list' to see what is available", command)
	}

	if inv.HelpRequested {
		renderTaskHelp(cmd.OutOrStdout(), inv.Task)
		return nil
	}

	if inv.Task.Action == nil {
		fmt.Fprintf(cmd.OutOrStdout(), "task %q has nothing to run\n", inv.Task.Name)
		return nil
	}

	call := &task.Call{
		Command:    inv.Command,
		Params:     inv.Params.Values,
		Positional: inv.Params.Positional,
		RawOptions: inv.Options,
		Config:     doc,
		Link:       inv.Link,
		Env:        inv.Env,
		Silent:     silent,
		Stdout:     cmd.OutOrStdout(),
	}
	return inv.Task.Action(cmd.Context(), call)
}
