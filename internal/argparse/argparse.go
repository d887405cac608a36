// Package argparse turns raw option tokens into structured parameters using
// a task's declared option schema.
package argparse

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/rig-run/rig/internal/task"
	"github.com/rig-run/rig/pkg/types"
	"github.com/spf13/pflag"
)

// ErrMissingOption is the sentinel wrapped by MissingOptionError.
var ErrMissingOption = errors.New("missing required option")

// MissingOptionError reports a required option the operator did not supply.
type MissingOptionError struct {
	Task   string
	Option string
}

func (e *MissingOptionError) Error() string {
	return fmt.Sprintf("task %q: missing required option --%s", e.Task, e.Option)
}

func (e *MissingOptionError) Unwrap() error { return ErrMissingOption }

// Params is the structured result of parsing one token list.
type Params struct {
	// Values holds parsed option values keyed by canonical option name.
	Values map[string]any
	// Positional holds the non-option tokens left over after parsing.
	Positional []string
	// HelpRequested is set when the token list carries a trailing help flag.
	HelpRequested bool
}

// HelpToken reports whether the token is a help flag.
func HelpToken(tok string) bool {
	return tok == "--help" || tok == "-h"
}

// TrailingHelp reports whether the last token requests help.
func TrailingHelp(tokens []string) bool {
	return len(tokens) > 0 && HelpToken(tokens[len(tokens)-1])
}

// Parse parses raw option tokens against the task's option schema. Declared
// defaults are applied, aliases map to their canonical option, and global
// config variables fill options that are still unset. A missing required
// option yields a MissingOptionError.
func Parse(def *task.Definition, tokens []string, cfg *types.Config) (*Params, error) {
	fs := pflag.NewFlagSet(def.Name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.ParseErrorsWhitelist.UnknownFlags = true

	aliases := registerOptions(fs, def)

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		if canonical, ok := aliases[name]; ok {
			return pflag.NormalizedName(canonical)
		}
		return pflag.NormalizedName(name)
	})

	params := &Params{
		Values:        make(map[string]any),
		HelpRequested: TrailingHelp(tokens),
	}

	if err := fs.Parse(stripHelp(tokens)); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			params.HelpRequested = true
		} else {
			return nil, fmt.Errorf("task %q: %w", def.Name, err)
		}
	}

	params.Positional = fs.Args()

	for name, spec := range def.Options {
		value, set := optionValue(fs, name, spec)
		if !set && cfg != nil {
			if v, ok := cfg.Variables[name]; ok {
				value, set = v, true
			}
		}
		if !set && spec.Required && !params.HelpRequested {
			return nil, &MissingOptionError{Task: def.Name, Option: name}
		}
		if value != nil {
			params.Values[name] = value
		}
	}

	return params, nil
}

// registerOptions declares every schema option on the flag set and returns
// the alias-to-canonical mapping. The first single-character alias becomes
// the pflag shorthand; longer aliases go through the normalize function.
func registerOptions(fs *pflag.FlagSet, def *task.Definition) map[string]string {
	aliases := make(map[string]string)

	names := make([]string, 0, len(def.Options))
	for name := range def.Options {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		spec := def.Options[name]

		shorthand := ""
		for _, alias := range spec.Alias {
			if shorthand == "" && len(alias) == 1 {
				shorthand = alias
				continue
			}
			aliases[alias] = name
		}

		switch d := spec.Default.(type) {
		case bool:
			fs.BoolP(name, shorthand, d, spec.Description)
		case int:
			fs.IntP(name, shorthand, d, spec.Description)
		case string:
			fs.StringP(name, shorthand, d, spec.Description)
		default:
			fs.StringP(name, shorthand, "", spec.Description)
		}
	}

	return aliases
}

// optionValue extracts the parsed value for one option. The second return
// reports whether the operator set it or the schema supplied a default.
func optionValue(fs *pflag.FlagSet, name string, spec task.OptionSpec) (any, bool) {
	flag := fs.Lookup(name)
	if flag == nil {
		return nil, false
	}

	set := flag.Changed || spec.Default != nil

	switch spec.Default.(type) {
	case bool:
		v, _ := fs.GetBool(name)
		return v, set
	case int:
		v, _ := fs.GetInt(name)
		return v, set
	default:
		v, _ := fs.GetString(name)
		if v == "" && !flag.Changed {
			return nil, false
		}
		return v, set
	}
}

// stripHelp removes help flags so pflag does not short-circuit parsing;
// help detection is handled from the trailing token instead.
func stripHelp(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if HelpToken(tok) {
			continue
		}
		out = append(out, tok)
	}
	return out
}
