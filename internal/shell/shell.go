// Package shell runs task command strings through an embedded POSIX shell
// interpreter.
package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// Result is the outcome of one command run.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes shell command strings in a fixed working directory.
type Runner struct {
	dir string
	env map[string]string
}

// NewRunner creates a runner rooted at dir. An empty dir means the current
// working directory.
func NewRunner(dir string) *Runner {
	return &Runner{dir: dir, env: make(map[string]string)}
}

// WithEnv returns a runner that layers extra variables over the process
// environment, e.g. a tap's injected service environment.
func (r *Runner) WithEnv(env map[string]string) *Runner {
	next := &Runner{dir: r.dir, env: make(map[string]string, len(r.env)+len(env))}
	for k, v := range r.env {
		next.env[k] = v
	}
	for k, v := range env {
		next.env[k] = v
	}
	return next
}

// Run parses and executes the command string, capturing output. A non-zero
// exit status is reported in the Result, not as an error; errors are
// reserved for parse failures and interpreter faults.
func (r *Runner) Run(ctx context.Context, command string) (*Result, error) {
	parser := syntax.NewParser(syntax.Variant(syntax.LangBash))
	file, err := parser.Parse(strings.NewReader(command), "")
	if err != nil {
		return nil, fmt.Errorf("parse command: %w", err)
	}

	var stdout, stderr bytes.Buffer
	runner, err := interp.New(
		interp.StdIO(nil, &stdout, &stderr),
		interp.Dir(r.dir),
		interp.Env(expand.ListEnviron(r.environ()...)),
	)
	if err != nil {
		return nil, fmt.Errorf("create interpreter: %w", err)
	}

	res := &Result{}
	if err := runner.Run(ctx, file); err != nil {
		var status interp.ExitStatus
		if errors.As(err, &status) {
			res.ExitCode = int(status)
		} else {
			return nil, fmt.Errorf("run command: %w", err)
		}
	}

	res.Stdout = stdout.String()
	res.Stderr = stderr.String()
	return res, nil
}

func (r *Runner) environ() []string {
	environ := os.Environ()

	keys := make([]string, 0, len(r.env))
	for k := range r.env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		environ = append(environ, k+"="+r.env[k])
	}
	return environ
}
