// Package main provides the entry point for the rig CLI.
package main

import (
	"fmt"
	"os"

	"github.com/rig-run/rig/cmd/rig/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
