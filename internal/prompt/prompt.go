// Package prompt provides interactive operator confirmation.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ConfirmFunc is the signature callers depend on, so tests can substitute a
// canned answer.
type ConfirmFunc func(message string) bool

// Confirm prints the message followed by a [y/N] marker and waits for a
// line of operator input. Only an explicit yes answer confirms.
func Confirm(r io.Reader, w io.Writer, message string) bool {
	fmt.Fprintf(w, "%s [y/N] ", message)

	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && line == "" {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// Stdio binds Confirm to the given streams as a ConfirmFunc.
func Stdio(r io.Reader, w io.Writer) ConfirmFunc {
	return func(message string) bool {
		return Confirm(r, w, message)
	}
}
