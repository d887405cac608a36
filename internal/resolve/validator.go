package resolve

// Validate is the final gate before execution. It fails (returns false,
// non-fatally) when no task was resolved. A help request still validates
// structurally; the caller is expected to render help instead of executing.
func Validate(inv *Invocation, helpRequested bool) (*Invocation, bool) {
	if inv == nil || inv.Task == nil {
		return nil, false
	}
	if helpRequested {
		inv.HelpRequested = true
	}
	return inv, true
}
