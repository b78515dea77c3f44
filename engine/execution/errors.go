package execution

import "fmt"

// Error reports a misconfigured execution config (e.g. an unknown path
// or gap policy tag passed through a factory). Execution phases
// themselves never fail on well-formed input — a void bar or an
// inactive order is simply skipped, not an error.
type Error struct {
	Detail string
}

func (e *Error) Error() string { return fmt.Sprintf("execution config: %s", e.Detail) }
