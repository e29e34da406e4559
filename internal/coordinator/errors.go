package coordinator

import "fmt"

// panicAsError renders a recovered panic value as a plain error, so an
// agent's panic and an agent's returned error produce the same Result
// shape to the caller.
func panicAsError(rec any) error {
	if err, ok := rec.(error); ok {
		return fmt.Errorf("agent panicked: %w", err)
	}
	return fmt.Errorf("agent panicked: %v", rec)
}
