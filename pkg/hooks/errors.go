package hooks

import (
	"fmt"
)

// Common hooks errors.
var (
	// ErrHookExecution is returned when there's an error executing a hooks.
	ErrHookExecution = fmt.Errorf("error executing hooks")

	// ErrHookScript is returned when a script sets its err variable.
	ErrHookScript = fmt.Errorf("hooks script error")

	// ErrHookLoad is returned when there's an error loading a hooks.
	ErrHookLoad = fmt.Errorf("failed to load hooks")
)
