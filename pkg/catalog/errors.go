package catalog

import "fmt"

var (
	// ErrAddonNotFound is returned when an AddonRef does not resolve.
	ErrAddonNotFound = fmt.Errorf("addon not found")
	// ErrRepositoryNotFound is returned for an unknown repository code name.
	ErrRepositoryNotFound = fmt.Errorf("repository not found")
	// ErrDuplicateRepository is returned when adding a code name twice.
	ErrDuplicateRepository = fmt.Errorf("repository already exists")
	// ErrUnknownListKind is returned when a list name has no destination.
	ErrUnknownListKind = fmt.Errorf("unknown add-on list kind")
	// ErrNoDestination is returned when a known list kind has no directory configured.
	ErrNoDestination = fmt.Errorf("no destination directory configured")
	// ErrAlreadyInstalled marks an install refused because a session is bound.
	ErrAlreadyInstalled = fmt.Errorf("addon already installed")
	// ErrTransfer wraps failures reported by a transfer session.
	ErrTransfer = fmt.Errorf("transfer failed")
	// ErrNoAgent is returned when installing without a transfer agent.
	ErrNoAgent = fmt.Errorf("no transfer agent configured")
	// ErrInvalidRef is returned by ParseAddonRef.
	ErrInvalidRef = fmt.Errorf("invalid addon reference")
	// ErrInvalidState is returned when a state document has the wrong shape.
	ErrInvalidState = fmt.Errorf("invalid catalog state document")
)
