package index

import "fmt"

var (
	// ErrUnexpectedRoot is returned when a document's root element is not the one expected.
	ErrUnexpectedRoot = fmt.Errorf("unexpected root element")
)
