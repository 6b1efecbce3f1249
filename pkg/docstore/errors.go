package docstore

import "fmt"

var (
	ErrEmptyDocument = fmt.Errorf("document has no root element")
	ErrFetchStatus   = fmt.Errorf("unexpected status fetching document")
)
