package transfer

import "fmt"

var (
	ErrInvalidRelease  = fmt.Errorf("invalid release document")
	ErrBranchNotFound  = fmt.Errorf("no matching branch on remote")
	ErrInvalidArgument = fmt.Errorf("invalid session argument")
)
