package download

import "fmt"

var (
	ErrDownloadFailed   = fmt.Errorf("download failed")
	ErrChecksumMismatch = fmt.Errorf("checksum mismatch")
	ErrInvalidPath      = fmt.Errorf("invalid path")
)
