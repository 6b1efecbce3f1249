package download

import (
	"context"
	"net/url"
)

// Manager downloads add-on payloads into a local cache directory.
type Manager interface {
	// Fetch downloads a single item to a deterministic location within
	// opts.Dir and returns the absolute local file path.
	Fetch(ctx context.Context, item Item, opts Options) (string, error)
}

// Item represents one remote resource to download.
type Item struct {
	ID       string   // stable identifier, used in error messages
	URL      *url.URL // source URL to download
	Checksum string   // optional hex-encoded SHA-256 checksum; if provided, will be verified
	Filename string   // optional preferred filename; if empty, a name will be derived
}

// Options control where downloads land.
type Options struct {
	Dir string // destination directory (cache). Must be absolute.
}
