// Package transfer moves add-on payloads from their remote source into a
// destination directory and reports whether a local copy is current.
package transfer

//go:generate mockgen -destination=./mocks/transfer.go -package=mocks . Agent,Session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/glorpus-work/addonctl/pkg/sink"
)

// LogEvent is a message produced by a session while it works.
type LogEvent struct {
	ID      uuid.UUID
	Session string
	Message string
	Level   sink.Level
	Time    time.Time
}

// LogHandler receives a session's log events.
type LogHandler func(LogEvent)

// Session tracks one add-on's remote source and its local copy.
type Session interface {
	// Name identifies the session; it is the add-on's code name.
	Name() string
	// UpdateSync brings the local copy up to date. With force set the
	// payload is transferred even when the local copy looks current.
	UpdateSync(ctx context.Context, force bool) error
	// LoadRemoteVersion refreshes what the session knows about the remote.
	LoadRemoteVersion(ctx context.Context) error
	// IsCurrent reports whether the local copy matches the last loaded remote version.
	IsCurrent() bool
	// InstalledVersion is the version marker of the local copy, empty if absent.
	InstalledVersion() string
	// EstimatedSize is the transfer size in bytes, 0 when unknown.
	EstimatedSize() int64
	// OnLogEvent registers a handler for the session's log events.
	OnLogEvent(handler LogHandler)
}

// Agent creates sessions.
type Agent interface {
	Create(codeName, remoteURL, destDir, channel string) (Session, error)
}
