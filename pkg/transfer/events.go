package transfer

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/glorpus-work/addonctl/pkg/sink"
)

// events fans a session's log events out to its handlers.
type events struct {
	name     string
	mu       sync.Mutex
	handlers []LogHandler
}

func (e *events) OnLogEvent(handler LogHandler) {
	if handler == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers = append(e.handlers, handler)
}

func (e *events) emit(level sink.Level, format string, args ...interface{}) {
	ev := LogEvent{
		ID:      uuid.New(),
		Session: e.name,
		Message: fmt.Sprintf(format, args...),
		Level:   level,
		Time:    time.Now(),
	}
	e.mu.Lock()
	handlers := append([]LogHandler(nil), e.handlers...)
	e.mu.Unlock()
	for _, h := range handlers {
		h(ev)
	}
}

// ValidName reports whether codeName can name an install directory: a
// single clean path element that stays inside its destination root.
func ValidName(codeName string) error {
	switch {
	case codeName == "":
		return fmt.Errorf("%w: empty code name", ErrInvalidArgument)
	case codeName == "." || codeName == "..",
		strings.ContainsAny(codeName, `/\`),
		filepath.Clean(codeName) != codeName,
		filepath.Base(codeName) != codeName,
		filepath.IsAbs(codeName),
		filepath.VolumeName(codeName) != "":
		return fmt.Errorf("%w: code name %q is not a single path element", ErrInvalidArgument, codeName)
	}
	return nil
}

func validateArgs(codeName, remoteURL, destDir string) error {
	if err := ValidName(codeName); err != nil {
		return err
	}
	switch {
	case remoteURL == "":
		return fmt.Errorf("%w: empty remote url for %s", ErrInvalidArgument, codeName)
	case destDir == "":
		return fmt.Errorf("%w: empty destination for %s", ErrInvalidArgument, codeName)
	}
	return nil
}
