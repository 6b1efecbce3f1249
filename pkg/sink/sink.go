// Package sink defines the leveled message channel the catalog and the
// transfer sessions report through.
package sink

import "sync"

// Level of a reported message.
type Level int

const (
	Info Level = iota
	Warning
	Error
)

func (l Level) String() string {
	switch l {
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "info"
	}
}

// Sink receives leveled messages.
type Sink interface {
	Emit(msg string, level Level)
}

// Attr is a structured key/value attached to a message.
type Attr struct {
	Key   string
	Value string
}

// AttrSink is a Sink that also keeps structured attributes.
type AttrSink interface {
	Sink
	EmitAttrs(msg string, level Level, attrs ...Attr)
}

// Func adapts a plain function to a Sink.
type Func func(msg string, level Level)

// Emit calls f.
func (f Func) Emit(msg string, level Level) { f(msg, level) }

// Discard drops every message.
var Discard Sink = Func(func(string, Level) {})

// Emit delivers msg to s. A nil sink or a panicking sink is ignored.
func Emit(s Sink, msg string, level Level) {
	if s == nil {
		return
	}
	defer func() { _ = recover() }()
	s.Emit(msg, level)
}

// EmitAttrs delivers msg with attrs to s. Sinks that do not implement
// AttrSink receive the bare message.
func EmitAttrs(s Sink, msg string, level Level, attrs ...Attr) {
	if s == nil {
		return
	}
	defer func() { _ = recover() }()
	if as, ok := s.(AttrSink); ok {
		as.EmitAttrs(msg, level, attrs...)
		return
	}
	s.Emit(msg, level)
}

// Entry is one recorded message.
type Entry struct {
	Message string
	Level   Level
	Attrs   []Attr
}

// Attr returns the value of the attribute named key.
func (e Entry) Attr(key string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// Recorder keeps every message it receives. It is safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

// Emit records the message.
func (r *Recorder) Emit(msg string, level Level) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Message: msg, Level: level})
}

// EmitAttrs records the message with its attributes.
func (r *Recorder) EmitAttrs(msg string, level Level, attrs ...Attr) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Message: msg, Level: level, Attrs: append([]Attr(nil), attrs...)})
}

// Entries returns a copy of the recorded messages.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Count returns how many recorded messages have the given level.
func (r *Recorder) Count(level Level) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.entries {
		if e.Level == level {
			n++
		}
	}
	return n
}

// Reset drops all recorded messages.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
}
