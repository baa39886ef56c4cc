// Package diag defines the diagnostic taxonomy shared by the parser,
// resolver, and compiler adapters, and collects them into per-entity and
// per-process sinks.
package diag

import "fmt"

// Kind classifies a single diagnostic message.
type Kind int

const (
	General Kind = iota
	Note
	Warning
	Error
)

// String renders the kind for text output headers.
func (k Kind) String() string {
	switch k {
	case General:
		return "note"
	case Note:
		return "note"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Diagnostic is a single reported message, optionally anchored to a source
// position. HasPos is false, and File, Line and Column are left zero, for
// messages with no source span (resolution errors, platform errors,
// brickyard I/O errors).
type Diagnostic struct {
	Kind       Kind
	Message    string
	File       string
	Line       int
	Column     int
	HasPos     bool
	SourceLine string // the offending line, leading whitespace still intact; trimmed at render time
}

// Sink accumulates diagnostics in recorded order and tracks whether any
// Error-kind diagnostic has been appended. A Sink is used both per-entity
// and at process level; it never discards or reorders entries.
type Sink struct {
	entries   []Diagnostic
	hasErrors bool
}

// NewSink returns an empty Sink.
func NewSink() *Sink {
	return &Sink{}
}

// Add appends d to the sink, flipping HasErrors if d.Kind == Error.
func (s *Sink) Add(d Diagnostic) {
	s.entries = append(s.entries, d)
	if d.Kind == Error {
		s.hasErrors = true
	}
}

// Addf is a convenience for appending a positionless diagnostic.
func (s *Sink) Addf(kind Kind, format string, args ...any) {
	s.Add(Diagnostic{Kind: kind, Message: fmt.Sprintf(format, args...)})
}

// HasErrors reports whether any Error-kind diagnostic was ever added.
func (s *Sink) HasErrors() bool {
	return s.hasErrors
}

// Entries returns the diagnostics in the order they were recorded. The
// returned slice must not be mutated by the caller.
func (s *Sink) Entries() []Diagnostic {
	return s.entries
}

// Merge appends other's entries into s, preserving order and carrying
// forward other's error flag.
func (s *Sink) Merge(other *Sink) {
	if other == nil {
		return
	}
	s.entries = append(s.entries, other.entries...)
	if other.hasErrors {
		s.hasErrors = true
	}
}
