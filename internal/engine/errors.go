package engine

import "fmt"

// ErrorKind classifies user-facing conversion failures.
type ErrorKind int

const (
	// ParseFailure means the input is not valid source in the declared
	// grammar version.
	ParseFailure ErrorKind = iota
	// MalformedConstruct means a positional-only marker appeared in a
	// position the engine does not support, e.g. with no preceding
	// parameters.
	MalformedConstruct
)

func (k ErrorKind) String() string {
	switch k {
	case ParseFailure:
		return "parse failure"
	case MalformedConstruct:
		return "malformed construct"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// ConversionError is the engine's only user-facing failure type. It aborts
// conversion of the file it names and carries enough location context for
// the caller's retry/skip/report policy.
type ConversionError struct {
	Kind     ErrorKind
	Filename string
	Line     int
	Column   int
	Message  string
}

func (e *ConversionError) Error() string {
	name := e.Filename
	if name == "" {
		name = "<source>"
	}
	return fmt.Sprintf("%s:%d:%d: %s: %s", name, e.Line, e.Column, e.Kind, e.Message)
}

// InternalFault reports a violated engine invariant (scope stack imbalance,
// overlapping edits). It is raised via panic, never returned: these are
// programming faults, not user errors, and must not be mistaken for one.
type InternalFault struct {
	Message string
}

func (f InternalFault) Error() string {
	return "internal consistency fault: " + f.Message
}
