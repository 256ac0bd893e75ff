// Package errkind defines the boundary error kinds shared by sack, query,
// selector, goal, and history (spec §6, §7). Keeping the enum in one small
// package lets every component return the same typed error without an import
// cycle back through sack.
package errkind

import "github.com/pkg/errors"

// Kind classifies an error observable at the module boundary.
type Kind uint8

const (
	Unknown Kind = iota
	BadQuery
	BadSelector
	NoSolution
	NoCapability
	FileInvalid
	Internal
	RemovalOfProtected
	NoSpace
	CannotFetchSource
	Cancelled
)

func (k Kind) String() string {
	switch k {
	case BadQuery:
		return "BadQuery"
	case BadSelector:
		return "BadSelector"
	case NoSolution:
		return "NoSolution"
	case NoCapability:
		return "NoCapability"
	case FileInvalid:
		return "FileInvalid"
	case Internal:
		return "Internal"
	case RemovalOfProtected:
		return "RemovalOfProtected"
	case NoSpace:
		return "NoSpace"
	case CannotFetchSource:
		return "CannotFetchSource"
	case Cancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// Error pairs a Kind with a translatable message and, where relevant, the
// wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Kind.String() + ": " + e.Message + ": " + e.Cause.Error()
	}
	return e.Kind.String() + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an Error with no wrapped cause.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap builds an Error wrapping cause with additional context via
// pkg/errors.WithMessage, which records no stack of its own; formatting
// e.Cause with %+v prints whatever stack trace the cause itself carries.
func Wrap(kind Kind, cause error, msg string) *Error {
	return &Error{Kind: kind, Message: msg, Cause: errors.WithMessage(cause, msg)}
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}
