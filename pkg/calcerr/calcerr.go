// Package calcerr implements the error taxonomy of spec.md §7: a small
// closed set of kinds, not Go types, each surfaced with a message
// identifying the offending parameter and its legal range.
//
// The kinds are backed by github.com/juju/errors, which the teacher repo
// already carries (indirectly, via dataframe-go's own graph); its typed
// constructors and Cause()-chain wrapping map directly onto the
// taxonomy without introducing a bespoke error package.
package calcerr

import (
	"fmt"

	"github.com/juju/errors"
)

// Kind is one of the seven error kinds named in spec.md §7.
type Kind int

const (
	InvalidArch Kind = iota
	UnknownInstruction
	BadUsage
	UnsupportedModifier
	ModifierOutOfRange
	OutOfRangeCoordinate
	CatalogInconsistency
)

func (k Kind) String() string {
	switch k {
	case InvalidArch:
		return "InvalidArch"
	case UnknownInstruction:
		return "UnknownInstruction"
	case BadUsage:
		return "BadUsage"
	case UnsupportedModifier:
		return "UnsupportedModifier"
	case ModifierOutOfRange:
		return "ModifierOutOfRange"
	case OutOfRangeCoordinate:
		return "OutOfRangeCoordinate"
	case CatalogInconsistency:
		return "CatalogInconsistency"
	default:
		return "Unknown"
	}
}

// New builds an error of the given kind with a message identifying the
// offending parameter, using the juju/errors constructor that best
// matches the kind's semantics (not-found for lookups, not-valid for
// range/support violations, bad-request for usage errors).
func New(k Kind, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	switch k {
	case InvalidArch, UnknownInstruction:
		return &calcError{kind: k, err: errors.NotFoundf(msg)}
	case BadUsage:
		return &calcError{kind: k, err: errors.BadRequestf(msg)}
	case UnsupportedModifier, ModifierOutOfRange, OutOfRangeCoordinate:
		return &calcError{kind: k, err: errors.NotValidf(msg)}
	case CatalogInconsistency:
		return &calcError{kind: k, err: errors.Errorf("catalog inconsistency: %s", msg)}
	default:
		return &calcError{kind: k, err: errors.Errorf(msg)}
	}
}

type calcError struct {
	kind Kind
	err  error
}

func (e *calcError) Error() string { return e.err.Error() }
func (e *calcError) Unwrap() error { return e.err }
func (e *calcError) Kind() Kind    { return e.kind }

// Is reports whether err was constructed with the given Kind.
func Is(err error, k Kind) bool {
	ce, ok := err.(*calcError)
	return ok && ce.kind == k
}

// KindOf returns the Kind of err, and false if err was not built by New.
func KindOf(err error) (Kind, bool) {
	if ce, ok := err.(*calcError); ok {
		return ce.kind, true
	}
	return 0, false
}
