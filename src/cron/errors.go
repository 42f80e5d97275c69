package cron

import (
	"errors"
	"fmt"
)

var (
	ErrWrongArity     = errors.New("cron: expected 5 fields")
	ErrMalformedField = errors.New("cron: malformed field")
	ErrOutOfRange     = errors.New("cron: value out of range")
	ErrUnsatisfiable  = errors.New("cron: schedule never fires")
)

// ErrorKind classifies a ParseError.
type ErrorKind int

const (
	WrongArity ErrorKind = iota + 1
	MalformedField
	OutOfRange
)

func (k ErrorKind) String() string {
	switch k {
	case WrongArity:
		return "wrong arity"
	case MalformedField:
		return "malformed field"
	case OutOfRange:
		return "out of range"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// ParseError describes why an expression was rejected. Token and Field are
// empty for WrongArity; Min and Max are only set for OutOfRange.
type ParseError struct {
	Kind       ErrorKind
	Expression string
	Field      string
	Token      string
	Min, Max   int
}

func (e *ParseError) Error() string {
	switch e.Kind {
	case WrongArity:
		return fmt.Sprintf("cron: expected 5 fields in %q", e.Expression)
	case MalformedField:
		return fmt.Sprintf("cron: %s field: %q is not an integer or * in %q", e.Field, e.Token, e.Expression)
	case OutOfRange:
		return fmt.Sprintf("cron: %s field: %q out of range [%d-%d] in %q", e.Field, e.Token, e.Min, e.Max, e.Expression)
	default:
		return fmt.Sprintf("cron: invalid expression %q", e.Expression)
	}
}

// Unwrap lets callers match the error kind with errors.Is.
func (e *ParseError) Unwrap() error {
	switch e.Kind {
	case WrongArity:
		return ErrWrongArity
	case MalformedField:
		return ErrMalformedField
	case OutOfRange:
		return ErrOutOfRange
	default:
		return nil
	}
}
