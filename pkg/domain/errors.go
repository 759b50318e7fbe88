package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies fatal failures.
type Kind int

const (
	KindConfiguration Kind = iota + 1
	KindPluginLoad
	KindParse
	KindStringify
	KindIO
	KindInvocation
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindPluginLoad:
		return "plugin"
	case KindParse:
		return "parse"
	case KindStringify:
		return "stringify"
	case KindIO:
		return "io"
	case KindInvocation:
		return "invocation"
	default:
		return "unknown"
	}
}

// Diagnostic is implemented by errors that carry a structured, human readable
// report (positions, schema issues, captured stderr).
type Diagnostic interface {
	Diagnostic() string
}

// Error is a failure of the run, tagged with the stage it happened in.
type Error struct {
	Kind  Kind
	Stage Stage
	Err   error
}

// NewError wraps err. A nil err yields nil.
func NewError(kind Kind, stage Stage, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Stage: stage, Err: err}
}

// Invocationf reports an invalid invocation.
func Invocationf(format string, args ...any) error {
	return &Error{Kind: KindInvocation, Stage: StageStart, Err: fmt.Errorf(format, args...)}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Diagnostic returns the most detailed report available for the cause. Context
// added by wrappers around a diagnostic error is kept as a prefix.
func (e *Error) Diagnostic() string {
	var d interface {
		error
		Diagnostic
	}
	if !errors.As(e.Err, &d) {
		return e.Err.Error()
	}
	outer, inner := e.Err.Error(), d.Error()
	if prefix, ok := strings.CutSuffix(outer, inner); ok {
		return prefix + d.Diagnostic()
	}
	return d.Diagnostic()
}

// KindOf returns the kind of err, or 0 when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
