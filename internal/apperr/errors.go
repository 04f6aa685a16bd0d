// Package apperr classifies run failures so the CLI can pick an exit code.
package apperr

import (
	"context"
	"errors"
	"fmt"
)

// Kind is the failure class of an Error.
type Kind int

const (
	KindUnknown Kind = iota
	// KindConfiguration covers malformed or contradictory options.
	KindConfiguration
	// KindInput covers unreadable references, loc files and output paths.
	KindInput
	// KindLaunch means an external process could not be started.
	KindLaunch
	// KindJobStatus is only produced with --fail-on-exit-status.
	KindJobStatus
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "ConfigurationError"
	case KindInput:
		return "InputError"
	case KindLaunch:
		return "LaunchError"
	case KindJobStatus:
		return "JobStatusError"
	default:
		return "Error"
	}
}

// Error is a classified failure. Op names the step that failed.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newError(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

func Configuration(op string, err error) error { return newError(KindConfiguration, op, err) }
func Input(op string, err error) error         { return newError(KindInput, op, err) }
func Launch(op string, err error) error        { return newError(KindLaunch, op, err) }
func JobStatus(op string, err error) error     { return newError(KindJobStatus, op, err) }

// Configurationf is a shorthand for Configuration(op, fmt.Errorf(...)).
func Configurationf(op, format string, a ...any) error {
	return Configuration(op, fmt.Errorf(format, a...))
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// ExitCode maps err onto the process exit status:
// 0 ok, 2 bad configuration or input, 3 runtime failure, 130 cancelled.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, context.Canceled) {
		return 130
	}
	switch KindOf(err) {
	case KindConfiguration, KindInput:
		return 2
	default:
		return 3
	}
}
