package api

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownStep is the failure reported when a queued call names a
	// step that was never registered.
	ErrUnknownStep = errors.New("unknown step")

	// ErrNotManual is returned by Execute when the chain runs in
	// automatic mode.
	ErrNotManual = errors.New("chain is not in manual execution mode")

	// ErrRunNotFound is returned by a RunStore when a record is not
	// found.
	ErrRunNotFound = errors.New("run not found")
)

// InvalidNameError reports a step name that is empty or not an
// identifier-like string.
type InvalidNameError struct {
	Name string
}

func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("invalid step name %q", e.Name)
}

// ReservedNameError reports a step name that collides with the builder
// API surface.
type ReservedNameError struct {
	Name string
}

func (e *ReservedNameError) Error() string {
	return fmt.Sprintf("step name %q is reserved", e.Name)
}

// DuplicateStepError reports a registration under a name that is
// already taken, with duplicate checking enabled.
type DuplicateStepError struct {
	Name string
}

func (e *DuplicateStepError) Error() string {
	return fmt.Sprintf("step %q is already registered", e.Name)
}

// InvalidStepError reports a step registration whose function is nil or
// not callable.
type InvalidStepError struct {
	Name   string
	Detail string
}

func (e *InvalidStepError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("step %q is not callable", e.Name)
	}
	return fmt.Sprintf("step %q is not callable: %s", e.Name, e.Detail)
}

// MalformedSignatureError reports a function handed to RegisterFunc
// whose trailing parameter is not a completion callback.
type MalformedSignatureError struct {
	Name   string
	Detail string
}

func (e *MalformedSignatureError) Error() string {
	return fmt.Sprintf("step %q has a malformed signature: %s", e.Name, e.Detail)
}

// InvalidHandlerError reports a nil Done/Catch handler registration.
type InvalidHandlerError struct {
	Kind string // "done" or "catch"
}

func (e *InvalidHandlerError) Error() string {
	return fmt.Sprintf("%s handler is not callable", e.Kind)
}

// StepError wraps the error a step reported through its completion
// callback, annotated with the step's name and queue position.
type StepError struct {
	Step string
	Seq  int
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %q (task %d) failed: %v", e.Step, e.Seq, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// UnhandledStepError is a StepError that reached a terminal transition
// while no catch handler was registered. It is reported through the
// chain's fallback handler and held for a later Catch registration.
type UnhandledStepError struct {
	Chain   string
	Err     *StepError
	Results []any // results accumulated before the failure
}

func (e *UnhandledStepError) Error() string {
	return fmt.Sprintf("chain %q: unhandled %v", e.Chain, e.Err)
}

func (e *UnhandledStepError) Unwrap() error {
	return e.Err
}
