package api

import "context"

// DoneFunc is the completion callback handed to every step. A step must
// call it exactly once:
//
//	done(err, nil)     // the step failed; the chain short-circuits
//	done(nil, result)  // the step succeeded; result is recorded
//	done(nil, nil)     // the step succeeded without producing a result
//
// Calls after the first are ignored.
type DoneFunc func(err error, result any)

// StepFunc is a single step in a chain. It receives the arguments bound
// at call time and a completion callback. The chain makes no further
// progress until done is called, so a step that never calls it stalls
// the chain indefinitely.
//
// A step may call done synchronously or from another goroutine after
// its own asynchronous work (timer, I/O, network wait) finishes.
type StepFunc func(ctx context.Context, args []any, done DoneFunc)

// DoneHandler receives the full result sequence when every queued task
// completed successfully.
type DoneHandler func(results []any)

// CatchHandler receives the triggering error and the results of the
// tasks that completed before it. err is a *StepError wrapping the
// error the step reported.
type CatchHandler func(err error, results []any)

// FallbackHandler receives errors that reached a terminal transition
// while no CatchHandler was registered.
type FallbackHandler func(err *UnhandledStepError)

// Config controls per-chain behavior.
type Config struct {
	// ManualExecution defers draining until Execute is called,
	// letting the caller batch tasks before the run begins.
	ManualExecution bool

	// ValidateStepSignature makes RegisterFunc reject functions whose
	// trailing parameter is not a completion callback. It has no effect
	// on Register, where the StepFunc type already enforces the contract.
	ValidateStepSignature bool

	// DuplicateNameCheck makes registering a name twice an error.
	DuplicateNameCheck bool
}

// DefaultConfig returns the default chain configuration: automatic
// execution with signature validation and duplicate-name checking on.
func DefaultConfig() Config {
	return Config{
		ManualExecution:       false,
		ValidateStepSignature: true,
		DuplicateNameCheck:    true,
	}
}
