// Package chainable turns nested completion callbacks into a readable
// fluent chain.
//
// Callers register named asynchronous step functions on a Chain, then
// invoke them in sequence; the chain queues each invocation and a
// single executor drains the queue, one task at a time, reporting
// either success with all results or the first error with the partial
// results.
//
// # Core Concepts
//
// The programming model is intentionally small:
//
//  1. Chain
//  2. StepFunc
//  3. Done / Catch handlers
//  4. Observer
//  5. RunStore
//
// # Chain
//
// A Chain owns a step registry, a FIFO of pending tasks, and a result
// accumulator. Fluent calls enqueue work and return immediately:
//
//	c := chainable.New("signup")
//	c.MustRegister("createUser", createUser)
//	c.MustRegister("sendWelcome", sendWelcome)
//
//	c.Call("createUser", email).
//	    Call("sendWelcome").
//	    Done(func(results []any) { ... }).
//	    Catch(func(err error, partial []any) { ... })
//
// Execution is strictly sequential: the next task does not start until
// the previous one calls its completion callback, so results arrive in
// enqueue order. The first error discards every queued-but-not-started
// task and fires the Catch handler with the results collected so far.
// After either terminal handler runs, the accumulator is reset and the
// chain is ready for a fresh run.
//
// # StepFunc
//
// A step receives its bound arguments and a completion callback:
//
//	func double(ctx context.Context, args []any, done chainable.DoneFunc) {
//	    n := args[0].(int)
//	    done(nil, n*2)
//	}
//
// The callback must be called exactly once. There is no timeout, so a
// step that never completes stalls the chain. Ad-hoc steps
// can be spliced into a chain without registration via Then, and
// ordinary functions with positional parameters can be adapted with
// RegisterFunc.
//
// # Manual execution
//
// With WithManualExecution the chain only queues; nothing runs until
// Execute is called, which lets the caller batch tasks first. A second
// trigger while the executor is running is a no-op, never a concurrent
// drain.
//
// # Observability and history
//
// An Observer receives chain and task lifecycle events; stock
// implementations cover structured logging (log/slog) and basic
// metrics. A RunStore, when configured, receives a RunRecord on every
// terminal transition; in-memory, SQLite and Redis stores are
// provided. Queued tasks are never persisted.
package chainable
