package chainable

import (
	"context"

	"github.com/laittg/chainable/internal/engine"
	"github.com/laittg/chainable/pkg/api"
)

// Chain is a fluent builder over a sequential task executor:
//
//	c := chainable.New("numbers")
//	c.MustRegister("double", double)
//
//	c.Call("double", 3).
//	    Call("double", 5).
//	    Done(func(results []any) {
//	        fmt.Println(results) // [6 10]
//	    })
//
// Every fluent call enqueues a task and returns the chain immediately;
// a single executor drains the queue one task at a time, waiting on
// each task's own completion callback before starting the next. The
// first error discards the remaining queued tasks and is delivered to
// the Catch handler together with the results accumulated so far.
type Chain struct {
	name string
	eng  *engine.Engine
}

// New creates a chain with the given name. By default the executor is
// triggered automatically on every enqueue; see WithManualExecution
// and the other options.
func New(name string, opts ...Option) *Chain {
	o := engine.Options{
		Config: api.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Chain{
		name: name,
		eng:  engine.New(name, o),
	}
}

// Name returns the chain name.
func (c *Chain) Name() string {
	return c.name
}

// Register stores fn as a step invocable by name through Call.
// Registration errors (invalid or reserved name, nil function,
// duplicate when duplicate checking is on) are returned synchronously
// and never reach the runtime error path.
func (c *Chain) Register(name string, fn StepFunc) error {
	return c.eng.Register(name, fn)
}

// MustRegister is like Register but panics on error and returns the
// chain, enabling fluent registration of multiple steps.
func (c *Chain) MustRegister(name string, fn StepFunc) *Chain {
	if err := c.eng.Register(name, fn); err != nil {
		panic(err)
	}
	return c
}

// RegisterFunc adapts an arbitrary function into a step and registers
// it under name. The function may take a leading context.Context and
// any positional parameters, and must end with a completion-callback
// parameter; see Config.ValidateStepSignature.
func (c *Chain) RegisterFunc(name string, fn any) error {
	return c.eng.RegisterFunc(name, fn)
}

// MustRegisterFunc is like RegisterFunc but panics on error and
// returns the chain.
func (c *Chain) MustRegisterFunc(name string, fn any) *Chain {
	if err := c.eng.RegisterFunc(name, fn); err != nil {
		panic(err)
	}
	return c
}

// Call enqueues an invocation of the named step with args captured by
// value. It never blocks and always returns the chain. A name that was
// never registered fails at execution time with ErrUnknownStep and
// routes through the normal error path.
func (c *Chain) Call(name string, args ...any) *Chain {
	c.eng.Call(name, args...)
	return c
}

// Then enqueues a one-shot anonymous step without registering it.
// A single []any argument is treated as the literal parameter list;
// otherwise the variadic arguments are the list.
func (c *Chain) Then(fn StepFunc, args ...any) *Chain {
	if fn == nil {
		panic(&api.InvalidStepError{Name: "then"})
	}
	if len(args) == 1 {
		if list, ok := args[0].([]any); ok {
			args = list
		}
	}
	c.eng.Then(fn, args)
	return c
}

// Done registers the handler invoked with the full result sequence
// when the queue drains without error. If a run already completed with
// no handler registered, the held results are delivered as soon as the
// executor is idle. Panics with InvalidHandlerError on a nil handler.
func (c *Chain) Done(fn DoneHandler) *Chain {
	if fn == nil {
		panic(&api.InvalidHandlerError{Kind: "done"})
	}
	c.eng.Done(fn)
	return c
}

// Catch registers the handler invoked with the triggering error and
// the partial results when a task fails. A failure with no catch
// handler is reported through the fallback handler and held; a Catch
// registered afterwards receives it immediately. Panics with
// InvalidHandlerError on a nil handler.
func (c *Chain) Catch(fn CatchHandler) *Chain {
	if fn == nil {
		panic(&api.InvalidHandlerError{Kind: "catch"})
	}
	c.eng.Catch(fn)
	return c
}

// Results returns a copy of the currently accumulated results. After a
// terminal handler fires, the accumulator is empty again.
func (c *Chain) Results() []any {
	return c.eng.Results()
}

// LastResult returns the most recent result. The second return is
// false when no results have accumulated.
func (c *Chain) LastResult() (any, bool) {
	return c.eng.LastResult()
}

// Err returns the pending unhandled error, or nil.
func (c *Chain) Err() error {
	return c.eng.Err()
}

// Execute triggers a drain in manual-execution mode. An optional done
// handler may be supplied instead of a prior Done call. Calling
// Execute while a drain is running is a no-op; calling it on an
// automatic chain returns ErrNotManual.
func (c *Chain) Execute(onDone ...DoneHandler) error {
	return c.eng.Execute(onDone...)
}

// Wait blocks until the executor is idle or ctx is done. It is mainly
// a join point for callers that need the chain's terminal handlers to
// have fired; in manual mode it does not wait for untriggered tasks.
func (c *Chain) Wait(ctx context.Context) error {
	return c.eng.Wait(ctx)
}
