package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/laittg/chainable/internal/taskqueue"
	"github.com/laittg/chainable/pkg/api"
)

// Engine owns the state of one chain: the step registry, the pending
// task queue, the result accumulator, and the terminal handlers.
//
// The executor is strictly sequential. A trigger while a drain is
// already running is a no-op; the running drain picks up newly queued
// tasks. At most one task is in flight at any time.
type Engine struct {
	name string
	cfg  api.Config

	registry *Registry
	queue    *taskqueue.Queue

	observer api.Observer
	recorder api.RunStore
	logger   *slog.Logger
	fallback api.FallbackHandler
	ctx      context.Context

	mu        sync.Mutex
	executing bool
	idleCh    chan struct{} // closed while the executor is idle
	seq       int           // tasks ever enqueued
	executed  int           // tasks executed in the current run
	results   []any
	runStart  time.Time
	onDone    api.DoneHandler
	onCatch   api.CatchHandler

	// Terminal state held for handlers registered after the fact.
	pendingDone bool
	pendingErr  *api.UnhandledStepError
}

// Options configures an Engine. Zero-value fields get defaults.
type Options struct {
	Config   api.Config
	Observer api.Observer
	Recorder api.RunStore
	Logger   *slog.Logger
	Fallback api.FallbackHandler
	Context  context.Context
}

// New creates an idle engine for the named chain.
func New(name string, opts Options) *Engine {
	obs := opts.Observer
	if obs == nil {
		obs = api.NoopObserver{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	idle := make(chan struct{})
	close(idle)

	e := &Engine{
		name:     name,
		cfg:      opts.Config,
		registry: NewRegistry(opts.Config.DuplicateNameCheck),
		queue:    taskqueue.New(),
		observer: obs,
		recorder: opts.Recorder,
		logger:   logger,
		fallback: opts.Fallback,
		ctx:      ctx,
		idleCh:   idle,
	}
	if e.fallback == nil {
		e.fallback = e.logFallback
	}
	return e
}

// Register stores fn under name. Registration errors are synchronous
// and never reach the runtime error path.
func (e *Engine) Register(name string, fn api.StepFunc) error {
	return e.registry.Register(name, fn)
}

// Registered reports whether name resolves to a step.
func (e *Engine) Registered(name string) bool {
	_, ok := e.registry.Lookup(name)
	return ok
}

// Call enqueues an invocation of the named step with args captured by
// value. It returns immediately; an unknown name fails at execution
// time through the normal error path.
func (e *Engine) Call(name string, args ...any) {
	e.enqueue(taskqueue.Task{
		Name: name,
		Args: append([]any(nil), args...),
	})
}

// Then enqueues a one-shot anonymous task. fn is queued exactly like a
// named step but never added to the registry.
func (e *Engine) Then(fn api.StepFunc, args []any) {
	e.enqueue(taskqueue.Task{
		Name: "then",
		Args: append([]any(nil), args...),
		Fn:   fn,
	})
}

func (e *Engine) enqueue(t taskqueue.Task) {
	// Seq assignment and the push happen under one lock so concurrent
	// producers cannot land in the queue out of Seq order.
	e.mu.Lock()
	t.Seq = e.seq
	e.seq++
	e.queue.Push(t)
	e.mu.Unlock()

	if !e.cfg.ManualExecution {
		e.trigger()
	}
}

// Execute starts a drain in manual mode. An optional done handler may
// be supplied here instead of a prior Done call. Triggering while a
// drain is running is a no-op, never a second concurrent drain.
func (e *Engine) Execute(onDone ...api.DoneHandler) error {
	if !e.cfg.ManualExecution {
		return api.ErrNotManual
	}
	if len(onDone) > 0 && onDone[0] != nil {
		e.Done(onDone[0])
	}
	e.trigger()
	return nil
}

// trigger moves the executor from Idle to Running if there is work.
func (e *Engine) trigger() {
	e.mu.Lock()
	if e.executing || e.queue.Len() == 0 {
		e.mu.Unlock()
		return
	}
	e.executing = true
	e.idleCh = make(chan struct{})
	e.mu.Unlock()

	go e.drain()
}

func (e *Engine) drain() {
	for {
		// Handlers may enqueue more work; pick it up in the same drain
		// rather than racing a fresh trigger.
		e.mu.Lock()
		if e.queue.Len() > 0 {
			e.mu.Unlock()
			e.runToTerminal(e.ctx)
			continue
		}

		// A Done handler registered while this drain was running has not
		// received the held results yet; deliver before going idle.
		handler, held, ok := e.takePendingDoneLocked()
		if ok {
			e.mu.Unlock()
			handler(held)
			continue
		}

		e.executing = false
		close(e.idleCh)
		e.mu.Unlock()
		return
	}
}

// takePendingDoneLocked claims held success results when a Done handler
// is available. Callers must hold e.mu.
func (e *Engine) takePendingDoneLocked() (api.DoneHandler, []any, bool) {
	if !e.pendingDone || e.onDone == nil {
		return nil, nil, false
	}
	held := e.results
	e.results = nil
	e.pendingDone = false
	return e.onDone, held, true
}

// runToTerminal executes queued tasks until the queue is empty or a
// task reports an error.
func (e *Engine) runToTerminal(ctx context.Context) {
	e.mu.Lock()
	e.runStart = time.Now()
	e.executed = 0
	e.mu.Unlock()

	e.observer.OnChainStart(ctx, e.name)

	for {
		t, ok := e.queue.Pop()
		if !ok {
			e.complete(ctx)
			return
		}

		e.mu.Lock()
		e.executed++
		e.mu.Unlock()

		if stepErr := e.runTask(ctx, t); stepErr != nil {
			e.queue.Clear()
			e.fail(ctx, stepErr)
			return
		}
	}
}

// runTask invokes one task and blocks until its completion callback
// fires. There is no timeout: a task that never completes stalls the
// chain, which is a documented limitation of the model.
func (e *Engine) runTask(ctx context.Context, t taskqueue.Task) *api.StepError {
	fn := t.Fn
	if fn == nil {
		registered, ok := e.registry.Lookup(t.Name)
		if !ok {
			err := fmt.Errorf("%w: %q", api.ErrUnknownStep, t.Name)
			e.observer.OnTaskStart(ctx, e.name, t.Name, t.Seq)
			e.observer.OnTaskCompleted(ctx, e.name, t.Name, t.Seq, err, 0)
			return &api.StepError{Step: t.Name, Seq: t.Seq, Err: err}
		}
		fn = registered
	}

	type outcome struct {
		err    error
		result any
	}
	ch := make(chan outcome, 1)

	var once sync.Once
	done := func(err error, result any) {
		// Callers are trusted to call done exactly once; extra calls
		// are dropped to keep the state machine sound.
		once.Do(func() {
			ch <- outcome{err: err, result: result}
		})
	}

	e.observer.OnTaskStart(ctx, e.name, t.Name, t.Seq)
	start := time.Now()

	fn(ctx, t.Args, done)
	out := <-ch

	e.observer.OnTaskCompleted(ctx, e.name, t.Name, t.Seq, out.err, time.Since(start))

	if out.err != nil {
		return &api.StepError{Step: t.Name, Seq: t.Seq, Err: out.err}
	}
	if out.result != nil {
		e.mu.Lock()
		e.results = append(e.results, out.result)
		e.mu.Unlock()
	}
	return nil
}

func (e *Engine) complete(ctx context.Context) {
	e.mu.Lock()
	results := e.results
	executed := e.executed
	started := e.runStart
	handler := e.onDone
	if handler != nil {
		e.results = nil
		e.pendingDone = false
	} else {
		// Hold the results for a Done handler registered later.
		e.pendingDone = true
	}
	// A completed run supersedes an error still held for a late Catch.
	e.pendingErr = nil
	e.mu.Unlock()

	e.observer.OnChainCompleted(ctx, e.name, results)
	e.record(api.StatusCompleted, executed, results, "", started)

	if handler != nil {
		handler(results)
	}
}

func (e *Engine) fail(ctx context.Context, stepErr *api.StepError) {
	e.mu.Lock()
	results := e.results
	executed := e.executed
	started := e.runStart
	handler := e.onCatch

	// A failed terminal invalidates any held success state; partial
	// results survive only inside the pending error.
	e.results = nil
	e.pendingDone = false

	var unhandled *api.UnhandledStepError
	if handler == nil {
		unhandled = &api.UnhandledStepError{
			Chain:   e.name,
			Err:     stepErr,
			Results: results,
		}
		e.pendingErr = unhandled
	}
	fallback := e.fallback
	e.mu.Unlock()

	e.observer.OnChainFailed(ctx, e.name, stepErr)
	e.record(api.StatusFailed, executed, results, stepErr.Error(), started)

	if handler != nil {
		handler(stepErr, results)
		return
	}
	fallback(unhandled)
}

// logFallback is the default FallbackHandler: errors with no catch
// handler are reported loudly instead of dropped.
func (e *Engine) logFallback(err *api.UnhandledStepError) {
	e.logger.Error("unhandled chain error",
		slog.String("chain", err.Chain),
		slog.String("step", err.Err.Step),
		slog.Any("error", err.Err.Err),
	)
}

func (e *Engine) record(status api.Status, tasks int, results []any, errText string, started time.Time) {
	if e.recorder == nil {
		return
	}
	rec := &api.RunRecord{
		ID:         uuid.NewString(),
		Chain:      e.name,
		Status:     status,
		Tasks:      tasks,
		Results:    results,
		Error:      errText,
		StartedAt:  started,
		FinishedAt: time.Now(),
	}
	if err := e.recorder.SaveRun(rec); err != nil {
		e.logger.Error("run record save failed",
			slog.String("chain", e.name),
			slog.Any("error", err),
		)
	}
}

// Done registers the success handler. If a run already completed with
// no handler registered, the held results are delivered: immediately
// when the executor is idle, otherwise when the running drain reaches
// its final terminal, so the handler fires exactly once per delivery.
func (e *Engine) Done(fn api.DoneHandler) {
	e.mu.Lock()
	e.onDone = fn
	var held []any
	deliver := false
	if e.pendingDone && !e.executing {
		held = e.results
		e.results = nil
		e.pendingDone = false
		deliver = true
	}
	e.mu.Unlock()

	if deliver {
		fn(held)
	}
}

// Catch registers the error handler. If a run already failed with no
// handler registered, the pending error and partial results are
// delivered immediately.
func (e *Engine) Catch(fn api.CatchHandler) {
	e.mu.Lock()
	e.onCatch = fn
	pending := e.pendingErr
	if pending != nil {
		e.pendingErr = nil
	}
	e.mu.Unlock()

	if pending != nil {
		fn(pending.Err, pending.Results)
	}
}

// Results returns a copy of the accumulated results.
func (e *Engine) Results() []any {
	e.mu.Lock()
	defer e.mu.Unlock()

	return append([]any(nil), e.results...)
}

// LastResult returns the most recent result. The second return is
// false when no results have accumulated.
func (e *Engine) LastResult() (any, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.results) == 0 {
		return nil, false
	}
	return e.results[len(e.results)-1], true
}

// Err returns the pending unhandled error, if any.
func (e *Engine) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.pendingErr == nil {
		return nil
	}
	return e.pendingErr
}

// Wait blocks until the executor is idle or ctx is done. It returns
// immediately when nothing is running; in manual mode it does not wait
// for untriggered tasks.
func (e *Engine) Wait(ctx context.Context) error {
	e.mu.Lock()
	ch := e.idleCh
	e.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
