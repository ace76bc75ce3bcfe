package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/laittg/chainable/pkg/api"
)

// recordingObserver captures lifecycle events as compact strings so
// tests can assert on their exact order.
type recordingObserver struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingObserver) add(event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingObserver) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func (r *recordingObserver) OnChainStart(ctx context.Context, chain string) {
	r.add("chain_start")
}

func (r *recordingObserver) OnChainCompleted(ctx context.Context, chain string, results []any) {
	r.add(fmt.Sprintf("chain_completed:%d", len(results)))
}

func (r *recordingObserver) OnChainFailed(ctx context.Context, chain string, err error) {
	r.add("chain_failed")
}

func (r *recordingObserver) OnTaskStart(ctx context.Context, chain, step string, seq int) {
	r.add(fmt.Sprintf("task_start:%s:%d", step, seq))
}

func (r *recordingObserver) OnTaskCompleted(ctx context.Context, chain, step string, seq int, err error, d time.Duration) {
	if err != nil {
		r.add(fmt.Sprintf("task_failed:%s:%d", step, seq))
		return
	}
	r.add(fmt.Sprintf("task_completed:%s:%d", step, seq))
}

func newObservedEngine(obs api.Observer) *Engine {
	cfg := api.DefaultConfig()
	cfg.ManualExecution = true
	return New("test-chain", Options{Config: cfg, Observer: obs})
}

func assertEvents(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d events, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("event %d: expected %q, got %q (full sequence %v)", i, want[i], got[i], got)
		}
	}
}

func TestObserverEventSequenceOnSuccess(t *testing.T) {
	rec := &recordingObserver{}
	e := newObservedEngine(rec)

	if err := e.Register("double", double); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	e.Call("double", 1)
	e.Call("double", 2)
	if err := e.Execute(func(results []any) {}); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := e.Wait(ctx); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}

	assertEvents(t, rec.snapshot(), []string{
		"chain_start",
		"task_start:double:0",
		"task_completed:double:0",
		"task_start:double:1",
		"task_completed:double:1",
		"chain_completed:2",
	})
}

func TestObserverEventSequenceOnFailure(t *testing.T) {
	rec := &recordingObserver{}
	e := newObservedEngine(rec)

	if err := e.Register("ok", func(ctx context.Context, args []any, done api.DoneFunc) {
		done(nil, 1)
	}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := e.Register("fail", func(ctx context.Context, args []any, done api.DoneFunc) {
		done(errors.New("boom"), nil)
	}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	e.Catch(func(err error, results []any) {})

	e.Call("ok")
	e.Call("fail")
	e.Call("ok")
	if err := e.Execute(); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := e.Wait(ctx); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}

	// The task after the failure never starts.
	assertEvents(t, rec.snapshot(), []string{
		"chain_start",
		"task_start:ok:0",
		"task_completed:ok:0",
		"task_start:fail:1",
		"task_failed:fail:1",
		"chain_failed",
	})
}

func TestCompositeObserverFansOutEngineEvents(t *testing.T) {
	first := &recordingObserver{}
	second := &recordingObserver{}
	e := newObservedEngine(api.NewCompositeObserver(first, second))

	if err := e.Register("double", double); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	e.Call("double", 3)
	if err := e.Execute(func(results []any) {}); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := e.Wait(ctx); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}

	want := []string{
		"chain_start",
		"task_start:double:0",
		"task_completed:double:0",
		"chain_completed:1",
	}
	assertEvents(t, first.snapshot(), want)
	assertEvents(t, second.snapshot(), want)
}
