package api

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// Observer receives callbacks from the chain executor for logging and
// metrics.
//
// Implementations should be fast and non-blocking; heavy work should be
// done asynchronously so as not to delay the drain loop.
type Observer interface {
	// OnChainStart is called when the executor transitions from Idle to
	// Running, before the first task of the run is invoked.
	OnChainStart(ctx context.Context, chain string)

	// OnChainCompleted is called when the executor drains the queue
	// without any task reporting an error.
	OnChainCompleted(ctx context.Context, chain string, results []any)

	// OnChainFailed is called when a task reports an error and the
	// remaining queued tasks are discarded.
	OnChainFailed(ctx context.Context, chain string, err error)

	// OnTaskStart is called before invoking a task.
	// seq is the task's position in enqueue order, starting at 0.
	OnTaskStart(ctx context.Context, chain, step string, seq int)

	// OnTaskCompleted is called after a task's completion callback
	// fires, for both successes and failures (err != nil).
	OnTaskCompleted(ctx context.Context, chain, step string, seq int, err error, duration time.Duration)
}

// NoopObserver is an Observer that does nothing.
// It is used as the default when no observer is configured.
type NoopObserver struct{}

func (NoopObserver) OnChainStart(ctx context.Context, chain string)                    {}
func (NoopObserver) OnChainCompleted(ctx context.Context, chain string, results []any) {}
func (NoopObserver) OnChainFailed(ctx context.Context, chain string, err error)        {}
func (NoopObserver) OnTaskStart(ctx context.Context, chain, step string, seq int)      {}
func (NoopObserver) OnTaskCompleted(ctx context.Context, chain, step string, seq int, err error, d time.Duration) {
}

// CompositeObserver fans out events to multiple observers.
type CompositeObserver struct {
	observers []Observer
}

// NewCompositeObserver creates an Observer that forwards events to each
// non-nil observer in obs.
func NewCompositeObserver(obs ...Observer) Observer {
	filtered := make([]Observer, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			filtered = append(filtered, o)
		}
	}
	if len(filtered) == 0 {
		return NoopObserver{}
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &CompositeObserver{observers: filtered}
}

func (c *CompositeObserver) OnChainStart(ctx context.Context, chain string) {
	for _, o := range c.observers {
		o.OnChainStart(ctx, chain)
	}
}

func (c *CompositeObserver) OnChainCompleted(ctx context.Context, chain string, results []any) {
	for _, o := range c.observers {
		o.OnChainCompleted(ctx, chain, results)
	}
}

func (c *CompositeObserver) OnChainFailed(ctx context.Context, chain string, err error) {
	for _, o := range c.observers {
		o.OnChainFailed(ctx, chain, err)
	}
}

func (c *CompositeObserver) OnTaskStart(ctx context.Context, chain, step string, seq int) {
	for _, o := range c.observers {
		o.OnTaskStart(ctx, chain, step, seq)
	}
}

func (c *CompositeObserver) OnTaskCompleted(ctx context.Context, chain, step string, seq int, err error, d time.Duration) {
	for _, o := range c.observers {
		o.OnTaskCompleted(ctx, chain, step, seq, err, d)
	}
}

// LoggingObserver writes structured logs using log/slog.
type LoggingObserver struct {
	Logger *slog.Logger
}

// NewLoggingObserver creates an Observer that logs chain / task
// lifecycle events using the provided slog.Logger. If logger is nil,
// slog.Default() is used.
func NewLoggingObserver(logger *slog.Logger) Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingObserver{Logger: logger}
}

func (o *LoggingObserver) OnChainStart(ctx context.Context, chain string) {
	o.Logger.InfoContext(ctx, "chain_start",
		slog.String("chain", chain),
	)
}

func (o *LoggingObserver) OnChainCompleted(ctx context.Context, chain string, results []any) {
	o.Logger.InfoContext(ctx, "chain_completed",
		slog.String("chain", chain),
		slog.Int("results", len(results)),
	)
}

func (o *LoggingObserver) OnChainFailed(ctx context.Context, chain string, err error) {
	o.Logger.ErrorContext(ctx, "chain_failed",
		slog.String("chain", chain),
		slog.Any("error", err),
	)
}

func (o *LoggingObserver) OnTaskStart(ctx context.Context, chain, step string, seq int) {
	o.Logger.DebugContext(ctx, "task_start",
		slog.String("chain", chain),
		slog.String("step", step),
		slog.Int("seq", seq),
	)
}

func (o *LoggingObserver) OnTaskCompleted(ctx context.Context, chain, step string, seq int, err error, d time.Duration) {
	level := slog.LevelDebug
	if err != nil {
		level = slog.LevelError
	}
	o.Logger.Log(ctx, level, "task_completed",
		slog.String("chain", chain),
		slog.String("step", step),
		slog.Int("seq", seq),
		slog.Duration("duration", d),
		slog.Any("error", err),
	)
}

// BasicMetrics collects simple counters and aggregate task durations.
// It implements Observer, and can be combined with LoggingObserver via
// NewCompositeObserver.
type BasicMetrics struct {
	NoopObserver

	runsStarted       atomic.Int64
	runsCompleted     atomic.Int64
	runsFailed        atomic.Int64
	tasksCompleted    atomic.Int64
	totalTaskDuration atomic.Int64 // nanoseconds
}

// BasicMetricsSnapshot is an immutable snapshot of BasicMetrics.
type BasicMetricsSnapshot struct {
	RunsStarted   int64
	RunsCompleted int64
	RunsFailed    int64
	RunsActive    int64

	TasksCompleted  int64
	AvgTaskDuration time.Duration
}

func (m *BasicMetrics) OnChainStart(ctx context.Context, chain string) {
	m.runsStarted.Add(1)
}

func (m *BasicMetrics) OnChainCompleted(ctx context.Context, chain string, results []any) {
	m.runsCompleted.Add(1)
}

func (m *BasicMetrics) OnChainFailed(ctx context.Context, chain string, err error) {
	m.runsFailed.Add(1)
}

func (m *BasicMetrics) OnTaskCompleted(ctx context.Context, chain, step string, seq int, err error, d time.Duration) {
	// Only count successful tasks for average duration.
	if err == nil {
		m.tasksCompleted.Add(1)
		m.totalTaskDuration.Add(d.Nanoseconds())
	}
}

// Snapshot returns a snapshot of the current metrics.
func (m *BasicMetrics) Snapshot() BasicMetricsSnapshot {
	started := m.runsStarted.Load()
	completed := m.runsCompleted.Load()
	failed := m.runsFailed.Load()
	tasks := m.tasksCompleted.Load()
	totalNs := m.totalTaskDuration.Load()

	var avg time.Duration
	if tasks > 0 {
		avg = time.Duration(totalNs / tasks)
	}

	return BasicMetricsSnapshot{
		RunsStarted:     started,
		RunsCompleted:   completed,
		RunsFailed:      failed,
		RunsActive:      started - completed - failed,
		TasksCompleted:  tasks,
		AvgTaskDuration: avg,
	}
}
