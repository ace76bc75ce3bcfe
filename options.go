package chainable

import (
	"context"
	"log/slog"

	"github.com/laittg/chainable/internal/engine"
)

// Option configures a Chain at construction time.
type Option func(o *engine.Options)

// WithConfig replaces the whole configuration.
func WithConfig(cfg Config) Option {
	return func(o *engine.Options) {
		o.Config = cfg
	}
}

// WithManualExecution defers draining until Execute is called, so the
// caller can batch tasks before the run begins.
func WithManualExecution() Option {
	return func(o *engine.Options) {
		o.Config.ManualExecution = true
	}
}

// WithObserver sets the observer receiving chain and task lifecycle
// events.
func WithObserver(obs Observer) Option {
	return func(o *engine.Options) {
		o.Observer = obs
	}
}

// WithLogger sets the logger used for fallback error reporting and
// recorder failures. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *engine.Options) {
		o.Logger = logger
	}
}

// WithRecorder sets the store that receives a RunRecord on every
// terminal transition.
func WithRecorder(store RunStore) Option {
	return func(o *engine.Options) {
		o.Recorder = store
	}
}

// WithContext sets the base context passed to every step. Defaults to
// context.Background(). The chain itself attaches no deadline to it.
func WithContext(ctx context.Context) Option {
	return func(o *engine.Options) {
		o.Context = ctx
	}
}

// WithFallbackHandler sets the handler receiving errors that reach a
// terminal transition while no Catch handler is registered. The
// default logs them at error level.
func WithFallbackHandler(fn FallbackHandler) Option {
	return func(o *engine.Options) {
		o.Fallback = fn
	}
}
