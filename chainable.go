package chainable

import (
	"database/sql"

	"github.com/redis/go-redis/v9"

	"github.com/laittg/chainable/internal/history"
	"github.com/laittg/chainable/pkg/api"
)

// Re-export key types so users don't need to dig into pkg/api.

type (
	StepFunc        = api.StepFunc
	DoneFunc        = api.DoneFunc
	DoneHandler     = api.DoneHandler
	CatchHandler    = api.CatchHandler
	FallbackHandler = api.FallbackHandler
	Config          = api.Config

	Observer             = api.Observer
	NoopObserver         = api.NoopObserver
	LoggingObserver      = api.LoggingObserver
	CompositeObserver    = api.CompositeObserver
	BasicMetrics         = api.BasicMetrics
	BasicMetricsSnapshot = api.BasicMetricsSnapshot

	RunRecord = api.RunRecord
	RunFilter = api.RunFilter
	RunStore  = api.RunStore
	Status    = api.Status

	InvalidNameError        = api.InvalidNameError
	ReservedNameError       = api.ReservedNameError
	DuplicateStepError      = api.DuplicateStepError
	InvalidStepError        = api.InvalidStepError
	MalformedSignatureError = api.MalformedSignatureError
	InvalidHandlerError     = api.InvalidHandlerError
	StepError               = api.StepError
	UnhandledStepError      = api.UnhandledStepError
)

// Re-export common observer helpers.

var (
	NewLoggingObserver   = api.NewLoggingObserver
	NewCompositeObserver = api.NewCompositeObserver
)

// Re-export sentinel errors and status values for convenience.

var (
	ErrUnknownStep = api.ErrUnknownStep
	ErrNotManual   = api.ErrNotManual
	ErrRunNotFound = api.ErrRunNotFound
)

const (
	StatusCompleted = api.StatusCompleted
	StatusFailed    = api.StatusFailed
)

// DefaultConfig returns the default chain configuration.
func DefaultConfig() Config {
	return api.DefaultConfig()
}

// Recorder constructors
// These wrap the internal/history package so external callers never
// need to import internal packages.

// NewMemoryRecorder returns a RunStore that keeps run records in
// memory. Intended for tests and development.
func NewMemoryRecorder() RunStore {
	return history.NewMemoryStore()
}

// NewSQLiteRecorder returns a RunStore that persists run records in a
// SQLite database. The schema is created on first use; the caller is
// responsible for importing a driver such as modernc.org/sqlite.
func NewSQLiteRecorder(db *sql.DB) (RunStore, error) {
	return history.NewSQLiteStore(db)
}

// NewRedisRecorder returns a RunStore that persists run records in
// Redis under the given key prefix ("chainable:" when empty).
func NewRedisRecorder(client *redis.Client, prefix string) RunStore {
	return history.NewRedisStore(client, prefix)
}
