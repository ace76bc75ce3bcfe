// Package history provides RunStore implementations that persist the
// terminal transitions of chain runs: an in-memory store for tests and
// development, a SQLite store for embedded durability, and a Redis
// store. Queued tasks are never persisted, only outcomes.
package history
