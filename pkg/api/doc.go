// Package api defines the public contract types of the chainable
// module: step and handler signatures, chain configuration, error
// kinds, run records, and the Observer interface with its stock
// implementations.
//
// Most callers import the root chainable package, which re-exports
// everything here; api exists so internal packages and external
// integrations can share the contract without importing the builder.
package api
