// Package api defines the public types and contracts of the guided filing
// workflow engine: workflow and step definitions, the serializable session
// State, submissions, the Engine interface, the error taxonomy, and the
// Observer callbacks used for logging and metrics.
//
// Most applications import the root guidedflow package, which re-exports
// everything here alongside the engine and store constructors.
package api
