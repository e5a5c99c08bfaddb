// Package logging provides a minimal logging interface and adapters for AgentDoc.
//
// The Logger interface defines the standard logging methods (Debug, Info, Warn, Error)
// that the engine, router and providers use for observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - AgentDocLogger with agent and execution scoped context helpers
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	app := agentdoc.New(func(o *agentdoc.Options) { o.Logger = logger })
//
// The design intentionally keeps the interface minimal to avoid vendor lock-in
// while supporting structured logging where available.
package logging
