// Package engine orchestrates a single agent execution end to end: compile
// the output schema, render the prompt pair, dispatch through the provider
// router, and validate the model's reply. Every execution emits exactly one
// telemetry record, whether it succeeds or fails.
package engine
