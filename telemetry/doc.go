// Package telemetry records one flat observability record per agent
// execution: which agent ran, which model served it, token usage, cost and
// outcome. Records are delivered to a pluggable Sink; an OpenTelemetry sink
// emits each record as a span so executions show up in standard tracing
// backends.
package telemetry
