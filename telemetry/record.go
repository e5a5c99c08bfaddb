package telemetry

import (
	"sync"
	"time"

	"github.com/hupe1980/agentdoc/logging"
	"github.com/hupe1980/agentdoc/provider"
)

// Record is the flat per-execution observability record. One record is
// emitted per execution, success or failure.
type Record struct {
	ExecutionID    string
	Agent          string
	ModelRequested string
	ModelUsed      string
	Usage          provider.TokenUsage
	CostUSD        float64
	Attempts       int
	Start          time.Time
	End            time.Time
	Duration       time.Duration
	Success        bool
	Err            error
}

// Sink receives execution records. Implementations must be safe for
// concurrent use.
type Sink interface {
	Record(rec Record)
}

// NoopSink discards every record.
type NoopSink struct{}

// Record implements Sink.
func (NoopSink) Record(Record) {}

// LoggerSink writes each record as a structured log line.
type LoggerSink struct {
	logger logging.Logger
}

// NewLoggerSink constructs a LoggerSink on top of logger.
func NewLoggerSink(logger logging.Logger) *LoggerSink {
	return &LoggerSink{logger: logger}
}

// Record implements Sink.
func (s *LoggerSink) Record(rec Record) {
	if dl, ok := s.logger.(*logging.AgentDocLogger); ok {
		dl.WithExecution(rec.Agent, rec.ExecutionID).
			LogExecution(rec.Agent, rec.ModelUsed, rec.CostUSD, rec.Duration, rec.Success, rec.Err)
		return
	}

	args := []any{
		"executionID", rec.ExecutionID,
		"agent", rec.Agent,
		"modelRequested", rec.ModelRequested,
		"modelUsed", rec.ModelUsed,
		"inputTokens", rec.Usage.InputTokens,
		"outputTokens", rec.Usage.OutputTokens,
		"costUSD", rec.CostUSD,
		"attempts", rec.Attempts,
		"duration", rec.Duration,
		"success", rec.Success,
	}
	if rec.Err != nil {
		args = append(args, "error", rec.Err.Error())
		s.logger.Warn("Execution finished", args...)
		return
	}
	s.logger.Info("Execution finished", args...)
}

// MemorySink retains every record in memory. Intended for tests.
type MemorySink struct {
	mu      sync.Mutex
	records []Record
}

// NewMemorySink constructs an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Record implements Sink.
func (s *MemorySink) Record(rec Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
}

// Records returns a copy of every record seen so far.
func (s *MemorySink) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// Len returns how many records have been received.
func (s *MemorySink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// MultiSink fans each record out to every child sink in order.
type MultiSink []Sink

// Record implements Sink.
func (m MultiSink) Record(rec Record) {
	for _, s := range m {
		s.Record(rec)
	}
}
