package telemetry

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hupe1980/agentdoc/provider"
)

func sampleRecord(success bool) Record {
	rec := Record{
		ExecutionID:    "exec-1",
		Agent:          "Echo",
		ModelRequested: "m1",
		ModelUsed:      "m2",
		Usage:          provider.TokenUsage{InputTokens: 10, OutputTokens: 5},
		CostUSD:        0.0001,
		Attempts:       2,
		Start:          time.Now().Add(-time.Second),
		End:            time.Now(),
		Duration:       time.Second,
		Success:        success,
	}
	if !success {
		rec.Err = errors.New("boom")
	}
	return rec
}

func TestMemorySink(t *testing.T) {
	sink := NewMemorySink()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sink.Record(sampleRecord(true))
		}()
	}
	wg.Wait()

	if sink.Len() != 10 {
		t.Fatalf("expected 10 records, got %d", sink.Len())
	}

	records := sink.Records()
	records[0].Agent = "mutated"
	if sink.Records()[0].Agent == "mutated" {
		t.Error("Records must return a copy")
	}
}

func TestMultiSink(t *testing.T) {
	a := NewMemorySink()
	b := NewMemorySink()
	multi := MultiSink{a, b, NoopSink{}}

	multi.Record(sampleRecord(false))

	if a.Len() != 1 || b.Len() != 1 {
		t.Errorf("fan-out miss: %d/%d", a.Len(), b.Len())
	}
	if a.Records()[0].Err == nil {
		t.Error("error must carry through")
	}
}

type countingLogger struct {
	infos, warns int
}

func (l *countingLogger) Debug(string, ...any) {}
func (l *countingLogger) Info(string, ...any)  { l.infos++ }
func (l *countingLogger) Warn(string, ...any)  { l.warns++ }
func (l *countingLogger) Error(string, ...any) {}

func TestLoggerSink(t *testing.T) {
	logger := &countingLogger{}
	sink := NewLoggerSink(logger)

	sink.Record(sampleRecord(true))
	sink.Record(sampleRecord(false))

	if logger.infos != 1 || logger.warns != 1 {
		t.Errorf("expected one info and one warn, got %d/%d", logger.infos, logger.warns)
	}
}
