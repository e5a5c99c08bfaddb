package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/hupe1980/agentdoc/definition"
	"github.com/hupe1980/agentdoc/internal/util"
	"github.com/hupe1980/agentdoc/logging"
	"github.com/hupe1980/agentdoc/prompt"
	"github.com/hupe1980/agentdoc/provider"
	"github.com/hupe1980/agentdoc/schema"
	"github.com/hupe1980/agentdoc/telemetry"
)

// Options configures the Executor.
type Options struct {
	// Fragments resolves {{> name}} includes during prompt rendering.
	Fragments prompt.Registry
	// Sink receives one telemetry record per execution.
	Sink telemetry.Sink
	// Logger receives execution diagnostics.
	Logger logging.Logger
	// MaxTokens caps the completion length requested from providers.
	MaxTokens int64
}

// Executor runs agent definitions. Compiled schema handles are cached by
// the schema source hash, so repeated executions of the same definition pay
// the compilation cost once.
type Executor struct {
	router  *provider.Router
	opts    Options
	handles sync.Map // schema source hash -> *schema.Handle
}

// New creates an Executor dispatching through router.
func New(router *provider.Router, optFns ...func(o *Options)) *Executor {
	opts := Options{
		Fragments: prompt.EmptyRegistry,
		Sink:      telemetry.NoopSink{},
		Logger:    logging.NoOpLogger{},
		MaxTokens: 4096,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Executor{
		router: router,
		opts:   opts,
	}
}

// SetFragments replaces the fragment registry. Call during setup, before
// the executor is shared across goroutines.
func (e *Executor) SetFragments(fragments prompt.Registry) {
	e.opts.Fragments = fragments
}

// Result is the outcome of a successful execution.
type Result struct {
	// Output holds the validated, coerced structured output. Nil when the
	// definition declares no schema.
	Output map[string]any
	// Raw is the model's reply text before fence stripping and validation.
	Raw      string
	Model    string
	Usage    provider.TokenUsage
	CostUSD  float64
	Attempts int
	Duration time.Duration
}

// Execute runs def against the provided context data. It renders both
// prompts, dispatches through the router, and validates structured output
// when the definition declares a schema. Validation failures surface to the
// caller unretried; a fresh model call costs money and a reply that failed
// validation once rarely passes on an identical retry.
func (e *Executor) Execute(ctx context.Context, def *definition.Definition, contextData map[string]any) (*Result, error) {
	start := time.Now()
	rec := telemetry.Record{
		ExecutionID:    util.NewID(),
		Agent:          def.Name,
		ModelRequested: def.ModelID,
		Start:          start,
	}

	result, err := e.run(ctx, def, contextData, &rec)

	rec.End = time.Now()
	rec.Duration = rec.End.Sub(rec.Start)
	rec.Success = err == nil
	rec.Err = err
	e.opts.Sink.Record(rec)

	e.opts.Logger.Debug("Execution finished",
		"executionID", rec.ExecutionID,
		"agent", def.Name,
		"duration", rec.Duration,
		"success", err == nil,
	)

	if err != nil {
		return nil, err
	}
	result.Duration = rec.Duration
	return result, nil
}

func (e *Executor) run(ctx context.Context, def *definition.Definition, contextData map[string]any, rec *telemetry.Record) (*Result, error) {
	var handle *schema.Handle
	if def.HasSchema() {
		h, err := e.handleFor(def.OutputSchemaSource)
		if err != nil {
			return nil, err
		}
		handle = h
	}

	rendered, err := prompt.RenderPair(def.SystemPromptTemplate, def.UserPromptTemplate, contextData, e.opts.Fragments)
	if err != nil {
		return nil, err
	}

	req := provider.Request{
		System:      rendered.System,
		User:        rendered.User,
		Temperature: def.Temperature,
		MaxTokens:   e.opts.MaxTokens,
	}
	if handle != nil {
		req.SchemaJSON = handle.SchemaJSON()
	}

	dispatched, err := e.router.Dispatch(ctx, def.ModelID, req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &TimeoutError{Agent: def.Name, Elapsed: time.Since(rec.Start)}
		}
		return nil, err
	}

	rec.ModelUsed = dispatched.Model
	rec.Usage = dispatched.Usage
	rec.CostUSD = dispatched.CostUSD
	rec.Attempts = dispatched.Attempts

	result := &Result{
		Raw:      dispatched.Text,
		Model:    dispatched.Model,
		Usage:    dispatched.Usage,
		CostUSD:  dispatched.CostUSD,
		Attempts: dispatched.Attempts,
	}

	if handle != nil {
		output, err := handle.ValidateJSON(schema.StripCodeFences(dispatched.Text))
		if err != nil {
			return nil, err
		}
		result.Output = output
	}

	return result, nil
}

// handleFor returns the cached compiled schema for source, compiling it on
// first use. Concurrent first users may both compile; LoadOrStore keeps one
// handle and the loser's copy is discarded.
func (e *Executor) handleFor(source string) (*schema.Handle, error) {
	key := util.HashBytes([]byte(source))
	if cached, ok := e.handles.Load(key); ok {
		return cached.(*schema.Handle), nil
	}

	handle, err := schema.Compile(source)
	if err != nil {
		return nil, err
	}

	actual, _ := e.handles.LoadOrStore(key, handle)
	return actual.(*schema.Handle), nil
}
