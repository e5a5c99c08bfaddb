package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/agentdoc/logging"
)

// Retry policy defaults.
const (
	defaultRetriesPerModel = 3
	defaultBaseBackoff     = 500 * time.Millisecond
	defaultMaxBackoff      = 10 * time.Second
)

// RouterOptions configures dispatch behavior.
type RouterOptions struct {
	// RetriesPerModel is the maximum number of attempts against each model
	// in the chain before falling through to the next one.
	RetriesPerModel int
	// BaseBackoff and MaxBackoff bound the exponential backoff between
	// retries of the same model.
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
	// Logger receives retry and fallback diagnostics.
	Logger logging.Logger
}

// Router selects a model, retries transient failures with exponential
// backoff, walks the fallback chain and accounts cost. Routers are stateless
// per dispatch and safe for concurrent use.
type Router struct {
	registry *Registry
	opts     RouterOptions
}

// NewRouter creates a Router over a registry with sensible retry defaults.
func NewRouter(registry *Registry, optFns ...func(o *RouterOptions)) *Router {
	opts := RouterOptions{
		RetriesPerModel: defaultRetriesPerModel,
		BaseBackoff:     defaultBaseBackoff,
		MaxBackoff:      defaultMaxBackoff,
		Logger:          logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.RetriesPerModel < 1 {
		opts.RetriesPerModel = 1
	}

	return &Router{registry: registry, opts: opts}
}

// DispatchResult is the outcome of a routed model call. Model records which
// model actually served the request, so silent substitution is never hidden
// from the caller.
type DispatchResult struct {
	Text     string
	Model    string
	Usage    TokenUsage
	CostUSD  float64
	Attempts int
}

// Dispatch sends a request to the requested model, retrying transient
// failures and falling through the descriptor's fallback chain. Fatal
// failures propagate immediately. An *ExhaustedError is returned only after
// every model in the chain has spent its retry budget.
func (r *Router) Dispatch(ctx context.Context, modelID string, req Request) (*DispatchResult, error) {
	primary, _, err := r.registry.Resolve(modelID)
	if err != nil {
		return nil, &FatalError{Model: modelID, Err: err}
	}

	if req.SchemaJSON != nil && !primary.SupportsStructuredOutput {
		return nil, &FatalError{
			Model: modelID,
			Err:   fmt.Errorf("model does not support structured output"),
		}
	}

	chain := r.buildChain(primary)

	var (
		attempts int
		causes   []error
		tried    []string
	)

	for _, id := range chain {
		desc, prov, err := r.registry.Resolve(id)
		if err != nil {
			r.opts.Logger.Warn("Skipping unknown fallback model", "model", id)
			continue
		}
		tried = append(tried, id)

		cause, n, result := r.attemptModel(ctx, desc, prov, req, &attempts)
		if result != nil {
			return result, nil
		}
		if cause != nil && !IsTransient(cause) {
			// Fatal or context error: bypass remaining fallbacks.
			return nil, cause
		}
		if cause != nil {
			r.opts.Logger.Warn("Model exhausted its retry budget",
				"model", id, "attempts", n, "error", cause.Error())
			causes = append(causes, cause)
		}
	}

	return nil, &ExhaustedError{Models: tried, Attempts: attempts, Causes: causes}
}

// buildChain returns the primary model followed by its fallback chain,
// first-listed first, with duplicates removed.
func (r *Router) buildChain(primary Descriptor) []string {
	chain := []string{primary.ModelID}
	seen := map[string]bool{primary.ModelID: true}
	for _, id := range primary.Fallbacks {
		if !seen[id] {
			seen[id] = true
			chain = append(chain, id)
		}
	}
	return chain
}

// attemptModel runs the bounded retry loop for one model. It returns either
// a successful result, or the terminal cause for this model (the last
// transient error, a fatal error, or a context error).
func (r *Router) attemptModel(
	ctx context.Context,
	desc Descriptor,
	prov Provider,
	req Request,
	attempts *int,
) (cause error, n int, result *DispatchResult) {
	limiter := r.registry.limiter(desc.ModelID)

	for try := 0; try < r.opts.RetriesPerModel; try++ {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return err, n, nil
			}
		}

		*attempts++
		n++

		resp, err := prov.Complete(ctx, req)
		if err == nil {
			return nil, n, r.buildResult(desc, resp, *attempts)
		}

		err = classify(desc.ModelID, err)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err, n, nil
		}
		if IsFatal(err) {
			return err, n, nil
		}

		cause = err
		if try < r.opts.RetriesPerModel-1 {
			if werr := r.backoff(ctx, try); werr != nil {
				return werr, n, nil
			}
		}
	}

	return cause, n, nil
}

// buildResult accounts cost against the pricing of the model that actually
// served the request. Providers normally echo the attempted model, but when
// one reports a different identifier known to the registry, that pricing
// wins.
func (r *Router) buildResult(desc Descriptor, resp *Response, attempts int) *DispatchResult {
	served := resp.Model
	if served == "" {
		served = desc.ModelID
	}
	pricing := desc
	if served != desc.ModelID {
		if other, err := r.registry.Describe(served); err == nil {
			pricing = other
		} else {
			r.opts.Logger.Warn("Provider reported unknown serving model; pricing by requested model",
				"requested", desc.ModelID, "served", served)
		}
	}

	return &DispatchResult{
		Text:     resp.Text,
		Model:    served,
		Usage:    resp.Usage,
		CostUSD:  pricing.Cost(resp.Usage),
		Attempts: attempts,
	}
}

// backoff sleeps for an exponentially increasing delay, honoring ctx.
func (r *Router) backoff(ctx context.Context, try int) error {
	delay := r.opts.BaseBackoff << uint(try)
	if delay > r.opts.MaxBackoff || delay <= 0 {
		delay = r.opts.MaxBackoff
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
