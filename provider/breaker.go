package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/hupe1980/agentdoc/logging"
)

// Default circuit breaker settings.
const (
	defaultBreakerMaxFailures uint32        = 5
	defaultBreakerTimeout     time.Duration = 30 * time.Second
	defaultBreakerInterval    time.Duration = 60 * time.Second
)

// BreakerOptions configures the circuit breaker wrapper.
type BreakerOptions struct {
	// MaxFailures is the number of consecutive failures before the circuit opens.
	MaxFailures uint32
	// Timeout is how long the circuit stays open before transitioning to half-open.
	Timeout time.Duration
	// Interval is the cyclic period of the closed state for clearing failure
	// counts. If 0, failures never reset until the circuit opens.
	Interval time.Duration
	// Logger receives state change notifications.
	Logger logging.Logger
}

// BreakerProvider wraps a Provider with circuit breaker protection. When the
// wrapped provider fails repeatedly, the circuit opens and subsequent calls
// fail fast without reaching the provider, preventing retry storms during a
// sustained outage. Open-circuit failures are classified transient so the
// router still proceeds down the fallback chain.
type BreakerProvider struct {
	inner   Provider
	breaker *gobreaker.CircuitBreaker[*Response]
}

// WithBreaker wraps inner with a circuit breaker.
func WithBreaker(inner Provider, optFns ...func(o *BreakerOptions)) *BreakerProvider {
	opts := BreakerOptions{
		MaxFailures: defaultBreakerMaxFailures,
		Timeout:     defaultBreakerTimeout,
		Interval:    defaultBreakerInterval,
		Logger:      logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	name := inner.Info().Name
	logger := opts.Logger
	cb := gobreaker.NewCircuitBreaker[*Response](gobreaker.Settings{
		Name:        "model:" + name,
		MaxRequests: 1, // allow 1 probe in half-open state
		Interval:    opts.Interval,
		Timeout:     opts.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
		IsSuccessful: func(err error) bool {
			return err == nil
		},
	})

	return &BreakerProvider{inner: inner, breaker: cb}
}

// Complete implements Provider. Calls are routed through the circuit breaker.
func (p *BreakerProvider) Complete(ctx context.Context, req Request) (*Response, error) {
	resp, err := p.breaker.Execute(func() (*Response, error) {
		return p.inner.Complete(ctx, req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &TransientError{
				Model: p.inner.Info().Name,
				Err:   fmt.Errorf("circuit open: %w", err),
			}
		}
		return nil, err
	}
	return resp, nil
}

// Info implements Provider.
func (p *BreakerProvider) Info() Info { return p.inner.Info() }

// State returns the current circuit breaker state for monitoring.
func (p *BreakerProvider) State() gobreaker.State { return p.breaker.State() }

// Counts returns the current circuit breaker failure/success counts.
func (p *BreakerProvider) Counts() gobreaker.Counts { return p.breaker.Counts() }

// Compile-time interface check.
var _ Provider = (*BreakerProvider)(nil)
