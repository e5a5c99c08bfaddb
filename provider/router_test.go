package provider

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fastRouter disables the real backoff delays so retry tests run instantly.
func fastRouter(registry *Registry, retries int) *Router {
	return NewRouter(registry, func(o *RouterOptions) {
		o.RetriesPerModel = retries
		o.BaseBackoff = time.Microsecond
		o.MaxBackoff = time.Microsecond
	})
}

func transient(model string) error {
	return &TransientError{Model: model, Err: errors.New("rate limited")}
}

func TestDispatch_Success(t *testing.T) {
	registry := NewRegistry()
	mock := NewMockProvider("m1").
		AddResponse("ping", "pong").
		WithUsage(TokenUsage{InputTokens: 1000, OutputTokens: 500})
	if err := registry.Register(Descriptor{
		ModelID:             "m1",
		InputPerMillionUSD:  10,
		OutputPerMillionUSD: 20,
	}, mock); err != nil {
		t.Fatalf("register: %v", err)
	}

	router := fastRouter(registry, 3)
	result, err := router.Dispatch(context.Background(), "m1", Request{User: "ping"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Text != "pong" {
		t.Errorf("text: got %q", result.Text)
	}
	if result.Model != "m1" {
		t.Errorf("model: got %q", result.Model)
	}
	if result.Attempts != 1 {
		t.Errorf("attempts: got %d", result.Attempts)
	}
	// 1000 in at $10/M + 500 out at $20/M.
	want := 0.01 + 0.01
	if result.CostUSD != want {
		t.Errorf("cost: got %v, want %v", result.CostUSD, want)
	}
}

func TestDispatch_UnknownModel(t *testing.T) {
	router := fastRouter(NewRegistry(), 3)
	_, err := router.Dispatch(context.Background(), "ghost", Request{User: "x"})
	if !IsFatal(err) {
		t.Fatalf("expected fatal error, got %T: %v", err, err)
	}
	if !errors.Is(err, ErrUnknownModel) {
		t.Fatalf("expected ErrUnknownModel in chain, got %v", err)
	}
}

func TestDispatch_FallbackChainAttemptAccounting(t *testing.T) {
	const retries = 3

	registry := NewRegistry()
	first := NewMockProvider("m1").AlwaysFailWith(transient("m1"))
	second := NewMockProvider("m2").AlwaysFailWith(transient("m2"))
	third := NewMockProvider("m3").AddResponse("q", "answer from m3")

	if err := registry.Register(Descriptor{ModelID: "m1", Fallbacks: []string{"m2", "m3"}}, first); err != nil {
		t.Fatal(err)
	}
	if err := registry.Register(Descriptor{ModelID: "m2"}, second); err != nil {
		t.Fatal(err)
	}
	if err := registry.Register(Descriptor{ModelID: "m3", InputPerMillionUSD: 2, OutputPerMillionUSD: 4}, third); err != nil {
		t.Fatal(err)
	}

	router := fastRouter(registry, retries)
	result, err := router.Dispatch(context.Background(), "m1", Request{User: "q"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Model != "m3" {
		t.Errorf("expected the third model to serve, got %q", result.Model)
	}
	if want := retries*2 + 1; result.Attempts != want {
		t.Errorf("attempts: got %d, want %d", result.Attempts, want)
	}
	if first.Calls() != retries || second.Calls() != retries || third.Calls() != 1 {
		t.Errorf("call distribution: %d/%d/%d", first.Calls(), second.Calls(), third.Calls())
	}
}

func TestDispatch_ExhaustedAfterFullChain(t *testing.T) {
	registry := NewRegistry()
	first := NewMockProvider("m1").AlwaysFailWith(transient("m1"))
	second := NewMockProvider("m2").AlwaysFailWith(transient("m2"))

	if err := registry.Register(Descriptor{ModelID: "m1", Fallbacks: []string{"m2"}}, first); err != nil {
		t.Fatal(err)
	}
	if err := registry.Register(Descriptor{ModelID: "m2"}, second); err != nil {
		t.Fatal(err)
	}

	router := fastRouter(registry, 2)
	_, err := router.Dispatch(context.Background(), "m1", Request{User: "q"})

	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected *ExhaustedError, got %T: %v", err, err)
	}
	if exhausted.Attempts != 4 {
		t.Errorf("attempts: got %d", exhausted.Attempts)
	}
	if len(exhausted.Models) != 2 || exhausted.Models[0] != "m1" || exhausted.Models[1] != "m2" {
		t.Errorf("models: got %v", exhausted.Models)
	}
	if len(exhausted.Causes) != 2 {
		t.Errorf("causes: got %v", exhausted.Causes)
	}
}

func TestDispatch_FatalBypassesRetryAndFallback(t *testing.T) {
	registry := NewRegistry()
	first := NewMockProvider("m1").
		AlwaysFailWith(&FatalError{Model: "m1", Err: errors.New("invalid api key")})
	second := NewMockProvider("m2").AddResponse("q", "never reached")

	if err := registry.Register(Descriptor{ModelID: "m1", Fallbacks: []string{"m2"}}, first); err != nil {
		t.Fatal(err)
	}
	if err := registry.Register(Descriptor{ModelID: "m2"}, second); err != nil {
		t.Fatal(err)
	}

	router := fastRouter(registry, 3)
	_, err := router.Dispatch(context.Background(), "m1", Request{User: "q"})

	if !IsFatal(err) {
		t.Fatalf("expected fatal error, got %T: %v", err, err)
	}
	if first.Calls() != 1 {
		t.Errorf("fatal errors must not be retried; got %d calls", first.Calls())
	}
	if second.Calls() != 0 {
		t.Errorf("fatal errors must not fall back; got %d calls", second.Calls())
	}
}

func TestDispatch_FirstListedFallbackWins(t *testing.T) {
	registry := NewRegistry()
	first := NewMockProvider("m1").AlwaysFailWith(transient("m1"))
	second := NewMockProvider("m2").AddResponse("q", "from m2")
	third := NewMockProvider("m3").AddResponse("q", "from m3")

	if err := registry.Register(Descriptor{ModelID: "m1", Fallbacks: []string{"m2", "m3"}}, first); err != nil {
		t.Fatal(err)
	}
	if err := registry.Register(Descriptor{ModelID: "m2"}, second); err != nil {
		t.Fatal(err)
	}
	if err := registry.Register(Descriptor{ModelID: "m3"}, third); err != nil {
		t.Fatal(err)
	}

	router := fastRouter(registry, 1)
	result, err := router.Dispatch(context.Background(), "m1", Request{User: "q"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Model != "m2" {
		t.Errorf("expected the first-listed fallback to win, got %q", result.Model)
	}
	if third.Calls() != 0 {
		t.Errorf("later fallbacks must not be consulted, got %d calls", third.Calls())
	}
}

func TestDispatch_CostPricedByServingModel(t *testing.T) {
	registry := NewRegistry()
	first := NewMockProvider("expensive").AlwaysFailWith(transient("expensive"))
	second := NewMockProvider("cheap").
		AddResponse("q", "ok").
		WithUsage(TokenUsage{InputTokens: 1_000_000, OutputTokens: 0})

	if err := registry.Register(Descriptor{
		ModelID:            "expensive",
		InputPerMillionUSD: 100,
		Fallbacks:          []string{"cheap"},
	}, first); err != nil {
		t.Fatal(err)
	}
	if err := registry.Register(Descriptor{
		ModelID:            "cheap",
		InputPerMillionUSD: 1,
	}, second); err != nil {
		t.Fatal(err)
	}

	router := fastRouter(registry, 1)
	result, err := router.Dispatch(context.Background(), "expensive", Request{User: "q"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.CostUSD != 1 {
		t.Errorf("cost must follow the serving model's pricing, got %v", result.CostUSD)
	}
}

func TestDispatch_SchemaRequiresCapability(t *testing.T) {
	registry := NewRegistry()
	mock := NewMockProvider("plain")
	if err := registry.Register(Descriptor{ModelID: "plain"}, mock); err != nil {
		t.Fatal(err)
	}

	router := fastRouter(registry, 1)
	_, err := router.Dispatch(context.Background(), "plain", Request{
		User:       "q",
		SchemaJSON: []byte(`{"type":"object"}`),
	})
	if !IsFatal(err) {
		t.Fatalf("expected fatal error, got %T: %v", err, err)
	}
	if mock.Calls() != 0 {
		t.Errorf("capability gate must reject before calling the provider")
	}
}

func TestDispatch_ContextCancellation(t *testing.T) {
	registry := NewRegistry()
	mock := NewMockProvider("slow").Hang()
	if err := registry.Register(Descriptor{ModelID: "slow", Fallbacks: []string{"other"}}, mock); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	router := fastRouter(registry, 3)
	_, err := router.Dispatch(ctx, "slow", Request{User: "q"})

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context deadline to pass through, got %T: %v", err, err)
	}
	if mock.Calls() != 1 {
		t.Errorf("cancellation must stop retries, got %d calls", mock.Calls())
	}
}

func TestRegistry(t *testing.T) {
	registry := NewRegistry()
	mock := NewMockProvider("m1")

	if err := registry.Register(Descriptor{ModelID: "m1"}, mock); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := registry.Register(Descriptor{ModelID: "m1"}, mock); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
	if err := registry.Register(Descriptor{}, mock); err == nil {
		t.Fatal("expected empty model id to fail")
	}
	if err := registry.Register(Descriptor{ModelID: "m2"}, nil); err == nil {
		t.Fatal("expected nil provider to fail")
	}

	if _, _, err := registry.Resolve("nope"); !errors.Is(err, ErrUnknownModel) {
		t.Fatalf("expected ErrUnknownModel, got %v", err)
	}

	models := registry.Models()
	if len(models) != 1 || models[0] != "m1" {
		t.Errorf("models: got %v", models)
	}
}

func TestDescriptorCost(t *testing.T) {
	d := Descriptor{InputPerMillionUSD: 3, OutputPerMillionUSD: 15}
	got := d.Cost(TokenUsage{InputTokens: 2_000_000, OutputTokens: 1_000_000})
	if got != 21 {
		t.Errorf("cost: got %v", got)
	}
	if d.Cost(TokenUsage{}) != 0 {
		t.Error("zero usage must cost zero")
	}
}

func TestDefaultDescriptors(t *testing.T) {
	descs := DefaultDescriptors()
	if len(descs) == 0 {
		t.Fatal("expected a non-empty descriptor seed")
	}
	ids := map[string]bool{}
	for _, d := range descs {
		if d.ModelID == "" {
			t.Error("descriptor with empty model id")
		}
		ids[d.ModelID] = true
	}
	// Every fallback must itself be a known descriptor.
	for _, d := range descs {
		for _, fb := range d.Fallbacks {
			if !ids[fb] {
				t.Errorf("%s falls back to unknown model %s", d.ModelID, fb)
			}
		}
	}
}
