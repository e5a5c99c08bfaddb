package provider

import (
	"context"
	"fmt"
	"sync"
)

// MockProvider is a lightweight in-memory Provider useful for tests and
// examples. It serves canned responses keyed by the user prompt, optionally
// preceded by a script of failures, and can be told to hang until the
// context is cancelled.
type MockProvider struct {
	mu        sync.Mutex
	info      Info
	responses map[string]string
	script    []error
	permanent error
	usage     TokenUsage
	hang      bool
	calls     int
}

// NewMockProvider constructs a MockProvider identified by name.
func NewMockProvider(name string) *MockProvider {
	return &MockProvider{
		info:      Info{Name: name, Vendor: "mock"},
		responses: make(map[string]string),
		usage:     TokenUsage{InputTokens: 10, OutputTokens: 5},
	}
}

// AddResponse registers a deterministic canned completion for a user prompt.
func (m *MockProvider) AddResponse(userPrompt, response string) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[userPrompt] = response
	return m
}

// FailWith queues errors returned, in order, before any canned response is
// served. Use it to script transient or fatal failures.
func (m *MockProvider) FailWith(errs ...error) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, errs...)
	return m
}

// AlwaysFailWith makes every call return err, regardless of retry count.
func (m *MockProvider) AlwaysFailWith(err error) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = nil
	m.responses = nil
	m.permanent = err
	return m
}

// Hang makes every call block until the context is cancelled. Used to
// exercise timeout behavior.
func (m *MockProvider) Hang() *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hang = true
	return m
}

// WithUsage overrides the token usage reported on success.
func (m *MockProvider) WithUsage(usage TokenUsage) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.usage = usage
	return m
}

// Calls returns how many times Complete has been invoked.
func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Complete implements Provider.
func (m *MockProvider) Complete(ctx context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	m.calls++
	hang := m.hang
	var scripted error
	if m.permanent != nil {
		scripted = m.permanent
	} else if len(m.script) > 0 {
		scripted = m.script[0]
		m.script = m.script[1:]
	}
	full := ""
	if m.responses != nil {
		full = m.responses[req.User]
	}
	usage := m.usage
	name := m.info.Name
	m.mu.Unlock()

	if hang {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if scripted != nil {
		return nil, scripted
	}
	if full == "" {
		full = fmt.Sprintf("Mock response to: %s", req.User)
	}

	return &Response{Text: full, Model: name, Usage: usage}, nil
}

// Info implements Provider.
func (m *MockProvider) Info() Info { return m.info }
