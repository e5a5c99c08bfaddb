// Package agentdoc provides a high-level façade over the definition
// catalog, provider router and execution engine. Most applications interact
// with this package by:
//  1. Creating an AgentDoc via New() (optionally overriding defaults)
//  2. Registering providers for the models their agents name
//  3. Registering agent definition documents
//  4. Executing agents by id with per-call context data
//
// The façade delegates parsing to definition, orchestration to engine and
// dispatch to provider.Router while keeping setup ergonomics concise. All
// defaults are safe for local development and testing; production
// deployments typically supply a structured logger and a telemetry sink.
package agentdoc

import (
	"context"
	"io/fs"

	"github.com/hupe1980/agentdoc/catalog"
	"github.com/hupe1980/agentdoc/definition"
	"github.com/hupe1980/agentdoc/engine"
	"github.com/hupe1980/agentdoc/logging"
	"github.com/hupe1980/agentdoc/prompt"
	"github.com/hupe1980/agentdoc/provider"
	"github.com/hupe1980/agentdoc/telemetry"
)

// Options configures the AgentDoc instance.
type Options struct {
	// Descriptors seeds the model registry. Defaults to the built-in
	// descriptor set.
	Descriptors []provider.Descriptor

	// Fragments resolves shared prompt includes. Defaults to an empty
	// registry.
	Fragments prompt.Registry

	// Sink receives one telemetry record per execution. Defaults to a
	// noop sink.
	Sink telemetry.Sink

	// RetriesPerModel bounds attempts against each model in a fallback
	// chain. Zero keeps the router default.
	RetriesPerModel int

	// MaxTokens caps completion length requested from providers.
	MaxTokens int64

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// AgentDoc is the high-level façade aggregating catalog, router and engine.
type AgentDoc struct {
	opts      Options
	descIndex map[string]provider.Descriptor
	catalog   *catalog.Catalog
	registry  *provider.Registry
	router    *provider.Router
	executor  *engine.Executor
}

// New creates a new AgentDoc instance with optional overrides.
func New(optFns ...func(o *Options)) *AgentDoc {
	opts := Options{
		Descriptors: provider.DefaultDescriptors(),
		Fragments:   prompt.EmptyRegistry,
		Sink:        telemetry.NoopSink{},
		MaxTokens:   4096,
		Logger:      logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	descIndex := make(map[string]provider.Descriptor, len(opts.Descriptors))
	for _, d := range opts.Descriptors {
		descIndex[d.ModelID] = d
	}

	registry := provider.NewRegistry()

	router := provider.NewRouter(registry, func(o *provider.RouterOptions) {
		if opts.RetriesPerModel > 0 {
			o.RetriesPerModel = opts.RetriesPerModel
		}
		o.Logger = opts.Logger
	})

	executor := engine.New(router, func(o *engine.Options) {
		o.Fragments = opts.Fragments
		o.Sink = opts.Sink
		o.Logger = opts.Logger
		o.MaxTokens = opts.MaxTokens
	})

	return &AgentDoc{
		opts:      opts,
		descIndex: descIndex,
		catalog:   catalog.New(),
		registry:  registry,
		router:    router,
		executor:  executor,
	}
}

// RegisterProvider binds a provider implementation to a model id. When the
// id matches a configured descriptor, that descriptor's pricing, fallbacks
// and rate budget apply; otherwise a bare descriptor is synthesized.
func (a *AgentDoc) RegisterProvider(modelID string, p provider.Provider) error {
	desc, ok := a.descIndex[modelID]
	if !ok {
		desc = provider.Descriptor{ModelID: modelID, Name: modelID, SupportsStructuredOutput: true}
	}
	return a.registry.Register(desc, p)
}

// RegisterAgent parses and registers an agent definition document under id.
// The parse error, if any, is returned immediately so broken documents fail
// at registration rather than first execution.
func (a *AgentDoc) RegisterAgent(id string, document []byte) (*definition.Definition, error) {
	def, err := definition.Parse(document)
	if err != nil {
		return nil, err
	}
	a.catalog.Register(id, document)
	return def, nil
}

// RegisterAgentString registers a document given as a string.
func (a *AgentDoc) RegisterAgentString(id, document string) (*definition.Definition, error) {
	return a.RegisterAgent(id, []byte(document))
}

// LoadAgents loads agent documents and prompt fragments from a filesystem
// tree. Loaded fragments are consulted after any configured registry, so
// explicit fragments win over discovered ones.
func (a *AgentDoc) LoadAgents(fsys fs.FS) error {
	cat, fragments, err := catalog.Load(fsys)
	if err != nil {
		return err
	}
	for _, id := range cat.IDs() {
		source, _ := cat.Source(id)
		a.catalog.Register(id, source)
	}
	a.executor.SetFragments(prompt.ChainRegistry{a.opts.Fragments, fragments})
	return nil
}

// Agents lists the registered agent ids.
func (a *AgentDoc) Agents() []string {
	return a.catalog.IDs()
}

// Definition returns the parsed definition registered under id.
func (a *AgentDoc) Definition(id string) (*definition.Definition, error) {
	return a.catalog.Get(id)
}

// Lint parses and lints the agent registered under id.
func (a *AgentDoc) Lint(id string) ([]definition.Finding, error) {
	def, err := a.catalog.Get(id)
	if err != nil {
		return nil, err
	}
	return definition.Lint(def), nil
}

// Execute runs the agent registered under id with the given context data.
func (a *AgentDoc) Execute(ctx context.Context, id string, contextData map[string]any) (*engine.Result, error) {
	def, err := a.catalog.Get(id)
	if err != nil {
		return nil, err
	}
	return a.executor.Execute(ctx, def, contextData)
}

// Router exposes the underlying provider router for advanced use.
func (a *AgentDoc) Router() *provider.Router { return a.router }

// Registry exposes the underlying model registry for advanced use.
func (a *AgentDoc) Registry() *provider.Registry { return a.registry }
