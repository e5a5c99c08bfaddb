package catalog

import (
	"fmt"
	"sort"
	"sync"

	"github.com/hupe1980/agentdoc/definition"
	"github.com/hupe1980/agentdoc/internal/util"
)

// ErrNotFound is returned when no document is registered under an id.
var ErrNotFound = fmt.Errorf("agent not found")

// Catalog maps agent ids to definition documents. Parsing is cached by the
// document's content hash, so re-registering identical content is free and
// registering changed content invalidates naturally.
type Catalog struct {
	mu      sync.RWMutex
	sources map[string][]byte
	parsed  sync.Map // content hash -> *definition.Definition
}

// New creates an empty Catalog.
func New() *Catalog {
	return &Catalog{
		sources: make(map[string][]byte),
	}
}

// Register stores a document under id, replacing any previous document.
func (c *Catalog) Register(id string, document []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sources[id] = document
}

// RegisterString stores a document given as a string.
func (c *Catalog) RegisterString(id, document string) {
	c.Register(id, []byte(document))
}

// Get returns the parsed definition for id. The first Get after a Register
// parses the document; later calls return the cached result. Concurrent
// first callers may both parse; the cache keeps one result.
func (c *Catalog) Get(id string) (*definition.Definition, error) {
	c.mu.RLock()
	source, ok := c.sources[id]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}

	key := util.HashBytes(source)
	if cached, ok := c.parsed.Load(key); ok {
		return cached.(*definition.Definition), nil
	}

	def, err := definition.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", id, err)
	}

	actual, _ := c.parsed.LoadOrStore(key, def)
	return actual.(*definition.Definition), nil
}

// Source returns the raw document registered under id.
func (c *Catalog) Source(id string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	source, ok := c.sources[id]
	return source, ok
}

// IDs returns every registered agent id, sorted.
func (c *Catalog) IDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]string, 0, len(c.sources))
	for id := range c.sources {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of registered documents.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sources)
}
