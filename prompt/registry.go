package prompt

// Registry resolves shared fragment names to template text. Implementations
// are supplied by the caller; the renderer never reads storage directly.
type Registry interface {
	Fragment(name string) (string, bool)
}

// MapRegistry is an immutable in-memory Registry backed by a plain map.
type MapRegistry map[string]string

// Fragment implements Registry.
func (r MapRegistry) Fragment(name string) (string, bool) {
	text, ok := r[name]
	return text, ok
}

// EmptyRegistry resolves nothing. Useful when templates use no includes.
var EmptyRegistry Registry = MapRegistry{}

// ChainRegistry consults registries in order; the first match wins. Nil
// entries are skipped.
type ChainRegistry []Registry

// Fragment implements Registry.
func (c ChainRegistry) Fragment(name string) (string, bool) {
	for _, r := range c {
		if r == nil {
			continue
		}
		if text, ok := r.Fragment(name); ok {
			return text, true
		}
	}
	return "", false
}
