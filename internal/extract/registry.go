package extract

import (
	"fmt"
	"sort"
)

// Factory produces a fresh extractor instance for one resolution.
type Factory func() Extractor

// Registry maps file-type identifiers (e.g. "pdf", "txt") to extractor
// factories. It is populated once during bootstrap and treated as read-only
// afterward; adding a format means one more Register call, no caller changes.
type Registry struct {
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds or overwrites the factory for typeID. Last registration wins.
func (r *Registry) Register(typeID string, factory Factory) {
	r.factories[typeID] = factory
}

// Resolve returns a new extractor for typeID, or ErrUnsupportedType.
func (r *Registry) Resolve(typeID string) (Extractor, error) {
	factory, ok := r.factories[typeID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, typeID)
	}
	return factory(), nil
}

// Types returns the registered type identifiers in sorted order.
func (r *Registry) Types() []string {
	types := make([]string, 0, len(r.factories))
	for t := range r.factories {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
