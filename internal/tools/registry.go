package tools

import (
	"fmt"
	"sort"

	"github.com/aristath/pragmas/internal/domain"
)

// Registry is an immutable name -> Tool table built once at startup.
type Registry struct {
	tools map[string]Tool
	names []string
}

// NewRegistry builds a registry. Duplicate or empty names are a configuration error.
func NewRegistry(tools ...Tool) (*Registry, error) {
	r := &Registry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		if t == nil || t.Name() == "" {
			return nil, fmt.Errorf("tool registry: tool with empty name")
		}
		if _, exists := r.tools[t.Name()]; exists {
			return nil, fmt.Errorf("tool registry: duplicate tool %q", t.Name())
		}
		r.tools[t.Name()] = t
		r.names = append(r.names, t.Name())
	}
	sort.Strings(r.names)
	return r, nil
}

// Lookup returns the named tool
func (r *Registry) Lookup(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// MustLookup returns the named tool or a DependencyMissing error
func (r *Registry) MustLookup(name string) (Tool, error) {
	t, ok := r.tools[name]
	if !ok {
		return nil, domain.NewDependencyMissingError(fmt.Sprintf("tool %q is not registered", name))
	}
	return t, nil
}

// Require verifies every named tool is registered
func (r *Registry) Require(names ...string) error {
	for _, name := range names {
		if _, err := r.MustLookup(name); err != nil {
			return err
		}
	}
	return nil
}

// Descriptor is the public description of a registered tool
type Descriptor struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Level       Level  `json:"security_level"`
}

// List returns descriptors sorted by name
func (r *Registry) List() []Descriptor {
	out := make([]Descriptor, 0, len(r.names))
	for _, name := range r.names {
		t := r.tools[name]
		out = append(out, Descriptor{Name: t.Name(), Description: t.Description(), Level: t.Level()})
	}
	return out
}
