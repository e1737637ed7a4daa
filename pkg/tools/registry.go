package tools

import (
	"errors"
	"fmt"
)

// Registry is the catalogue of tool definitions. It is populated at start
// up and read-only afterwards; concurrent reads need no locking.
type Registry struct {
	defs   []Definition
	byName map[string]int
}

// NewRegistry creates a registry holding defs in order. It fails on the
// first invalid or duplicate definition.
func NewRegistry(defs ...Definition) (*Registry, error) {
	r := &Registry{byName: make(map[string]int, len(defs))}
	for _, d := range defs {
		if err := r.Register(d); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a definition. Names must be unique and non-empty; field
// names must be unique within a definition; enums apply only to strings.
func (r *Registry) Register(d Definition) error {
	if r.byName == nil {
		r.byName = make(map[string]int)
	}
	if d.Name == "" {
		return errors.New("tool name is required")
	}
	if _, exists := r.byName[d.Name]; exists {
		return fmt.Errorf("tool %q already registered", d.Name)
	}

	seen := make(map[string]bool, len(d.Fields))
	for i, f := range d.Fields {
		if f.Name == "" {
			return fmt.Errorf("tool %q: fields[%d]: name is required", d.Name, i)
		}
		if seen[f.Name] {
			return fmt.Errorf("tool %q: duplicate field %q", d.Name, f.Name)
		}
		seen[f.Name] = true
		if !f.Type.valid() {
			return fmt.Errorf("tool %q: field %q: unsupported type %q", d.Name, f.Name, f.Type)
		}
		if len(f.Enum) > 0 && f.Type != FieldString {
			return fmt.Errorf("tool %q: field %q: enum requires type string", d.Name, f.Name)
		}
	}

	r.byName[d.Name] = len(r.defs)
	r.defs = append(r.defs, d)
	return nil
}

// Lookup returns the definition registered under name.
func (r *Registry) Lookup(name string) (Definition, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Definition{}, false
	}
	return r.defs[i], true
}

// Definitions returns the catalogue in registration order.
func (r *Registry) Definitions() []Definition {
	out := make([]Definition, len(r.defs))
	copy(out, r.defs)
	return out
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.defs))
	for i, d := range r.defs {
		names[i] = d.Name
	}
	return names
}
