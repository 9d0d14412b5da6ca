package toolset

import "github.com/danielchristiancazares/forge/internal/toolloop"

// Registry is a static, name-keyed toolloop.Registry, grounded on the
// teacher's internal/tools/registry.go map-backed lookup.
type Registry struct {
	tools map[string]toolloop.Tool
}

// NewRegistry builds a Registry from a fixed set of tools.
func NewRegistry(tools ...toolloop.Tool) *Registry {
	r := &Registry{tools: make(map[string]toolloop.Tool, len(tools))}
	for _, t := range tools {
		r.tools[t.Name()] = t
	}
	return r
}

// Lookup implements toolloop.Registry.
func (r *Registry) Lookup(name string) (toolloop.Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// List implements toolloop.Registry.
func (r *Registry) List() []toolloop.Tool {
	tools := make([]toolloop.Tool, 0, len(r.tools))
	for _, t := range r.tools {
		tools = append(tools, t)
	}
	return tools
}

// Merge returns a new Registry combining r with others, with later
// registries' tools taking precedence on name collisions. Used to
// splice internal/mcpclient's discovered tools in alongside the
// built-in set.
func Merge(registries ...toolloop.Registry) *Registry {
	merged := &Registry{tools: make(map[string]toolloop.Tool)}
	for _, reg := range registries {
		lister, ok := reg.(*Registry)
		if !ok {
			continue
		}
		for name, t := range lister.tools {
			merged.tools[name] = t
		}
	}
	return merged
}
