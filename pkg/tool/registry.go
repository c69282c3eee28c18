package tool

import (
	mcperrors "github.com/modelctx/mcp-go/pkg/errors"
	"github.com/modelctx/mcp-go/pkg/protocol"
)

// Registry owns the mapping from exposed tool name to tool. Registration is
// append-only and must finish before the server starts serving; after that
// the registry is read-only, so lookups need no locking.
type Registry struct {
	order  []string
	byName map[string]Tool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]Tool),
	}
}

// Register adds every tool of a toolset under its namespaced name. A
// duplicate name or a malformed tool declaration is a configuration error;
// callers treat it as fatal since it is detected before serving. On error
// the registry is left unchanged.
func (r *Registry) Register(ts Toolset) error {
	namespace := ts.Namespace()
	tools := ts.Tools()

	staged := make([]Tool, 0, len(tools))
	seen := make(map[string]bool, len(tools))
	for _, t := range tools {
		if t.Name == "" {
			return mcperrors.InvalidToolSpec(namespace, "tool with empty name")
		}
		if t.Handler == nil {
			return mcperrors.InvalidToolSpec(t.Name, "nil handler")
		}
		if t.Schema == nil {
			return mcperrors.InvalidToolSpec(t.Name, "nil input schema")
		}

		exposed := t.Name
		if namespace != "" {
			exposed = namespace + NameSeparator + t.Name
		}

		if seen[exposed] || r.contains(exposed) {
			return mcperrors.DuplicateTool(exposed)
		}
		seen[exposed] = true

		t.Name = exposed
		staged = append(staged, t)
	}

	for _, t := range staged {
		r.order = append(r.order, t.Name)
		r.byName[t.Name] = t
	}
	return nil
}

// Lookup returns the tool registered under the exposed name.
func (r *Registry) Lookup(name string) (Tool, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// List returns the tool catalog in registration order, ready for a
// tools/list response.
func (r *Registry) List() []protocol.Tool {
	tools := make([]protocol.Tool, 0, len(r.order))
	for _, name := range r.order {
		t := r.byName[name]
		tools = append(tools, protocol.Tool{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.Schema.JSON(),
		})
	}
	return tools
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	return len(r.order)
}

func (r *Registry) contains(name string) bool {
	_, ok := r.byName[name]
	return ok
}
