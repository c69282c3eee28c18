// Package tool defines the tool abstraction and the registry that maps
// exposed tool names to their handlers and derived schemas.
package tool

import (
	"context"

	"github.com/modelctx/mcp-go/pkg/schema"
)

// NameSeparator joins a toolset's namespace and an operation name into the
// exposed tool name, e.g. "calculator_divide".
const NameSeparator = "_"

// Handler executes one tool call with decoded arguments. Returning an error
// reports a domain-level failure: the engine maps it to an application
// error response and the session stays alive. Handlers must be safe to call
// concurrently; the registry imposes no locking on execution.
type Handler func(ctx context.Context, args map[string]interface{}) (interface{}, error)

// Tool is one operation within a toolset: its unqualified name, a
// human-readable description, the derived parameter schema and the handler.
type Tool struct {
	Name        string
	Description string
	Schema      *schema.InputSchema
	Handler     Handler
}

// Toolset groups related handlers under one namespace. Each tool's exposed
// name is the namespace joined to the operation name with NameSeparator, so
// namespaces keep independently developed toolsets from colliding.
type Toolset interface {
	Namespace() string
	Tools() []Tool
}

// staticToolset is the trivial Toolset for handlers that don't warrant a
// dedicated type.
type staticToolset struct {
	namespace string
	tools     []Tool
}

func (s *staticToolset) Namespace() string { return s.namespace }
func (s *staticToolset) Tools() []Tool     { return s.tools }

// NewToolset builds a Toolset from a namespace and a fixed list of tools.
func NewToolset(namespace string, tools ...Tool) Toolset {
	return &staticToolset{namespace: namespace, tools: tools}
}
