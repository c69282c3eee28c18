// Package mcp is the root of an MCP tool-server runtime for Go.
//
// The module turns a set of typed tool definitions into a JSON-RPC 2.0
// server speaking the Model Context Protocol: it derives JSON Schemas from
// declarative parameter descriptions, validates and decodes incoming
// arguments, dispatches to handlers, and serves the result over stdio or
// Server-Sent Events.
//
// # Overview
//
// The runtime consists of several sub-packages:
//
//   - pkg/protocol: JSON-RPC envelopes and MCP message types
//   - pkg/schema: declarative input schemas, JSON Schema emission, and
//     argument decoding
//   - pkg/tool: tool and toolset definitions plus the name registry
//   - pkg/server: the transport-agnostic JSON-RPC engine and session state
//   - pkg/transport: stdio and SSE transports
//   - pkg/errors: the structured error taxonomy
//   - pkg/logging: structured logging
//   - pkg/observability: Prometheus metrics and OpenTelemetry tracing
//
// # Serving a toolset
//
//	registry := tool.NewRegistry()
//	if err := registry.Register(toolsets.Calculator()); err != nil {
//	    log.Fatal(err)
//	}
//
//	s := server.New(registry,
//	    server.WithName("calculator-server"),
//	    server.WithVersion("1.0.0"),
//	)
//
//	stdio := transport.NewStdioTransport(s, transport.StdioConfig{})
//	if err := stdio.Serve(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//
// Registration is append-only and finishes before serving starts; after
// that the registry is read-only and safe for concurrent lookups without
// locking.
package mcp
