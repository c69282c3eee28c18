// Package pkg groups the sub-packages of the MCP tool-server runtime.
//
// The sub-packages split along the protocol's layers:
//
//   - protocol: JSON-RPC 2.0 envelopes and MCP message types
//   - schema: declarative parameter schemas and argument decoding
//   - tool: tool definitions, toolsets and the name registry
//   - server: the transport-agnostic JSON-RPC engine and session state
//   - transport: stdio and SSE transports
//   - errors: the structured error taxonomy shared by all layers
//   - logging: structured logging
//   - observability: Prometheus metrics and OpenTelemetry tracing
//
// See the module root package for a usage example.
package pkg
