package errors

import "fmt"

// DuplicateTool reports two registrations colliding on one exposed name.
// This is a startup configuration error and is fatal: the server must not
// begin serving with an ambiguous registry.
func DuplicateTool(name string) MCPError {
	return NewErrorf(CodeDuplicateTool, CategoryConfiguration, SeverityCritical,
		"duplicate tool name %q", name)
}

// InvalidToolSpec reports a malformed tool declaration (missing name,
// duplicate parameter, unsupported parameter kind). Detected at
// registration time, before serving.
func InvalidToolSpec(tool, reason string) MCPError {
	return NewErrorf(CodeInvalidToolSpec, CategoryConfiguration, SeverityCritical,
		"invalid tool spec for %q: %s", tool, reason)
}

// DecodeError reports that an arguments object failed to decode against a
// tool's schema. Path names the offending field (dotted for nested fields).
func DecodeError(path, reason string) MCPError {
	return NewErrorf(CodeInvalidParams, CategoryValidation, SeverityError,
		"invalid argument %q: %s", path, reason).
		WithData(map[string]string{"path": path})
}

// MissingParams reports an id-bearing request whose params are absent when
// the method requires them.
func MissingParams(method string) MCPError {
	return NewErrorf(CodeInvalidParams, CategoryValidation, SeverityError,
		"missing params for %s", method)
}

// ToolNotFound reports a tools/call naming an unregistered tool.
func ToolNotFound(name string) MCPError {
	return NewErrorf(CodeMethodNotFound, CategoryProtocol, SeverityError,
		"tool not found: %s", name)
}

// UnknownMethod reports a request for a method the engine does not route.
func UnknownMethod(method string) MCPError {
	return NewErrorf(CodeMethodNotFound, CategoryProtocol, SeverityError,
		"method not found: %s", method)
}

// ToolFailed wraps a tool's declared domain failure. The failure message is
// surfaced verbatim as the JSON-RPC error message; this is an expected
// protocol outcome, not a server fault.
func ToolFailed(name string, cause error) MCPError {
	return WrapError(cause, CodeToolFailed, cause.Error(), CategoryTool, SeverityWarning).
		WithData(map[string]string{"tool": name})
}

// Internal reports an unexpected fault (handler panic, marshal failure)
// caught at the dispatch boundary.
func Internal(operation string, cause error) MCPError {
	return WrapError(cause, CodeInternalError,
		fmt.Sprintf("internal error in %s", operation), CategoryInternal, SeverityError)
}

// SessionNotFound reports a delivery attempt to an unknown or closed
// session. The delivery is abandoned; the server keeps running.
func SessionNotFound(id string) MCPError {
	return NewErrorf(CodeSessionNotFound, CategoryTransport, SeverityWarning,
		"session not found: %s", id)
}

// TransportError reports a transport-level delivery or I/O failure.
func TransportError(transport, operation string, cause error) MCPError {
	return WrapError(cause, CodeTransportError,
		fmt.Sprintf("%s transport error during %s", transport, operation),
		CategoryTransport, SeverityError)
}
