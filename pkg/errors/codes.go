package errors

// JSON-RPC 2.0 standard error codes. These mirror the protocol package so
// errors can be constructed without importing it.
const (
	// CodeParseError indicates invalid JSON was received by the server
	CodeParseError int = -32700

	// CodeInvalidRequest indicates the JSON sent is not a valid Request object
	CodeInvalidRequest int = -32600

	// CodeMethodNotFound indicates the method does not exist / is not available
	CodeMethodNotFound int = -32601

	// CodeInvalidParams indicates invalid method parameter(s)
	CodeInvalidParams int = -32602

	// CodeInternalError indicates an internal JSON-RPC error
	CodeInternalError int = -32603
)

// Application-reserved and internal error codes
const (
	// Tool outcomes (-32000 to -32009)
	CodeToolFailed int = -32000 // Tool reported a domain-level failure

	// Configuration errors (-32010 to -32019). These are detected at
	// startup and abort the process before any transport serves.
	CodeDuplicateTool   int = -32010 // Two tools registered under one name
	CodeInvalidToolSpec int = -32011 // Tool declaration is malformed

	// Transport errors (-32500 to -32599)
	CodeTransportError  int = -32500 // Generic transport delivery failure
	CodeSessionNotFound int = -32501 // Delivery target session unknown/closed
)
