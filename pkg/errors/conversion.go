package errors

import (
	"github.com/modelctx/mcp-go/pkg/protocol"
)

// ToProtocolError converts any error into a JSON-RPC error object. MCPErrors
// keep their code and structured data; everything else becomes an internal
// error so no raw fault ever unwinds past the engine boundary.
func ToProtocolError(err error) *protocol.Error {
	if err == nil {
		return nil
	}

	if mcpErr, ok := AsMCPError(err); ok {
		return &protocol.Error{
			Code:    protocol.ErrorCode(mcpErr.Code()),
			Message: mcpErr.Message(),
			Data:    mcpErr.Data(),
		}
	}

	return &protocol.Error{
		Code:    protocol.InternalError,
		Message: err.Error(),
	}
}
