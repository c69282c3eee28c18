package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelctx/mcp-go/pkg/protocol"
)

func TestToolFailedSurfacesMessageVerbatim(t *testing.T) {
	cause := errors.New("cannot divide by zero")
	err := ToolFailed("calculator_divide", cause)

	assert.Equal(t, CodeToolFailed, err.Code())
	assert.Equal(t, "cannot divide by zero", err.Message())
	assert.Equal(t, CategoryTool, err.Category())
	assert.ErrorIs(t, err, cause)
}

func TestDecodeErrorCarriesPath(t *testing.T) {
	err := DecodeError("options.limit", "expected an integer")

	assert.Equal(t, CodeInvalidParams, err.Code())
	assert.Contains(t, err.Message(), "options.limit")

	data, ok := err.Data().(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "options.limit", data["path"])
}

func TestConfigurationErrorsAreCritical(t *testing.T) {
	dup := DuplicateTool("calc_add")
	assert.Equal(t, SeverityCritical, dup.Severity())
	assert.Equal(t, CategoryConfiguration, dup.Category())

	spec := InvalidToolSpec("calc_add", "nil handler")
	assert.Equal(t, SeverityCritical, spec.Severity())
}

func TestWithDetailAndData(t *testing.T) {
	base := UnknownMethod("resources/list")
	detailed := base.WithDetail("client speaks a newer revision")

	// WithDetail returns a copy; the original is untouched.
	assert.NotContains(t, base.Error(), "newer revision")
	assert.Contains(t, detailed.Error(), "newer revision")

	withData := base.WithData(map[string]string{"method": "resources/list"})
	assert.Nil(t, base.Data())
	assert.NotNil(t, withData.Data())
}

func TestToProtocolError(t *testing.T) {
	err := ToolNotFound("nope")
	protoErr := ToProtocolError(err)
	require.NotNil(t, protoErr)
	assert.Equal(t, protocol.MethodNotFound, protoErr.Code)
	assert.Equal(t, "tool not found: nope", protoErr.Message)

	// Plain errors map to internal.
	protoErr = ToProtocolError(errors.New("boom"))
	assert.Equal(t, protocol.InternalError, protoErr.Code)

	assert.Nil(t, ToProtocolError(nil))
}

func TestIsCategoryAndIsCode(t *testing.T) {
	err := SessionNotFound("abc")
	assert.True(t, IsCategory(err, CategoryTransport))
	assert.False(t, IsCategory(err, CategoryTool))
	assert.True(t, IsCode(err, CodeSessionNotFound))
	assert.False(t, IsCode(errors.New("plain"), CodeSessionNotFound))
}
