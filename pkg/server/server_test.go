package server

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelctx/mcp-go/pkg/logging"
	"github.com/modelctx/mcp-go/pkg/protocol"
	"github.com/modelctx/mcp-go/pkg/schema"
	"github.com/modelctx/mcp-go/pkg/tool"
	"github.com/modelctx/mcp-go/pkg/tool/toolsets"
)

func newTestServer(t *testing.T, extra ...tool.Toolset) *Server {
	t.Helper()

	registry := tool.NewRegistry()
	require.NoError(t, registry.Register(toolsets.Calculator()))
	for _, ts := range extra {
		require.NoError(t, registry.Register(ts))
	}

	return New(registry, WithLogger(logging.Nop()))
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *protocol.Error `json:"error"`
}

func handle(t *testing.T, s *Server, raw string) *rpcResponse {
	t.Helper()
	data := s.HandleMessage(context.Background(), []byte(raw))
	require.NotNil(t, data, "expected a response for %s", raw)

	var resp rpcResponse
	require.NoError(t, json.Unmarshal(data, &resp))
	assert.Equal(t, "2.0", resp.JSONRPC)
	return &resp
}

func TestCallToolSuccess(t *testing.T) {
	s := newTestServer(t)

	resp := handle(t, s, `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"calculator_add","arguments":{"a":2,"b":3}}}`)
	require.Nil(t, resp.Error)
	assert.Equal(t, `1`, string(resp.ID))
	assert.Equal(t, `5`, string(resp.Result))
}

func TestCallToolDomainFailure(t *testing.T) {
	s := newTestServer(t)

	resp := handle(t, s, `{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"calculator_divide","arguments":{"a":1,"b":0}}}`)
	require.NotNil(t, resp.Error)
	assert.Equal(t, protocol.ToolExecutionError, resp.Error.Code)
	assert.Equal(t, "cannot divide by zero", resp.Error.Message)

	// The engine survives domain failures; the next call works.
	next := handle(t, s, `{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"calculator_divide","arguments":{"a":7,"b":2}}}`)
	require.Nil(t, next.Error)
	assert.Equal(t, `3.5`, string(next.Result))
}

func TestCallToolUnknownTool(t *testing.T) {
	s := newTestServer(t)

	resp := handle(t, s, `{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"calculator_modulo","arguments":{}}}`)
	require.NotNil(t, resp.Error)
	assert.Equal(t, protocol.MethodNotFound, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "calculator_modulo")
}

func TestCallToolInvalidArguments(t *testing.T) {
	s := newTestServer(t)

	resp := handle(t, s, `{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"calculator_add","arguments":{"a":"two","b":3}}}`)
	require.NotNil(t, resp.Error)
	assert.Equal(t, protocol.InvalidParams, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, `"a"`)
}

func TestCallToolMissingParams(t *testing.T) {
	s := newTestServer(t)

	resp := handle(t, s, `{"jsonrpc":"2.0","id":5,"method":"tools/call"}`)
	require.NotNil(t, resp.Error)
	assert.Equal(t, protocol.InvalidParams, resp.Error.Code)
}

func TestCallToolPanicBecomesInternalError(t *testing.T) {
	panicky := tool.NewToolset("broken", tool.Tool{
		Name:        "explode",
		Description: "always panics",
		Schema:      schema.MustNew(),
		Handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			panic("kaboom")
		},
	})
	s := newTestServer(t, panicky)

	resp := handle(t, s, `{"jsonrpc":"2.0","id":6,"method":"tools/call","params":{"name":"broken_explode"}}`)
	require.NotNil(t, resp.Error)
	assert.Equal(t, protocol.InternalError, resp.Error.Code)

	// The panic must not poison the engine.
	next := handle(t, s, `{"jsonrpc":"2.0","id":7,"method":"ping"}`)
	assert.Nil(t, next.Error)
}

func TestInitialize(t *testing.T) {
	registry := tool.NewRegistry()
	require.NoError(t, registry.Register(toolsets.Calculator()))
	s := New(registry,
		WithName("calc"),
		WithVersion("2.1.0"),
		WithInstructions("add numbers responsibly"),
		WithLogger(logging.Nop()),
	)

	resp := handle(t, s, `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","clientInfo":{"name":"test-client","version":"0.1.0"}}}`)
	require.Nil(t, resp.Error)

	var result protocol.InitializeResult
	require.NoError(t, json.Unmarshal(resp.Result, &result))
	assert.Equal(t, protocol.ProtocolRevision, result.ProtocolVersion)
	assert.NotNil(t, result.Capabilities.Tools)
	assert.Equal(t, "calc", result.ServerInfo.Name)
	assert.Equal(t, "2.1.0", result.ServerInfo.Version)
	assert.Equal(t, "add numbers responsibly", result.Instructions)

	assert.True(t, s.Initialized())
	require.NotNil(t, s.ClientInfo())
	assert.Equal(t, "test-client", s.ClientInfo().Name)
}

func TestInitializedNotification(t *testing.T) {
	s := newTestServer(t)
	assert.False(t, s.Initialized())

	data := s.HandleMessage(context.Background(), []byte(`{"jsonrpc":"2.0","method":"notifications/initialized"}`))
	assert.Nil(t, data)
	assert.True(t, s.Initialized())
}

func TestListTools(t *testing.T) {
	s := newTestServer(t)

	resp := handle(t, s, `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)
	require.Nil(t, resp.Error)

	var result protocol.ListToolsResult
	require.NoError(t, json.Unmarshal(resp.Result, &result))
	require.Len(t, result.Tools, 4)
	assert.Equal(t, "calculator_add", result.Tools[0].Name)

	var inputSchema map[string]interface{}
	require.NoError(t, json.Unmarshal(result.Tools[0].InputSchema, &inputSchema))
	assert.Equal(t, "object", inputSchema["type"])
}

func TestPing(t *testing.T) {
	s := newTestServer(t)

	resp := handle(t, s, `{"jsonrpc":"2.0","id":9,"method":"ping","params":{"timestamp":12345}}`)
	require.Nil(t, resp.Error)

	var result protocol.PingResult
	require.NoError(t, json.Unmarshal(resp.Result, &result))
	assert.Equal(t, int64(12345), result.Timestamp)
}

func TestUnknownMethod(t *testing.T) {
	s := newTestServer(t)

	resp := handle(t, s, `{"jsonrpc":"2.0","id":1,"method":"resources/list"}`)
	require.NotNil(t, resp.Error)
	assert.Equal(t, protocol.MethodNotFound, resp.Error.Code)
}

func TestParseError(t *testing.T) {
	s := newTestServer(t)

	resp := handle(t, s, `{this is not json`)
	require.NotNil(t, resp.Error)
	assert.Equal(t, protocol.ParseError, resp.Error.Code)
	assert.Equal(t, `null`, string(resp.ID))
}

func TestParseErrorRecoversID(t *testing.T) {
	s := newTestServer(t)

	// Valid JSON but an invalid envelope still echoes the id.
	resp := handle(t, s, `{"id": 11, "method": ""}`)
	require.NotNil(t, resp.Error)
	assert.Equal(t, protocol.InvalidRequest, resp.Error.Code)
	assert.Equal(t, `11`, string(resp.ID))
}

func TestNotificationsNeverGetResponses(t *testing.T) {
	s := newTestServer(t)

	// Even a notification that fails internally stays silent.
	for _, raw := range []string{
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","method":"notifications/unknown"}`,
		`{"jsonrpc":"2.0","id":null,"method":"ping"}`,
	} {
		data := s.HandleMessage(context.Background(), []byte(raw))
		assert.Nil(t, data, "expected no response for %s", raw)
	}
}

func TestIDTypePreservation(t *testing.T) {
	s := newTestServer(t)

	resp := handle(t, s, `{"jsonrpc":"2.0","id":"req-abc","method":"ping"}`)
	assert.Equal(t, `"req-abc"`, string(resp.ID))

	resp = handle(t, s, `{"jsonrpc":"2.0","id":9007199254740993,"method":"ping"}`)
	assert.Equal(t, `9007199254740993`, string(resp.ID))
}

func TestConcurrentToolCalls(t *testing.T) {
	s := newTestServer(t)

	const workers = 16
	done := make(chan error, workers)
	for i := 0; i < workers; i++ {
		go func() {
			data := s.HandleMessage(context.Background(), []byte(
				`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"calculator_add","arguments":{"a":20,"b":22}}}`))

			var resp rpcResponse
			if err := json.Unmarshal(data, &resp); err != nil {
				done <- err
				return
			}
			if string(resp.Result) != `42` {
				done <- errors.New("unexpected result " + string(resp.Result))
				return
			}
			done <- nil
		}()
	}

	for i := 0; i < workers; i++ {
		assert.NoError(t, <-done)
	}
}
