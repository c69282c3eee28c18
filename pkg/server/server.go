// Package server implements the JSON-RPC engine of the MCP tool server: the
// protocol state machine that maps one inbound message to zero or one
// outbound message, and the process-wide state (tool registry, session
// registry) shared by every transport.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	mcperrors "github.com/modelctx/mcp-go/pkg/errors"
	"github.com/modelctx/mcp-go/pkg/logging"
	"github.com/modelctx/mcp-go/pkg/observability"
	"github.com/modelctx/mcp-go/pkg/protocol"
	"github.com/modelctx/mcp-go/pkg/schema"
	"github.com/modelctx/mcp-go/pkg/tool"
)

// Server is the transport-agnostic engine. It owns the read-only tool
// registry and the concurrent-safe session registry; transports feed it raw
// messages via HandleMessage. Constructed once at startup and passed
// explicitly to every transport.
type Server struct {
	name         string
	version      string
	description  string
	instructions string

	registry *tool.Registry
	sessions *SessionRegistry

	logger  logging.Logger
	metrics observability.Metrics
	tracer  trace.Tracer

	// Initialization state, set by the initialize handshake
	initializedLock sync.RWMutex
	initialized     bool
	clientInfo      *protocol.ClientInfo
}

// Option configures a Server
type Option func(*Server)

// WithName sets the server name reported by initialize
func WithName(name string) Option {
	return func(s *Server) { s.name = name }
}

// WithVersion sets the server version reported by initialize
func WithVersion(version string) Option {
	return func(s *Server) { s.version = version }
}

// WithDescription sets the server description reported by initialize
func WithDescription(description string) Option {
	return func(s *Server) { s.description = description }
}

// WithInstructions sets the usage instructions reported by initialize
func WithInstructions(instructions string) Option {
	return func(s *Server) { s.instructions = instructions }
}

// WithLogger sets the structured logger
func WithLogger(logger logging.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithMetrics sets the metrics recorder
func WithMetrics(metrics observability.Metrics) Option {
	return func(s *Server) { s.metrics = metrics }
}

// WithTracer sets the tracer used to open a span per handled request
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Server) { s.tracer = tracer }
}

// WithSessionIdleTimeout bounds how long an SSE session may stay idle
// before the reaper removes it.
func WithSessionIdleTimeout(timeout time.Duration) Option {
	return func(s *Server) { s.sessions.idleTimeout = timeout }
}

// New creates a server around a fully populated registry. Registration must
// be complete: the registry is treated as read-only from here on.
func New(registry *tool.Registry, options ...Option) *Server {
	s := &Server{
		name:     "mcp-go-server",
		version:  "1.0.0",
		registry: registry,
		sessions: NewSessionRegistry(DefaultSessionIdleTimeout),
		logger:   logging.New(nil, nil).WithFields(logging.String("component", "server")),
		metrics:  observability.NopMetrics(),
		tracer:   noop.NewTracerProvider().Tracer("server"),
	}

	for _, option := range options {
		option(s)
	}

	return s
}

// Sessions returns the session registry shared with the SSE transport.
func (s *Server) Sessions() *SessionRegistry {
	return s.sessions
}

// Registry returns the tool registry.
func (s *Server) Registry() *tool.Registry {
	return s.registry
}

// HandleMessage processes one raw JSON-RPC message and returns the
// serialized response, or nil when no response is due (notifications,
// including malformed ones). Errors never escape this boundary: every
// fault on an id-bearing request becomes an error response with the same
// id, echoed byte-for-byte.
func (s *Server) HandleMessage(ctx context.Context, data []byte) []byte {
	var req protocol.Request
	if err := json.Unmarshal(data, &req); err != nil {
		id := protocol.ExtractID(data)
		s.logger.Warn("failed to parse message", logging.ErrorField(err))
		s.metrics.RecordRequest("parse", observability.StatusError, 0)
		return s.encodeResponse(protocol.NewErrorResponse(id, protocol.ParseError, "Parse error", nil))
	}

	if req.JSONRPCMessage.JSONRPC != protocol.JSONRPCVersion || req.Method == "" {
		if req.IsNotification() {
			s.logger.Warn("discarding invalid notification envelope")
			return nil
		}
		s.metrics.RecordRequest("invalid", observability.StatusError, 0)
		return s.encodeResponse(protocol.NewErrorResponse(req.ID, protocol.InvalidRequest, "Invalid Request", nil))
	}

	if req.IsNotification() {
		if err := s.handleNotification(ctx, &req); err != nil {
			// Notifications never produce responses, even on error.
			s.logger.Warn("notification handling failed",
				logging.String("method", req.Method),
				logging.ErrorField(err))
		}
		return nil
	}

	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "mcp.request",
		trace.WithAttributes(attribute.String("rpc.method", req.Method)))
	defer span.End()

	result, err := s.dispatch(ctx, &req)

	status := observability.StatusSuccess
	var resp *protocol.Response
	if err != nil {
		status = observability.StatusError
		protoErr := mcperrors.ToProtocolError(err)
		span.SetStatus(codes.Error, protoErr.Message)
		span.SetAttributes(attribute.Int("rpc.error_code", int(protoErr.Code)))
		resp = &protocol.Response{
			JSONRPCMessage: protocol.JSONRPCMessage{JSONRPC: protocol.JSONRPCVersion},
			ID:             req.ID,
			Error:          protoErr,
		}
	} else {
		resp, err = protocol.NewResponse(req.ID, result)
		if err != nil {
			status = observability.StatusError
			s.logger.Error("failed to encode result",
				logging.String("method", req.Method),
				logging.ErrorField(err))
			resp = protocol.NewErrorResponse(req.ID, protocol.InternalError, "Internal error", nil)
		}
	}
	s.metrics.RecordRequest(req.Method, status, time.Since(start))

	return s.encodeResponse(resp)
}

// dispatch routes an id-bearing request to a built-in method or the tool
// registry.
func (s *Server) dispatch(ctx context.Context, req *protocol.Request) (interface{}, error) {
	switch req.Method {
	case protocol.MethodInitialize:
		return s.handleInitialize(ctx, req.Params)
	case protocol.MethodPing:
		return s.handlePing(ctx, req.Params)
	case protocol.MethodListTools:
		return s.handleListTools(ctx)
	case protocol.MethodCallTool:
		return s.handleCallTool(ctx, req.Params)
	default:
		return nil, mcperrors.UnknownMethod(req.Method)
	}
}

func (s *Server) handleNotification(ctx context.Context, req *protocol.Request) error {
	switch req.Method {
	case protocol.MethodInitialized:
		s.initializedLock.Lock()
		s.initialized = true
		s.initializedLock.Unlock()
		s.logger.Info("client completed initialization")
		return nil
	default:
		return mcperrors.UnknownMethod(req.Method)
	}
}

func (s *Server) handleInitialize(_ context.Context, params json.RawMessage) (interface{}, error) {
	var initParams protocol.InitializeParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &initParams); err != nil {
			return nil, mcperrors.DecodeError("params", "invalid initialize params")
		}
	}

	s.initializedLock.Lock()
	s.clientInfo = initParams.ClientInfo
	s.initialized = true
	s.initializedLock.Unlock()

	if initParams.ClientInfo != nil {
		s.logger.Info("initializing connection",
			logging.String("client", initParams.ClientInfo.Name),
			logging.String("client_version", initParams.ClientInfo.Version))
	}

	return &protocol.InitializeResult{
		ProtocolVersion: protocol.ProtocolRevision,
		Capabilities: protocol.ServerCapabilities{
			Tools: &protocol.ToolsCapability{},
		},
		ServerInfo: protocol.ServerInfo{
			Name:        s.name,
			Version:     s.version,
			Description: s.description,
		},
		Instructions: s.instructions,
	}, nil
}

func (s *Server) handlePing(_ context.Context, params json.RawMessage) (interface{}, error) {
	var pingParams protocol.PingParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &pingParams); err != nil {
			return nil, mcperrors.DecodeError("params", "invalid ping params")
		}
	}

	timestamp := pingParams.Timestamp
	if timestamp == 0 {
		timestamp = time.Now().UnixMilli()
	}

	return &protocol.PingResult{Timestamp: timestamp}, nil
}

func (s *Server) handleListTools(_ context.Context) (interface{}, error) {
	return &protocol.ListToolsResult{Tools: s.registry.List()}, nil
}

func (s *Server) handleCallTool(ctx context.Context, params json.RawMessage) (interface{}, error) {
	if len(params) == 0 {
		return nil, mcperrors.MissingParams(protocol.MethodCallTool)
	}

	var callParams protocol.CallToolParams
	if err := json.Unmarshal(params, &callParams); err != nil {
		return nil, mcperrors.DecodeError("params", "expected an object with name and arguments")
	}

	t, ok := s.registry.Lookup(callParams.Name)
	if !ok {
		return nil, mcperrors.ToolNotFound(callParams.Name)
	}

	args, err := t.Schema.Decode(callParams.Arguments)
	if err != nil {
		return nil, err
	}

	span := trace.SpanFromContext(ctx)
	span.SetAttributes(attribute.String("mcp.tool", t.Name))

	start := time.Now()
	result, err := s.invoke(ctx, t, args)
	duration := time.Since(start)

	if err != nil {
		s.metrics.RecordToolCall(t.Name, observability.StatusError, duration)
		return nil, err
	}
	s.metrics.RecordToolCall(t.Name, observability.StatusSuccess, duration)

	encoded, err := schema.Encode(result)
	if err != nil {
		return nil, mcperrors.Internal(protocol.MethodCallTool, err)
	}
	return encoded, nil
}

// invoke runs a handler and converts both declared failures and panics into
// structured errors so no fault ever terminates the connection.
func (s *Server) invoke(ctx context.Context, t tool.Tool, args map[string]interface{}) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("tool handler panicked",
				logging.String("tool", t.Name),
				logging.Any("panic", r))
			result = nil
			err = mcperrors.Internal(t.Name, fmt.Errorf("handler panic: %v", r))
		}
	}()

	result, herr := t.Handler(ctx, args)
	if herr != nil {
		s.logger.Debug("tool reported failure",
			logging.String("tool", t.Name),
			logging.ErrorField(herr))
		return nil, mcperrors.ToolFailed(t.Name, herr)
	}
	return result, nil
}

// encodeResponse serializes a response envelope. Serialization of a
// well-formed envelope is total; a failure here is a programming error and
// is answered with a hand-built internal error body.
func (s *Server) encodeResponse(resp *protocol.Response) []byte {
	data, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error("failed to marshal response", logging.ErrorField(err))
		return []byte(`{"jsonrpc":"2.0","id":null,"error":{"code":-32603,"message":"Internal error"}}`)
	}
	return data
}

// Initialized reports whether the initialize handshake completed.
func (s *Server) Initialized() bool {
	s.initializedLock.RLock()
	defer s.initializedLock.RUnlock()
	return s.initialized
}

// ClientInfo returns the client identity captured during initialize, or nil.
func (s *Server) ClientInfo() *protocol.ClientInfo {
	s.initializedLock.RLock()
	defer s.initializedLock.RUnlock()
	return s.clientInfo
}
