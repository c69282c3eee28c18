package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/modelctx/mcp-go/pkg/logging"
	"github.com/modelctx/mcp-go/pkg/observability"
	"github.com/modelctx/mcp-go/pkg/server"
)

// SSE transport defaults
const (
	DefaultSSEPath           = "/sse"
	DefaultMessagePath       = "/message"
	DefaultKeepAliveInterval = 30 * time.Second

	// maxIngressBody bounds one POSTed message.
	maxIngressBody = 4 * 1024 * 1024
)

// SSEConfig configures an SSETransport.
type SSEConfig struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string

	// SSEPath serves the event stream (default /sse).
	SSEPath string

	// MessagePath accepts POSTed requests (default /message).
	MessagePath string

	// KeepAliveInterval is how often an idle stream emits a comment frame
	// to defeat intermediary timeouts (default 30s).
	KeepAliveInterval time.Duration

	Logger  logging.Logger
	Metrics observability.Metrics
}

// SSETransport serves the engine over HTTP: a long-lived GET stream per
// client for server-to-client delivery and a POST ingress for
// client-to-server requests. The two are correlated by the session id
// announced in the stream's first event.
type SSETransport struct {
	engine  *server.Server
	config  SSEConfig
	logger  logging.Logger
	metrics observability.Metrics
}

// NewSSETransport creates an SSE transport around an engine.
func NewSSETransport(engine *server.Server, config SSEConfig) *SSETransport {
	if config.SSEPath == "" {
		config.SSEPath = DefaultSSEPath
	}
	if config.MessagePath == "" {
		config.MessagePath = DefaultMessagePath
	}
	if config.KeepAliveInterval <= 0 {
		config.KeepAliveInterval = DefaultKeepAliveInterval
	}
	if config.Logger == nil {
		config.Logger = logging.New(nil, nil)
	}
	if config.Metrics == nil {
		config.Metrics = observability.NopMetrics()
	}

	return &SSETransport{
		engine:  engine,
		config:  config,
		logger:  config.Logger.WithFields(logging.String("component", "sse")),
		metrics: config.Metrics,
	}
}

// Handler returns the HTTP handler serving both endpoints. Exposed so the
// transport can be mounted on an existing mux or an httptest server.
func (t *SSETransport) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(t.config.SSEPath, t.handleStream)
	mux.HandleFunc(t.config.MessagePath, t.handleIngress)
	return mux
}

// Serve listens on the configured address until ctx is cancelled. The idle
// session reaper runs for the lifetime of the listener.
func (t *SSETransport) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              t.config.Addr,
		Handler:           t.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	t.engine.Sessions().StartReaper(ctx)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		t.logger.Info("listening",
			logging.String("addr", t.config.Addr),
			logging.String("sse_path", t.config.SSEPath),
			logging.String("message_path", t.config.MessagePath))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

// handleStream serves one client's event stream. The first event announces
// where and how to POST requests; every subsequent event carries one
// serialized response.
func (t *SSETransport) handleStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	session := t.engine.Sessions().Create()
	t.metrics.RecordSessionOpened()
	defer func() {
		t.engine.Sessions().Remove(session.ID())
		t.metrics.RecordSessionClosed()
	}()

	logger := t.logger.WithFields(logging.String("session_id", session.ID()))
	logger.Info("session opened")
	defer logger.Info("session closed")

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	// The endpoint event tells the client where to POST, carrying the
	// session id that correlates its requests with this stream.
	fmt.Fprintf(w, "event: endpoint\ndata: %s?sessionId=%s\n\n", t.config.MessagePath, session.ID())
	flusher.Flush()

	keepAlive := time.NewTicker(t.config.KeepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-session.Done():
			return
		case msg := <-session.Messages():
			fmt.Fprintf(w, "event: message\ndata: %s\n\n", msg)
			flusher.Flush()
			session.Touch()
		case <-keepAlive.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()
		}
	}
}

// handleIngress accepts one POSTed request, acknowledges it immediately and
// dispatches it off the request goroutine; the response travels back on the
// session's event stream.
func (t *SSETransport) handleIngress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		http.Error(w, "missing sessionId", http.StatusBadRequest)
		return
	}

	session, ok := t.engine.Sessions().Get(sessionID)
	if !ok {
		http.Error(w, "unknown session", http.StatusNotFound)
		return
	}
	session.Touch()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxIngressBody))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	if !json.Valid(body) {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusAccepted)

	// Dispatch off the HTTP goroutine so one slow tool never stalls the
	// ingress endpoint.
	go func() {
		resp := t.engine.HandleMessage(context.Background(), body)
		if resp == nil {
			return
		}
		if err := session.Send(resp); err != nil {
			t.logger.Warn("failed to deliver response",
				logging.String("session_id", sessionID),
				logging.ErrorField(err))
		}
	}()
}
