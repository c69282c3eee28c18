package server

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	mcperrors "github.com/modelctx/mcp-go/pkg/errors"
)

// DefaultSessionIdleTimeout is how long an SSE session may go without
// traffic before the reaper removes it.
const DefaultSessionIdleTimeout = 5 * time.Minute

// sessionBufferSize bounds how many outbound messages may queue on one
// session before senders suspend.
const sessionBufferSize = 100

// Session is one connected SSE client: an opaque identifier, the push
// channel delivering outbound messages to it, and a last-activity timestamp
// for idle cleanup. The HTTP layer creates and destroys sessions; the
// engine only looks them up by id to route responses.
type Session struct {
	id string

	messages chan []byte
	done     chan struct{}

	mu         sync.Mutex
	closeOnce  sync.Once
	lastActive time.Time
}

func newSession() *Session {
	return &Session{
		id:         uuid.NewString(),
		messages:   make(chan []byte, sessionBufferSize),
		done:       make(chan struct{}),
		lastActive: time.Now(),
	}
}

// ID returns the opaque session identifier issued at connect time.
func (s *Session) ID() string {
	return s.id
}

// Send queues one serialized message for delivery on the push channel.
// Sending to a closed session fails cleanly with a session-not-found error;
// it never blocks past the session's lifetime.
func (s *Session) Send(data []byte) error {
	select {
	case <-s.done:
		return mcperrors.SessionNotFound(s.id)
	default:
	}

	select {
	case s.messages <- data:
		s.Touch()
		return nil
	case <-s.done:
		return mcperrors.SessionNotFound(s.id)
	}
}

// Messages is the push channel the transport drains into the event stream.
func (s *Session) Messages() <-chan []byte {
	return s.messages
}

// Done is closed when the session is closed.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Touch records activity, deferring the idle reaper.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastActive = time.Now()
	s.mu.Unlock()
}

// LastActive returns the time of the session's most recent activity.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Close marks the session closed. Idempotent; pending Sends fail with a
// session-not-found error.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}

// SessionRegistry is the concurrent-safe session map shared by the HTTP
// layer (insert on connect, remove on disconnect) and the engine (lookup on
// delivery). A reader/writer lock keeps lookups from blocking writers
// indefinitely and vice versa.
type SessionRegistry struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	idleTimeout time.Duration
}

// NewSessionRegistry creates an empty registry with the given idle timeout.
func NewSessionRegistry(idleTimeout time.Duration) *SessionRegistry {
	if idleTimeout <= 0 {
		idleTimeout = DefaultSessionIdleTimeout
	}
	return &SessionRegistry{
		sessions:    make(map[string]*Session),
		idleTimeout: idleTimeout,
	}
}

// Create allocates a new session and inserts it into the map.
func (r *SessionRegistry) Create() *Session {
	s := newSession()
	r.mu.Lock()
	r.sessions[s.id] = s
	r.mu.Unlock()
	return s
}

// Get looks up a live session by id.
func (r *SessionRegistry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Remove closes a session and deletes it from the map. Removing an unknown
// id is a no-op.
func (r *SessionRegistry) Remove(id string) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	if ok {
		s.Close()
	}
}

// Len returns the number of live sessions.
func (r *SessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// IdleTimeout returns the configured idle timeout.
func (r *SessionRegistry) IdleTimeout() time.Duration {
	return r.idleTimeout
}

// StartReaper runs the idle-session sweep until ctx is cancelled. Reaped
// sessions are closed, which in turn releases their event streams.
func (r *SessionRegistry) StartReaper(ctx context.Context) {
	interval := r.idleTimeout / 2
	if interval < time.Second {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.reap()
			}
		}
	}()
}

func (r *SessionRegistry) reap() {
	cutoff := time.Now().Add(-r.idleTimeout)

	r.mu.Lock()
	var expired []*Session
	for id, s := range r.sessions {
		if s.LastActive().Before(cutoff) {
			delete(r.sessions, id)
			expired = append(expired, s)
		}
	}
	r.mu.Unlock()

	for _, s := range expired {
		s.Close()
	}
}
