// Package session tracks per-connection state for live device links.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"firestige.xyz/strix/internal/jtt1078"
)

// State models the connection lifecycle. Closed is terminal.
type State uint8

const (
	StateConnected State = iota // waiting for a frame boundary
	StateDecoding               // a complete frame is being processed
	StateResyncing              // framing error, buffer dropped
	StateClosed                 // transport EOF or read error
)

func (s State) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateDecoding:
		return "decoding"
	case StateResyncing:
		return "resyncing"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// Session is the registry's record for one live connection.
//
// DeviceID and Channel are sticky: they are taken from the first decoded
// frame and never overwritten, even if later frames on the same connection
// carry a different channel. Devices are not supposed to multiplex channels
// on one link, and keeping the first value makes the reporter's output
// stable; this is a deliberate policy, not an oversight.
type Session struct {
	ID          string
	RemoteAddr  string
	ConnectedAt time.Time

	Packets  uint64
	Bytes    uint64
	DeviceID string
	Channel  uint8
	State    State
}

// Registry holds every live session, keyed by remote address. All methods
// are safe for concurrent use by connection goroutines and the reporter.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Register creates the session record for a freshly accepted connection.
func (r *Registry) Register(addr string) *Session {
	s := &Session{
		ID:          uuid.NewString(),
		RemoteAddr:  addr,
		ConnectedAt: time.Now(),
		State:       StateConnected,
	}
	r.mu.Lock()
	r.sessions[addr] = s
	r.mu.Unlock()
	return s
}

// OnFrame accounts one decoded frame against the session. The first frame
// also pins the session's device identity (see Session).
func (r *Registry) OnFrame(addr string, frame *jtt1078.Frame, frameLen int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[addr]
	if !ok {
		return // already unregistered, drop silently
	}
	s.Packets++
	s.Bytes += uint64(frameLen)
	if s.DeviceID == "" {
		s.DeviceID = frame.DeviceID
		s.Channel = frame.Channel
	}
}

// SetState records a lifecycle transition. Transitions on removed sessions
// are ignored.
func (r *Registry) SetState(addr string, state State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[addr]; ok {
		s.State = state
	}
}

// Unregister removes the session. The record must not be mutated afterwards;
// OnFrame and SetState on a removed address are no-ops.
func (r *Registry) Unregister(addr string) {
	r.mu.Lock()
	delete(r.sessions, addr)
	r.mu.Unlock()
}

// Count returns the number of live sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Snapshot returns copies of every live session for reporting.
func (r *Registry) Snapshot() []Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, *s)
	}
	return out
}

// Get returns a copy of one session.
func (r *Registry) Get(addr string) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.sessions[addr]; ok {
		return *s, true
	}
	return Session{}, false
}
