package gesture

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// State is the tracker connection state.
type State int

const (
	StateDisabled State = iota
	StateWaiting
	StateTracking
	StateUnavailable
)

// Status is shown next to the gesture toggle.
type Status struct {
	State  State
	Reason string
}

func (s Status) String() string {
	switch s.State {
	case StateDisabled:
		return "Disabled"
	case StateWaiting:
		return "Waiting"
	case StateTracking:
		return "Tracking"
	case StateUnavailable:
		return "Unavailable: " + s.Reason
	}
	return "Unknown"
}

// Source accepts one tracker connection at a time and keeps the newest
// landmark frame for the frame tick to drain. It is safe for concurrent use.
type Source struct {
	log      *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	status  Status
	enabled bool
	conn    *websocket.Conn
	latest  Frame
	fresh   bool
}

// NewSource returns a disabled source.
func NewSource(log *slog.Logger) *Source {
	return &Source{
		log: log,
		upgrader: websocket.Upgrader{
			// The tracker page is served from the same local origin or
			// opened from disk.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Status reports the current connection state.
func (s *Source) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Enabled reports whether frames are accepted.
func (s *Source) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// SetEnabled toggles gesture input. Disabling drops the tracker connection
// and any pending frame.
func (s *Source) SetEnabled(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if on == s.enabled {
		return
	}
	s.enabled = on
	s.fresh = false
	if on {
		s.status = Status{State: StateWaiting}
		return
	}
	s.status = Status{State: StateDisabled}
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
}

// Latest returns the newest frame received since the previous call.
func (s *Source) Latest() (Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.fresh {
		return Frame{}, false
	}
	s.fresh = false
	return s.latest, true
}

// ServeHTTP upgrades a tracker connection and reads frames until it closes.
func (s *Source) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	switch {
	case !s.enabled:
		s.mu.Unlock()
		http.Error(w, "gesture input disabled", http.StatusServiceUnavailable)
		return
	case s.conn != nil:
		s.mu.Unlock()
		http.Error(w, "tracker already connected", http.StatusConflict)
		return
	}
	s.mu.Unlock()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.fail(fmt.Errorf("upgrade: %w", err))
		return
	}

	s.mu.Lock()
	if s.conn != nil || !s.enabled {
		s.mu.Unlock()
		conn.Close()
		return
	}
	s.conn = conn
	s.status = Status{State: StateTracking}
	s.mu.Unlock()
	s.log.Info("gesture tracker connected", "remote", r.RemoteAddr)

	s.read(conn)
}

func (s *Source) read(conn *websocket.Conn) {
	defer conn.Close()
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.disconnected(conn, Status{State: StateWaiting})
			} else {
				s.disconnected(conn, Status{State: StateUnavailable, Reason: "tracker connection lost"})
				s.log.Warn("gesture tracker read failed", "err", err)
			}
			return
		}
		var f Frame
		if err := json.Unmarshal(msg, &f); err != nil {
			s.log.Debug("dropping malformed gesture frame", "err", err)
			continue
		}
		s.mu.Lock()
		if s.conn == conn {
			s.latest, s.fresh = f, true
		}
		s.mu.Unlock()
	}
}

func (s *Source) disconnected(conn *websocket.Conn, st Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != conn {
		return
	}
	s.conn = nil
	s.fresh = false
	if s.enabled {
		s.status = st
	}
}

func (s *Source) fail(err error) {
	s.mu.Lock()
	if s.enabled {
		s.status = Status{State: StateUnavailable, Reason: err.Error()}
	}
	s.mu.Unlock()
	s.log.Warn("gesture tracker unavailable", "err", err)
}
