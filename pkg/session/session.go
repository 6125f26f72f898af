// Package session implements the per-client session state machine and
// resource accounting described in spec §4.4.
//
// Session identity mirrors the teacher's internal/protocol/smb/session
// package: a struct combining read-mostly identity fields with a small
// mutation-tracked accounting block, owned by a Manager that provides
// Create/Get/Remove. Unlike the teacher's sessions, a SemaDraw Session is
// only ever touched from the daemon's single event-loop goroutine (spec
// §5), so no internal mutex is required; auxiliary goroutines (metrics,
// config watch) never reach into session state.
package session

import (
	"time"

	"github.com/semadraw/semadraw/pkg/transport"
)

// State is a client session's position in the handshake/teardown state
// machine (spec §4.4).
type State int

const (
	StateAwaitingHello State = iota
	StateConnected
	StateDisconnecting
)

func (s State) String() string {
	switch s {
	case StateAwaitingHello:
		return "awaiting_hello"
	case StateConnected:
		return "connected"
	case StateDisconnecting:
		return "disconnecting"
	default:
		return "unknown"
	}
}

// Session is one connected client: its transport, handshake state,
// resource accounting, and the surfaces it owns.
type Session struct {
	ID        uint32
	Conn      transport.Conn
	Transport transport.Kind
	CreatedAt time.Time

	State  State
	Limits ResourceLimits
	Usage  Usage

	// SurfaceIDs lists surfaces owned by this session, in creation order.
	SurfaceIDs []uint32
}

// NewSession creates a session in StateAwaitingHello with default resource
// limits.
func NewSession(id uint32, conn transport.Conn, createdAt time.Time) *Session {
	return &Session{
		ID:        id,
		Conn:      conn,
		Transport: conn.Kind(),
		CreatedAt: createdAt,
		State:     StateAwaitingHello,
		Limits:    DefaultResourceLimits(),
	}
}

// AddSurface records ownership of a newly created surface and updates
// usage counters.
func (s *Session) AddSurface(id uint32, pixels uint64) {
	s.SurfaceIDs = append(s.SurfaceIDs, id)
	s.Usage.Surfaces++
	s.Usage.TotalPixels += pixels
}

// RemoveSurface drops ownership of a destroyed surface and releases its
// pixel usage. It is a no-op if id is not owned by s.
func (s *Session) RemoveSurface(id uint32, pixels uint64) {
	for i, sid := range s.SurfaceIDs {
		if sid == id {
			s.SurfaceIDs = append(s.SurfaceIDs[:i], s.SurfaceIDs[i+1:]...)
			s.Usage.Surfaces--
			if s.Usage.TotalPixels >= pixels {
				s.Usage.TotalPixels -= pixels
			}
			return
		}
	}
}

// OwnsSurface reports whether id is among this session's owned surfaces.
func (s *Session) OwnsSurface(id uint32) bool {
	for _, sid := range s.SurfaceIDs {
		if sid == id {
			return true
		}
	}
	return false
}
