// Package transport provides the two connection kinds a SemaDraw daemon
// accepts clients over: a Unix-domain local transport capable of passing
// shared-memory file descriptors, and a TCP network transport that carries
// SDCS buffers inline.
//
// Listener shape and the accept-loop/semaphore pattern are grounded on the
// teacher's internal/adapter/nfs/portmap.Server; local transport fd passing
// has no teacher analogue and is grounded directly on golang.org/x/sys/unix
// (already an indirect dependency of the teacher) via unix.Sendmsg/Recvmsg.
package transport

import "net"

// Kind distinguishes the two transports, since they carry different
// maximum body sizes (spec §4.3) and only local supports fd passing.
type Kind int

const (
	KindLocal Kind = iota
	KindNetwork
)

func (k Kind) String() string {
	if k == KindLocal {
		return "local"
	}
	return "network"
}

// MaxBodyBytes returns the IPC body size ceiling for this transport kind.
func (k Kind) MaxBodyBytes() int {
	if k == KindLocal {
		return 8 << 10
	}
	return 64 << 10
}

// Conn is a single accepted client connection. Local connections support
// fd passing via SendFD/RecvFD; network connections return
// ErrFDPassingUnsupported from those methods.
type Conn interface {
	net.Conn
	Kind() Kind
	// SendFD sends fd as ancillary data in a message of its own that
	// carries no payload bytes. Only supported on KindLocal connections.
	SendFD(fd int) error
	// RecvFD receives a file descriptor from the ancillary data of the next
	// incoming message, or -1 if none was attached. Only supported on
	// KindLocal connections.
	RecvFD() (int, error)
	// Fd returns the underlying socket descriptor, for the daemon's
	// readiness loop to poll directly (spec §4.9).
	Fd() (int, error)
}
