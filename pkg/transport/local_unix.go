package transport

import (
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// ErrFDPassingUnsupported is returned by SendFD/RecvFD on a connection kind
// that cannot carry ancillary data.
var ErrFDPassingUnsupported = errors.New("transport: file descriptor passing not supported on this connection")

// LocalListener accepts clients over a Unix-domain stream socket at path,
// the transport used by colocated clients that need shared-memory buffer
// attachment via SCM_RIGHTS.
type LocalListener struct {
	ln   *net.UnixListener
	path string
}

// ListenLocal binds a Unix-domain listener at path, removing any stale
// socket file left behind by a previous, uncleanly terminated daemon.
func ListenLocal(path string) (*LocalListener, error) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("remove stale socket %s: %w", path, err)
	}
	addr := &net.UnixAddr{Name: path, Net: "unix"}
	ln, err := net.ListenUnix("unix", addr)
	if err != nil {
		return nil, fmt.Errorf("listen unix %s: %w", path, err)
	}
	if err := os.Chmod(path, 0o660); err != nil {
		ln.Close()
		return nil, fmt.Errorf("chmod socket %s: %w", path, err)
	}
	return &LocalListener{ln: ln, path: path}, nil
}

// Accept blocks until a client connects.
func (l *LocalListener) Accept() (Conn, error) {
	c, err := l.ln.AcceptUnix()
	if err != nil {
		return nil, err
	}
	return &localConn{UnixConn: c}, nil
}

// Fd returns the listener's raw socket descriptor for the daemon's
// readiness loop to poll directly (spec §4.9).
func (l *LocalListener) Fd() (int, error) {
	raw, err := l.ln.SyscallConn()
	if err != nil {
		return -1, fmt.Errorf("syscall conn: %w", err)
	}
	var fd int
	if err := raw.Control(func(sysfd uintptr) { fd = int(sysfd) }); err != nil {
		return -1, fmt.Errorf("raw control: %w", err)
	}
	return fd, nil
}

// Close closes the listener and removes the socket file.
func (l *LocalListener) Close() error {
	err := l.ln.Close()
	if rmErr := os.Remove(l.path); rmErr != nil && !os.IsNotExist(rmErr) {
		if err == nil {
			err = rmErr
		}
	}
	return err
}

// localConn wraps a Unix-domain stream connection with SCM_RIGHTS fd
// passing, modeled on how the standard net package's own internals drive
// unix.Sendmsg/Recvmsg, since neither dittofs nor the rest of the example
// pack passes descriptors.
type localConn struct {
	*net.UnixConn
}

func (c *localConn) Kind() Kind { return KindLocal }

// Fd returns the connection's raw socket descriptor for use with
// unix.Poll. The daemon loop must not close the returned value directly.
func (c *localConn) Fd() (int, error) {
	raw, err := c.UnixConn.SyscallConn()
	if err != nil {
		return -1, fmt.Errorf("syscall conn: %w", err)
	}
	var fd int
	if err := raw.Control(func(sysfd uintptr) { fd = int(sysfd) }); err != nil {
		return -1, fmt.Errorf("raw control: %w", err)
	}
	return fd, nil
}

// SendFD sends a single zero-length control message carrying fd.
func (c *localConn) SendFD(fd int) error {
	rights := unix.UnixRights(fd)
	raw, err := c.UnixConn.SyscallConn()
	if err != nil {
		return fmt.Errorf("syscall conn: %w", err)
	}
	var sendErr error
	err = raw.Control(func(sysfd uintptr) {
		sendErr = unix.Sendmsg(int(sysfd), nil, rights, nil, 0)
	})
	if err != nil {
		return fmt.Errorf("raw control: %w", err)
	}
	if sendErr != nil {
		return fmt.Errorf("sendmsg: %w", sendErr)
	}
	return nil
}

// RecvFD receives one file descriptor from ancillary data, returning -1 if
// none was attached to the next readable datagram.
func (c *localConn) RecvFD() (int, error) {
	raw, err := c.UnixConn.SyscallConn()
	if err != nil {
		return -1, fmt.Errorf("syscall conn: %w", err)
	}

	oob := make([]byte, unix.CmsgSpace(4))
	var n, oobn int
	var recvErr error
	err = raw.Read(func(sysfd uintptr) bool {
		n, oobn, _, _, recvErr = unix.Recvmsg(int(sysfd), nil, oob, 0)
		return true
	})
	if err != nil {
		return -1, fmt.Errorf("raw read: %w", err)
	}
	if recvErr != nil {
		if recvErr == syscall.EAGAIN {
			return -1, nil
		}
		return -1, fmt.Errorf("recvmsg: %w", recvErr)
	}
	_ = n
	if oobn == 0 {
		return -1, nil
	}

	cmsgs, err := unix.ParseSocketControlMessage(oob[:oobn])
	if err != nil {
		return -1, fmt.Errorf("parse control message: %w", err)
	}
	for _, cmsg := range cmsgs {
		fds, err := unix.ParseUnixRights(&cmsg)
		if err != nil {
			continue
		}
		if len(fds) > 0 {
			return fds[0], nil
		}
	}
	return -1, nil
}
