package session

import (
	"net"
	"time"

	"github.com/semadraw/semadraw/pkg/transport"
)

// fakeConn is a minimal transport.Conn stub for tests that don't exercise
// real I/O.
type fakeConn struct{}

func (fakeConn) Read(b []byte) (int, error)  { return 0, nil }
func (fakeConn) Write(b []byte) (int, error) { return len(b), nil }
func (fakeConn) Close() error                { return nil }
func (fakeConn) LocalAddr() net.Addr         { return nil }
func (fakeConn) RemoteAddr() net.Addr        { return nil }
func (fakeConn) SetDeadline(time.Time) error { return nil }
func (fakeConn) SetReadDeadline(time.Time) error  { return nil }
func (fakeConn) SetWriteDeadline(time.Time) error { return nil }
func (fakeConn) Kind() transport.Kind        { return transport.KindLocal }
func (fakeConn) SendFD(fd int) error         { return nil }
func (fakeConn) RecvFD() (int, error)        { return -1, nil }
func (fakeConn) Fd() (int, error)            { return -1, nil }
