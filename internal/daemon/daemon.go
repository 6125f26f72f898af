// Package daemon implements the single-threaded, readiness-based event
// loop described in spec §4.9/§5: one goroutine multiplexes the local and
// (optional) network listeners, every connected session's transport, and
// each output's scheduler-driven composition pass.
//
// Grounded on the teacher's internal/adapter/nfs/portmap.Server (a Server
// struct owning listeners, a shutdown flag, and a blocking Serve(ctx)),
// restructured from a goroutine-per-connection accept loop into a single
// unix.Poll-driven readiness loop so that all registry/damage/session
// mutation happens on one goroutine, per spec §5's concurrency model.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"github.com/semadraw/semadraw/internal/idgen"
	"github.com/semadraw/semadraw/internal/metrics"
	"github.com/semadraw/semadraw/pkg/clipboard"
	"github.com/semadraw/semadraw/pkg/compositor"
	"github.com/semadraw/semadraw/pkg/ipc"
	"github.com/semadraw/semadraw/pkg/registry"
	"github.com/semadraw/semadraw/pkg/sdcs"
	"github.com/semadraw/semadraw/pkg/session"
	"github.com/semadraw/semadraw/pkg/transport"
)

// Config bounds the daemon's admission control and readiness-loop pacing.
type Config struct {
	LocalSocketPath string
	// NetworkAddr is a "host:port" to additionally listen on; empty
	// disables the network transport entirely.
	NetworkAddr string
	MaxClients  int
	// PollTimeout bounds how long one readiness wait may block, so
	// scheduler-driven composition and backend event draining still run
	// promptly even with no client traffic (spec §4.9: "Timeout ≤ 100ms").
	PollTimeout          time.Duration
	ProtocolVersionMajor uint16
	ProtocolVersionMinor uint16
	// ValidateOnAttach runs the SDCS validator over every attached buffer
	// before it becomes a surface's pending slot.
	ValidateOnAttach bool
}

// DefaultConfig returns the spec's documented defaults.
func DefaultConfig() Config {
	return Config{
		LocalSocketPath:      transport.DefaultLocalSocketPath,
		MaxClients:           256,
		PollTimeout:          100 * time.Millisecond,
		ProtocolVersionMajor: 1,
		ProtocolVersionMinor: 0,
		ValidateOnAttach:     true,
	}
}

// Daemon owns every listener, session, and output for one running
// instance.
type Daemon struct {
	cfg     Config
	local   *transport.LocalListener
	network *transport.NetworkListener

	sessions  *session.Manager
	registry  *registry.Registry
	clipboard *clipboard.Board
	outputs   []*compositor.Orchestrator

	logger  *slog.Logger
	metrics *metrics.DaemonMetrics

	nextClientID uint32
	shuttingDown bool
}

// SetMetrics attaches a metrics collector; nil disables collection.
// Must be called before Run.
func (d *Daemon) SetMetrics(m *metrics.DaemonMetrics) { d.metrics = m }

// ConnectedClients implements metrics.StatSource.
func (d *Daemon) ConnectedClients() int { return d.sessions.Count() }

// LiveSurfaces implements metrics.StatSource.
func (d *Daemon) LiveSurfaces() int { return d.registry.Count() }

// New binds the configured listeners and returns a ready-to-run Daemon.
func New(cfg Config, logger *slog.Logger) (*Daemon, error) {
	if logger == nil {
		logger = slog.Default()
	}
	local, err := transport.ListenLocal(cfg.LocalSocketPath)
	if err != nil {
		return nil, fmt.Errorf("listen local transport: %w", err)
	}
	var network *transport.NetworkListener
	if cfg.NetworkAddr != "" {
		network, err = transport.ListenNetwork(cfg.NetworkAddr)
		if err != nil {
			local.Close()
			return nil, fmt.Errorf("listen network transport: %w", err)
		}
	}
	return &Daemon{
		cfg:       cfg,
		local:     local,
		network:   network,
		sessions:  session.NewManager(),
		registry:  registry.New(),
		clipboard: clipboard.New(),
		logger:    logger,
	}, nil
}

// Registry exposes the daemon's surface registry, e.g. for a metrics
// collector to read surface counts.
func (d *Daemon) Registry() *registry.Registry { return d.registry }

// AddOutput registers an already-constructed Orchestrator (its Backend
// already wired to a concrete presentation layer) and starts it.
func (d *Daemon) AddOutput(o *compositor.Orchestrator) error {
	if err := o.Start(); err != nil {
		return fmt.Errorf("start output: %w", err)
	}
	d.outputs = append(d.outputs, o)
	return nil
}

func (d *Daemon) now() time.Time { return time.Now() }

// mapSharedBuffer reads the passed shared-memory fd's contents into a
// private byte slice. The fd is mapped read-only and then immediately
// unmapped and closed; unlike a long-lived zero-copy mapping tied to the
// slot's lifetime, this copies once at attach time, trading the spec's
// preferred zero-copy behavior for a BufferSlot that stays a plain []byte
// with no mapping to unwind on destroy or commit (see DESIGN.md).
func (d *Daemon) mapSharedBuffer(fd int, offset, length uint64) ([]byte, error) {
	f := os.NewFile(uintptr(fd), "semadraw-shm")
	defer f.Close()

	mapping, err := unix.Mmap(int(f.Fd()), int64(offset), int(length), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap shared buffer: %w", err)
	}
	defer unix.Munmap(mapping)

	out := make([]byte, len(mapping))
	copy(out, mapping)
	return out, nil
}

func (d *Daemon) validateSDCS(data []byte) error {
	if !d.cfg.ValidateOnAttach {
		return nil
	}
	return sdcs.Validate(data)
}

// Run drives the readiness loop until ctx is canceled or any output's
// backend requests shutdown and all sessions have drained.
func (d *Daemon) Run(ctx context.Context) error {
	defer d.teardown()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		now := d.now()
		d.metrics.SetSurfacesLive(d.registry.Count())
		for outputIdx, o := range d.outputs {
			if o.NeedsComposite(now, d.registry.GetCompositionOrder()) {
				start := d.now()
				result, err := o.Composite(ctx, now)
				if err != nil {
					d.logger.Error("composite pass failed", "error", err)
				} else {
					label := fmt.Sprintf("output-%d", outputIdx)
					d.metrics.ObserveFrame(label, result.SurfacesRendered, d.now().Sub(start))
				}
			}
			alive, err := o.PollBackend()
			if err != nil {
				d.logger.Error("poll backend events failed", "error", err)
			}
			if !alive {
				d.beginShutdown()
			}
			for _, ke := range o.KeyEvents() {
				d.forwardKeyEvent(ke)
			}
			for _, me := range o.MouseEvents() {
				d.forwardMouseEvent(me)
			}
		}

		if d.shuttingDown && d.sessions.Count() == 0 {
			return nil
		}

		targets, pollFds := d.buildPollSet()
		if len(pollFds) == 0 {
			continue
		}
		n, err := unix.Poll(pollFds, int(d.cfg.PollTimeout.Milliseconds()))
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return fmt.Errorf("poll: %w", err)
		}
		if n <= 0 {
			continue
		}

		for i, pf := range pollFds {
			if pf.Revents == 0 {
				continue
			}
			switch t := targets[i]; t.kind {
			case targetLocalListener:
				d.acceptOn(d.local)
			case targetNetworkListener:
				d.acceptOn(d.network)
			case targetSession:
				d.serviceSession(t.sess)
			}
		}
	}
}

type targetKind int

const (
	targetLocalListener targetKind = iota
	targetNetworkListener
	targetSession
)

type pollTarget struct {
	kind targetKind
	sess *session.Session
}

// acceptor is satisfied by both *transport.LocalListener and
// *transport.NetworkListener.
type acceptor interface {
	Accept() (transport.Conn, error)
}

func (d *Daemon) buildPollSet() ([]pollTarget, []unix.PollFd) {
	var targets []pollTarget
	var fds []unix.PollFd

	if !d.shuttingDown {
		if fd, err := d.local.Fd(); err == nil {
			targets = append(targets, pollTarget{kind: targetLocalListener})
			fds = append(fds, unix.PollFd{Fd: int32(fd), Events: unix.POLLIN})
		}
		if d.network != nil {
			if fd, err := d.network.Fd(); err == nil {
				targets = append(targets, pollTarget{kind: targetNetworkListener})
				fds = append(fds, unix.PollFd{Fd: int32(fd), Events: unix.POLLIN})
			}
		}
	}

	for _, sess := range d.sessions.All() {
		fd, err := sess.Conn.Fd()
		if err != nil {
			continue
		}
		targets = append(targets, pollTarget{kind: targetSession, sess: sess})
		fds = append(fds, unix.PollFd{Fd: int32(fd), Events: unix.POLLIN})
	}
	return targets, fds
}

func (d *Daemon) acceptOn(l acceptor) {
	conn, err := l.Accept()
	if err != nil {
		d.logger.Error("accept failed", "error", err)
		return
	}
	if d.shuttingDown || !admit(d.sessions.Count(), d.cfg.MaxClients) {
		d.metrics.ClientRejected("max_clients")
		conn.Close()
		return
	}
	d.nextClientID++
	sess := session.NewSession(d.nextClientID, conn, d.now())
	if err := d.sessions.Create(sess); err != nil {
		d.logger.Error("register session failed", "error", err)
		conn.Close()
		return
	}
	d.metrics.ClientConnected()
	d.logger.Info("client connected", "client_id", sess.ID, "trace_id", idgen.TraceID())
}

// serviceSession reads and dispatches as many complete framed messages as
// are currently buffered, then returns to the poll loop (spec §4.9). A
// short read deadline stands in for true non-blocking reads over
// net.Conn: a frame that hasn't fully arrived yet simply waits for the
// next readiness tick instead of stalling the whole loop.
func (d *Daemon) serviceSession(sess *session.Session) {
	sess.Conn.SetReadDeadline(d.now().Add(d.cfg.PollTimeout))
	for {
		frame, err := ipc.ReadFrame(context.Background(), sess.Conn, sess.Transport.MaxBodyBytes())
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				return
			}
			d.terminateSession(sess)
			return
		}

		out := d.dispatch(sess, frame)
		for _, r := range out.replies {
			if r.Header.Type == ipc.MsgErrorReply {
				if er, err := ipc.DecodeErrorReply(r.Body); err == nil {
					d.metrics.IPCError(er.Code.String())
				}
			}
			if err := ipc.WriteFrame(sess.Conn, r.Header.Type, r.Header.Flags, r.Body); err != nil {
				d.terminateSession(sess)
				return
			}
		}
		if out.terminate {
			d.terminateSession(sess)
			return
		}
	}
}

func (d *Daemon) terminateSession(sess *session.Session) {
	sess.State = session.StateDisconnecting
	d.registry.RemoveClientSurfaces(sess.ID)
	for _, id := range sess.SurfaceIDs {
		for _, o := range d.outputs {
			o.ForgetSurface(id)
		}
	}
	d.clipboard.ReleaseOwner(sess.ID)
	sess.Conn.Close()
	d.sessions.Remove(sess.ID)
	d.metrics.ClientDisconnected()
}

func (d *Daemon) forwardKeyEvent(ke compositor.KeyEvent) {
	surf, err := d.registry.Get(ke.SurfaceID)
	if err != nil {
		return
	}
	sess, err := d.sessions.Get(surf.Owner)
	if err != nil {
		return
	}
	body := ipc.KeyPress{
		SurfaceID: ke.SurfaceID,
		KeyCode:   ke.KeyCode,
		Modifiers: ke.Modifiers,
		Pressed:   ke.Pressed,
	}.Encode()
	if err := ipc.WriteFrame(sess.Conn, ipc.MsgKeyPress, 0, body); err != nil {
		d.terminateSession(sess)
	}
}

func (d *Daemon) forwardMouseEvent(me compositor.MouseEvent) {
	surf, err := d.registry.Get(me.SurfaceID)
	if err != nil {
		return
	}
	sess, err := d.sessions.Get(surf.Owner)
	if err != nil {
		return
	}
	body := ipc.MouseEvent{
		SurfaceID: me.SurfaceID,
		X:         me.X,
		Y:         me.Y,
		Button:    me.Button,
		EventType: me.EventType,
		Modifiers: me.Modifiers,
	}.Encode()
	if err := ipc.WriteFrame(sess.Conn, ipc.MsgMouseEvent, 0, body); err != nil {
		d.terminateSession(sess)
	}
}

// beginShutdown initiates cooperative shutdown (spec §5): listeners close
// immediately so no new client is admitted, while already-connected
// sessions continue draining until Run's main loop observes zero sessions
// remaining.
func (d *Daemon) beginShutdown() {
	if d.shuttingDown {
		return
	}
	d.shuttingDown = true
	d.local.Close()
	if d.network != nil {
		d.network.Close()
	}
}

// teardown releases every remaining session and output when Run returns,
// whether from cooperative shutdown or context cancellation.
func (d *Daemon) teardown() {
	for _, sess := range d.sessions.All() {
		sess.Conn.Close()
		d.sessions.Remove(sess.ID)
	}
	for _, o := range d.outputs {
		if err := o.Stop(); err != nil {
			d.logger.Error("stop output failed", "error", err)
		}
	}
	if !d.shuttingDown {
		d.local.Close()
		if d.network != nil {
			d.network.Close()
		}
	}
}
