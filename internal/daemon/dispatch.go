package daemon

import (
	"fmt"

	"github.com/semadraw/semadraw/pkg/ipc"
	"github.com/semadraw/semadraw/pkg/registry"
	"github.com/semadraw/semadraw/pkg/session"
)

// outcome is what the daemon should do with a session after dispatching one
// request.
type outcome struct {
	replies   []ipc.Frame
	terminate bool
}

func reply(msgType ipc.MsgType, body []byte) ipc.Frame {
	return ipc.Frame{Header: ipc.Header{Type: msgType, Length: uint32(len(body))}, Body: body}
}

func errorReply(code ipc.ErrorCode) ipc.Frame {
	return reply(ipc.MsgErrorReply, ipc.ErrorReply{Code: code}.Encode())
}

// dispatch applies one request frame to sess, mutating d's shared registry,
// clipboard, and session state, and returns the reply frame(s) to write
// back plus whether the session should be torn down (spec §4.4).
func (d *Daemon) dispatch(sess *session.Session, frame ipc.Frame) outcome {
	if sess.State == session.StateAwaitingHello {
		if frame.Header.Type != ipc.MsgHello {
			return outcome{replies: []ipc.Frame{errorReply(ipc.ErrProtocolError)}, terminate: true}
		}
		return d.handleHello(sess, frame)
	}

	switch frame.Header.Type {
	case ipc.MsgCreateSurface:
		return d.handleCreateSurface(sess, frame)
	case ipc.MsgDestroySurface:
		return d.handleDestroySurface(sess, frame)
	case ipc.MsgAttachBuffer:
		return d.handleAttachBuffer(sess, frame)
	case ipc.MsgAttachBufferInline:
		return d.handleAttachBufferInline(sess, frame)
	case ipc.MsgCommit:
		return d.handleCommit(sess, frame)
	case ipc.MsgSetVisible:
		return d.handleSetVisible(sess, frame)
	case ipc.MsgSetZOrder:
		return d.handleSetZOrder(sess, frame)
	case ipc.MsgSetPosition:
		return d.handleSetPosition(sess, frame)
	case ipc.MsgSync:
		return d.handleSync(sess, frame)
	case ipc.MsgClipboardSet:
		return d.handleClipboardSet(sess, frame)
	case ipc.MsgClipboardRequest:
		return d.handleClipboardRequest(sess, frame)
	case ipc.MsgDisconnect:
		return outcome{terminate: true}
	default:
		return outcome{replies: []ipc.Frame{errorReply(ipc.ErrInvalidMessage)}}
	}
}

func (d *Daemon) handleHello(sess *session.Session, frame ipc.Frame) outcome {
	req, err := ipc.DecodeHello(frame.Body)
	if err != nil {
		return outcome{replies: []ipc.Frame{errorReply(ipc.ErrProtocolError)}, terminate: true}
	}
	if req.VersionMajor != d.cfg.ProtocolVersionMajor {
		return outcome{replies: []ipc.Frame{errorReply(ipc.ErrProtocolError)}, terminate: true}
	}
	sess.State = session.StateConnected
	body := ipc.HelloReply{
		VersionMajor: d.cfg.ProtocolVersionMajor,
		VersionMinor: d.cfg.ProtocolVersionMinor,
		ClientID:     sess.ID,
		ServerFlags:  0,
	}.Encode()
	return outcome{replies: []ipc.Frame{reply(ipc.MsgHelloReply, body)}}
}

func (d *Daemon) handleCreateSurface(sess *session.Session, frame ipc.Frame) outcome {
	req, err := ipc.DecodeCreateSurface(frame.Body)
	if err != nil {
		return outcome{replies: []ipc.Frame{errorReply(ipc.ErrInvalidMessage)}}
	}
	pixels := uint64(req.Width) * uint64(req.Height)
	if sess.Usage.WouldExceed(sess.Limits, 1, pixels, 0, 0) {
		return outcome{replies: []ipc.Frame{errorReply(ipc.ErrResourceLimit)}}
	}
	id := d.registry.CreateSurface(sess.ID, req.Width, req.Height)
	sess.AddSurface(id, pixels)
	return outcome{replies: []ipc.Frame{reply(ipc.MsgSurfaceCreated, ipc.SurfaceCreated{ID: id}.Encode())}}
}

func (d *Daemon) handleDestroySurface(sess *session.Session, frame ipc.Frame) outcome {
	req, err := ipc.DecodeDestroySurface(frame.Body)
	if err != nil {
		return outcome{replies: []ipc.Frame{errorReply(ipc.ErrInvalidMessage)}}
	}
	if err := d.destroyOwnedSurface(sess, req.ID); err != nil {
		return outcome{replies: []ipc.Frame{errorReply(codeFor(err))}}
	}
	return outcome{}
}

func (d *Daemon) destroyOwnedSurface(sess *session.Session, id uint32) error {
	surf, err := d.registry.Get(id)
	if err != nil {
		return fmt.Errorf("%w", registry.ErrNotFound)
	}
	if surf.Owner != sess.ID {
		return fmt.Errorf("%w", registry.ErrNotOwner)
	}
	pixels := surf.Pixels()
	if err := d.registry.DestroySurface(id); err != nil {
		return err
	}
	sess.RemoveSurface(id, pixels)
	for _, o := range d.outputs {
		o.ForgetSurface(id)
	}
	return nil
}

func (d *Daemon) handleAttachBuffer(sess *session.Session, frame ipc.Frame) outcome {
	req, err := ipc.DecodeAttachBuffer(frame.Body)
	if err != nil {
		return outcome{replies: []ipc.Frame{errorReply(ipc.ErrInvalidMessage)}}
	}
	if !sess.OwnsSurface(req.ID) {
		return outcome{replies: []ipc.Frame{errorReply(ipc.ErrPermissionDenied)}}
	}
	if sess.Usage.WouldExceed(sess.Limits, 0, 0, req.Length, req.ShmSize) {
		return outcome{replies: []ipc.Frame{errorReply(ipc.ErrResourceLimit)}}
	}
	fd, err := sess.Conn.RecvFD()
	if err != nil || fd < 0 {
		return outcome{replies: []ipc.Frame{errorReply(ipc.ErrInvalidMessage)}}
	}
	data, err := d.mapSharedBuffer(fd, req.Offset, req.Length)
	if err != nil {
		return outcome{replies: []ipc.Frame{errorReply(ipc.ErrInvalidBuffer)}}
	}
	if err := d.validateSDCS(data); err != nil {
		return outcome{replies: []ipc.Frame{errorReply(ipc.ErrValidationFailed)}}
	}
	if err := d.registry.AttachBuffer(req.ID, data); err != nil {
		return outcome{replies: []ipc.Frame{errorReply(codeFor(err))}}
	}
	sess.Usage.SDCSBytes += req.Length
	sess.Usage.ShmBytes += req.ShmSize
	return outcome{}
}

func (d *Daemon) handleAttachBufferInline(sess *session.Session, frame ipc.Frame) outcome {
	req, err := ipc.DecodeAttachBufferInline(frame.Body)
	if err != nil {
		return outcome{replies: []ipc.Frame{errorReply(ipc.ErrInvalidMessage)}}
	}
	if !sess.OwnsSurface(req.ID) {
		return outcome{replies: []ipc.Frame{errorReply(ipc.ErrPermissionDenied)}}
	}
	if sess.Usage.WouldExceed(sess.Limits, 0, 0, uint64(req.Length), 0) {
		return outcome{replies: []ipc.Frame{errorReply(ipc.ErrResourceLimit)}}
	}
	payload, err := ipc.ReadInlinePayload(sess.Conn, req.Length, sess.Transport.MaxBodyBytes())
	if err != nil {
		return outcome{terminate: true}
	}
	if err := d.validateSDCS(payload); err != nil {
		return outcome{replies: []ipc.Frame{errorReply(ipc.ErrValidationFailed)}}
	}
	if err := d.registry.AttachBuffer(req.ID, payload); err != nil {
		return outcome{replies: []ipc.Frame{errorReply(codeFor(err))}}
	}
	sess.Usage.SDCSBytes += uint64(req.Length)
	return outcome{}
}

func (d *Daemon) handleCommit(sess *session.Session, frame ipc.Frame) outcome {
	req, err := ipc.DecodeCommit(frame.Body)
	if err != nil {
		return outcome{replies: []ipc.Frame{errorReply(ipc.ErrInvalidMessage)}}
	}
	if !sess.OwnsSurface(req.ID) {
		return outcome{replies: []ipc.Frame{errorReply(ipc.ErrPermissionDenied)}}
	}
	frameNumber, err := d.registry.Commit(req.ID)
	if err != nil {
		return outcome{replies: []ipc.Frame{errorReply(codeFor(err))}}
	}
	for _, o := range d.outputs {
		o.MarkSurfaceFullDamage(req.ID)
	}
	body := ipc.FrameComplete{ID: req.ID, FrameNumber: frameNumber, TimestampNs: uint64(d.now().UnixNano())}.Encode()
	return outcome{replies: []ipc.Frame{reply(ipc.MsgFrameComplete, body)}}
}

func (d *Daemon) handleSetVisible(sess *session.Session, frame ipc.Frame) outcome {
	req, err := ipc.DecodeSetVisible(frame.Body)
	if err != nil {
		return outcome{replies: []ipc.Frame{errorReply(ipc.ErrInvalidMessage)}}
	}
	if !sess.OwnsSurface(req.ID) {
		return outcome{replies: []ipc.Frame{errorReply(ipc.ErrPermissionDenied)}}
	}
	if err := d.registry.SetVisible(req.ID, req.Visible); err != nil {
		return outcome{replies: []ipc.Frame{errorReply(codeFor(err))}}
	}
	return outcome{}
}

func (d *Daemon) handleSetZOrder(sess *session.Session, frame ipc.Frame) outcome {
	req, err := ipc.DecodeSetZOrder(frame.Body)
	if err != nil {
		return outcome{replies: []ipc.Frame{errorReply(ipc.ErrInvalidMessage)}}
	}
	if !sess.OwnsSurface(req.ID) {
		return outcome{replies: []ipc.Frame{errorReply(ipc.ErrPermissionDenied)}}
	}
	if err := d.registry.SetZOrder(req.ID, req.Z); err != nil {
		return outcome{replies: []ipc.Frame{errorReply(codeFor(err))}}
	}
	return outcome{}
}

func (d *Daemon) handleSetPosition(sess *session.Session, frame ipc.Frame) outcome {
	req, err := ipc.DecodeSetPosition(frame.Body)
	if err != nil {
		return outcome{replies: []ipc.Frame{errorReply(ipc.ErrInvalidMessage)}}
	}
	if !sess.OwnsSurface(req.ID) {
		return outcome{replies: []ipc.Frame{errorReply(ipc.ErrPermissionDenied)}}
	}
	if err := d.registry.SetPosition(req.ID, req.X, req.Y); err != nil {
		return outcome{replies: []ipc.Frame{errorReply(codeFor(err))}}
	}
	return outcome{}
}

// handleSync replies immediately: every request preceding this one in the
// frame has already been fully applied by the time dispatch reaches here,
// since the daemon processes one session's frames strictly in order
// (spec §5).
func (d *Daemon) handleSync(sess *session.Session, frame ipc.Frame) outcome {
	req, err := ipc.DecodeSync(frame.Body)
	if err != nil {
		return outcome{replies: []ipc.Frame{errorReply(ipc.ErrInvalidMessage)}}
	}
	return outcome{replies: []ipc.Frame{reply(ipc.MsgSyncDone, ipc.SyncDone{SyncID: req.SyncID}.Encode())}}
}

func (d *Daemon) handleClipboardSet(sess *session.Session, frame ipc.Frame) outcome {
	req, err := ipc.DecodeClipboardSet(frame.Body)
	if err != nil {
		return outcome{replies: []ipc.Frame{errorReply(ipc.ErrInvalidMessage)}}
	}
	if int(req.Length) > sess.Transport.MaxBodyBytes() {
		return outcome{replies: []ipc.Frame{errorReply(ipc.ErrResourceLimit)}}
	}
	data, err := ipc.ReadInlinePayload(sess.Conn, req.Length, sess.Transport.MaxBodyBytes())
	if err != nil {
		return outcome{terminate: true}
	}
	d.clipboard.Set(req.Selection, sess.ID, data)
	return outcome{}
}

func (d *Daemon) handleClipboardRequest(sess *session.Session, frame ipc.Frame) outcome {
	req, err := ipc.DecodeClipboardRequest(frame.Body)
	if err != nil {
		return outcome{replies: []ipc.Frame{errorReply(ipc.ErrInvalidMessage)}}
	}
	_, data, ok := d.clipboard.Get(req.Selection)
	if !ok {
		return outcome{replies: []ipc.Frame{errorReply(ipc.ErrInvalidMessage)}}
	}
	body := ipc.ClipboardData{Selection: req.Selection, Length: uint32(len(data))}.Encode()
	body = append(body, data...)
	return outcome{replies: []ipc.Frame{reply(ipc.MsgClipboardData, body)}}
}

// codeFor maps a registry/session error to the IPC error code a client
// sees (spec §4.3).
func codeFor(err error) ipc.ErrorCode {
	switch {
	case err == nil:
		return ipc.ErrNone
	case isErr(err, registry.ErrNotFound):
		return ipc.ErrInvalidSurface
	case isErr(err, registry.ErrNoPendingBuffer):
		return ipc.ErrInvalidSurface
	case isErr(err, registry.ErrStaleCommit):
		return ipc.ErrInvalidBuffer
	case isErr(err, registry.ErrNotOwner):
		return ipc.ErrPermissionDenied
	default:
		return ipc.ErrInternalError
	}
}

func isErr(err, target error) bool {
	for err != nil {
		if err == target {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
