package ipc

import "fmt"

// Hello is the sole message accepted while a session is awaiting_hello.
type Hello struct {
	VersionMajor uint16
	VersionMinor uint16
	ClientFlags  uint32
}

const helloSize = 2 + 2 + 4

func (m Hello) Encode() []byte {
	b := make([]byte, helloSize)
	byteOrder.PutUint16(b[0:2], m.VersionMajor)
	byteOrder.PutUint16(b[2:4], m.VersionMinor)
	byteOrder.PutUint32(b[4:8], m.ClientFlags)
	return b
}

func DecodeHello(b []byte) (Hello, error) {
	if len(b) != helloSize {
		return Hello{}, fmt.Errorf("%w: hello body is %d bytes, want %d", ErrMalformed, len(b), helloSize)
	}
	return Hello{
		VersionMajor: byteOrder.Uint16(b[0:2]),
		VersionMinor: byteOrder.Uint16(b[2:4]),
		ClientFlags:  byteOrder.Uint32(b[4:8]),
	}, nil
}

// HelloReply answers a successful Hello.
type HelloReply struct {
	VersionMajor uint16
	VersionMinor uint16
	ClientID     uint32
	ServerFlags  uint32
}

const helloReplySize = 2 + 2 + 4 + 4

func (m HelloReply) Encode() []byte {
	b := make([]byte, helloReplySize)
	byteOrder.PutUint16(b[0:2], m.VersionMajor)
	byteOrder.PutUint16(b[2:4], m.VersionMinor)
	byteOrder.PutUint32(b[4:8], m.ClientID)
	byteOrder.PutUint32(b[8:12], m.ServerFlags)
	return b
}

func DecodeHelloReply(b []byte) (HelloReply, error) {
	if len(b) != helloReplySize {
		return HelloReply{}, fmt.Errorf("%w: hello_reply body is %d bytes, want %d", ErrMalformed, len(b), helloReplySize)
	}
	return HelloReply{
		VersionMajor: byteOrder.Uint16(b[0:2]),
		VersionMinor: byteOrder.Uint16(b[2:4]),
		ClientID:     byteOrder.Uint32(b[4:8]),
		ServerFlags:  byteOrder.Uint32(b[8:12]),
	}, nil
}

// CreateSurface requests a new surface of the given logical size.
type CreateSurface struct {
	Width, Height uint32
	Scale         uint32
	Flags         uint32
}

const createSurfaceSize = 4 + 4 + 4 + 4

func (m CreateSurface) Encode() []byte {
	b := make([]byte, createSurfaceSize)
	byteOrder.PutUint32(b[0:4], m.Width)
	byteOrder.PutUint32(b[4:8], m.Height)
	byteOrder.PutUint32(b[8:12], m.Scale)
	byteOrder.PutUint32(b[12:16], m.Flags)
	return b
}

func DecodeCreateSurface(b []byte) (CreateSurface, error) {
	if len(b) != createSurfaceSize {
		return CreateSurface{}, fmt.Errorf("%w: create_surface body is %d bytes, want %d", ErrMalformed, len(b), createSurfaceSize)
	}
	return CreateSurface{
		Width:  byteOrder.Uint32(b[0:4]),
		Height: byteOrder.Uint32(b[4:8]),
		Scale:  byteOrder.Uint32(b[8:12]),
		Flags:  byteOrder.Uint32(b[12:16]),
	}, nil
}

// SurfaceCreated answers a successful CreateSurface.
type SurfaceCreated struct {
	ID uint32
}

func (m SurfaceCreated) Encode() []byte {
	b := make([]byte, 4)
	byteOrder.PutUint32(b, m.ID)
	return b
}

func DecodeSurfaceCreated(b []byte) (SurfaceCreated, error) {
	if len(b) != 4 {
		return SurfaceCreated{}, fmt.Errorf("%w: surface_created body is %d bytes, want 4", ErrMalformed, len(b))
	}
	return SurfaceCreated{ID: byteOrder.Uint32(b)}, nil
}

// DestroySurface requests destruction of an owned surface.
type DestroySurface struct {
	ID uint32
}

func (m DestroySurface) Encode() []byte {
	b := make([]byte, 4)
	byteOrder.PutUint32(b, m.ID)
	return b
}

func DecodeDestroySurface(b []byte) (DestroySurface, error) {
	if len(b) != 4 {
		return DestroySurface{}, fmt.Errorf("%w: destroy_surface body is %d bytes, want 4", ErrMalformed, len(b))
	}
	return DestroySurface{ID: byteOrder.Uint32(b)}, nil
}

// AttachBuffer attaches shared memory to a surface's pending slot over the
// local transport; the shared-memory file descriptor itself travels out of
// band via SCM_RIGHTS (see pkg/transport).
type AttachBuffer struct {
	ID      uint32
	ShmSize uint64
	Offset  uint64
	Length  uint64
}

const attachBufferSize = 4 + 4 + 8 + 8 + 8

func (m AttachBuffer) Encode() []byte {
	b := make([]byte, attachBufferSize)
	byteOrder.PutUint32(b[0:4], m.ID)
	byteOrder.PutUint64(b[8:16], m.ShmSize)
	byteOrder.PutUint64(b[16:24], m.Offset)
	byteOrder.PutUint64(b[24:32], m.Length)
	return b
}

func DecodeAttachBuffer(b []byte) (AttachBuffer, error) {
	if len(b) != attachBufferSize {
		return AttachBuffer{}, fmt.Errorf("%w: attach_buffer body is %d bytes, want %d", ErrMalformed, len(b), attachBufferSize)
	}
	return AttachBuffer{
		ID:      byteOrder.Uint32(b[0:4]),
		ShmSize: byteOrder.Uint64(b[8:16]),
		Offset:  byteOrder.Uint64(b[16:24]),
		Length:  byteOrder.Uint64(b[24:32]),
	}, nil
}

// AttachBufferInline carries the SDCS bytes directly in the message body
// (network transport, where fd passing is unavailable). The caller reads
// Length additional bytes immediately following this header's body.
type AttachBufferInline struct {
	ID     uint32
	Length uint32
	Flags  uint32
}

const attachBufferInlineSize = 4 + 4 + 4

func (m AttachBufferInline) Encode() []byte {
	b := make([]byte, attachBufferInlineSize)
	byteOrder.PutUint32(b[0:4], m.ID)
	byteOrder.PutUint32(b[4:8], m.Length)
	byteOrder.PutUint32(b[8:12], m.Flags)
	return b
}

func DecodeAttachBufferInline(b []byte) (AttachBufferInline, error) {
	if len(b) != attachBufferInlineSize {
		return AttachBufferInline{}, fmt.Errorf("%w: attach_buffer_inline body is %d bytes, want %d", ErrMalformed, len(b), attachBufferInlineSize)
	}
	return AttachBufferInline{
		ID:     byteOrder.Uint32(b[0:4]),
		Length: byteOrder.Uint32(b[4:8]),
		Flags:  byteOrder.Uint32(b[8:12]),
	}, nil
}

// Commit requests that a surface's pending buffer become current.
type Commit struct {
	ID uint32
}

func (m Commit) Encode() []byte {
	b := make([]byte, 4)
	byteOrder.PutUint32(b, m.ID)
	return b
}

func DecodeCommit(b []byte) (Commit, error) {
	if len(b) != 4 {
		return Commit{}, fmt.Errorf("%w: commit body is %d bytes, want 4", ErrMalformed, len(b))
	}
	return Commit{ID: byteOrder.Uint32(b)}, nil
}

// FrameComplete answers a successful Commit.
type FrameComplete struct {
	ID          uint32
	FrameNumber uint64
	TimestampNs uint64
}

const frameCompleteSize = 4 + 4 + 8 + 8

func (m FrameComplete) Encode() []byte {
	b := make([]byte, frameCompleteSize)
	byteOrder.PutUint32(b[0:4], m.ID)
	byteOrder.PutUint64(b[8:16], m.FrameNumber)
	byteOrder.PutUint64(b[16:24], m.TimestampNs)
	return b
}

func DecodeFrameComplete(b []byte) (FrameComplete, error) {
	if len(b) != frameCompleteSize {
		return FrameComplete{}, fmt.Errorf("%w: frame_complete body is %d bytes, want %d", ErrMalformed, len(b), frameCompleteSize)
	}
	return FrameComplete{
		ID:          byteOrder.Uint32(b[0:4]),
		FrameNumber: byteOrder.Uint64(b[8:16]),
		TimestampNs: byteOrder.Uint64(b[16:24]),
	}, nil
}

// SetVisible toggles a surface's visibility.
type SetVisible struct {
	ID      uint32
	Visible bool
}

func (m SetVisible) Encode() []byte {
	b := make([]byte, 8)
	byteOrder.PutUint32(b[0:4], m.ID)
	if m.Visible {
		b[4] = 1
	}
	return b
}

func DecodeSetVisible(b []byte) (SetVisible, error) {
	if len(b) != 8 {
		return SetVisible{}, fmt.Errorf("%w: set_visible body is %d bytes, want 8", ErrMalformed, len(b))
	}
	return SetVisible{ID: byteOrder.Uint32(b[0:4]), Visible: b[4] != 0}, nil
}

// SetZOrder changes a surface's stacking order.
type SetZOrder struct {
	ID uint32
	Z  int32
}

func (m SetZOrder) Encode() []byte {
	b := make([]byte, 8)
	byteOrder.PutUint32(b[0:4], m.ID)
	byteOrder.PutUint32(b[4:8], uint32(m.Z))
	return b
}

func DecodeSetZOrder(b []byte) (SetZOrder, error) {
	if len(b) != 8 {
		return SetZOrder{}, fmt.Errorf("%w: set_z_order body is %d bytes, want 8", ErrMalformed, len(b))
	}
	return SetZOrder{ID: byteOrder.Uint32(b[0:4]), Z: int32(byteOrder.Uint32(b[4:8]))}, nil
}

// SetPosition moves a surface in output coordinates.
type SetPosition struct {
	ID   uint32
	X, Y int32
}

const setPositionSize = 4 + 4 + 4

func (m SetPosition) Encode() []byte {
	b := make([]byte, setPositionSize)
	byteOrder.PutUint32(b[0:4], m.ID)
	byteOrder.PutUint32(b[4:8], uint32(m.X))
	byteOrder.PutUint32(b[8:12], uint32(m.Y))
	return b
}

func DecodeSetPosition(b []byte) (SetPosition, error) {
	if len(b) != setPositionSize {
		return SetPosition{}, fmt.Errorf("%w: set_position body is %d bytes, want %d", ErrMalformed, len(b), setPositionSize)
	}
	return SetPosition{
		ID: byteOrder.Uint32(b[0:4]),
		X:  int32(byteOrder.Uint32(b[4:8])),
		Y:  int32(byteOrder.Uint32(b[8:12])),
	}, nil
}

// Sync is a per-client barrier: the daemon replies only after every
// preceding request from this client has been applied.
type Sync struct {
	SyncID uint32
}

func (m Sync) Encode() []byte {
	b := make([]byte, 4)
	byteOrder.PutUint32(b, m.SyncID)
	return b
}

func DecodeSync(b []byte) (Sync, error) {
	if len(b) != 4 {
		return Sync{}, fmt.Errorf("%w: sync body is %d bytes, want 4", ErrMalformed, len(b))
	}
	return Sync{SyncID: byteOrder.Uint32(b)}, nil
}

// SyncDone answers a Sync.
type SyncDone struct {
	SyncID uint32
}

func (m SyncDone) Encode() []byte {
	b := make([]byte, 4)
	byteOrder.PutUint32(b, m.SyncID)
	return b
}

func DecodeSyncDone(b []byte) (SyncDone, error) {
	if len(b) != 4 {
		return SyncDone{}, fmt.Errorf("%w: sync_done body is %d bytes, want 4", ErrMalformed, len(b))
	}
	return SyncDone{SyncID: byteOrder.Uint32(b)}, nil
}

// KeyPress is an unsolicited daemon-to-client keyboard event.
type KeyPress struct {
	SurfaceID uint32
	KeyCode   uint32
	Modifiers uint32
	Pressed   bool
}

const keyPressSize = 4 + 4 + 4 + 4

func (m KeyPress) Encode() []byte {
	b := make([]byte, keyPressSize)
	byteOrder.PutUint32(b[0:4], m.SurfaceID)
	byteOrder.PutUint32(b[4:8], m.KeyCode)
	byteOrder.PutUint32(b[8:12], m.Modifiers)
	if m.Pressed {
		byteOrder.PutUint32(b[12:16], 1)
	}
	return b
}

func DecodeKeyPress(b []byte) (KeyPress, error) {
	if len(b) != keyPressSize {
		return KeyPress{}, fmt.Errorf("%w: key_press body is %d bytes, want %d", ErrMalformed, len(b), keyPressSize)
	}
	return KeyPress{
		SurfaceID: byteOrder.Uint32(b[0:4]),
		KeyCode:   byteOrder.Uint32(b[4:8]),
		Modifiers: byteOrder.Uint32(b[8:12]),
		Pressed:   byteOrder.Uint32(b[12:16]) != 0,
	}, nil
}

// MouseEvent is an unsolicited daemon-to-client pointer event.
type MouseEvent struct {
	SurfaceID uint32
	X, Y      int32
	Button    uint32
	EventType uint32
	Modifiers uint32
}

const mouseEventSize = 4 + 4 + 4 + 4 + 4 + 4

func (m MouseEvent) Encode() []byte {
	b := make([]byte, mouseEventSize)
	byteOrder.PutUint32(b[0:4], m.SurfaceID)
	byteOrder.PutUint32(b[4:8], uint32(m.X))
	byteOrder.PutUint32(b[8:12], uint32(m.Y))
	byteOrder.PutUint32(b[12:16], m.Button)
	byteOrder.PutUint32(b[16:20], m.EventType)
	byteOrder.PutUint32(b[20:24], m.Modifiers)
	return b
}

func DecodeMouseEvent(b []byte) (MouseEvent, error) {
	if len(b) != mouseEventSize {
		return MouseEvent{}, fmt.Errorf("%w: mouse_event body is %d bytes, want %d", ErrMalformed, len(b), mouseEventSize)
	}
	return MouseEvent{
		SurfaceID: byteOrder.Uint32(b[0:4]),
		X:         int32(byteOrder.Uint32(b[4:8])),
		Y:         int32(byteOrder.Uint32(b[8:12])),
		Button:    byteOrder.Uint32(b[12:16]),
		EventType: byteOrder.Uint32(b[16:20]),
		Modifiers: byteOrder.Uint32(b[20:24]),
	}, nil
}

// Selection identifies a clipboard selection buffer.
type Selection uint32

const (
	SelectionPrimary   Selection = 0
	SelectionClipboard Selection = 1
)

func (s Selection) String() string {
	if s == SelectionPrimary {
		return "primary"
	}
	return "clipboard"
}

// ClipboardSet announces new clipboard contents for a selection; its frame
// body is these 8 bytes alone, and Length bytes of UTF-8 plain text follow
// immediately after the frame.
type ClipboardSet struct {
	Selection Selection
	Length    uint32
}

func (m ClipboardSet) Encode() []byte {
	b := make([]byte, 8)
	byteOrder.PutUint32(b[0:4], uint32(m.Selection))
	byteOrder.PutUint32(b[4:8], m.Length)
	return b
}

func DecodeClipboardSet(b []byte) (ClipboardSet, error) {
	if len(b) != 8 {
		return ClipboardSet{}, fmt.Errorf("%w: clipboard_set body is %d bytes, want 8", ErrMalformed, len(b))
	}
	return ClipboardSet{Selection: Selection(byteOrder.Uint32(b[0:4])), Length: byteOrder.Uint32(b[4:8])}, nil
}

// ClipboardRequest asks the current owner (via the daemon) for a
// selection's contents.
type ClipboardRequest struct {
	Selection Selection
}

func (m ClipboardRequest) Encode() []byte {
	b := make([]byte, 4)
	byteOrder.PutUint32(b, uint32(m.Selection))
	return b
}

func DecodeClipboardRequest(b []byte) (ClipboardRequest, error) {
	if len(b) != 4 {
		return ClipboardRequest{}, fmt.Errorf("%w: clipboard_request body is %d bytes, want 4", ErrMalformed, len(b))
	}
	return ClipboardRequest{Selection: Selection(byteOrder.Uint32(b))}, nil
}

// ClipboardData answers a ClipboardRequest; Length bytes of UTF-8 plain
// text follow immediately in the frame.
type ClipboardData struct {
	Selection Selection
	Length    uint32
}

func (m ClipboardData) Encode() []byte {
	b := make([]byte, 8)
	byteOrder.PutUint32(b[0:4], uint32(m.Selection))
	byteOrder.PutUint32(b[4:8], m.Length)
	return b
}

func DecodeClipboardData(b []byte) (ClipboardData, error) {
	if len(b) != 8 {
		return ClipboardData{}, fmt.Errorf("%w: clipboard_data body is %d bytes, want 8", ErrMalformed, len(b))
	}
	return ClipboardData{Selection: Selection(byteOrder.Uint32(b[0:4])), Length: byteOrder.Uint32(b[4:8])}, nil
}

// ErrorReply answers a failed request with a reason code.
type ErrorReply struct {
	Code ErrorCode
}

func (m ErrorReply) Encode() []byte {
	b := make([]byte, 4)
	byteOrder.PutUint32(b, uint32(m.Code))
	return b
}

func DecodeErrorReply(b []byte) (ErrorReply, error) {
	if len(b) != 4 {
		return ErrorReply{}, fmt.Errorf("%w: error_reply body is %d bytes, want 4", ErrMalformed, len(b))
	}
	return ErrorReply{Code: ErrorCode(byteOrder.Uint32(b))}, nil
}
