// Package ipc implements the SemaDraw wire protocol: a fixed 8-byte header
// followed by a typed body, carried over either a local (Unix-domain,
// fd-passing) or network (TCP) transport.
//
// The typed Write*/Read* helper shape and the bounds-checked body codec
// follow the teacher's internal/protocol/xdr package; byte order is
// little-endian throughout, matching pkg/sdcs rather than RFC 4506 XDR.
package ipc

import "encoding/binary"

// byteOrder is the wire byte order for every multi-byte IPC field.
var byteOrder = binary.LittleEndian

// HeaderSize is the size in bytes of the fixed message header.
const HeaderSize = 8

// Header is the fixed 8-byte prefix of every IPC message.
type Header struct {
	Type   MsgType
	Flags  uint16
	Length uint32 // body length, excluding the header itself
}

// Encode writes h onto dst, which must be at least HeaderSize bytes.
func (h Header) Encode(dst []byte) {
	byteOrder.PutUint16(dst[0:2], uint16(h.Type))
	byteOrder.PutUint16(dst[2:4], h.Flags)
	byteOrder.PutUint32(dst[4:8], h.Length)
}

// DecodeHeader reads a Header from src, which must be at least HeaderSize
// bytes.
func DecodeHeader(src []byte) Header {
	return Header{
		Type:   MsgType(byteOrder.Uint16(src[0:2])),
		Flags:  byteOrder.Uint16(src[2:4]),
		Length: byteOrder.Uint32(src[4:8]),
	}
}

// MsgType identifies a message's body layout and its category: requests
// (0x0xxx, client to daemon), replies (0x8xxx, daemon to client), and
// asynchronous events (0x9xxx, daemon to client, unsolicited).
type MsgType uint16

const (
	MsgHello             MsgType = 0x0001
	MsgCreateSurface     MsgType = 0x0002
	MsgDestroySurface    MsgType = 0x0003
	MsgAttachBuffer      MsgType = 0x0004
	MsgAttachBufferInline MsgType = 0x0005
	MsgCommit            MsgType = 0x0006
	MsgSetVisible        MsgType = 0x0007
	MsgSetZOrder         MsgType = 0x0008
	MsgSetPosition       MsgType = 0x0009
	MsgSync              MsgType = 0x000A
	MsgClipboardSet      MsgType = 0x000B
	MsgClipboardRequest  MsgType = 0x000C
	MsgDisconnect        MsgType = 0x000D

	MsgHelloReply     MsgType = 0x8001
	MsgSurfaceCreated MsgType = 0x8002
	MsgFrameComplete  MsgType = 0x8006
	MsgSyncDone       MsgType = 0x800A
	MsgClipboardData  MsgType = 0x800C
	MsgErrorReply     MsgType = 0x80FF

	MsgKeyPress   MsgType = 0x9001
	MsgMouseEvent MsgType = 0x9002
)

// IsRequest reports whether t is a client-to-daemon request type.
func (t MsgType) IsRequest() bool { return t&0xF000 == 0x0000 }

// IsReply reports whether t is a daemon-to-client reply type.
func (t MsgType) IsReply() bool { return t&0xF000 == 0x8000 }

// IsEvent reports whether t is an unsolicited daemon-to-client event type.
func (t MsgType) IsEvent() bool { return t&0xF000 == 0x9000 }

func (t MsgType) String() string {
	switch t {
	case MsgHello:
		return "HELLO"
	case MsgCreateSurface:
		return "CREATE_SURFACE"
	case MsgDestroySurface:
		return "DESTROY_SURFACE"
	case MsgAttachBuffer:
		return "ATTACH_BUFFER"
	case MsgAttachBufferInline:
		return "ATTACH_BUFFER_INLINE"
	case MsgCommit:
		return "COMMIT"
	case MsgSetVisible:
		return "SET_VISIBLE"
	case MsgSetZOrder:
		return "SET_Z_ORDER"
	case MsgSetPosition:
		return "SET_POSITION"
	case MsgSync:
		return "SYNC"
	case MsgClipboardSet:
		return "CLIPBOARD_SET"
	case MsgClipboardRequest:
		return "CLIPBOARD_REQUEST"
	case MsgDisconnect:
		return "DISCONNECT"
	case MsgHelloReply:
		return "HELLO_REPLY"
	case MsgSurfaceCreated:
		return "SURFACE_CREATED"
	case MsgFrameComplete:
		return "FRAME_COMPLETE"
	case MsgSyncDone:
		return "SYNC_DONE"
	case MsgClipboardData:
		return "CLIPBOARD_DATA"
	case MsgErrorReply:
		return "ERROR_REPLY"
	case MsgKeyPress:
		return "KEY_PRESS"
	case MsgMouseEvent:
		return "MOUSE_EVENT"
	default:
		return "UNKNOWN"
	}
}
