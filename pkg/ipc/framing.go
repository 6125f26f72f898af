package ipc

import (
	"context"
	"fmt"
	"io"

	"github.com/semadraw/semadraw/internal/bufpool"
)

// Frame is one decoded header plus its raw body bytes.
type Frame struct {
	Header Header
	Body   []byte
}

// ReadFrame reads one complete message from r: the fixed 8-byte header,
// then exactly Header.Length body bytes. A declared length above maxBody
// drops the connection rather than allocating — the caller should close r
// after this returns a size error.
//
// Grounded on the teacher's smb.ReadRequest: fixed header first, length
// validated against a configurable maximum before any body allocation,
// then one io.ReadFull for the body.
func ReadFrame(ctx context.Context, r io.Reader, maxBody int) (Frame, error) {
	select {
	case <-ctx.Done():
		return Frame{}, ctx.Err()
	default:
	}

	var hdrBuf [HeaderSize]byte
	if _, err := io.ReadFull(r, hdrBuf[:]); err != nil {
		return Frame{}, err
	}
	hdr := DecodeHeader(hdrBuf[:])

	if int(hdr.Length) > maxBody {
		return Frame{}, fmt.Errorf("%w: body length %d exceeds maximum %d", ErrMalformed, hdr.Length, maxBody)
	}

	body := make([]byte, hdr.Length)
	if hdr.Length > 0 {
		if _, err := io.ReadFull(r, body); err != nil {
			return Frame{}, fmt.Errorf("read message body: %w", err)
		}
	}
	return Frame{Header: hdr, Body: body}, nil
}

// WriteFrame writes a complete message (header + body) to w in one call,
// using a pooled scratch buffer to avoid an allocation per message on the
// daemon's hot loop.
func WriteFrame(w io.Writer, msgType MsgType, flags uint16, body []byte) error {
	hdr := Header{Type: msgType, Flags: flags, Length: uint32(len(body))}
	total := HeaderSize + len(body)
	buf := bufpool.Get(total)
	defer bufpool.Put(buf)
	hdr.Encode(buf[:HeaderSize])
	copy(buf[HeaderSize:], body)
	_, err := w.Write(buf)
	return err
}

// ReadInlinePayload reads exactly n bytes immediately following a message
// whose body declares a trailing payload (ATTACH_BUFFER_INLINE,
// CLIPBOARD_SET, CLIPBOARD_DATA transmitted over the network transport).
func ReadInlinePayload(r io.Reader, n uint32, maxBody int) ([]byte, error) {
	if int(n) > maxBody {
		return nil, fmt.Errorf("%w: inline payload %d exceeds maximum %d", ErrMalformed, n, maxBody)
	}
	buf := make([]byte, n)
	if n > 0 {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("read inline payload: %w", err)
		}
	}
	return buf, nil
}
