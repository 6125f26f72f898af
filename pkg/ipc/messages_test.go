package ipc

import "testing"

func TestHeaderRoundTrip(t *testing.T) {
	h := Header{Type: MsgCommit, Flags: 0x1, Length: 42}
	buf := make([]byte, HeaderSize)
	h.Encode(buf)
	got := DecodeHeader(buf)
	if got != h {
		t.Fatalf("got %+v, want %+v", got, h)
	}
}

func TestHelloRoundTrip(t *testing.T) {
	m := Hello{VersionMajor: 1, VersionMinor: 2, ClientFlags: 0xAB}
	got, err := DecodeHello(m.Encode())
	if err != nil {
		t.Fatal(err)
	}
	if got != m {
		t.Fatalf("got %+v, want %+v", got, m)
	}
}

func TestCreateSurfaceRoundTrip(t *testing.T) {
	m := CreateSurface{Width: 800, Height: 600, Scale: 1, Flags: 0}
	got, err := DecodeCreateSurface(m.Encode())
	if err != nil {
		t.Fatal(err)
	}
	if got != m {
		t.Fatalf("got %+v, want %+v", got, m)
	}
}

func TestFrameCompleteRoundTrip(t *testing.T) {
	m := FrameComplete{ID: 3, FrameNumber: 99, TimestampNs: 123456789}
	got, err := DecodeFrameComplete(m.Encode())
	if err != nil {
		t.Fatal(err)
	}
	if got != m {
		t.Fatalf("got %+v, want %+v", got, m)
	}
}

func TestSetPositionRoundTrip(t *testing.T) {
	m := SetPosition{ID: 5, X: -10, Y: 20}
	got, err := DecodeSetPosition(m.Encode())
	if err != nil {
		t.Fatal(err)
	}
	if got != m {
		t.Fatalf("got %+v, want %+v", got, m)
	}
}

func TestClipboardRoundTrip(t *testing.T) {
	set := ClipboardSet{Selection: SelectionClipboard, Length: 11}
	gotSet, err := DecodeClipboardSet(set.Encode())
	if err != nil || gotSet != set {
		t.Fatalf("got %+v, err %v", gotSet, err)
	}

	req := ClipboardRequest{Selection: SelectionPrimary}
	gotReq, err := DecodeClipboardRequest(req.Encode())
	if err != nil || gotReq != req {
		t.Fatalf("got %+v, err %v", gotReq, err)
	}
}

func TestDecodeRejectsWrongSize(t *testing.T) {
	if _, err := DecodeHello([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected error for short hello body")
	}
	if _, err := DecodeCommit(make([]byte, 3)); err == nil {
		t.Fatal("expected error for short commit body")
	}
}

func TestMsgTypeCategories(t *testing.T) {
	if !MsgHello.IsRequest() || MsgHello.IsReply() || MsgHello.IsEvent() {
		t.Fatalf("MsgHello miscategorized")
	}
	if !MsgHelloReply.IsReply() {
		t.Fatalf("MsgHelloReply should be a reply")
	}
	if !MsgKeyPress.IsEvent() {
		t.Fatalf("MsgKeyPress should be an event")
	}
}
