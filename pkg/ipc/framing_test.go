package ipc

import (
	"bytes"
	"context"
	"testing"
)

func TestWriteReadFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	body := Commit{ID: 7}.Encode()
	if err := WriteFrame(&buf, MsgCommit, 0, body); err != nil {
		t.Fatal(err)
	}

	frame, err := ReadFrame(context.Background(), &buf, 8<<10)
	if err != nil {
		t.Fatal(err)
	}
	if frame.Header.Type != MsgCommit {
		t.Fatalf("got type %v, want MsgCommit", frame.Header.Type)
	}
	got, err := DecodeCommit(frame.Body)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != 7 {
		t.Fatalf("got id %d, want 7", got.ID)
	}
}

func TestReadFrameRejectsOversizedBody(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFrame(&buf, MsgAttachBufferInline, 0, make([]byte, 100)); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadFrame(context.Background(), &buf, 10); err == nil {
		t.Fatal("expected error for oversized body")
	}
}

func TestReadInlinePayload(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("hello world")
	got, err := ReadInlinePayload(&buf, 11, 8<<10)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hello world" {
		t.Fatalf("got %q", got)
	}
}
