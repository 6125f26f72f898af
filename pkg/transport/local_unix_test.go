package transport

import (
	"net"
	"os"
	"path/filepath"
	"testing"
)

func TestLocalListenerAcceptAndFDPassing(t *testing.T) {
	sockPath := filepath.Join(t.TempDir(), "semadraw-test.sock")
	ln, err := ListenLocal(sockPath)
	if err != nil {
		t.Fatalf("ListenLocal: %v", err)
	}
	defer ln.Close()

	serverErrCh := make(chan error, 1)
	var serverConn Conn
	go func() {
		c, err := ln.Accept()
		serverConn = c
		serverErrCh <- err
	}()

	clientRaw, err := net.Dial("unix", sockPath)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer clientRaw.Close()
	client := &localConn{UnixConn: clientRaw.(*net.UnixConn)}

	if err := <-serverErrCh; err != nil {
		t.Fatalf("Accept: %v", err)
	}
	defer serverConn.Close()

	if serverConn.Kind() != KindLocal {
		t.Fatalf("expected KindLocal, got %v", serverConn.Kind())
	}

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Pipe: %v", err)
	}
	defer r.Close()
	defer w.Close()

	sendDone := make(chan error, 1)
	go func() {
		sendDone <- client.SendFD(int(w.Fd()))
	}()

	fd, err := serverConn.(*localConn).RecvFD()
	if err != nil {
		t.Fatalf("RecvFD: %v", err)
	}
	if err := <-sendDone; err != nil {
		t.Fatalf("SendFD: %v", err)
	}
	if fd < 0 {
		t.Fatal("expected a valid received fd")
	}
	os.NewFile(uintptr(fd), "received").Close()
}

func TestNetworkConnRejectsFDPassing(t *testing.T) {
	c := &networkConn{}
	if _, err := c.RecvFD(); err == nil {
		t.Fatal("expected error from network RecvFD")
	}
	if err := c.SendFD(0); err == nil {
		t.Fatal("expected error from network SendFD")
	}
}
