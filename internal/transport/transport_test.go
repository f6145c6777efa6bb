package transport

import (
	"net"
	"path/filepath"
	"testing"
	"time"
)

func dial(path string) (net.Conn, error) {
	return net.Dial("unix", path)
}

func TestListenUnixAcceptsAConnection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tkeyfido.sock")
	ln, err := ListenUnix(path)
	if err != nil {
		t.Fatalf("ListenUnix: %v", err)
	}
	defer ln.Close()

	dialErr := make(chan error, 1)
	go func() {
		conn, err := dial(path)
		if err == nil {
			conn.Close()
		}
		dialErr <- err
	}()

	conn, err := ln.Accept()
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	conn.Close()

	select {
	case err := <-dialErr:
		if err != nil {
			t.Fatalf("dial: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for dial")
	}
}

func TestListenUnixReplacesStaleSocket(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tkeyfido.sock")

	ln1, err := ListenUnix(path)
	if err != nil {
		t.Fatalf("first ListenUnix: %v", err)
	}
	// Leave the socket file in place, as a crashed process would: ln1
	// stays open here, since ln1.Close() would remove the file.

	ln2, err := ListenUnix(path)
	if err != nil {
		t.Fatalf("second ListenUnix should replace the stale socket: %v", err)
	}
	defer ln2.Close()
	ln1.ln.Close()
}
