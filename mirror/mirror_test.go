package mirror

import (
	"bytes"
	"io"
	"net"
	"testing"
	"time"
)

func startMirror(t *testing.T) (*Server, chan error) {
	t.Helper()

	srv, err := Listen("127.0.0.1:0")

	if err != nil {
		t.Fatalf("failed to listen, err: %s", err)
	}

	served := make(chan error, 1)

	go func() {
		served <- srv.Serve()
	}()

	return srv, served
}

func TestMirrorEchoesBytes(t *testing.T) {
	srv, served := startMirror(t)

	conn, err := net.Dial("tcp", srv.Addr())

	if err != nil {
		t.Fatalf("failed to dial, err: %s", err)
	}

	payload := []byte{0xDE, 0xAD, 0xBE, 0xEF, 0x0A}

	if _, err := conn.Write(payload); err != nil {
		t.Fatalf("failed to write, err: %s", err)
	}

	echo := make([]byte, len(payload))

	if _, err := io.ReadFull(conn, echo); err != nil {
		t.Fatalf("failed to read echo, err: %s", err)
	}

	if !bytes.Equal(echo, payload) {
		t.Errorf("echo mismatch: sent %x, got %x", payload, echo)
	}

	conn.Close()
	srv.Close()

	select {
	case err := <-served:
		if err != nil {
			t.Errorf("expected a clean shutdown, got: %s", err)
		}
	case <-time.After(time.Second):
		t.Error("serve loop did not stop after close")
	}
}

func TestMirrorServesMultipleClients(t *testing.T) {
	srv, _ := startMirror(t)

	defer srv.Close()

	first, err := net.Dial("tcp", srv.Addr())

	if err != nil {
		t.Fatalf("failed to dial, err: %s", err)
	}

	defer first.Close()

	second, err := net.Dial("tcp", srv.Addr())

	if err != nil {
		t.Fatalf("failed to dial, err: %s", err)
	}

	defer second.Close()

	if _, err := first.Write([]byte("one\n")); err != nil {
		t.Fatalf("failed to write, err: %s", err)
	}

	if _, err := second.Write([]byte("two\n")); err != nil {
		t.Fatalf("failed to write, err: %s", err)
	}

	echo := make([]byte, 4)

	if _, err := io.ReadFull(second, echo); err != nil {
		t.Fatalf("failed to read echo, err: %s", err)
	}

	if string(echo) != "two\n" {
		t.Errorf("echo mismatch: got %q", echo)
	}

	if _, err := io.ReadFull(first, echo); err != nil {
		t.Fatalf("failed to read echo, err: %s", err)
	}

	if string(echo) != "one\n" {
		t.Errorf("echo mismatch: got %q", echo)
	}
}

func TestMirrorCloseDisconnectsClients(t *testing.T) {
	srv, served := startMirror(t)

	conn, err := net.Dial("tcp", srv.Addr())

	if err != nil {
		t.Fatalf("failed to dial, err: %s", err)
	}

	defer conn.Close()

	if _, err := conn.Write([]byte("ping\n")); err != nil {
		t.Fatalf("failed to write, err: %s", err)
	}

	echo := make([]byte, 5)

	if _, err := io.ReadFull(conn, echo); err != nil {
		t.Fatalf("failed to read echo, err: %s", err)
	}

	srv.Close()

	conn.SetReadDeadline(time.Now().Add(time.Second))

	if _, err := conn.Read(echo); err == nil {
		t.Error("expected the mirrored connection to be closed")
	}

	select {
	case err := <-served:
		if err != nil {
			t.Errorf("expected a clean shutdown, got: %s", err)
		}
	case <-time.After(time.Second):
		t.Error("serve loop did not stop after close")
	}
}
