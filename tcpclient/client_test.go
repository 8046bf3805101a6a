package tcpclient

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"tcpmeter/core/configs"
)

// chunkReader hands out one prepared chunk per Read call and finishes with
// the configured error, io.EOF when none is set. It mimics a socket where
// each call returns whatever had arrived by then.
type chunkReader struct {
	chunks [][]byte
	err    error
	pos    int
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.chunks) {
		if r.err == nil {
			return 0, io.EOF
		}
		return 0, r.err
	}

	n := copy(p, r.chunks[r.pos])
	r.pos++
	return n, nil
}

// timeoutError mimics the error a read deadline produces on a socket.
type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

// brokenWriter refuses every write.
type brokenWriter struct{}

func (brokenWriter) Write(p []byte) (int, error) {
	return 0, errors.New("broken pipe")
}

// flushRecorder is a buffer that remembers whether Flush was called.
type flushRecorder struct {
	bytes.Buffer
	flushed bool
}

func (f *flushRecorder) Flush() error {
	f.flushed = true
	return nil
}

func TestReadStream(t *testing.T) {

	const eol = int8('\n')

	t.Run("test terminates on trailing eom byte", func(t *testing.T) {
		reader := &chunkReader{chunks: [][]byte{[]byte("first "), []byte("second\n"), []byte("never read")}}

		message, err := readStream(reader, eol, false)

		if err != nil {
			t.Fatalf("failed to read, err: %s", err)
		}

		if string(message) != "first second\n" {
			t.Errorf("message mismatch: got %q", message)
		}

		if reader.pos != 2 {
			t.Errorf("expected reading to stop after 2 chunks, read %d", reader.pos)
		}
	})

	t.Run("test eom inside a chunk does not terminate", func(t *testing.T) {
		reader := &chunkReader{chunks: [][]byte{[]byte("ab\ncd"), []byte("ef\n")}}

		message, err := readStream(reader, eol, false)

		if err != nil {
			t.Fatalf("failed to read, err: %s", err)
		}

		if string(message) != "ab\ncdef\n" {
			t.Errorf("message mismatch: got %q", message)
		}
	})

	t.Run("test close returns what arrived", func(t *testing.T) {
		reader := &chunkReader{chunks: [][]byte{[]byte("dead")}}

		message, err := readStream(reader, eol, false)

		if err != nil {
			t.Fatalf("failed to read, err: %s", err)
		}

		if string(message) != "dead" {
			t.Errorf("message mismatch: got %q", message)
		}
	})

	t.Run("test deadline expiry returns what arrived", func(t *testing.T) {
		reader := &chunkReader{
			chunks: [][]byte{[]byte("dead")},
			err:    timeoutError{},
		}

		message, err := readStream(reader, eol, false)

		if err != nil {
			t.Fatalf("failed to read, err: %s", err)
		}

		if string(message) != "dead" {
			t.Errorf("message mismatch: got %q", message)
		}
	})

	t.Run("test hard failure surfaces", func(t *testing.T) {
		reader := &chunkReader{
			chunks: [][]byte{[]byte("dead")},
			err:    errors.New("connection reset"),
		}

		message, err := readStream(reader, eol, false)

		if err == nil {
			t.Fatal("expected the transport error to surface")
		}

		if string(message) != "dead" {
			t.Errorf("partial message mismatch: got %q", message)
		}
	})

	t.Run("test disabled detection reads past eom bytes", func(t *testing.T) {
		reader := &chunkReader{chunks: [][]byte{[]byte("a\n"), []byte("b\n")}}

		message, err := readStream(reader, eol, true)

		if err != nil {
			t.Fatalf("failed to read, err: %s", err)
		}

		if string(message) != "a\nb\n" {
			t.Errorf("message mismatch: got %q", message)
		}
	})
}

func TestFlush(t *testing.T) {

	t.Run("test flushing writer is flushed", func(t *testing.T) {
		w := &flushRecorder{}

		if err := flush(w); err != nil {
			t.Fatalf("failed to flush, err: %s", err)
		}

		if !w.flushed {
			t.Error("expected the writer to be flushed")
		}
	})

	t.Run("test plain writer is left alone", func(t *testing.T) {
		if err := flush(&bytes.Buffer{}); err != nil {
			t.Fatalf("unexpected error, err: %s", err)
		}
	})
}

func TestGetTCPClient(t *testing.T) {

	t.Run("test binary framing", func(t *testing.T) {
		client, err := GetTCPClient(&configs.ClientConfig{
			Type: configs.FramingBinary,
			Eom:  10,
		})

		if err != nil {
			t.Fatalf("failed to build client, err: %s", err)
		}

		if _, ok := client.(*BinaryClient); !ok {
			t.Errorf("expected a BinaryClient, got: %T", client)
		}
	})

	t.Run("test length prefixed framing", func(t *testing.T) {
		client, err := GetTCPClient(&configs.ClientConfig{
			Type:   configs.FramingBinaryLength,
			Prefix: 2,
		})

		if err != nil {
			t.Fatalf("failed to build client, err: %s", err)
		}

		if _, ok := client.(*LengthPrefixClient); !ok {
			t.Errorf("expected a LengthPrefixClient, got: %T", client)
		}
	})

	t.Run("test text framing", func(t *testing.T) {
		client, err := GetTCPClient(&configs.ClientConfig{
			Type:    configs.FramingText,
			Eom:     10,
			Charset: "utf-8",
		})

		if err != nil {
			t.Fatalf("failed to build client, err: %s", err)
		}

		if _, ok := client.(*TextClient); !ok {
			t.Errorf("expected a TextClient, got: %T", client)
		}
	})

	t.Run("test unknown framing rejected", func(t *testing.T) {
		_, err := GetTCPClient(&configs.ClientConfig{
			Type: configs.FramingType("carrier-pigeon"),
		})

		if err == nil {
			t.Fatal("expected an error for an unknown framing type")
		}
	})

	t.Run("test bad prefix width rejected", func(t *testing.T) {
		_, err := GetTCPClient(&configs.ClientConfig{
			Type:   configs.FramingBinaryLength,
			Prefix: 3,
		})

		if err == nil {
			t.Fatal("expected an error for an unsupported prefix width")
		}
	})
}
