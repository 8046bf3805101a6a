// Package tcpclient provides the framing clients that move request and
// response payloads over an already-open TCP byte stream. A client owns the
// read/write framing logic only; sockets, timeouts and sample bookkeeping
// belong to the surrounding harness.
package tcpclient

import (
	"errors"
	"io"
	"net"

	"tcpmeter/core/configs"
)

// Number of bytes pulled from the stream per read call.
const readChunkSize = 4096

// ErrNotSupported is returned when a client is asked to stream a payload
// kind its framing cannot carry.
var ErrNotSupported = errors.New("tcpclient: stream write not supported by this framing")

// TCPClient is the capability a framing implementation exposes to the
// harness. One instance serves one connection at a time; calls on the same
// instance must be sequential, the client performs no locking of its own.
type TCPClient interface {
	// Lifecycle hooks invoked by the harness around a client's service life.
	SetupTest()
	TeardownTest()

	// Write sends one request payload on the stream. A malformed payload is
	// returned as an error before any bytes are written; a transport failure
	// is logged and swallowed, so callers watch the log stream rather than
	// the return value for those.
	Write(w io.Writer, payload string) error

	// WriteStream sends an already-framed payload read from r. Only framings
	// that carry opaque streams support it; the others return ErrNotSupported.
	WriteStream(w io.Writer, r io.Reader) error

	// Read collects one inbound message and returns it in the client's
	// payload representation. It never returns an error: a timeout or a
	// clean close yields whatever had accumulated, a hard transport failure
	// yields "" with a log record as the only diagnostic.
	Read(r io.Reader) string

	// End-of-message byte configuration. Setting a value always re-enables
	// detection, also when construction disabled it.
	EomByte() int8
	SetEomByte(eom int8)
}

// Flusher is the optional flushing side of a stream writer. Connection
// writers hand out buffered streams that implement it, so a client can push
// a finished request to the peer without waiting on the buffer.
type Flusher interface {
	Flush() error
}

// GetTCPClient builds the framing client named in the client config.
func GetTCPClient(config *configs.ClientConfig) (TCPClient, error) {
	switch config.Type {
	case configs.FramingBinary:
		return NewBinaryClient(config.Eom), nil
	case configs.FramingBinaryLength:
		return NewLengthPrefixClient(config.Prefix)
	case configs.FramingText:
		return NewTextClient(config.Eom, config.Charset)
	default:
		return nil, errors.New("unsupported framing type in client config")
	}
}

// flush pushes buffered bytes to the peer when the writer supports it.
func flush(w io.Writer) error {
	if f, ok := w.(Flusher); ok {
		return f.Flush()
	}
	return nil
}

// readStream accumulates chunks from the stream until the end-of-message
// byte closes a chunk, the peer closes the stream, or the stream's read
// deadline passes. EOM detection looks only at the trailing byte of each
// freshly read chunk and keeps the byte in the returned payload. Deadline
// expiry and a clean close both hand back what had accumulated; any other
// failure returns the error alongside the partial data so the caller can
// decide what to keep.
func readStream(r io.Reader, eomByte int8, eomIgnore bool) ([]byte, error) {
	buffer := make([]byte, readChunkSize)
	var message []byte

	for {
		n, err := r.Read(buffer)

		if n > 0 {
			message = append(message, buffer[:n]...)
			if !eomIgnore && buffer[n-1] == byte(eomByte) {
				return message, nil
			}
		}

		if err != nil {
			if err == io.EOF {
				return message, nil
			}
			// An idle peer is not a failure; deadline reads surface as
			// timeout errors and whatever arrived before is the message.
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				return message, nil
			}
			return message, err
		}
	}
}
