// Package connection owns the sockets used to sample the server under
// test: dialling, response deadlines, buffered writes and the reuse policy
// between samples.
package connection

import (
	"bufio"
	"io"
	"net"
	"time"

	"go.uber.org/zap"
)

// Conn is one sampling socket. The response timeout is armed on the socket
// before every read and every flushed write, so a stalled server ends the
// operation instead of hanging the worker forever.
// A Conn is owned by a single worker goroutine.
type Conn struct {
	conn          net.Conn      // Underlying socket
	response      time.Duration // Read and write deadline, 0 waits forever
	bw            *bufio.Writer // Buffered writer over the socket
	bytesSent     int64         // Bytes written on the wire so far
	bytesReceived int64         // Bytes read off the wire so far
}

// Dial connects to the server under test within the connect timeout.
func Dial(addr string, connectTimeout time.Duration, responseTimeout time.Duration) (*Conn, error) {
	conn, err := net.DialTimeout("tcp", addr, connectTimeout)

	if err != nil {
		return nil, &TargetCommError{TargetInfo: addr, Err: err}
	}

	zap.L().Debug("connected to target",
		zap.String("addr", addr))

	c := &Conn{conn: conn, response: responseTimeout}
	c.bw = bufio.NewWriter(deadlineWriter{c})

	return c, nil
}

// Reader returns the read side of the socket with the response deadline
// armed before each read.
func (c *Conn) Reader() io.Reader {
	return deadlineReader{c}
}

// Writer returns the buffered write side of the socket. Data is not on the
// wire until the writer is flushed.
func (c *Conn) Writer() io.Writer {
	return c.bw
}

// RemoteAddr reports the address of the server for logging.
func (c *Conn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}

// Counters reports how many bytes have crossed the wire in each direction
// since the dial. The counts belong to the owning worker goroutine, callers
// on other goroutines must not read them.
func (c *Conn) Counters() (int64, int64) {
	return c.bytesSent, c.bytesReceived
}

// Close shuts the socket down.
func (c *Conn) Close() error {
	return c.conn.Close()
}

type deadlineReader struct {
	c *Conn
}

func (r deadlineReader) Read(p []byte) (int, error) {
	if r.c.response > 0 {
		if err := r.c.conn.SetReadDeadline(time.Now().Add(r.c.response)); err != nil {
			return 0, err
		}
	}

	n, err := r.c.conn.Read(p)
	r.c.bytesReceived += int64(n)

	return n, err
}

type deadlineWriter struct {
	c *Conn
}

func (w deadlineWriter) Write(p []byte) (int, error) {
	if w.c.response > 0 {
		if err := w.c.conn.SetWriteDeadline(time.Now().Add(w.c.response)); err != nil {
			return 0, err
		}
	}

	n, err := w.c.conn.Write(p)
	w.c.bytesSent += int64(n)

	return n, err
}
