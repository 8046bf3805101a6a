package tcpclient

import (
	"io"

	"go.uber.org/zap"
)

// BinaryClient reads and writes raw binary data over the stream. Payloads
// cross the API boundary as hex-encoded strings; inbound messages end when
// the configured end-of-message byte closes a read, the peer goes idle past
// the stream's deadline, or the peer closes the connection.
type BinaryClient struct {
	eomByte   int8 // End of message byte (defaults to none)
	eomIgnore bool // True when no configured value fits a signed byte
}

// NewBinaryClient creates a binary framing client. The eom argument is the
// configured end-of-message integer: a value inside [-128, 127] becomes the
// detection byte, anything outside that range disables detection so only the
// stream deadline or a close terminates a read.
func NewBinaryClient(eom int) *BinaryClient {
	c := &BinaryClient{
		eomByte:   int8(eom),
		eomIgnore: eom < -128 || eom > 127,
	}

	if !c.eomIgnore {
		zap.L().Info("using end-of-message byte",
			zap.Int8("eomByte", c.eomByte))
	}

	return c
}

// SetupTest is called by the harness when this client enters service.
func (c *BinaryClient) SetupTest() {
	zap.L().Info("binary client setup")
}

// TeardownTest is called by the harness when this client leaves service.
func (c *BinaryClient) TeardownTest() {
	zap.L().Info("binary client teardown")
}

// Write decodes the hex payload and sends the bytes in one piece, flushing
// so the peer sees no buffering delay beyond the transport. A payload that
// is not valid hex is returned as an error with zero bytes written. A
// transport failure is logged and swallowed; the write path never fails the
// caller for those.
func (c *BinaryClient) Write(w io.Writer, payload string) error {
	data, err := DecodeHex(payload)

	if err != nil {
		return err
	}

	if _, err := w.Write(data); err != nil {
		zap.L().Warn("write error",
			zap.Error(err))
		return nil
	}

	if err := flush(w); err != nil {
		zap.L().Warn("write flush error",
			zap.Error(err))
		return nil
	}

	zap.L().Debug("wrote payload",
		zap.Int("bytes", len(data)))

	return nil
}

// WriteStream is not available for hex/EOM framing; streamed payloads belong
// to the text framing strategy.
func (c *BinaryClient) WriteStream(w io.Writer, r io.Reader) error {
	return ErrNotSupported
}

// Read collects one inbound message and returns it hex-encoded. The EOM
// byte, when detected, stays part of the returned payload. A read cut off
// by the stream deadline or a close returns the partial message; a hard
// transport failure logs the error and returns "" with nothing kept, which
// deliberately looks the same as a clean close with no data.
func (c *BinaryClient) Read(r io.Reader) string {
	message, err := readStream(r, c.eomByte, c.eomIgnore)

	if err != nil {
		zap.L().Warn("read error",
			zap.Error(err))
		return ""
	}

	zap.L().Debug("read message",
		zap.Int("bytes", len(message)))

	return EncodeHex(message)
}

// EomByte returns the current end-of-message byte.
func (c *BinaryClient) EomByte() int8 {
	return c.eomByte
}

// SetEomByte replaces the end-of-message byte. Detection is re-enabled
// unconditionally, also when construction had disabled it.
func (c *BinaryClient) SetEomByte(eom int8) {
	c.eomByte = eom
	c.eomIgnore = false
}
