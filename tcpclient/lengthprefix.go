package tcpclient

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"go.uber.org/zap"
)

// Upper bound on a single length-prefixed message. A frame announcing more
// than this is treated as a framing failure rather than allocated.
const maxFrameBytes = 64 << 20

// LengthPrefixClient frames binary messages with a big-endian byte-length
// prefix instead of an end-of-message byte. It decorates a BinaryClient:
// the wrapped client carries the hex codec and the configuration surface,
// with its EOM detection disabled so framing is decided by the prefix alone.
type LengthPrefixClient struct {
	inner     *BinaryClient
	prefixLen int // Prefix width in bytes: 1, 2 or 4
}

// NewLengthPrefixClient creates a length-prefixed binary client with the
// given prefix width. Widths other than 1, 2 and 4 bytes are rejected.
func NewLengthPrefixClient(prefixLen int) (*LengthPrefixClient, error) {
	switch prefixLen {
	case 1, 2, 4:
	default:
		return nil, fmt.Errorf("unsupported length prefix width: %d bytes", prefixLen)
	}

	return &LengthPrefixClient{
		// One past MaxInt8 keeps the wrapped client from ever matching a
		// message byte as EOM.
		inner:     NewBinaryClient(math.MaxInt8 + 1),
		prefixLen: prefixLen,
	}, nil
}

// SetupTest is called by the harness when this client enters service.
func (c *LengthPrefixClient) SetupTest() {
	zap.L().Info("length-prefixed client setup",
		zap.Int("prefixLen", c.prefixLen))
}

// TeardownTest is called by the harness when this client leaves service.
func (c *LengthPrefixClient) TeardownTest() {
	zap.L().Info("length-prefixed client teardown")
}

// Write decodes the hex payload, prepends its byte length and sends both,
// flushing when done. Invalid hex and a payload too long for the prefix
// width are returned as errors with zero bytes written: a half-framed
// message would desynchronise the stream for good. Transport failures are
// logged and swallowed like every write in this package.
func (c *LengthPrefixClient) Write(w io.Writer, payload string) error {
	data, err := DecodeHex(payload)

	if err != nil {
		return err
	}

	prefix, err := encodeLength(len(data), c.prefixLen)

	if err != nil {
		return &InvalidEncodingError{Payload: payload, Err: err}
	}

	if _, err := w.Write(prefix); err != nil {
		zap.L().Warn("write error",
			zap.Error(err))
		return nil
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

	zap.L().Debug("wrote length-prefixed payload",
		zap.Int("bytes", len(data)))

	return nil
}

// WriteStream delegates to the wrapped binary client, which does not
// support streamed payloads.
func (c *LengthPrefixClient) WriteStream(w io.Writer, r io.Reader) error {
	return c.inner.WriteStream(w, r)
}

// Read consumes one complete frame, prefix then exactly the announced
// number of payload bytes, and returns the payload hex-encoded with the
// prefix stripped. Unlike EOM framing there is no meaningful partial
// message here: a timeout, close or failure before the frame completes
// logs the condition and returns "".
func (c *LengthPrefixClient) Read(r io.Reader) string {
	prefix := make([]byte, c.prefixLen)

	if _, err := io.ReadFull(r, prefix); err != nil {
		if err != io.EOF {
			zap.L().Warn("failed to read length prefix",
				zap.Error(err))
		}
		return ""
	}

	size := decodeLength(prefix)

	if size > maxFrameBytes {
		zap.L().Warn("length prefix announces oversized frame",
			zap.Int("bytes", size))
		return ""
	}

	message := make([]byte, size)

	if _, err := io.ReadFull(r, message); err != nil {
		zap.L().Warn("short length-prefixed read",
			zap.Error(err))
		return ""
	}

	zap.L().Debug("read length-prefixed message",
		zap.Int("bytes", size))

	return EncodeHex(message)
}

// EomByte returns the wrapped client's end-of-message byte.
func (c *LengthPrefixClient) EomByte() int8 {
	return c.inner.EomByte()
}

// SetEomByte forwards to the wrapped client. Length-prefixed framing never
// consults the byte, the setter exists for capability compatibility.
func (c *LengthPrefixClient) SetEomByte(eom int8) {
	c.inner.SetEomByte(eom)
}

// encodeLength renders a payload byte count as a big-endian prefix of the
// given width.
func encodeLength(size int, prefixLen int) ([]byte, error) {
	if size >= 1<<(8*prefixLen) {
		return nil, fmt.Errorf("payload of %d bytes does not fit a %d-byte length prefix", size, prefixLen)
	}

	prefix := make([]byte, prefixLen)

	switch prefixLen {
	case 1:
		prefix[0] = byte(size)
	case 2:
		binary.BigEndian.PutUint16(prefix, uint16(size))
	case 4:
		binary.BigEndian.PutUint32(prefix, uint32(size))
	}

	return prefix, nil
}

// decodeLength reads the big-endian byte count out of a prefix.
func decodeLength(prefix []byte) int {
	size := 0
	for _, b := range prefix {
		size = size<<8 | int(b)
	}
	return size
}
