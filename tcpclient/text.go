package tcpclient

import (
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// TextClient reads and writes line-oriented text over the stream. Payloads
// are plain strings converted with the configured charset; inbound messages
// terminate on the same trailing-byte rule as the binary client, usually
// with the end-of-line byte 0x0A.
type TextClient struct {
	eolByte   int8 // End of line (message) byte
	eolIgnore bool // True when no configured value fits a signed byte
	charset   string
	enc       encoding.Encoding
}

// NewTextClient creates a text framing client. The eol integer follows the
// same convention as the binary client's EOM value: out of signed byte range
// disables detection. The charset names the wire encoding of the text.
func NewTextClient(eol int, charset string) (*TextClient, error) {
	enc, err := charsetByName(charset)

	if err != nil {
		return nil, err
	}

	c := &TextClient{
		eolByte:   int8(eol),
		eolIgnore: eol < -128 || eol > 127,
		charset:   charset,
		enc:       enc,
	}

	if !c.eolIgnore {
		zap.L().Info("using end-of-line byte",
			zap.Int8("eolByte", c.eolByte))
	}

	return c, nil
}

// charsetByName resolves the charset names accepted in bench configs.
func charsetByName(name string) (encoding.Encoding, error) {
	switch strings.ToLower(name) {
	case "", "utf-8", "utf8":
		return unicode.UTF8, nil
	case "iso-8859-1", "latin1":
		return charmap.ISO8859_1, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	case "utf-16be":
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM), nil
	case "utf-16le":
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), nil
	default:
		return nil, fmt.Errorf("unsupported charset %q", name)
	}
}

// SetupTest is called by the harness when this client enters service.
func (c *TextClient) SetupTest() {
	zap.L().Info("text client setup",
		zap.String("charset", c.charset))
}

// TeardownTest is called by the harness when this client leaves service.
func (c *TextClient) TeardownTest() {
	zap.L().Info("text client teardown")
}

// Write converts the payload with the configured charset and sends it,
// flushing when done. A payload the charset cannot represent is returned as
// an error with zero bytes written; transport failures are logged and
// swallowed.
func (c *TextClient) Write(w io.Writer, payload string) error {
	data, err := c.enc.NewEncoder().Bytes([]byte(payload))

	if err != nil {
		return &InvalidEncodingError{Payload: payload, Err: err}
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

	zap.L().Debug("wrote text payload",
		zap.Int("bytes", len(data)))

	return nil
}

// WriteStream copies an already-encoded payload from r to the stream and
// flushes. Transport failures are logged and swallowed like plain writes.
func (c *TextClient) WriteStream(w io.Writer, r io.Reader) error {
	n, err := io.Copy(w, r)

	if err != nil {
		zap.L().Warn("stream write error",
			zap.Error(err))
		return nil
	}

	if err := flush(w); err != nil {
		zap.L().Warn("write flush error",
			zap.Error(err))
		return nil
	}

	zap.L().Debug("wrote streamed payload",
		zap.Int64("bytes", n))

	return nil
}

// Read collects one inbound message and returns it decoded with the
// configured charset. Termination follows the binary client's rules; bytes
// the charset cannot decode fall back to the raw string so a read never
// fails outright.
func (c *TextClient) Read(r io.Reader) string {
	message, err := readStream(r, c.eolByte, c.eolIgnore)

	if err != nil {
		zap.L().Warn("read error",
			zap.Error(err))
		return ""
	}

	zap.L().Debug("read text message",
		zap.Int("bytes", len(message)))

	decoded, err := c.enc.NewDecoder().Bytes(message)

	if err != nil {
		zap.L().Warn("response does not decode with configured charset",
			zap.String("charset", c.charset),
			zap.Error(err))
		return string(message)
	}

	return string(decoded)
}

// EomByte returns the current end-of-line byte.
func (c *TextClient) EomByte() int8 {
	return c.eolByte
}

// SetEomByte replaces the end-of-line byte and re-enables detection.
func (c *TextClient) SetEomByte(eom int8) {
	c.eolByte = eom
	c.eolIgnore = false
}
