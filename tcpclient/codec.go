package tcpclient

import (
	"encoding/hex"
	"fmt"
)

// InvalidEncodingError occurs when a request payload cannot be turned into
// the bytes that should go on the wire. It is returned to the caller before
// any transport I/O happens, so a bad payload never reaches the stream.
type InvalidEncodingError struct {
	Payload string // The offending payload
	Err     error  // The underlying decode failure
}

// Error message for a payload that could not be encoded for the wire
func (e *InvalidEncodingError) Error() string {
	return fmt.Sprintf("invalid payload %q: %s", e.Payload, e.Err.Error())
}

func (e *InvalidEncodingError) Unwrap() error {
	return e.Err
}

// EncodeHex converts a binary payload into its lowercase hex representation,
// two digits per byte, high nibble first. An empty input produces "".
func EncodeHex(data []byte) string {
	return hex.EncodeToString(data)
}

// DecodeHex converts a hex-encoded binary string back into bytes. Digits are
// matched case-insensitively. An odd-length string or a non-hex character
// yields an InvalidEncodingError; the input is never truncated or padded to
// make it fit.
func DecodeHex(payload string) ([]byte, error) {
	if len(payload)%2 != 0 {
		return nil, &InvalidEncodingError{
			Payload: payload,
			Err:     hex.ErrLength,
		}
	}

	data, err := hex.DecodeString(payload)

	if err != nil {
		return nil, &InvalidEncodingError{Payload: payload, Err: err}
	}

	return data, nil
}
