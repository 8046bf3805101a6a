package configs

import (
	"errors"
)

// Framing types (binary, binarylength, text)
type FramingType string

const FramingBinary FramingType = "binary"
const FramingBinaryLength FramingType = "binarylength"
const FramingText FramingType = "text"

// Samples Per Second intervals
type TPSIntervals map[int]int

// Default end-of-message integer, outside the signed byte range so a config
// that does not pick a byte runs with detection disabled.
const DefaultEom = 1000

// Default width of the length prefix in bytes.
const DefaultPrefix = 2

// Default charset for text framing.
const DefaultCharset = "utf-8"

// A single request to sample, payload is a hex string for the binary
// framings and plain text for the text framing.
type RequestInfo struct {
	Payload string `yaml:"payload"` // Request payload sent on each sample
}

// Client settings selecting the framing strategy and its knobs.
type ClientConfig struct {
	Type    FramingType `yaml:"type"`    // Framing strategy for reads and writes
	Eom     int         `yaml:"eom"`     // End-of-message integer, values outside a signed byte disable detection
	Prefix  int         `yaml:"prefix"`  // Length prefix width in bytes (binarylength)
	Charset string      `yaml:"charset"` // Charset name (text)
}

// DefaultClientConfig is the client block used when a benchmark file omits
// one entirely.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Type:    FramingBinary,
		Eom:     DefaultEom,
		Prefix:  DefaultPrefix,
		Charset: DefaultCharset,
	}
}

func (cc *ClientConfig) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var c struct {
		Type    FramingType `yaml:"type"`
		Eom     *int        `yaml:"eom"`
		Prefix  int         `yaml:"prefix"`
		Charset string      `yaml:"charset"`
	}
	err := unmarshal(&c)

	if err != nil {
		return err
	}

	if len(c.Type) == 0 {
		c.Type = FramingBinary
	}

	// A nil Eom means the field was absent, an explicit 0 selects the NUL
	// byte as terminator.
	eom := DefaultEom
	if c.Eom != nil {
		eom = *c.Eom
	}

	if c.Prefix == 0 {
		c.Prefix = DefaultPrefix
	}

	switch c.Prefix {
	case 1, 2, 4:
	default:
		return errors.New("length prefix width must be 1, 2 or 4 bytes")
	}

	if len(c.Charset) == 0 {
		c.Charset = DefaultCharset
	}

	(*cc).Type = c.Type
	(*cc).Eom = eom
	(*cc).Prefix = c.Prefix
	(*cc).Charset = c.Charset

	return nil
}

func (ft *FramingType) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var unmarshaled string

	err := unmarshal(&unmarshaled)

	if err != nil {
		return err
	}

	if len(unmarshaled) == 0 {
		return errors.New("empty framing type provided")
	}

	switch unmarshaled {
	case "binary":
		*ft = FramingBinary
	case "binarylength":
		*ft = FramingBinaryLength
	case "text":
		*ft = FramingText
	default:
		return errors.New("framing type is incorrectly defined")
	}

	return nil
}
