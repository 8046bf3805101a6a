package validators

import (
	"errors"
	"fmt"

	"tcpmeter/core/configs"
	"tcpmeter/tcpclient"

	"go.uber.org/zap"
)

// Validates all fields of the benchmark configuration
// Determines the validity and returns a boolean whether it is
// valid or invalid.
func ValidateBenchConfig(c *configs.BenchConfig) (bool, error) {
	// Empty name is an error
	if len(c.Name) == 0 {
		return false, errors.New("missing benchmark name")
	}

	// Description can be omitted, but we will warn.
	if len(c.Description) == 0 {
		zap.L().Warn("Missing description in configuration file.")
	}

	if c.Threads < 1 {
		return false, errors.New("benchmark needs at least one thread")
	}

	if len(c.Target.Host) == 0 {
		return false, errors.New("missing target host")
	}

	if c.Target.Port <= 0 || c.Target.Port > 65535 {
		return false, fmt.Errorf("target port %d out of range", c.Target.Port)
	}

	if c.Target.Timeouts.Connect < 0 || c.Target.Timeouts.Response < 0 {
		return false, errors.New("target timeouts cannot be negative")
	}

	// At least one request is needed, and binary framings carry their
	// payloads as hex strings.
	if len(c.Requests) == 0 {
		return false, errors.New("no requests provided")
	}

	for i, request := range c.Requests {
		if len(request.Payload) == 0 {
			return false, fmt.Errorf("request %d has an empty payload", i)
		}

		if c.Client.Type == configs.FramingBinary || c.Client.Type == configs.FramingBinaryLength {
			if _, err := tcpclient.DecodeHex(request.Payload); err != nil {
				return false, fmt.Errorf("request %d: %v", i, err)
			}
		}
	}

	if c.Load.Duration < 0 {
		return false, errors.New("load duration cannot be negative")
	}

	// Check that there are no negative values.
	for k := range c.Load.Intervals {
		if k < 0 {
			return false, fmt.Errorf("tps key %d cannot be negative", k)
		}

		if c.Load.Intervals[k] < 0 {
			return false, fmt.Errorf(
				"tps value %d at key %d cannot be negative",
				c.Load.Intervals[k],
				k)
		}
	}

	return true, nil
}
