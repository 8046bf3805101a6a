package configs

import (
	"fmt"
)

// TargetConfig contains the information about the server under test and the
// socket policy used to reach it.
type TargetConfig struct {
	Host     string        `yaml:"host"`          // Host name or address of the server
	Port     int           `yaml:"port"`          // TCP port of the server
	Timeouts TimeoutConfig `yaml:"timeouts,flow"` // Socket timeouts
	Reuse    bool          `yaml:"reuse"`         // Keep the connection across samples
}

// Socket timeouts in milliseconds.
type TimeoutConfig struct {
	Connect  int `yaml:"connect"`  // Dial timeout
	Response int `yaml:"response"` // Read and write deadline, 0 waits forever
}

// Default dial timeout in milliseconds.
const DefaultConnectTimeout = 10000

// Address joins host and port into a dialable address.
func (tc *TargetConfig) Address() string {
	return fmt.Sprintf("%s:%d", tc.Host, tc.Port)
}

func (tc *TargetConfig) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var c struct {
		Host     string        `yaml:"host"`
		Port     int           `yaml:"port"`
		Timeouts TimeoutConfig `yaml:"timeouts,flow"`
		Reuse    *bool         `yaml:"reuse"`
	}
	err := unmarshal(&c)

	if err != nil {
		return err
	}

	// A nil Reuse means the field was absent, connections are kept by
	// default.
	reuse := true
	if c.Reuse != nil {
		reuse = *c.Reuse
	}

	if c.Timeouts.Connect == 0 {
		c.Timeouts.Connect = DefaultConnectTimeout
	}

	(*tc).Host = c.Host
	(*tc).Port = c.Port
	(*tc).Timeouts = c.Timeouts
	(*tc).Reuse = reuse

	return nil
}
