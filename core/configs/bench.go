package configs

// Benchmark configuration structure, all the information for one run.
type BenchConfig struct {
	Name        string        `yaml:"name"`                  // Name of the benchmark
	Description string        `yaml:"description,omitempty"` // Description of what it is
	Threads     int           `yaml:"threads"`               // Number of sampler workers
	Target      TargetConfig  `yaml:"target,flow"`           // Server under test
	Client      ClientConfig  `yaml:"client,flow"`           // Framing client settings
	Requests    []RequestInfo `yaml:"requests"`              // Request payloads, sampled in order
	Load        LoadInfo      `yaml:"load,flow"`             // Load plan
	Path        string        `yaml:"-"`                     // Path of the parsed file
}

// Load plan for the benchmark: how long to run and how hard to push.
// With a tps plan the run lasts until the last plan second, or until
// Duration when that is longer. Without one, Duration seconds of unpaced
// sampling, or a single pass over the requests when Duration is 0.
type LoadInfo struct {
	Duration  int          `yaml:"duration"` // Run length in seconds
	Intervals TPSIntervals `yaml:"tps"`      // Samples per second over time
}
