// Package parsers presents the parsing of configuration files, which will
// parse and generate the related information necessary for the use in the
// benchmark file
package parsers

import (
	"fmt"
	"io/ioutil"
	"math"
	"sort"

	"tcpmeter/core/configs"
	"tcpmeter/core/configs/validators"

	"gopkg.in/yaml.v3"
)

// ParseBenchConfig parses the benchmark configuration file from YAML.
// Reads the filepath to see if we can extract the YAML.
func ParseBenchConfig(filepath string) (*configs.BenchConfig, error) {
	// Get the configuration information from the filepath
	configFileBytes, err := ioutil.ReadFile(filepath)

	if err != nil {
		return nil, err
	}

	return parseBenchYaml(configFileBytes, filepath)
}

// parseBenchYaml provides the full unmarshal of the YAML and performs relevant calculations
func parseBenchYaml(content []byte, path string) (*configs.BenchConfig, error) {
	// Try to read the YAML.
	var benchConfig configs.BenchConfig

	err := yaml.Unmarshal(content, &benchConfig)

	if err != nil {
		return nil, err
	}

	// A file without a client block runs the default binary framing.
	if len(benchConfig.Client.Type) == 0 {
		benchConfig.Client = configs.DefaultClientConfig()
	}

	// Check validity
	if ok, err := validators.ValidateBenchConfig(&benchConfig); !ok {
		return nil, err
	}

	// Generate the intervals from the benchmark config
	fullIntervals, err := generateFullIntervals(benchConfig.Load.Intervals, benchConfig.Load.Duration)

	if err != nil {
		return nil, err
	}

	// Add the full intervals into the benchmark configurations
	benchConfig.Load.Intervals = fullIntervals

	benchConfig.Path = path

	return &benchConfig, nil
}

// generateFullIntervals fills the plan into every second of the run with a
// linear ramp between the configured keys.
// A plan without a 0 key ramps up from 0, people can define their own start
// with a 0 index if they want.
func generateFullIntervals(intervals configs.TPSIntervals, duration int) (configs.TPSIntervals, error) {
	// No plan means an unpaced run, nothing to fill.
	if len(intervals) == 0 {
		return intervals, nil
	}

	intervalKeys := make([]int, 0)
	for k := range intervals {
		intervalKeys = append(intervalKeys, k)
	}

	// Sort
	sort.Ints(intervalKeys)

	// Check that it starts at 0
	if _, ok := intervals[0]; !ok {
		// if 0 doesn't exist, we need it to.
		intervalKeys = append([]int{0}, intervalKeys...)
		intervals[0] = 0
	}

	lastKey := intervalKeys[len(intervalKeys)-1]

	if duration > 0 && duration <= lastKey {
		return nil, fmt.Errorf(
			"load plan runs to second %d but duration is %d",
			lastKey,
			duration)
	}

	// make the list of sample intervals
	finalIntervals := make(configs.TPSIntervals, lastKey+1)

	// Go through each interval
	// Fill in the gaps by calculating a linear ramp-up.
	currentKey := intervalKeys[0]
	for _, nextKey := range intervalKeys[1:] {
		// Next value - current value / number of intervals between keys.
		// e.g 10sec=30tps, 40sec=100tps; increment_val = (100-30) / (40-10) => 2.33333 increment per second.

		numberOfIntervals := nextKey - currentKey
		startTPS := intervals[currentKey]
		endTPS := intervals[nextKey]

		incrementValue := float64(endTPS-startTPS) / float64(numberOfIntervals)

		currentTPS := float64(startTPS)
		for i := currentKey; i < nextKey; i++ {
			finalIntervals[i] = int(math.Floor(currentTPS))
			currentTPS += incrementValue
		}

		currentKey = nextKey
	}

	finalIntervals[lastKey] = intervals[lastKey]

	// A duration past the last key holds the final rate until the end.
	for i := lastKey + 1; i < duration; i++ {
		finalIntervals[i] = intervals[lastKey]
	}

	return finalIntervals, nil
}

// GetTotalNumberOfRequests calculates the number of samples the whole
// benchmark will send. A run without a plan has no fixed total and
// returns 0.
func GetTotalNumberOfRequests(config *configs.BenchConfig) (int, error) {
	totalNumberOfRequests := 0

	for _, v := range config.Load.Intervals {
		totalNumberOfRequests += v
	}

	return totalNumberOfRequests, nil
}
