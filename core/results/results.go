// Package results contains the information about the results and handles the
// processing and display / logging of the information. The results are passed
// from all workers and collated once the benchmark ends.
// The goal of this package is to provide a central point to display the results
// which over time will develop into more complex processing and utilisation of
// available information.
package results

import "sort"

// Results is the result structure each worker produces at the end of a run
type Results struct {
	SampleLatencies   []float64 `json:"SampleLatencies"`   // Latency of each sample in milliseconds, can be used in CDF
	AverageLatency    float64   `json:"AverageLatency"`    // Averaged latency of the samples
	Throughput        float64   `json:"Throughput"`        // Number of samples per second completed
	ThroughputSeconds []float64 `json:"ThroughputSeconds"` // Windowed throughput over each second of the run
	Success           int       `json:"Success"`           // Samples that got a response back
	Fail              int       `json:"Fail"`              // Samples that did not
	BytesSent         int64     `json:"BytesSent"`         // Bytes written on the wire
	BytesReceived     int64     `json:"BytesReceived"`     // Bytes read back
}

// AggregatedResults returns all the information from all workers, and
// stores the calculated information (e.g. max, min, ...)
type AggregatedResults struct {
	WorkerResults      []Results // All results from the workers
	TotalThroughput    float64   // Total cumulative throughput
	MaxThroughput      float64   // maximum throughput observed
	MinThroughput      float64   // minimum throughput observed
	AverageThroughput  float64   // average throughput
	MaxLatency         float64   // highest latency observed
	MinLatency         float64   // smallest latency observed
	AverageLatency     float64   // average latency
	MedianLatency      float64   // median latency
	TotalSuccess       int       // samples answered across all workers
	TotalFail          int       // samples unanswered across all workers
	TotalBytesSent     int64     // bytes written across all workers
	TotalBytesReceived int64     // bytes read across all workers
}

// CalculateAggregatedResults calculates the aggregated results given the set of results from the workers
func CalculateAggregatedResults(workerResults []Results) AggregatedResults {

	if len(workerResults) == 0 {
		return AggregatedResults{}
	}

	// First, we want to get all the information
	var averageThroughput float64
	var maxThroughput float64
	minThroughput := workerResults[0].Throughput
	var totalThroughput float64

	var allLatencies []float64
	var averageLatency float64

	var totalSuccess, totalFail int
	var totalBytesSent, totalBytesReceived int64

	for _, res := range workerResults {
		allLatencies = append(allLatencies, res.SampleLatencies...)

		// Averages
		averageLatency += res.AverageLatency
		averageThroughput += res.Throughput
		totalThroughput += res.Throughput

		// Counters
		totalSuccess += res.Success
		totalFail += res.Fail
		totalBytesSent += res.BytesSent
		totalBytesReceived += res.BytesReceived

		// Maximum and minimums
		if res.Throughput > maxThroughput {
			maxThroughput = res.Throughput
		}
		if res.Throughput < minThroughput {
			minThroughput = res.Throughput
		}
	}

	// If empty
	if allLatencies == nil {
		allLatencies = []float64{0}
	}

	sort.Float64s(allLatencies)
	averageThroughput = averageThroughput / float64(len(workerResults))
	averageLatency = averageLatency / float64(len(workerResults))
	var medianLatency float64

	// If it's even
	midNumber := len(allLatencies) / 2
	if len(allLatencies)%2 == 0 {
		medianLatency = (allLatencies[midNumber-1] + allLatencies[midNumber]) / 2
	} else {
		medianLatency = allLatencies[midNumber]
	}

	return AggregatedResults{
		WorkerResults:      workerResults,
		TotalThroughput:    totalThroughput,
		MaxThroughput:      maxThroughput,
		MinThroughput:      minThroughput,
		AverageThroughput:  averageThroughput,
		MaxLatency:         allLatencies[len(allLatencies)-1],
		MinLatency:         allLatencies[0],
		AverageLatency:     averageLatency,
		MedianLatency:      medianLatency,
		TotalSuccess:       totalSuccess,
		TotalFail:          totalFail,
		TotalBytesSent:     totalBytesSent,
		TotalBytesReceived: totalBytesReceived,
	}
}
