package results

import (
	"testing"
)

func TestCalculateAggregatedResults(t *testing.T) {

	check := func(fn string, expected, got interface{}) {
		if got != expected {
			t.Errorf(
				"%s mismatch: expected %v, got: %v",
				fn,
				expected,
				got,
			)
		}
	}

	t.Run("test empty results", func(t *testing.T) {
		agg := CalculateAggregatedResults(nil)

		check("total throughput", float64(0), agg.TotalThroughput)
		check("median latency", float64(0), agg.MedianLatency)
		check("total success", 0, agg.TotalSuccess)
	})

	t.Run("test two workers", func(t *testing.T) {
		workerResults := []Results{
			{
				SampleLatencies: []float64{10, 20, 30},
				AverageLatency:  20,
				Throughput:      3,
				Success:         3,
				Fail:            1,
				BytesSent:       100,
				BytesReceived:   200,
			},
			{
				SampleLatencies: []float64{40, 50},
				AverageLatency:  45,
				Throughput:      5,
				Success:         2,
				Fail:            0,
				BytesSent:       50,
				BytesReceived:   60,
			},
		}

		agg := CalculateAggregatedResults(workerResults)

		check("total throughput", float64(8), agg.TotalThroughput)
		check("max throughput", float64(5), agg.MaxThroughput)
		check("min throughput", float64(3), agg.MinThroughput)
		check("average throughput", float64(4), agg.AverageThroughput)
		check("max latency", float64(50), agg.MaxLatency)
		check("min latency", float64(10), agg.MinLatency)
		check("average latency", float64(32.5), agg.AverageLatency)
		check("median latency", float64(30), agg.MedianLatency)
		check("total success", 5, agg.TotalSuccess)
		check("total fail", 1, agg.TotalFail)
		check("total bytes sent", int64(150), agg.TotalBytesSent)
		check("total bytes received", int64(260), agg.TotalBytesReceived)
	})

	t.Run("test even latency count median", func(t *testing.T) {
		workerResults := []Results{
			{
				SampleLatencies: []float64{10, 20},
				AverageLatency:  15,
				Throughput:      2,
			},
		}

		agg := CalculateAggregatedResults(workerResults)

		check("median latency", float64(15), agg.MedianLatency)
	})
}

func TestSampleLogFormat(t *testing.T) {

	check := func(fn string, expected, got interface{}) {
		if got != expected {
			t.Errorf(
				"%s mismatch: expected %v, got: %v",
				fn,
				expected,
				got,
			)
		}
	}

	t.Run("test latencies and counters", func(t *testing.T) {
		log := NewSampleLog()

		log.AddStart(0, 100)
		log.AddComplete(0, 250, 4, 8)

		log.AddStart(1, 1100)
		log.AddComplete(1, 1400, 4, 8)

		log.AddStart(2, 2000)
		log.AddFail(2, 4)

		res := log.Format(5)

		check("success", 2, res.Success)
		check("fail", 1, res.Fail)
		check("latency count", 2, len(res.SampleLatencies))
		check("average latency", float64(225), res.AverageLatency)
		check("bytes sent", int64(12), res.BytesSent)
		check("bytes received", int64(16), res.BytesReceived)
		check("throughput", float64(1), res.Throughput)
	})

	t.Run("test windowed throughput", func(t *testing.T) {
		log := NewSampleLog()

		log.AddStart(0, 100)
		log.AddComplete(0, 200, 1, 1)
		log.AddStart(1, 300)
		log.AddComplete(1, 400, 1, 1)
		log.AddStart(2, 1100)
		log.AddComplete(2, 1200, 1, 1)

		res := log.Format(1)

		check("seconds", 2, len(res.ThroughputSeconds))
		check("second 0", float64(2), res.ThroughputSeconds[0])
		check("second 1", float64(1), res.ThroughputSeconds[1])
		check("throughput", float64(1.5), res.Throughput)
	})

	t.Run("test empty log", func(t *testing.T) {
		log := NewSampleLog()

		res := log.Format(5)

		check("success", 0, res.Success)
		check("fail", 0, res.Fail)
		check("throughput", float64(0), res.Throughput)
	})
}
