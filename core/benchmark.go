package core

import (
	"encoding/json"
	"fmt"

	"tcpmeter/connection"
	"tcpmeter/core/configs"
	"tcpmeter/core/handlers"
	"tcpmeter/core/results"
	"tcpmeter/tcpclient"

	"go.uber.org/zap"
)

// Benchmark drives one full run from a parsed configuration: build the
// samplers, connect them to the target, dispatch the workload and collect
// the results.
type Benchmark struct {
	benchmarkConfig *configs.BenchConfig      // Parsed benchmark file
	handler         *handlers.WorkloadHandler // Workload dispatch across the workers
	resultDir       string                    // Where the report lands, empty skips the report
}

// InitBenchmark builds the per worker samplers and the workload handler.
// This will be passed back to the main
func InitBenchmark(bConfig *configs.BenchConfig, resultDir string) (*Benchmark, error) {
	samplers := make([]*handlers.Sampler, 0, bConfig.Threads)

	for i := 0; i < bConfig.Threads; i++ {
		client, err := tcpclient.GetTCPClient(&bConfig.Client)

		if err != nil {
			return nil, err
		}

		samplers = append(samplers, handlers.NewSampler(
			client,
			connection.NewManager(&bConfig.Target)))
	}

	return &Benchmark{
		benchmarkConfig: bConfig,
		handler:         handlers.NewWorkloadHandler(uint32(bConfig.Threads), samplers),
		resultDir:       resultDir,
	}, nil
}

// Main functionality to run
// Holds the majority of the work
func (b *Benchmark) Run() error {
	// Step 1: connect every sampler to the target.
	err := b.handler.Connect()

	if err != nil {
		zap.L().Error("encountered error connecting to the target",
			zap.String("error", err.Error()))
		b.handler.CloseAll()
		return err
	}

	zap.L().Info("Benchmark workers all connected.",
		zap.Int("workers", b.benchmarkConfig.Threads),
		zap.String("target", b.benchmarkConfig.Target.Address()))

	// Step 2: build the workload schedules and start the workers.
	err = b.handler.ParseWorkloads(b.benchmarkConfig)

	if err != nil {
		zap.L().Error("failed to build workload",
			zap.String("error", err.Error()))
		b.handler.CloseAll()
		return err
	}

	// Step 3: run the bench
	err = b.handler.RunBench()

	if err != nil {
		zap.L().Error("encountered error during benchmark",
			zap.String("error", err.Error()))
		b.handler.CloseAll()
		return err
	}

	// Step 4: collect and aggregate the results
	workerResults := b.handler.HandleCleanup()
	aggregatedResults := results.CalculateAggregatedResults(workerResults)

	zap.L().Info("benchmark complete",
		zap.Int("samples", aggregatedResults.TotalSuccess+aggregatedResults.TotalFail),
		zap.Int("errors", aggregatedResults.TotalFail),
		zap.Float64("average latency (ms)", aggregatedResults.AverageLatency),
		zap.Float64("total throughput", aggregatedResults.TotalThroughput))

	a, _ := json.Marshal(aggregatedResults)
	fmt.Println(string(a))

	// Step 5: store results
	if b.resultDir != "" {
		err = results.WriteResultsToFile(b.benchmarkConfig.Path, aggregatedResults, b.resultDir)

		if err != nil {
			zap.L().Warn("failed to write results",
				zap.String("error", err.Error()))
		}
	}

	// Step 6: close all connections
	if err := b.handler.CloseAll(); err != nil {
		zap.L().Warn("failed to close some workers",
			zap.String("error", err.Error()))
	}

	return nil
}
