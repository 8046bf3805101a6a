package handlers

import (
	"testing"

	"tcpmeter/connection"
	"tcpmeter/core/configs"
	"tcpmeter/core/results"
	"tcpmeter/tcpclient"
)

func testBenchConfig(t *testing.T, addr string, threads int) *configs.BenchConfig {
	target := testTarget(t, addr, 1000)

	return &configs.BenchConfig{
		Name:    "handler-test",
		Threads: threads,
		Target:  *target,
		Client: configs.ClientConfig{
			Type:    configs.FramingBinary,
			Eom:     10,
			Prefix:  configs.DefaultPrefix,
			Charset: configs.DefaultCharset,
		},
		Requests: []configs.RequestInfo{
			{Payload: "68690a"},
			{Payload: "686f0a"},
		},
	}
}

func testSamplers(t *testing.T, config *configs.BenchConfig) []*Sampler {
	samplers := make([]*Sampler, 0, config.Threads)

	for i := 0; i < config.Threads; i++ {
		client, err := tcpclient.GetTCPClient(&config.Client)

		if err != nil {
			t.Fatalf("failed to build client: %s", err)
		}

		samplers = append(samplers, NewSampler(client, connection.NewManager(&config.Target)))
	}

	return samplers
}

func runBench(t *testing.T, config *configs.BenchConfig) []results.Results {
	wh := NewWorkloadHandler(uint32(config.Threads), testSamplers(t, config))

	if err := wh.Connect(); err != nil {
		t.Fatalf("failed to connect workers: %s", err)
	}

	if err := wh.ParseWorkloads(config); err != nil {
		t.Fatalf("failed to build workloads: %s", err)
	}

	if err := wh.RunBench(); err != nil {
		t.Fatalf("benchmark failed: %s", err)
	}

	workerResults := wh.HandleCleanup()

	if err := wh.CloseAll(); err != nil {
		t.Errorf("failed to close workers: %s", err)
	}

	return workerResults
}

func TestWorkloadHandlerSinglePass(t *testing.T) {
	addr := startEchoServer(t)
	config := testBenchConfig(t, addr, 2)

	workerResults := runBench(t, config)

	if len(workerResults) != 2 {
		t.Fatalf("expected results from 2 workers, got: %d", len(workerResults))
	}

	agg := results.CalculateAggregatedResults(workerResults)

	// Each worker sends the full request list once.
	if agg.TotalSuccess != 4 {
		t.Errorf("success mismatch: expected 4, got: %d", agg.TotalSuccess)
	}

	if agg.TotalFail != 0 {
		t.Errorf("fail mismatch: expected 0, got: %d", agg.TotalFail)
	}

	if agg.TotalBytesSent != 12 || agg.TotalBytesReceived != 12 {
		t.Errorf("byte totals mismatch: sent %d received %d",
			agg.TotalBytesSent, agg.TotalBytesReceived)
	}
}

func TestWorkloadHandlerPacedPlan(t *testing.T) {
	addr := startEchoServer(t)
	config := testBenchConfig(t, addr, 1)
	config.Load = configs.LoadInfo{
		Duration:  1,
		Intervals: configs.TPSIntervals{0: 4},
	}

	workerResults := runBench(t, config)

	agg := results.CalculateAggregatedResults(workerResults)

	// The plan fixes the total number of samples.
	if agg.TotalSuccess != 4 {
		t.Errorf("success mismatch: expected 4, got: %d", agg.TotalSuccess)
	}
}

func TestWorkloadHandlerTimedRun(t *testing.T) {
	addr := startEchoServer(t)
	config := testBenchConfig(t, addr, 1)
	config.Load = configs.LoadInfo{Duration: 1}

	workerResults := runBench(t, config)

	agg := results.CalculateAggregatedResults(workerResults)

	if agg.TotalSuccess == 0 {
		t.Errorf("expected an unpaced timed run to complete some samples")
	}

	if agg.TotalFail != 0 {
		t.Errorf("fail mismatch: expected 0, got: %d", agg.TotalFail)
	}
}

func TestCycleSchedule(t *testing.T) {
	schedule := cycleSchedule([]string{"a", "b"}, 5)

	expected := []string{"a", "b", "a", "b", "a"}

	if len(schedule) != len(expected) {
		t.Fatalf("schedule length mismatch: expected %d, got: %d",
			len(expected), len(schedule))
	}

	for i, v := range expected {
		if schedule[i] != v {
			t.Errorf("schedule[%d] mismatch: expected %s, got: %s", i, v, schedule[i])
		}
	}
}

func TestSplitSchedule(t *testing.T) {
	schedule := cycleSchedule([]string{"a"}, 6)

	split := splitSchedule(schedule, 4)

	if len(split) != 4 {
		t.Fatalf("expected 4 worker schedules, got: %d", len(split))
	}

	// The leftover goes to the last worker.
	lengths := []int{1, 1, 1, 3}
	for i, expected := range lengths {
		if len(split[i]) != expected {
			t.Errorf("worker %d schedule length mismatch: expected %d, got: %d",
				i, expected, len(split[i]))
		}
	}
}
