package handlers

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"tcpmeter/core/configs"
	"tcpmeter/core/results"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Window in seconds for the per second throughput numbers.
const throughputWindow = 5

// Handler loop that dispatches the request schedule into channels and creates routines that will send and read
type WorkloadHandler struct {
	numThread       uint32               // Number of workers
	workerChannels  []chan string        // Channels carrying each worker's payload schedule
	activeSamplers  []*Sampler           // Samplers, one per worker
	sampleLogs      []*results.SampleLog // Raw per worker sample timings
	FullWorkload    [][]string           // Payload schedule per worker
	readyChannels   []chan bool          // channels that signal ready to start
	wg              *sync.WaitGroup      // All threads done
	numSamples      uint64               // number of samples sent
	numErrors       uint64               // Number of errors during workload
	limiter         *rate.Limiter        // Paces sample starts across all workers
	plan            configs.TPSIntervals // Samples per second for each second of a paced run
	unpacedDuration time.Duration        // Length of an unpaced timed run, 0 otherwise
	startTime       time.Time            // When RunBench released the workers
	ctx             context.Context      // Cancelled when the run is over
	cancel          context.CancelFunc
}

func NewWorkloadHandler(numThread uint32, samplers []*Sampler) *WorkloadHandler {
	return &WorkloadHandler{
		numThread:      numThread,
		activeSamplers: samplers,
	}
}

// Initialise the samplers and connect to the target
func (wh *WorkloadHandler) Connect() error {
	var combinedErr error

	for _, s := range wh.activeSamplers {
		if err := s.Connect(); err != nil {
			combinedErr = multierr.Append(combinedErr, err)
		}
	}

	return combinedErr
}

// Build each worker's payload schedule, populate the channels and start the
// worker routines waiting on their ready signals.
func (wh *WorkloadHandler) ParseWorkloads(config *configs.BenchConfig) error {
	payloads := make([]string, 0, len(config.Requests))
	for _, r := range config.Requests {
		payloads = append(payloads, r.Payload)
	}

	wh.ctx, wh.cancel = context.WithCancel(context.Background())

	var schedules [][]string

	switch {
	case len(config.Load.Intervals) > 0:
		// Paced run: the plan fixes the total, the limiter shapes it.
		wh.plan = config.Load.Intervals
		wh.limiter = rate.NewLimiter(rate.Limit(wh.plan[0]), 1)

		total := 0
		for _, v := range wh.plan {
			total += v
		}

		schedules = splitSchedule(cycleSchedule(payloads, total), int(wh.numThread))

	case config.Load.Duration > 0:
		// Timed unpaced run, feeders refill the channels until the
		// clock runs out.
		wh.unpacedDuration = time.Duration(config.Load.Duration) * time.Second

	default:
		// Single pass, every worker sends the request list once.
		for i := 0; i < int(wh.numThread); i++ {
			schedules = append(schedules, payloads)
		}
	}

	wh.FullWorkload = schedules

	// Set up the workload channels
	var readyChannels []chan bool
	var wg sync.WaitGroup

	// Distribute the workload into the channels
	for i := 0; i < int(wh.numThread); i++ {
		// Set up
		rch := make(chan bool)
		readyChannels = append(readyChannels, rch)

		var workerChannel chan string
		if schedules != nil {
			workerChannel = make(chan string, len(schedules[i]))
			for _, v := range schedules[i] {
				workerChannel <- v
			}
			close(workerChannel)
		} else {
			workerChannel = make(chan string, len(payloads))
			go wh.feeder(payloads, workerChannel)
		}

		log := results.NewSampleLog()
		wh.sampleLogs = append(wh.sampleLogs, log)
		wh.workerChannels = append(wh.workerChannels, workerChannel)

		// Distribute and start the goroutine
		wg.Add(1)
		go wh.runner(
			wh.activeSamplers[i],
			log,
			workerChannel,
			&wg,
			rch,
		)
	}

	wh.readyChannels = readyChannels
	wh.wg = &wg
	return nil
}

// cycleSchedule repeats the request list until it spans total samples.
func cycleSchedule(payloads []string, total int) []string {
	schedule := make([]string, total)
	for i := 0; i < total; i++ {
		schedule[i] = payloads[i%len(payloads)]
	}
	return schedule
}

// splitSchedule carves the full schedule into per worker slices, the
// leftover lands on the last worker.
func splitSchedule(schedule []string, workers int) [][]string {
	perThread := len(schedule) / workers
	split := make([][]string, workers)

	for i := 0; i < workers; i++ {
		start := i * perThread
		end := start + perThread
		if i == workers-1 {
			end = len(schedule)
		}
		split[i] = schedule[start:end]
	}

	return split
}

// feeder keeps a worker's channel topped up until the run gets cancelled.
func (wh *WorkloadHandler) feeder(payloads []string, workload chan string) {
	defer close(workload)

	for {
		for _, v := range payloads {
			select {
			case workload <- v:
			case <-wh.ctx.Done():
				return
			}
		}
	}
}

// waitTurn blocks until the limiter grants a sample start or the run is
// over. A zero rate second grants nothing and Wait fails straight away, so
// the wait polls until the pacer raises the rate.
func (wh *WorkloadHandler) waitTurn() bool {
	for {
		if err := wh.limiter.Wait(wh.ctx); err == nil {
			return true
		}

		if wh.ctx.Err() != nil {
			return false
		}

		select {
		case <-wh.ctx.Done():
			return false
		case <-time.After(20 * time.Millisecond):
		}
	}
}

// Runner for the thread
func (wh *WorkloadHandler) runner(sampler *Sampler, log *results.SampleLog, workload chan string, wg *sync.WaitGroup, ready chan bool) {
	defer wg.Done()

	// Wait for the signal to go
	<-ready
	zap.L().Info("ready")

	index := 0
	for payload := range workload {
		if wh.limiter != nil && !wh.waitTurn() {
			// The plan is over, drop whatever is queued.
			break
		}

		log.AddStart(index, time.Since(wh.startTime).Milliseconds())

		res := sampler.Sample(payload)

		if res.Err == nil && res.Received > 0 {
			log.AddComplete(index,
				time.Since(wh.startTime).Milliseconds(),
				res.Sent,
				res.Received)
		} else {
			log.AddFail(index, res.Sent)
			atomic.AddUint64(&wh.numErrors, 1)

			if res.Err != nil {
				zap.L().Debug("sample failed",
					zap.Error(res.Err))
			}
		}

		atomic.AddUint64(&wh.numSamples, 1)
		index++
	}
}

func (wh *WorkloadHandler) statusPrinter(stopCh chan bool) {
	var timer *time.Timer = time.NewTimer(5 * time.Second)
	for {
		select {
		case <-stopCh:
			return
		case <-timer.C:
			// print
			zap.L().Info(fmt.Sprintf(
				"%d samples | %d errors",
				atomic.LoadUint64(&wh.numSamples),
				atomic.LoadUint64(&wh.numErrors)))
			timer = time.NewTimer(5 * time.Second)
		}
	}
}

// pacer walks the plan, retuning the limiter each second and ending the
// run after the last one.
func (wh *WorkloadHandler) pacer() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	sec := 0
	for {
		select {
		case <-wh.ctx.Done():
			return
		case <-ticker.C:
			sec++
			if sec >= len(wh.plan) {
				wh.cancel()
				return
			}
			wh.limiter.SetLimit(rate.Limit(wh.plan[sec]))
		}
	}
}

// Run the benchmark
func (wh *WorkloadHandler) RunBench() error {
	stopPrinting := make(chan bool)

	wh.startTime = time.Now()

	go wh.statusPrinter(stopPrinting)

	if wh.limiter != nil {
		go wh.pacer()
	}

	if wh.unpacedDuration > 0 {
		time.AfterFunc(wh.unpacedDuration, wh.cancel)
	}

	for _, ch := range wh.readyChannels {
		ch <- true
	}

	wh.wg.Wait()
	wh.cancel()
	stopPrinting <- true

	return nil
}

// Get the per worker results
func (wh *WorkloadHandler) HandleCleanup() []results.Results {
	workerResults := make([]results.Results, 0, len(wh.sampleLogs))

	for i, log := range wh.sampleLogs {
		zap.L().Debug("processing cleanup",
			zap.Int("worker", i))

		workerResults = append(workerResults, log.Format(throughputWindow))
	}

	return workerResults
}

// Close the samplers and their sockets
func (wh *WorkloadHandler) CloseAll() error {
	var combinedErr error

	for _, s := range wh.activeSamplers {
		if err := s.Close(); err != nil {
			combinedErr = multierr.Append(combinedErr, err)
		}
	}

	return combinedErr
}
