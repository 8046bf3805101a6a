package results

type sampleStat struct {
	start    int64 // -1 if never happened
	complete int64 // -1 if never happened
	sent     int64 // bytes written on the wire
	received int64 // bytes read back
}

// SampleLog collects the raw timing of every sample a worker sends, to be
// turned into a Results at the end of the run.
type SampleLog struct {
	stats map[int]*sampleStat // index -> sampleStat
}

func NewSampleLog() *SampleLog {
	return &SampleLog{
		stats: make(map[int]*sampleStat),
	}
}

func (l *SampleLog) getStat(index int) *sampleStat {
	stat, present := l.stats[index]

	if !present {
		stat = &sampleStat{
			start:    -1,
			complete: -1,
		}

		l.stats[index] = stat
	}

	return stat
}

// Log that a sample has been written to the server.
//
// index: index of the sample within the thread workload
// when:  write time relative to benchmark start in milliseconds
func (l *SampleLog) AddStart(index int, when int64) {
	l.getStat(index).start = when
}

// Log that a sample got its response back.
//
// index: index of the sample within the thread workload
// when: response time relative to benchmark start in milliseconds
func (l *SampleLog) AddComplete(index int, when int64, sent int64, received int64) {
	stat := l.getStat(index)
	stat.complete = when
	stat.sent = sent
	stat.received = received
}

// Log that a sample never got a response. Bytes that still made it onto the
// wire are kept for the totals.
func (l *SampleLog) AddFail(index int, sent int64) {
	l.getStat(index).sent = sent
}

// Format turns the log into the Results structure, with the per second
// throughput averaged over a sliding window of the given length.
func (l *SampleLog) Format(window int) Results {
	var ret Results

	ret.SampleLatencies = make([]float64, 0)

	maxComplete := 0
	var latencySum float64

	for _, s := range l.stats {
		ret.BytesSent += s.sent
		ret.BytesReceived += s.received

		if s.start >= 0 && s.complete >= 0 {
			lat := float64(s.complete - s.start)
			ret.SampleLatencies = append(ret.SampleLatencies, lat)
			latencySum += lat
			ret.Success++

			if int(s.complete/1000) > maxComplete {
				maxComplete = int(s.complete / 1000)
			}
		} else {
			ret.Fail++
		}
	}

	if ret.Success > 0 {
		ret.AverageLatency = latencySum / float64(ret.Success)
	}

	completePerSecond := make([]int, maxComplete+1)

	for _, s := range l.stats {
		if s.start >= 0 && s.complete >= 0 {
			completePerSecond[int(s.complete/1000)]++
		}
	}

	ret.ThroughputSeconds = make([]float64, len(completePerSecond))
	total := 0
	sum := 0

	for i := 0; i < len(completePerSecond); i++ {
		total += completePerSecond[i]
		sum += completePerSecond[i]

		if i >= window {
			sum -= completePerSecond[i-window]
			ret.ThroughputSeconds[i] = float64(sum) / float64(window)
		} else {
			ret.ThroughputSeconds[i] = float64(sum) / float64(i+1)
		}
	}

	if len(completePerSecond) > 0 {
		ret.Throughput = float64(total) / float64(len(completePerSecond))
	}

	return ret
}
