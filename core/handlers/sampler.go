package handlers

import (
	"tcpmeter/connection"
	"tcpmeter/tcpclient"
)

// SampleResult is the outcome of one request and response exchange.
type SampleResult struct {
	Response string // Response payload, hex or text depending on the framing
	Sent     int64  // Bytes that went on the wire
	Received int64  // Bytes read back
	Err      error  // Bad payload or unreachable target, nothing was sampled
}

// Sampler sends request payloads to the server under test through one
// framing client and one connection manager.
// A Sampler is owned by a single worker goroutine.
type Sampler struct {
	client  tcpclient.TCPClient
	manager *connection.Manager
}

func NewSampler(client tcpclient.TCPClient, manager *connection.Manager) *Sampler {
	return &Sampler{
		client:  client,
		manager: manager,
	}
}

// Connect prepares the client and proves the target is reachable. Under
// connection reuse the socket dialled here serves the first sample.
func (s *Sampler) Connect() error {
	s.client.SetupTest()

	conn, err := s.manager.Acquire()

	if err != nil {
		return err
	}

	s.manager.Release(conn)

	return nil
}

// Sample performs one exchange: write the payload, read the response. A
// sample with no response bytes at all discards its socket so the next one
// starts fresh.
func (s *Sampler) Sample(payload string) SampleResult {
	conn, err := s.manager.Acquire()

	if err != nil {
		return SampleResult{Err: err}
	}

	sentBefore, receivedBefore := conn.Counters()

	if err := s.client.Write(conn.Writer(), payload); err != nil {
		// The payload itself is bad, nothing went on the wire.
		s.manager.Release(conn)
		return SampleResult{Err: err}
	}

	response := s.client.Read(conn.Reader())

	sentAfter, receivedAfter := conn.Counters()
	sent := sentAfter - sentBefore
	received := receivedAfter - receivedBefore

	if received == 0 {
		s.manager.Discard(conn)
		return SampleResult{Sent: sent}
	}

	s.manager.Release(conn)

	return SampleResult{
		Response: response,
		Sent:     sent,
		Received: received,
	}
}

// Close tears the client down and closes any kept socket.
func (s *Sampler) Close() error {
	s.client.TeardownTest()

	return s.manager.Close()
}
