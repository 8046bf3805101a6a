package connection

import (
	"time"

	"tcpmeter/core/configs"

	"go.uber.org/zap"
)

// Manager hands sampling connections to one worker, keeping the socket
// across samples when the target allows reuse.
// A Manager is owned by a single worker goroutine.
type Manager struct {
	addr     string        // Address of the server under test
	connect  time.Duration // Dial timeout
	response time.Duration // Read and write deadline
	reuse    bool          // Keep the socket between samples
	conn     *Conn         // Kept socket, nil when none is open
}

// NewManager builds a manager from the target block of the benchmark
// configuration.
func NewManager(target *configs.TargetConfig) *Manager {
	return &Manager{
		addr:     target.Address(),
		connect:  time.Duration(target.Timeouts.Connect) * time.Millisecond,
		response: time.Duration(target.Timeouts.Response) * time.Millisecond,
		reuse:    target.Reuse,
	}
}

// Acquire returns the kept connection or dials a fresh one.
func (m *Manager) Acquire() (*Conn, error) {
	if m.conn != nil {
		return m.conn, nil
	}

	conn, err := Dial(m.addr, m.connect, m.response)

	if err != nil {
		return nil, err
	}

	if m.reuse {
		m.conn = conn
	}

	return conn, nil
}

// Release gives the connection back after a sample. A target that does not
// allow reuse gets its socket closed, the next sample dials again.
func (m *Manager) Release(conn *Conn) {
	if m.conn == conn {
		return
	}

	if err := conn.Close(); err != nil {
		zap.L().Debug("close after sample failed",
			zap.Error(err))
	}
}

// Discard drops the connection after a failed sample so the next one
// starts on a fresh socket.
func (m *Manager) Discard(conn *Conn) {
	if m.conn == conn {
		m.conn = nil
	}

	if err := conn.Close(); err != nil {
		zap.L().Debug("close of discarded socket failed",
			zap.Error(err))
	}
}

// Close shuts the kept connection down at the end of the run.
func (m *Manager) Close() error {
	if m.conn == nil {
		return nil
	}

	conn := m.conn
	m.conn = nil

	return conn.Close()
}
