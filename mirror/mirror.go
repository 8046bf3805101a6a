// Package mirror runs a TCP server that sends every byte it receives
// straight back to the sender. It gives a benchmark a local target to
// exercise framing and load settings against before the real system is
// reachable.
package mirror

import (
	"io"
	"net"
	"sync"

	"go.uber.org/zap"
)

// Server struct that contains the listener and the
// connections currently being mirrored.
type Server struct {
	listener net.Listener

	mu      sync.Mutex
	conns   map[net.Conn]struct{}
	closing bool

	handlers sync.WaitGroup
}

// Listen generates a new mirror server by creating the TCP listener.
func Listen(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)

	// If we can't make a listener, we
	// should fail graciously but immediately.
	if err != nil {
		return nil, err
	}

	return &Server{
		listener: listener,
		conns:    make(map[net.Conn]struct{}),
	}, nil
}

// Addr returns the address the listener is bound to, useful when the
// configured address left the port to the system.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Serve accepts connections and mirrors each one in its own goroutine. It
// blocks until Close stops the listener, returning nil then and the accept
// error on any other failure.
func (s *Server) Serve() error {
	for {
		c, err := s.listener.Accept()

		if err != nil {
			s.mu.Lock()
			closing := s.closing
			s.mu.Unlock()

			if closing {
				return nil
			}

			return err
		}

		s.mu.Lock()
		s.conns[c] = struct{}{}
		s.mu.Unlock()

		s.handlers.Add(1)
		go s.mirror(c)
	}
}

// mirror copies the connection onto itself until the peer hangs up.
func (s *Server) mirror(c net.Conn) {
	defer s.handlers.Done()

	zap.L().Info("mirroring connection",
		zap.String("client", c.RemoteAddr().String()))

	n, err := io.Copy(c, c)

	if err != nil {
		zap.L().Debug("mirrored connection ended",
			zap.String("client", c.RemoteAddr().String()),
			zap.Error(err))
	}

	zap.L().Info("connection closed",
		zap.String("client", c.RemoteAddr().String()),
		zap.Int64("bytes", n))

	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()

	c.Close()
}

// Close stops the listener, disconnects every mirrored client and waits
// for their handlers to finish.
func (s *Server) Close() {
	s.mu.Lock()
	s.closing = true
	conns := make([]net.Conn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	s.listener.Close()

	for _, c := range conns {
		c.Close()
	}

	s.handlers.Wait()
}
