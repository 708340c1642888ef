package hostsim

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/arloliu/ifsf/buffer"
	"github.com/arloliu/ifsf/internal/options"
	"github.com/lesismal/nbio"
	"github.com/sirupsen/logrus"
)

// DefaultReadBufferSize is the nbio read buffer size per poller.
const DefaultReadBufferSize = 4096

// ErrRunning is returned by Start on a server that is already running.
var ErrRunning = errors.New("hostsim: server already running")

// Server is the simulated host.
type Server struct {
	addr           string
	name           string
	readBufferSize int
	logger         logrus.FieldLogger
	responder      *Responder

	mu     sync.Mutex
	gopher *nbio.Gopher

	handled atomic.Int64
	failed  atomic.Int64
}

// ServerOption configures a Server.
type ServerOption = options.Option[*Server]

// WithLogger sets the logger. The default is logrus.StandardLogger().
func WithLogger(l logrus.FieldLogger) ServerOption {
	return options.New(func(s *Server) error {
		if l == nil {
			return fmt.Errorf("nil logger")
		}
		s.logger = l

		return nil
	})
}

// WithResponder sets the responder. The default approves everything.
func WithResponder(r *Responder) ServerOption {
	return options.New(func(s *Server) error {
		if r == nil {
			return fmt.Errorf("nil responder")
		}
		s.responder = r

		return nil
	})
}

// WithName sets the event loop name shown in nbio logs.
func WithName(name string) ServerOption {
	return options.NoError(func(s *Server) {
		s.name = name
	})
}

// WithReadBufferSize sets the nbio read buffer size.
func WithReadBufferSize(n int) ServerOption {
	return options.New(func(s *Server) error {
		if n <= 0 {
			return fmt.Errorf("invalid read buffer size: %d", n)
		}
		s.readBufferSize = n

		return nil
	})
}

// NewServer creates a host that will listen on addr.
func NewServer(addr string, opts ...ServerOption) (*Server, error) {
	if addr == "" {
		return nil, fmt.Errorf("empty listen address")
	}

	s := &Server{
		addr:           addr,
		name:           "ifsf-host",
		readBufferSize: DefaultReadBufferSize,
		logger:         logrus.StandardLogger(),
	}
	if err := options.Apply(s, opts...); err != nil {
		return nil, err
	}
	if s.responder == nil {
		r, err := NewResponder()
		if err != nil {
			return nil, err
		}
		s.responder = r
	}
	s.logger = s.logger.WithField("listen", addr)

	return s, nil
}

// session is the per-connection state kept in the nbio session slot.
//
// nbio may run the close callback from inside a write or close issued by the
// data callback, so the framer is released by whichever side holds mu last.
type session struct {
	mu     sync.Mutex
	closed atomic.Bool
	framer *Framer
	log    logrus.FieldLogger
}

func (s *session) releaseIfClosed() {
	if s.closed.Load() && s.mu.TryLock() {
		s.framer.Release()
		s.mu.Unlock()
	}
}

// Start begins listening. It returns once the listener is bound.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gopher != nil {
		return ErrRunning
	}

	g := nbio.NewGopher(nbio.Config{
		Name:           s.name,
		Network:        "tcp",
		Addrs:          []string{s.addr},
		ReadBufferSize: s.readBufferSize,
		EpollMod:       nbio.EPOLLET,
	})
	g.OnOpen(s.onOpen)
	g.OnData(s.onData)
	g.OnClose(s.onClose)

	if err := g.Start(); err != nil {
		return fmt.Errorf("start host on %s: %w", s.addr, err)
	}
	s.gopher = g
	s.logger.Info("host started")

	return nil
}

// Stop closes the listener and all connections. Stopping a stopped server is
// a no-op.
func (s *Server) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gopher == nil {
		return
	}
	s.gopher.Stop()
	s.gopher = nil
	s.logger.WithFields(logrus.Fields{
		"handled": s.handled.Load(),
		"failed":  s.failed.Load(),
	}).Info("host stopped")
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.addr
}

// Handled returns the number of requests answered.
func (s *Server) Handled() int64 {
	return s.handled.Load()
}

// Failed returns the number of connections closed because of a bad request.
func (s *Server) Failed() int64 {
	return s.failed.Load()
}

func (s *Server) onOpen(c *nbio.Conn) {
	log := s.logger.WithField("remote", c.RemoteAddr().String())

	framer, err := NewFramer(s.responder.Assembler())
	if err != nil {
		log.WithError(err).Error("framer setup failed")
		_ = c.CloseWithError(err)

		return
	}
	c.SetSession(&session{framer: framer, log: log})
	log.Debug("connection opened")
}

func (s *Server) onData(c *nbio.Conn, data []byte) {
	sess, ok := c.Session().(*session)
	if !ok {
		return
	}

	sess.mu.Lock()
	if sess.closed.Load() {
		sess.mu.Unlock()

		return
	}
	err := sess.framer.Feed(data, func(mti string, body *buffer.SegmentBuffer) error {
		frame, err := s.responder.Handle(mti, body)
		if err != nil {
			return err
		}
		if _, err := c.Write(frame); err != nil {
			return fmt.Errorf("write answer: %w", err)
		}
		s.handled.Add(1)
		sess.log.WithFields(logrus.Fields{
			"mti":   mti,
			"bytes": len(frame),
		}).Debug("request answered")

		return nil
	})
	sess.mu.Unlock()

	if err != nil {
		s.failed.Add(1)
		sess.log.WithError(err).Warn("closing connection")
		_ = c.CloseWithError(err)
	}
	sess.releaseIfClosed()
}

func (s *Server) onClose(c *nbio.Conn, err error) {
	sess, ok := c.Session().(*session)
	if !ok {
		return
	}

	sess.closed.Store(true)
	sess.releaseIfClosed()

	log := sess.log
	if err != nil {
		log = log.WithError(err)
	}
	log.Debug("connection closed")
}
