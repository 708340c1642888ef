package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/arloliu/ifsf"
	"github.com/arloliu/ifsf/capture"
	"github.com/arloliu/ifsf/internal/options"
	"github.com/arloliu/ifsf/message"
	"github.com/sirupsen/logrus"
)

// DefaultDialTimeout bounds Dial when the context has no earlier deadline.
const DefaultDialTimeout = 10 * time.Second

// ErrClosed is returned by calls on a closed Client or Pool.
var ErrClosed = errors.New("transport: closed")

// Client performs request/response exchanges over one connection.
//
// Exchanges are serialized; a Client may be shared between goroutines but only
// one frame is in flight at a time.
type Client struct {
	mu          sync.Mutex
	conn        net.Conn
	logger      logrus.FieldLogger
	recorder    *capture.Writer
	assembler   *message.Assembler
	dialTimeout time.Duration
	now         func() time.Time
	closed      bool
}

// Option configures a Client.
type Option = options.Option[*Client]

// WithLogger sets the logger. The default is logrus.StandardLogger().
func WithLogger(l logrus.FieldLogger) Option {
	return options.New(func(c *Client) error {
		if l == nil {
			return fmt.Errorf("nil logger")
		}
		c.logger = l

		return nil
	})
}

// WithRecorder records every frame sent and received into w.
func WithRecorder(w *capture.Writer) Option {
	return options.NoError(func(c *Client) {
		c.recorder = w
	})
}

// WithDialTimeout sets the dial timeout.
func WithDialTimeout(d time.Duration) Option {
	return options.New(func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("invalid dial timeout: %s", d)
		}
		c.dialTimeout = d

		return nil
	})
}

// WithAssembler sets the assembler used by Send. The default is message.Default.
func WithAssembler(a *message.Assembler) Option {
	return options.New(func(c *Client) error {
		if a == nil {
			return fmt.Errorf("nil assembler")
		}
		c.assembler = a

		return nil
	})
}

func newClient(opts []Option) (*Client, error) {
	c := &Client{
		logger:      logrus.StandardLogger(),
		assembler:   message.Default,
		dialTimeout: DefaultDialTimeout,
		now:         time.Now,
	}
	if err := options.Apply(c, opts...); err != nil {
		return nil, err
	}

	return c, nil
}

// Dial connects to addr.
func Dial(ctx context.Context, addr string, opts ...Option) (*Client, error) {
	c, err := newClient(opts)
	if err != nil {
		return nil, err
	}

	d := net.Dialer{Timeout: c.dialTimeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	c.conn = conn
	c.logger = c.logger.WithField("remote", conn.RemoteAddr().String())
	c.logger.Debug("connected")

	return c, nil
}

// NewClient wraps an established connection.
func NewClient(conn net.Conn, opts ...Option) (*Client, error) {
	if conn == nil {
		return nil, fmt.Errorf("nil connection")
	}
	c, err := newClient(opts)
	if err != nil {
		return nil, err
	}
	c.conn = conn

	return c, nil
}

// Exchange sends frame and waits for the response frame, returning its body.
//
// The context deadline is applied to the connection, and cancelling the
// context aborts a blocked read or write. After a failed exchange the
// connection state is unknown and the Client should be closed.
func (c *Client) Exchange(ctx context.Context, frame []byte) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClosed
	}

	deadline, _ := ctx.Deadline()
	if err := c.conn.SetDeadline(deadline); err != nil {
		return nil, err
	}
	stop := context.AfterFunc(ctx, func() {
		_ = c.conn.SetDeadline(time.Now())
	})
	defer stop()

	start := c.now()
	log := c.logger.WithField("bytes", len(frame))
	if mti, err := message.PeekMTI(frame[min(len(frame), message.HeaderLength):]); err == nil {
		log = log.WithField("mti", mti)
	}

	if err := WriteFrame(c.conn, frame); err != nil {
		return nil, c.fail(ctx, log, "write", err)
	}
	c.record(capture.Outbound, start, frame)

	resp, err := readFrame(c.conn)
	if err != nil {
		return nil, c.fail(ctx, log, "read", err)
	}
	c.record(capture.Inbound, c.now(), resp)

	log.WithFields(logrus.Fields{
		"response_bytes": len(resp),
		"elapsed":        c.now().Sub(start),
	}).Debug("exchange complete")

	return resp[message.HeaderLength:], nil
}

func (c *Client) fail(ctx context.Context, log logrus.FieldLogger, op string, err error) error {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		// connection deadlines only ever come from ctx
		<-ctx.Done()
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = fmt.Errorf("%w (%w)", ctxErr, err)
	}
	log.WithError(err).Warnf("%s failed", op)

	return fmt.Errorf("%s frame: %w", op, err)
}

func (c *Client) record(d capture.Direction, at time.Time, frame []byte) {
	if c.recorder == nil {
		return
	}
	if err := c.recorder.Add(capture.Frame{Time: at, Direction: d, Bytes: frame}); err != nil {
		c.logger.WithError(err).Warn("capture failed")
	}
}

// Send encodes m, exchanges it and decodes the typed response.
func (c *Client) Send(ctx context.Context, m ifsf.Message) (ifsf.Message, error) {
	frame, err := ifsf.Encode(c.assembler, m)
	if err != nil {
		return nil, err
	}
	body, err := c.Exchange(ctx, frame)
	if err != nil {
		return nil, err
	}
	resp, err := ifsf.Parse(c.assembler, body)
	if err != nil {
		return nil, err
	}

	want, err := ifsf.ResponseMTI(m.MTI())
	if err == nil && resp.MTI() != want {
		return resp, fmt.Errorf("unexpected response %s to %s", resp.MTI(), m.MTI())
	}

	return resp, nil
}

// RemoteAddr returns the address of the host.
func (c *Client) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// Close closes the connection. Closing twice is a no-op.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	return c.conn.Close()
}
