package transport

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Pool shares a bounded set of connections to one host.
//
// At most size exchanges run at once; further callers wait for a slot or for
// their context. Connections are dialed lazily and returned to the idle list
// after a successful exchange. A connection whose exchange failed is closed.
type Pool struct {
	addr string
	opts []Option
	sem  *semaphore.Weighted

	mu     sync.Mutex
	idle   []*Client
	closed bool
}

// NewPool creates a pool of up to size connections to addr. Options are
// checked here and applied to every dialed Client.
func NewPool(addr string, size int, opts ...Option) (*Pool, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid pool size: %d", size)
	}
	if _, err := newClient(opts); err != nil {
		return nil, err
	}

	return &Pool{
		addr: addr,
		opts: opts,
		sem:  semaphore.NewWeighted(int64(size)),
	}, nil
}

// Exchange runs one exchange on a pooled connection.
func (p *Pool) Exchange(ctx context.Context, frame []byte) ([]byte, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer p.sem.Release(1)

	c, err := p.get(ctx)
	if err != nil {
		return nil, err
	}

	body, err := c.Exchange(ctx, frame)
	if err != nil {
		_ = c.Close()

		return nil, err
	}
	p.put(c)

	return body, nil
}

func (p *Pool) get(ctx context.Context) (*Client, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()

		return nil, ErrClosed
	}
	if n := len(p.idle); n > 0 {
		c := p.idle[n-1]
		p.idle = p.idle[:n-1]
		p.mu.Unlock()

		return c, nil
	}
	p.mu.Unlock()

	return Dial(ctx, p.addr, p.opts...)
}

func (p *Pool) put(c *Client) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		_ = c.Close()

		return
	}
	p.idle = append(p.idle, c)
}

// Idle returns the number of idle connections.
func (p *Pool) Idle() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.idle)
}

// Close closes the idle connections. Busy connections are closed when their
// exchange finishes.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true
	var first error
	for _, c := range p.idle {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	p.idle = nil

	return first
}
