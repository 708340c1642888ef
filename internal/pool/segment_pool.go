package pool

import (
	"sync"
	"sync/atomic"
)

// Segment size classes. DefaultSegmentSize matches the typical width of a
// single IFSF field group, so a short message fits in two or three segments.
const (
	DefaultSegmentSize = 64
	Segment256         = 1 << 8
	Segment1K          = 1 << 10
	Segment4K          = 1 << 12
	Segment16K         = 1 << 14
)

// SegmentPool hands out fixed-capacity byte blocks from tiered sync.Pools.
//
// Get rounds a request up to the smallest class that fits it. Blocks larger than
// the biggest class are allocated directly and dropped on Put. The pool is safe
// for concurrent use; the blocks it returns are not.
type SegmentPool struct {
	classes []int
	pools   []sync.Pool

	gets atomic.Int64
	puts atomic.Int64
}

// NewSegmentPool creates a pool with the given size classes, which must be
// ascending. With no classes the default tiers are used.
func NewSegmentPool(classes ...int) *SegmentPool {
	if len(classes) == 0 {
		classes = []int{DefaultSegmentSize, Segment256, Segment1K, Segment4K, Segment16K}
	}

	p := &SegmentPool{
		classes: classes,
		pools:   make([]sync.Pool, len(classes)),
	}
	for i, size := range classes {
		size := size
		p.pools[i].New = func() any {
			b := make([]byte, size)
			return &b
		}
	}

	return p
}

// Get returns a block with len == cap >= size.
func (p *SegmentPool) Get(size int) []byte {
	p.gets.Add(1)

	for i, class := range p.classes {
		if size <= class {
			ptr, _ := p.pools[i].Get().(*[]byte)
			return (*ptr)[:class]
		}
	}

	return make([]byte, size)
}

// Put returns a block obtained from Get. Blocks whose capacity does not match a
// size class are left to the garbage collector.
func (p *SegmentPool) Put(b []byte) {
	if b == nil {
		return
	}
	p.puts.Add(1)

	c := cap(b)
	for i, class := range p.classes {
		if c == class {
			b = b[:c]
			p.pools[i].Put(&b)

			return
		}
	}
}

// Outstanding returns the number of blocks handed out by Get and not yet
// returned with Put.
func (p *SegmentPool) Outstanding() int64 {
	return p.gets.Load() - p.puts.Load()
}

var defaultSegmentPool = NewSegmentPool()

// DefaultSegments returns the process wide segment pool.
func DefaultSegments() *SegmentPool {
	return defaultSegmentPool
}
