package message

import (
	"fmt"
	"time"

	"github.com/arloliu/ifsf/buffer"
	"github.com/arloliu/ifsf/internal/options"
	"github.com/arloliu/ifsf/internal/pool"
)

// HeaderLength is the width of the decimal body length that prefixes a frame.
const HeaderLength = 4

// MaxBodyLength is the largest body the 4-digit header can express.
const MaxBodyLength = 9999

// Assembler encodes and decodes messages against their descriptors.
//
// An Assembler holds only configuration and is safe for concurrent use. Every
// Encode call works on its own SegmentBuffer.
type Assembler struct {
	segmentSize int
	pool        buffer.Pool
	location    *time.Location
	now         func() time.Time
}

// AssemblerOption configures an Assembler.
type AssemblerOption = options.Option[*Assembler]

// WithSegmentSize sets the segment size of encode buffers.
func WithSegmentSize(n int) AssemblerOption {
	return options.New(func(a *Assembler) error {
		if n <= 0 {
			return fmt.Errorf("invalid segment size: %d", n)
		}
		a.segmentSize = n

		return nil
	})
}

// WithPool sets the segment pool of encode buffers.
func WithPool(p buffer.Pool) AssemblerOption {
	return options.New(func(a *Assembler) error {
		if p == nil {
			return fmt.Errorf("nil segment pool")
		}
		a.pool = p

		return nil
	})
}

// WithLocation sets the location timestamps are encoded in and decoded into.
func WithLocation(loc *time.Location) AssemblerOption {
	return options.New(func(a *Assembler) error {
		if loc == nil {
			return fmt.Errorf("nil location")
		}
		a.location = loc

		return nil
	})
}

// WithClock sets the clock whose current year completes ShortTimestamp fields.
func WithClock(now func() time.Time) AssemblerOption {
	return options.New(func(a *Assembler) error {
		if now == nil {
			return fmt.Errorf("nil clock")
		}
		a.now = now

		return nil
	})
}

// NewAssembler creates an Assembler.
//
// Defaults: 64-byte segments from the shared segment pool, time.Local and
// time.Now.
func NewAssembler(opts ...AssemblerOption) (*Assembler, error) {
	a := &Assembler{
		segmentSize: pool.DefaultSegmentSize,
		pool:        pool.DefaultSegments(),
		location:    time.Local,
		now:         time.Now,
	}
	if err := options.Apply(a, opts...); err != nil {
		return nil, err
	}

	return a, nil
}

// Default is an Assembler with default options.
var Default = &Assembler{
	segmentSize: pool.DefaultSegmentSize,
	pool:        pool.DefaultSegments(),
	location:    time.Local,
	now:         time.Now,
}

// NewBuffer returns an empty SegmentBuffer with the assembler's segment settings.
func (a *Assembler) NewBuffer(opts ...buffer.Option) (*buffer.SegmentBuffer, error) {
	base := []buffer.Option{buffer.WithSegmentSize(a.segmentSize), buffer.WithPool(a.pool)}

	return buffer.New(append(base, opts...)...)
}

func (a *Assembler) year() int {
	return a.now().In(a.location).Year()
}
