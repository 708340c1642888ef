package capture

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/arloliu/ifsf/compress"
	"github.com/arloliu/ifsf/errs"
	"github.com/arloliu/ifsf/format"
	"github.com/arloliu/ifsf/internal/hash"
	"github.com/arloliu/ifsf/internal/options"
	"github.com/arloliu/ifsf/internal/pool"
	"github.com/arloliu/ifsf/section"
)

// Direction tells which side of the link sent a frame.
type Direction = section.Direction

const (
	Outbound = section.DirectionOutbound
	Inbound  = section.DirectionInbound
)

// Frame is one recorded frame.
type Frame struct {
	// Time is when the frame was sent or received. Archives keep microsecond
	// precision.
	Time      time.Time
	Direction Direction
	// Bytes is the whole frame, length header included.
	Bytes []byte
}

// Writer accumulates frames and produces an archive.
type Writer struct {
	mu          sync.Mutex
	compression format.CompressionType
	bigEndian   bool
	start       time.Time
	entries     []section.FrameIndexEntry
	payload     *pool.ByteBuffer
	stats       compress.Stats
	finished    bool
}

// WriterOption configures a Writer.
type WriterOption = options.Option[*Writer]

// WithCompression sets the payload compression. The default is Zstd.
func WithCompression(c format.CompressionType) WriterOption {
	return options.New(func(w *Writer) error {
		if _, err := compress.GetCodec(c); err != nil {
			return err
		}
		w.compression = c

		return nil
	})
}

// WithBigEndian writes the header and index in big-endian byte order.
func WithBigEndian() WriterOption {
	return options.NoError(func(w *Writer) {
		w.bigEndian = true
	})
}

// NewWriter creates an empty archive writer.
func NewWriter(opts ...WriterOption) (*Writer, error) {
	w := &Writer{compression: format.CompressionZstd}
	if err := options.Apply(w, opts...); err != nil {
		return nil, err
	}
	w.payload = pool.GetArchiveBuffer()

	return w, nil
}

// Add appends a frame. The frame bytes are copied.
//
// Returns errs.ErrInvalidCapture for an empty or oversized frame or an unknown
// direction, and errs.ErrBufferState once the writer is finished.
func (w *Writer) Add(f Frame) error {
	if len(f.Bytes) == 0 || len(f.Bytes) > section.MaxFrameLength {
		return fmt.Errorf("%w: frame of %d bytes", errs.ErrInvalidCapture, len(f.Bytes))
	}
	if !f.Direction.Valid() {
		return fmt.Errorf("%w: %s", errs.ErrInvalidCapture, f.Direction)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.finished {
		return fmt.Errorf("%w: capture writer is finished", errs.ErrBufferState)
	}
	if len(w.entries) == 0 {
		w.start = f.Time
	}

	w.entries = append(w.entries, section.FrameIndexEntry{
		Checksum:   hash.Sum(f.Bytes),
		TimeOffset: f.Time.Sub(w.start).Microseconds(),
		Offset:     uint32(w.payload.Len()), //nolint: gosec
		Length:     uint16(len(f.Bytes)),    //nolint: gosec
		Direction:  f.Direction,
	})
	w.payload.MustWrite(f.Bytes)

	return nil
}

// Len returns the number of frames added so far.
func (w *Writer) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	return len(w.entries)
}

// Stats returns the compression statistics of the finished archive.
func (w *Writer) Stats() compress.Stats {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.stats
}

// Finish compresses the payload and returns the archive bytes. The writer
// rejects further frames afterwards.
func (w *Writer) Finish() ([]byte, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.finished {
		return nil, fmt.Errorf("%w: capture writer is finished", errs.ErrBufferState)
	}
	w.finished = true
	defer func() {
		pool.PutArchiveBuffer(w.payload)
		w.payload = nil
	}()

	codec, err := compress.GetCodec(w.compression)
	if err != nil {
		return nil, err
	}
	raw := w.payload.Bytes()
	packed, stats, err := compress.Run(codec, w.compression, raw)
	if err != nil {
		return nil, err
	}
	w.stats = stats

	h := section.NewCaptureHeader(w.start)
	if w.bigEndian {
		h.Flag.WithBigEndian()
	}
	h.Flag.SetCompression(w.compression)
	payloadOffset := section.HeaderSize + len(w.entries)*section.FrameIndexEntrySize
	h.FrameCount = uint32(len(w.entries))   //nolint: gosec
	h.PayloadOffset = uint32(payloadOffset) //nolint: gosec
	h.PayloadSize = uint32(len(packed))     //nolint: gosec
	h.RawSize = uint32(len(raw))            //nolint: gosec

	out := make([]byte, int(h.PayloadOffset)+len(packed))
	copy(out, h.Bytes())
	engine := h.Flag.GetEndianEngine()
	off := section.HeaderSize
	for i := range w.entries {
		off = w.entries[i].WriteToSlice(out, off, engine)
	}
	copy(out[off:], packed)

	return out, nil
}

// WriteTo finishes the archive and writes it to dst.
func (w *Writer) WriteTo(dst io.Writer) (int64, error) {
	data, err := w.Finish()
	if err != nil {
		return 0, err
	}
	n, err := dst.Write(data)

	return int64(n), err
}

// WriteFile finishes the archive and writes it to path.
func (w *Writer) WriteFile(path string) error {
	data, err := w.Finish()
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644) //nolint: gosec
}
