package capture

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/arloliu/ifsf"
	"github.com/arloliu/ifsf/errs"
	"github.com/arloliu/ifsf/format"
	"github.com/arloliu/ifsf/message"
	"github.com/arloliu/ifsf/section"
	"github.com/stretchr/testify/require"
)

var sessionStart = time.Date(2025, 6, 9, 19, 45, 5, 0, time.UTC)

func pingFrame(t *testing.T, stan int) []byte {
	t.Helper()

	frame, err := ifsf.Encode(message.Default, &ifsf.NetworkManagementRequest{
		TransmissionTime: sessionStart,
		STAN:             stan,
		AcquirerID:       "280131",
	})
	require.NoError(t, err)

	return frame
}

func pongFrame(t *testing.T, stan int) []byte {
	t.Helper()

	frame, err := ifsf.Encode(message.Default, &ifsf.NetworkManagementResponse{
		TransmissionTime: sessionStart,
		STAN:             stan,
		AcquirerID:       "280131",
		ActionCode:       ifsf.ActionNetworkAccepted,
	})
	require.NoError(t, err)

	return frame
}

func recordSession(t *testing.T, n int, opts ...WriterOption) ([]byte, []Frame) {
	t.Helper()

	w, err := NewWriter(opts...)
	require.NoError(t, err)

	var frames []Frame
	for i := range n {
		at := sessionStart.Add(time.Duration(i) * 1500 * time.Millisecond)
		out := Frame{Time: at, Direction: Outbound, Bytes: pingFrame(t, i+1)}
		in := Frame{Time: at.Add(120 * time.Millisecond), Direction: Inbound, Bytes: pongFrame(t, i+1)}
		require.NoError(t, w.Add(out))
		require.NoError(t, w.Add(in))
		frames = append(frames, out, in)
	}
	require.Equal(t, 2*n, w.Len())

	data, err := w.Finish()
	require.NoError(t, err)

	return data, frames
}

func requireFrames(t *testing.T, want []Frame, r *Reader) {
	t.Helper()

	require.Equal(t, len(want), r.Len())
	for i, got := range r.All() {
		require.True(t, want[i].Time.Equal(got.Time), "frame %d time", i)
		require.Equal(t, want[i].Direction, got.Direction)
		require.Equal(t, want[i].Bytes, got.Bytes)
	}
}

func TestWriter_RoundTrip(t *testing.T) {
	for _, ct := range []format.CompressionType{
		format.CompressionNone,
		format.CompressionZstd,
		format.CompressionS2,
		format.CompressionLZ4,
	} {
		t.Run(ct.String(), func(t *testing.T) {
			data, frames := recordSession(t, 20, WithCompression(ct))

			r, err := Open(data)
			require.NoError(t, err)
			require.Equal(t, ct, r.Compression())
			require.True(t, r.StartTime().Equal(sessionStart))
			requireFrames(t, frames, r)
		})
	}
}

func TestWriter_BigEndian(t *testing.T) {
	data, frames := recordSession(t, 3, WithBigEndian())

	h, err := section.ParseCaptureHeader(data)
	require.NoError(t, err)
	require.True(t, h.Flag.IsBigEndian())

	r, err := Open(data)
	require.NoError(t, err)
	requireFrames(t, frames, r)
}

func TestWriter_Compresses(t *testing.T) {
	w, err := NewWriter()
	require.NoError(t, err)
	for i := range 200 {
		require.NoError(t, w.Add(Frame{Time: sessionStart, Direction: Outbound, Bytes: pingFrame(t, i)}))
	}
	data, err := w.Finish()
	require.NoError(t, err)

	st := w.Stats()
	require.Equal(t, format.CompressionZstd, st.Algorithm)
	require.Equal(t, int64(200*43), st.OriginalSize)
	require.Less(t, st.Ratio(), 0.5)
	require.Less(t, len(data), 200*43)
}

func TestWriter_Errors(t *testing.T) {
	_, err := NewWriter(WithCompression(format.CompressionType(0x42)))
	require.ErrorIs(t, err, errs.ErrUnsupportedFormat)

	w, err := NewWriter()
	require.NoError(t, err)

	require.ErrorIs(t, w.Add(Frame{Direction: Outbound}), errs.ErrInvalidCapture)
	require.ErrorIs(t, w.Add(Frame{Direction: Outbound, Bytes: make([]byte, section.MaxFrameLength+1)}), errs.ErrInvalidCapture)
	require.ErrorIs(t, w.Add(Frame{Direction: 0, Bytes: []byte("0000")}), errs.ErrInvalidCapture)

	_, err = w.Finish()
	require.NoError(t, err)
	_, err = w.Finish()
	require.ErrorIs(t, err, errs.ErrBufferState)
	require.ErrorIs(t, w.Add(Frame{Direction: Outbound, Bytes: []byte("0000")}), errs.ErrBufferState)
}

func TestWriter_Empty(t *testing.T) {
	w, err := NewWriter()
	require.NoError(t, err)
	data, err := w.Finish()
	require.NoError(t, err)
	require.Len(t, data, section.HeaderSize)

	r, err := Open(data)
	require.NoError(t, err)
	require.Zero(t, r.Len())
}

func TestWriter_ConcurrentAdd(t *testing.T) {
	w, err := NewWriter(WithCompression(format.CompressionS2))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 25 {
				frame := []byte{byte('A' + g), byte(i)}
				if err := w.Add(Frame{Time: sessionStart, Direction: Inbound, Bytes: frame}); err != nil {
					t.Error(err)
				}
			}
		}()
	}
	wg.Wait()

	data, err := w.Finish()
	require.NoError(t, err)
	r, err := Open(data)
	require.NoError(t, err)
	require.Equal(t, 200, r.Len())
}

func TestOpen_Corruption(t *testing.T) {
	data, _ := recordSession(t, 2, WithCompression(format.CompressionNone))

	t.Run("payload byte", func(t *testing.T) {
		bad := bytes.Clone(data)
		bad[len(bad)-1] ^= 0x01
		_, err := Open(bad)
		require.ErrorIs(t, err, errs.ErrChecksumMismatch)
	})

	t.Run("truncated", func(t *testing.T) {
		_, err := Open(data[:len(data)-1])
		require.ErrorIs(t, err, errs.ErrInvalidCapture)
	})

	t.Run("trailing", func(t *testing.T) {
		_, err := Open(append(bytes.Clone(data), 0))
		require.ErrorIs(t, err, errs.ErrInvalidCapture)
	})

	t.Run("magic", func(t *testing.T) {
		bad := bytes.Clone(data)
		bad[1] = 0
		_, err := Open(bad)
		require.ErrorIs(t, err, errs.ErrInvalidMagic)
	})

	t.Run("short", func(t *testing.T) {
		_, err := Open(data[:8])
		require.ErrorIs(t, err, errs.ErrInvalidCapture)
	})
}

func TestOpen_CorruptedCompressedPayload(t *testing.T) {
	data, _ := recordSession(t, 5, WithCompression(format.CompressionZstd))
	h, err := section.ParseCaptureHeader(data)
	require.NoError(t, err)

	bad := bytes.Clone(data)
	bad[h.PayloadOffset] ^= 0xFF
	_, err = Open(bad)
	require.ErrorIs(t, err, errs.ErrInvalidCapture)
}

func TestReader_FrameAndFilter(t *testing.T) {
	data, frames := recordSession(t, 4)
	r, err := Open(data)
	require.NoError(t, err)

	f, err := r.Frame(3)
	require.NoError(t, err)
	require.Equal(t, frames[3].Bytes, f.Bytes)

	_, err = r.Frame(8)
	require.ErrorIs(t, err, errs.ErrBounds)
	_, err = r.Frame(-1)
	require.ErrorIs(t, err, errs.ErrBounds)

	var inbound int
	for f := range r.Filter(Inbound) {
		require.Equal(t, Inbound, f.Direction)
		inbound++
	}
	require.Equal(t, 4, inbound)

	for i := range r.All() {
		if i == 1 {
			break
		}
	}
}

func TestReader_ReplayThroughDecoder(t *testing.T) {
	data, _ := recordSession(t, 3)
	r, err := Open(data)
	require.NoError(t, err)

	for f := range r.Filter(Inbound) {
		msg, err := ifsf.ParseFrame(message.Default, f.Bytes)
		require.NoError(t, err)
		resp, ok := msg.(*ifsf.NetworkManagementResponse)
		require.True(t, ok)
		require.True(t, resp.Approved())
	}
}

func TestWriteFile_ReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.ifsfcap")

	w, err := NewWriter(WithCompression(format.CompressionLZ4))
	require.NoError(t, err)
	frame := pingFrame(t, 9)
	require.NoError(t, w.Add(Frame{Time: sessionStart, Direction: Outbound, Bytes: frame}))
	require.NoError(t, w.WriteFile(path))

	r, err := ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, 1, r.Len())

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing"))
	require.ErrorIs(t, err, os.ErrNotExist)

	var buf bytes.Buffer
	w2, err := NewWriter()
	require.NoError(t, err)
	require.NoError(t, w2.Add(Frame{Time: sessionStart, Direction: Outbound, Bytes: frame}))
	n, err := w2.WriteTo(&buf)
	require.NoError(t, err)
	require.Equal(t, int64(buf.Len()), n)
}
