package transport

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/arloliu/ifsf"
	"github.com/arloliu/ifsf/capture"
	"github.com/arloliu/ifsf/errs"
	"github.com/arloliu/ifsf/message"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

var echoTime = time.Date(2025, 6, 9, 19, 45, 5, 0, time.UTC)

func echoRequest(stan int) *ifsf.NetworkManagementRequest {
	return &ifsf.NetworkManagementRequest{
		TransmissionTime: echoTime,
		STAN:             stan,
		AcquirerID:       "280131",
	}
}

// answer reads echo requests from conn and answers each with an accepted
// 1810 until the connection closes.
func answer(t *testing.T, conn net.Conn) {
	t.Helper()

	for {
		body, err := ReadFrame(conn)
		if err != nil {
			return
		}
		msg, err := ifsf.Parse(message.Default, body)
		if err != nil {
			t.Errorf("host parse: %v", err)
			return
		}
		req := msg.(*ifsf.NetworkManagementRequest)
		frame, err := ifsf.Encode(message.Default, &ifsf.NetworkManagementResponse{
			TransmissionTime: req.TransmissionTime,
			STAN:             req.STAN,
			AcquirerID:       req.AcquirerID,
			ActionCode:       ifsf.ActionNetworkAccepted,
		})
		if err != nil {
			t.Errorf("host encode: %v", err)
			return
		}
		if err := WriteFrame(conn, frame); err != nil {
			return
		}
	}
}

func pipeClient(t *testing.T, opts ...Option) *Client {
	t.Helper()

	local, remote := net.Pipe()
	go answer(t, remote)
	t.Cleanup(func() { _ = remote.Close() })

	c, err := NewClient(local, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	return c
}

// ==============================================================================
// Framing
// ==============================================================================

func TestWriteBody_ReadFrame(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteBody(&buf, []byte("1800ping")))
	require.NoError(t, WriteBody(&buf, nil))
	require.Equal(t, "00081800ping0000", buf.String())

	body, err := ReadFrame(&buf)
	require.NoError(t, err)
	require.Equal(t, []byte("1800ping"), body)

	body, err = ReadFrame(&buf)
	require.NoError(t, err)
	require.Empty(t, body)

	_, err = ReadFrame(&buf)
	require.ErrorIs(t, err, io.EOF)

	err = WriteBody(io.Discard, make([]byte, message.MaxBodyLength+1))
	require.ErrorIs(t, err, errs.ErrOverflow)
}

func TestWriteFrame_Validates(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, []byte("0003abc")))
	require.ErrorIs(t, WriteFrame(&buf, []byte("0004abc")), errs.ErrFormat)
	require.Equal(t, "0003abc", buf.String())
}

func TestReadFrame_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		err   error
	}{
		{"empty", "", io.EOF},
		{"short header", "00", io.ErrUnexpectedEOF},
		{"non-numeric header", "00x4abcd", errs.ErrFormat},
		{"short body", "0010abc", io.ErrUnexpectedEOF},
		{"missing body", "0010", io.ErrUnexpectedEOF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadFrame(bytes.NewBufferString(tt.input))
			require.ErrorIs(t, err, tt.err)
		})
	}
}

// ==============================================================================
// Client
// ==============================================================================

func TestClient_Send(t *testing.T) {
	c := pipeClient(t)

	resp, err := c.Send(context.Background(), echoRequest(7))
	require.NoError(t, err)

	pong, ok := resp.(*ifsf.NetworkManagementResponse)
	require.True(t, ok)
	require.True(t, pong.Approved())
	require.Equal(t, 7, pong.STAN)
	require.Equal(t, "280131", pong.AcquirerID)

	// the connection is reused for the next exchange
	resp, err = c.Send(context.Background(), echoRequest(8))
	require.NoError(t, err)
	require.Equal(t, 8, resp.(*ifsf.NetworkManagementResponse).STAN)
}

func TestClient_SendUnexpectedResponse(t *testing.T) {
	local, remote := net.Pipe()
	t.Cleanup(func() { _ = remote.Close() })
	go func() {
		if _, err := ReadFrame(remote); err != nil {
			return
		}
		// answer with a request instead of a response
		frame, _ := ifsf.Encode(message.Default, echoRequest(1))
		_ = WriteFrame(remote, frame)
	}()

	c, err := NewClient(local)
	require.NoError(t, err)
	defer c.Close()

	resp, err := c.Send(context.Background(), echoRequest(1))
	require.Error(t, err)
	require.Contains(t, err.Error(), "unexpected response 1800")
	require.Equal(t, ifsf.MTINetworkManagementRequest, resp.MTI())
}

func TestClient_ExchangeTimeout(t *testing.T) {
	local, remote := net.Pipe()
	t.Cleanup(func() { _ = remote.Close() })
	go func() {
		// read the request and never answer
		_, _ = ReadFrame(remote)
	}()

	logger, hook := test.NewNullLogger()
	c, err := NewClient(local, WithLogger(logger))
	require.NoError(t, err)
	defer c.Close()

	frame, err := ifsf.Encode(message.Default, echoRequest(3))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = c.Exchange(ctx, frame)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	require.Equal(t, logrus.WarnLevel, entry.Level)
	require.Equal(t, "1800", entry.Data["mti"])
}

func TestClient_ExchangeCancel(t *testing.T) {
	local, remote := net.Pipe()
	t.Cleanup(func() { _ = remote.Close() })
	go func() { _, _ = ReadFrame(remote) }()

	c, err := NewClient(local, WithLogger(logrus.New()))
	require.NoError(t, err)
	defer c.Close()

	frame, err := ifsf.Encode(message.Default, echoRequest(4))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(30*time.Millisecond, cancel)

	_, err = c.Exchange(ctx, frame)
	require.ErrorIs(t, err, context.Canceled)
}

func TestClient_Recorder(t *testing.T) {
	rec, err := capture.NewWriter()
	require.NoError(t, err)

	c := pipeClient(t, WithRecorder(rec))
	_, err = c.Send(context.Background(), echoRequest(11))
	require.NoError(t, err)
	require.Equal(t, 2, rec.Len())

	data, err := rec.Finish()
	require.NoError(t, err)
	r, err := capture.Open(data)
	require.NoError(t, err)

	out, err := r.Frame(0)
	require.NoError(t, err)
	require.Equal(t, capture.Outbound, out.Direction)
	_, err = message.SplitFrame(out.Bytes)
	require.NoError(t, err)

	in, err := r.Frame(1)
	require.NoError(t, err)
	require.Equal(t, capture.Inbound, in.Direction)
	msg, err := ifsf.ParseFrame(message.Default, in.Bytes)
	require.NoError(t, err)
	require.Equal(t, ifsf.MTINetworkManagementResponse, msg.MTI())
}

func TestClient_Closed(t *testing.T) {
	c := pipeClient(t)
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	_, err := c.Exchange(context.Background(), []byte("0000"))
	require.ErrorIs(t, err, ErrClosed)
}

func TestClient_Options(t *testing.T) {
	local, remote := net.Pipe()
	defer local.Close()
	defer remote.Close()

	_, err := NewClient(local, WithDialTimeout(0))
	require.Error(t, err)
	_, err = NewClient(local, WithLogger(nil))
	require.Error(t, err)
	_, err = NewClient(local, WithAssembler(nil))
	require.Error(t, err)
	_, err = NewClient(nil)
	require.Error(t, err)
}

func TestDial_Refused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	_, err = Dial(context.Background(), addr, WithDialTimeout(time.Second))
	require.Error(t, err)
	require.Contains(t, err.Error(), addr)
}

// ==============================================================================
// Pool
// ==============================================================================

// host accepts connections on a loopback listener and tracks how many are
// open at once.
type host struct {
	ln      net.Listener
	open    atomic.Int32
	maxOpen atomic.Int32
	wg      sync.WaitGroup
}

func startHost(t *testing.T) *host {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	h := &host{ln: ln}
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			n := h.open.Add(1)
			for {
				m := h.maxOpen.Load()
				if n <= m || h.maxOpen.CompareAndSwap(m, n) {
					break
				}
			}
			h.wg.Add(1)
			go func() {
				defer h.wg.Done()
				defer h.open.Add(-1)
				defer conn.Close()
				answer(t, conn)
			}()
		}
	}()
	t.Cleanup(func() {
		_ = ln.Close()
		h.wg.Wait()
	})

	return h
}

func TestPool_Exchange(t *testing.T) {
	h := startHost(t)

	p, err := NewPool(h.ln.Addr().String(), 3, WithLogger(logrus.New()))
	require.NoError(t, err)

	var g errgroup.Group
	for i := range 24 {
		g.Go(func() error {
			frame, err := ifsf.Encode(message.Default, echoRequest(i+1))
			if err != nil {
				return err
			}
			body, err := p.Exchange(context.Background(), frame)
			if err != nil {
				return err
			}
			msg, err := ifsf.Parse(message.Default, body)
			if err != nil {
				return err
			}
			if got := msg.(*ifsf.NetworkManagementResponse).STAN; got != i+1 {
				return errors.New("response STAN mismatch")
			}

			return nil
		})
	}
	require.NoError(t, g.Wait())

	require.LessOrEqual(t, p.Idle(), 3)
	require.Positive(t, p.Idle())
	require.LessOrEqual(t, h.maxOpen.Load(), int32(3))

	require.NoError(t, p.Close())
	require.Zero(t, p.Idle())

	frame, err := ifsf.Encode(message.Default, echoRequest(99))
	require.NoError(t, err)
	_, err = p.Exchange(context.Background(), frame)
	require.ErrorIs(t, err, ErrClosed)
}

func TestPool_AcquireHonoursContext(t *testing.T) {
	h := startHost(t)

	p, err := NewPool(h.ln.Addr().String(), 1)
	require.NoError(t, err)
	defer p.Close()

	require.NoError(t, p.sem.Acquire(context.Background(), 1))
	defer p.sem.Release(1)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err = p.Exchange(ctx, []byte("0000"))
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewPool_InvalidSize(t *testing.T) {
	_, err := NewPool("127.0.0.1:0", 0)
	require.Error(t, err)

	_, err = NewPool("127.0.0.1:0", 2, WithDialTimeout(0))
	require.Error(t, err)
}
