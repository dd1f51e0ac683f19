package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

// deadliner is implemented by net.Conn and *os.File.
type deadliner interface {
	SetReadDeadline(t time.Time) error
}

// readTimeouter is implemented by serial port handles.
type readTimeouter interface {
	SetReadTimeout(t time.Duration) error
}

// Stream adapts an io.ReadWriter where every Read returns one whole
// transfer, such as a USB bulk pipe or a HID device handle.
//
// The receive timeout is enforced when the device supports
// SetReadDeadline or SetReadTimeout. Otherwise Read blocks until the
// device answers and only ctx cancellation observed before the read
// applies.
type Stream struct {
	rw io.ReadWriter
}

// NewStream wraps rw.
func NewStream(rw io.ReadWriter) *Stream {
	if rw == nil {
		panic("device cannot be nil")
	}
	return &Stream{rw: rw}
}

// Send writes data in a single Write call.
func (s *Stream) Send(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	n, err := s.rw.Write(data)
	if err != nil {
		return fmt.Errorf("write: %w", err)
	}
	if n != len(data) {
		return fmt.Errorf("short write: %d of %d bytes", n, len(data))
	}
	return nil
}

// Receive performs one Read of at most maxLen bytes.
func (s *Stream) Receive(ctx context.Context, maxLen int, timeout time.Duration) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := s.armTimeout(ctx, timeout); err != nil {
		return nil, err
	}

	buf := make([]byte, maxLen)
	n, err := s.rw.Read(buf)
	if err != nil {
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return nil, ErrTimeout
		}
		if errors.Is(err, io.EOF) && n == 0 {
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("read: %w", err)
	}
	if n == 0 {
		// Serial handles report an expired read timeout as (0, nil).
		return nil, ErrTimeout
	}

	return buf[:n], nil
}

func (s *Stream) armTimeout(ctx context.Context, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	remaining := time.Until(deadline)
	if remaining <= 0 {
		return ErrTimeout
	}

	switch dev := s.rw.(type) {
	case deadliner:
		return dev.SetReadDeadline(deadline)
	case readTimeouter:
		return dev.SetReadTimeout(remaining)
	default:
		return nil
	}
}
