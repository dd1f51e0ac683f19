// Package serialport runs Sahara over a serial device node.
//
// Some hosts expose a device in EDL mode (Qualcomm HS-USB QDLoader 9008)
// as a serial port rather than a raw USB interface. The port is a byte
// stream, so Receive rebuilds transfer boundaries by reading until the line
// has been idle for Config.IdleGap.
package serialport

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"go.bug.st/serial"

	"github.com/moffa90/go-sahara/transport"
)

// Defaults used when Config leaves a field zero.
const (
	DefaultBaudRate = 115200
	DefaultIdleGap  = 20 * time.Millisecond
)

// Config holds the serial connection settings.
type Config struct {
	// Path is the device node, e.g. /dev/ttyUSB0 or COM5
	Path string

	// BaudRate is ignored by USB CDC devices but required by the driver
	BaudRate int

	// IdleGap is the silence that ends one transfer
	IdleGap time.Duration
}

// port is the subset of serial.Port used here.
type port interface {
	io.ReadWriteCloser
	SetReadTimeout(t time.Duration) error
}

// Port is a transport.Transport over a serial device.
type Port struct {
	path    string
	port    port
	idleGap time.Duration

	mu     sync.Mutex
	closed bool
}

var _ transport.Transport = (*Port)(nil)

// Open opens and configures the serial device.
func Open(cfg Config) (*Port, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("serial port path cannot be empty")
	}
	if cfg.BaudRate <= 0 {
		cfg.BaudRate = DefaultBaudRate
	}

	mode := &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	sp, err := serial.Open(cfg.Path, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Path, err)
	}
	if err := sp.ResetInputBuffer(); err != nil {
		sp.Close()
		return nil, fmt.Errorf("reset input buffer on %s: %w", cfg.Path, err)
	}

	return newPort(cfg.Path, sp, cfg.IdleGap), nil
}

func newPort(path string, p port, idleGap time.Duration) *Port {
	if idleGap <= 0 {
		idleGap = DefaultIdleGap
	}
	return &Port{path: path, port: p, idleGap: idleGap}
}

// List returns the serial device nodes present on the host.
func List() ([]string, error) {
	return serial.GetPortsList()
}

// Path returns the device node this port was opened on.
func (p *Port) Path() string {
	return p.path
}

// Send writes data to the port.
func (p *Port) Send(ctx context.Context, data []byte) error {
	if err := p.check(ctx); err != nil {
		return err
	}

	written := 0
	for written < len(data) {
		n, err := p.port.Write(data[written:])
		if err != nil {
			return fmt.Errorf("write %s after %d/%d bytes: %w", p.path, written, len(data), err)
		}
		if n == 0 {
			return fmt.Errorf("write %s stalled after %d/%d bytes", p.path, written, len(data))
		}
		written += n
	}
	return nil
}

// Receive waits up to timeout for the first byte, then keeps reading until
// the line is idle or maxLen bytes have arrived.
func (p *Port) Receive(ctx context.Context, maxLen int, timeout time.Duration) ([]byte, error) {
	if err := p.check(ctx); err != nil {
		return nil, err
	}

	if d, ok := ctx.Deadline(); ok {
		remaining := time.Until(d)
		if remaining <= 0 {
			return nil, transport.ErrTimeout
		}
		if remaining < timeout {
			timeout = remaining
		}
	}
	if err := p.port.SetReadTimeout(timeout); err != nil {
		return nil, fmt.Errorf("set read timeout on %s: %w", p.path, err)
	}

	buf := make([]byte, maxLen)
	got, err := p.port.Read(buf)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", p.path, err)
	}
	if got == 0 {
		return nil, transport.ErrTimeout
	}

	if err := p.port.SetReadTimeout(p.idleGap); err != nil {
		return nil, fmt.Errorf("set read timeout on %s: %w", p.path, err)
	}
	for got < maxLen {
		n, err := p.port.Read(buf[got:])
		if err != nil {
			return nil, fmt.Errorf("read %s after %d bytes: %w", p.path, got, err)
		}
		if n == 0 {
			break
		}
		got += n
	}

	return buf[:got], nil
}

// Close closes the port. It is safe to call Close multiple times.
func (p *Port) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	return p.port.Close()
}

func (p *Port) check(ctx context.Context) error {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()

	if closed {
		return transport.ErrClosed
	}
	return ctx.Err()
}
