// Package simulator provides a scripted Sahara device.
//
// Device implements transport.Transport, so a sahara.Client can run a full
// session against it without hardware. It answers the host the way EDL
// boot ROMs do and can be configured to misbehave: stay silent, insist on
// image transfer, refuse commands or send payloads of the wrong size.
//
// Example:
//
//	dev := simulator.New(
//	    simulator.WithSerialNumber(0x789EE21B),
//	    simulator.WithHardwareID(0x007F10E1_0000_0000),
//	)
//	result, err := sahara.New(dev).RunSession(ctx)
package simulator

import (
	"context"
	"encoding/binary"
	"sync"
	"time"

	"github.com/moffa90/go-sahara/protocol"
	"github.com/moffa90/go-sahara/transport"
)

// Client commands the simulator knows by default.
const (
	CodeSerialNumber  uint32 = 0x01
	CodeHardwareID    uint32 = 0x02
	CodeOEMPKHash     uint32 = 0x03
	CodeSBLVersion    uint32 = 0x07
	CodeCommandIDList uint32 = 0x08
)

// Device is a simulated EDL device. It is safe for concurrent use, though
// a session only ever drives it from one goroutine.
type Device struct {
	config config

	mu       sync.Mutex
	outbox   [][]byte
	received [][]byte
	resets   int
}

type config struct {
	version          uint32
	minVersion       uint32
	maxCommandLength uint32
	mode             protocol.Mode

	payloads map[uint32][]byte
	refusals map[uint32]protocol.Status

	silent     bool
	imageOnly  bool
	lengthSkew int
	hangAfter  int
}

// Option configures a Device.
type Option func(*config)

var _ transport.Transport = (*Device)(nil)

// New creates a device that has just entered EDL and queued its Hello.
func New(opts ...Option) *Device {
	cfg := config{
		version:          protocol.ProtocolVersion,
		minVersion:       protocol.ProtocolMinVersion,
		maxCommandLength: 0x400,
		mode:             protocol.ModeImageTransferPending,
		payloads:         make(map[uint32][]byte),
		refusals:         make(map[uint32]protocol.Status),
		hangAfter:        -1,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	d := &Device{config: cfg}
	if !cfg.silent {
		d.queue(protocol.Hello{
			Version:           cfg.version,
			VersionCompatible: cfg.minVersion,
			MaxCommandLength:  cfg.maxCommandLength,
			Mode:              cfg.mode,
		})
	}
	return d
}

// WithVersion sets the version range the device advertises in its Hello.
func WithVersion(version, minVersion uint32) Option {
	return func(c *config) {
		c.version = version
		c.minVersion = minVersion
	}
}

// WithAttribute makes the device answer client command code with payload.
func WithAttribute(code uint32, payload []byte) Option {
	return func(c *config) {
		c.payloads[code] = append([]byte(nil), payload...)
	}
}

// WithSerialNumber answers the serial number command with a 4-byte value.
func WithSerialNumber(serial uint32) Option {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, serial)
	return WithAttribute(CodeSerialNumber, b)
}

// WithHardwareID answers the hardware ID command with an 8-byte value.
func WithHardwareID(hwid uint64) Option {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, hwid)
	return WithAttribute(CodeHardwareID, b)
}

// WithRefusal makes the device reject code with an End of Image Transfer
// carrying status.
func WithRefusal(code uint32, status protocol.Status) Option {
	return func(c *config) {
		c.refusals[code] = status
	}
}

// Silent makes the device never send anything.
func Silent() Option {
	return func(c *config) {
		c.silent = true
	}
}

// ImageTransferOnly makes the device ignore the requested mode and ask for
// an image, like boot ROMs without command mode.
func ImageTransferOnly() Option {
	return func(c *config) {
		c.imageOnly = true
	}
}

// WithPayloadSkew makes every data phase skew bytes longer (or shorter,
// when negative) than the length the device declared.
func WithPayloadSkew(skew int) Option {
	return func(c *config) {
		c.lengthSkew = skew
	}
}

// HangAfter makes the device stop answering after it has received n
// transfers.
func HangAfter(n int) Option {
	return func(c *config) {
		c.hangAfter = n
	}
}

// Send accepts one transfer from the host and queues the device's answer.
func (d *Device) Send(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.received = append(d.received, append([]byte(nil), data...))
	if d.config.silent {
		return nil
	}
	if d.config.hangAfter >= 0 && len(d.received) > d.config.hangAfter {
		return nil
	}

	pkt, err := protocol.Decode(data)
	if err != nil {
		d.queue(protocol.EndOfImageTransfer{Status: protocol.StatusInvalidCommand})
		return nil
	}
	d.handle(pkt)
	return nil
}

// Receive returns the next queued transfer. An empty queue reads as a
// timeout straight away, so tests never sleep.
func (d *Device) Receive(ctx context.Context, maxLen int, timeout time.Duration) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.outbox) == 0 {
		return nil, transport.ErrTimeout
	}
	next := d.outbox[0]
	d.outbox = d.outbox[1:]

	if len(next) > maxLen {
		next = next[:maxLen]
	}
	return next, nil
}

// Received returns copies of every transfer the host sent, in order.
func (d *Device) Received() [][]byte {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([][]byte, len(d.received))
	for i, b := range d.received {
		out[i] = append([]byte(nil), b...)
	}
	return out
}

// Resets returns how many Reset packets the device has acknowledged.
func (d *Device) Resets() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.resets
}

func (d *Device) handle(pkt protocol.Packet) {
	switch p := pkt.(type) {
	case protocol.HelloResponse:
		switch {
		case d.config.imageOnly:
			d.queue(protocol.ReadData{ImageID: 0x0D, Offset: 0, Length: 0x50})
		case p.Mode != protocol.ModeCommand:
			d.queue(protocol.EndOfImageTransfer{Status: protocol.StatusInvalidHostMode})
		default:
			d.queue(protocol.CommandReady{})
		}

	case protocol.Execute:
		if status, ok := d.config.refusals[p.ClientCommand]; ok {
			d.queue(protocol.EndOfImageTransfer{Status: status})
			return
		}
		payload, ok := d.config.payloads[p.ClientCommand]
		if !ok {
			d.queue(protocol.EndOfImageTransfer{Status: protocol.StatusExecCmdUnsupported})
			return
		}
		d.queue(protocol.ExecuteResponse{ClientCommand: p.ClientCommand, DataLength: uint32(len(payload))})

	case protocol.ExecuteData:
		payload, ok := d.config.payloads[p.ClientCommand]
		if !ok {
			d.queue(protocol.EndOfImageTransfer{Status: protocol.StatusExecDataInvalidClientCmd})
			return
		}
		d.outbox = append(d.outbox, skew(payload, d.config.lengthSkew))

	case protocol.CommandSwitchMode:
		if p.Mode == protocol.ModeCommand {
			d.queue(protocol.CommandReady{})
			return
		}
		d.queue(protocol.EndOfImageTransfer{Status: protocol.StatusInvalidModeSwitch})

	case protocol.Reset:
		d.resets++
		d.queue(protocol.ResetResponse{})

	default:
		d.queue(protocol.EndOfImageTransfer{Status: protocol.StatusInvalidCommand})
	}
}

// queue must be called with d.mu held, or before the device is shared.
func (d *Device) queue(p protocol.Packet) {
	d.outbox = append(d.outbox, protocol.Encode(p))
}

func skew(payload []byte, n int) []byte {
	out := append([]byte(nil), payload...)
	switch {
	case n > 0:
		out = append(out, make([]byte, n)...)
	case n < 0:
		cut := len(out) + n
		if cut < 0 {
			cut = 0
		}
		out = out[:cut]
	}
	return out
}
