package sahara

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/moffa90/go-sahara/attributes"
	"github.com/moffa90/go-sahara/protocol"
	"github.com/moffa90/go-sahara/transport"
)

// State is the position of the client in the Sahara handshake.
type State int

// Client states. Ready, Failed and Closed are terminal for the handshake;
// only Ready accepts queries.
const (
	StateAwaitingHello State = iota
	StateNegotiatingMode
	StateReady
	StateFailed
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateAwaitingHello:
		return "awaiting hello"
	case StateNegotiatingMode:
		return "negotiating mode"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Client drives one Sahara session over a Transport: the handshake, then
// any number of attribute queries.
//
// A Client is single-use and not safe for concurrent use. Create a new one,
// on a freshly connected device, for every session.
type Client struct {
	transport transport.Transport
	config    Config

	state   State
	failure error
	info    protocol.HelloInfo
}

// New creates a new Client on the given transport with the given options.
//
// Example:
//
//	port, err := serialport.Open(serialport.Config{Path: "/dev/ttyUSB0"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer port.Close()
//
//	client := sahara.New(port,
//	    sahara.WithLogger(logger),
//	    sahara.WithTimeout(2*time.Second),
//	)
func New(t transport.Transport, opts ...Option) *Client {
	if t == nil {
		panic("transport cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Table == nil {
		cfg.Table = attributes.Default()
	}

	return &Client{
		transport: t,
		config:    cfg,
		state:     StateAwaitingHello,
	}
}

// State returns the current handshake state.
func (c *Client) State() State {
	return c.state
}

// Err returns the error that moved the client to StateFailed, if any.
func (c *Client) Err() error {
	return c.failure
}

// Info returns what the device reported in its Hello. It is the zero value
// until the handshake reaches StateReady.
func (c *Client) Info() protocol.HelloInfo {
	return c.info
}

// fail moves the client to StateFailed and returns err.
func (c *Client) fail(err error) error {
	c.state = StateFailed
	c.failure = err
	c.logError("session failed", "error", err)
	return err
}

func (c *Client) violation(step, expected, actual string, cause error) error {
	return c.fail(&SessionError{
		Kind:     KindProtocolViolation,
		Step:     step,
		Expected: expected,
		Actual:   actual,
		Err:      cause,
	})
}

// checkContext observes cancellation between exchanges.
func (c *Client) checkContext(ctx context.Context, step string) error {
	err := ctx.Err()
	if err == nil {
		return nil
	}
	kind := KindCanceled
	if errors.Is(err, context.DeadlineExceeded) {
		kind = KindTimeout
	}
	return c.fail(&SessionError{Kind: kind, Step: step, Err: err})
}

func (c *Client) transportError(step string, err error) error {
	kind := KindTransportFailure
	switch {
	case transport.IsTimeout(err):
		kind = KindTimeout
	case errors.Is(err, context.Canceled):
		kind = KindCanceled
	}
	return c.fail(&SessionError{Kind: kind, Step: step, Err: err})
}

// send encodes and transmits one packet.
func (c *Client) send(ctx context.Context, step string, p protocol.Packet) error {
	if err := c.checkContext(ctx, step); err != nil {
		return err
	}

	data := protocol.Encode(p)
	c.logDebug("tx", "step", step, "command", p.Command().String(), "bytes", len(data))

	if err := c.transport.Send(ctx, data); err != nil {
		return c.transportError(step, err)
	}
	return nil
}

// receiveRaw waits for one transfer.
func (c *Client) receiveRaw(ctx context.Context, step string, timeout time.Duration) ([]byte, error) {
	if err := c.checkContext(ctx, step); err != nil {
		return nil, err
	}

	data, err := c.transport.Receive(ctx, c.config.MaxTransferSize, timeout)
	if err != nil {
		return nil, c.transportError(step, err)
	}
	return data, nil
}

// receive waits for one transfer and decodes it as a packet.
func (c *Client) receive(ctx context.Context, step string, timeout time.Duration) (protocol.Packet, error) {
	data, err := c.receiveRaw(ctx, step, timeout)
	if err != nil {
		return nil, err
	}

	pkt, err := protocol.Decode(data)
	if err != nil {
		return nil, c.violation(step, "a valid packet", fmt.Sprintf("%d undecodable bytes", len(data)), err)
	}

	c.logDebug("rx", "step", step, "command", pkt.Command().String(), "bytes", len(data))
	return pkt, nil
}

// reportProgress calls the progress callback if configured.
func (c *Client) reportProgress(progress Progress) {
	if c.config.ProgressCallback != nil {
		c.config.ProgressCallback(progress)
	}
}

// logDebug logs a debug message if a logger is configured.
func (c *Client) logDebug(msg string, keysAndValues ...interface{}) {
	if c.config.Logger != nil {
		c.config.Logger.Debug(msg, keysAndValues...)
	}
}

// logInfo logs an info message if a logger is configured.
func (c *Client) logInfo(msg string, keysAndValues ...interface{}) {
	if c.config.Logger != nil {
		c.config.Logger.Info(msg, keysAndValues...)
	}
}

// logError logs an error message if a logger is configured.
func (c *Client) logError(msg string, keysAndValues ...interface{}) {
	if c.config.Logger != nil {
		c.config.Logger.Error(msg, keysAndValues...)
	}
}
