package sahara

import (
	"context"
	"fmt"

	"github.com/moffa90/go-sahara/protocol"
)

// Handshake steps, used in SessionError.Step.
const (
	stepHello         = "hello"
	stepHelloResponse = "hello response"
	stepNegotiation   = "mode negotiation"
)

// Handshake waits for the device's Hello, answers it asking for command
// mode and waits for the device to confirm. On success the client is in
// StateReady and the returned HelloInfo describes the device.
//
// Every failure is a *SessionError and leaves the client in StateFailed:
//   - KindTimeout: no Hello, or no answer to the Hello response
//   - KindVersionMismatch: the version ranges do not overlap; nothing is sent
//   - KindUnsupportedMode: the device asked for an image or refused command mode
//   - KindProtocolViolation: anything else the device sent
func (c *Client) Handshake(ctx context.Context) (protocol.HelloInfo, error) {
	if c.state != StateAwaitingHello {
		return protocol.HelloInfo{}, fmt.Errorf("handshake in state %s: %w", c.state, ErrInvalidState)
	}

	pkt, err := c.receive(ctx, stepHello, c.config.HelloTimeout)
	if err != nil {
		return protocol.HelloInfo{}, err
	}

	hello, ok := pkt.(protocol.Hello)
	if !ok {
		return protocol.HelloInfo{}, c.violation(stepHello, protocol.CmdHello.String(), pkt.Command().String(), nil)
	}
	info := hello.Info()

	c.logDebug("device hello",
		"version", info.Version,
		"min_version", info.MinCompatibleVersion,
		"max_command_length", info.MaxCommandLength,
		"mode", info.Mode.String(),
	)

	if err := c.checkVersion(info); err != nil {
		return protocol.HelloInfo{}, err
	}

	resp := protocol.NewHelloResponse(c.config.Version, c.config.MinVersion, protocol.ModeCommand)
	if err := c.send(ctx, stepHelloResponse, resp); err != nil {
		return protocol.HelloInfo{}, err
	}
	c.state = StateNegotiatingMode

	pkt, err = c.receive(ctx, stepNegotiation, c.config.Timeout)
	if err != nil {
		return protocol.HelloInfo{}, err
	}

	switch p := pkt.(type) {
	case protocol.CommandReady:
		info.Negotiated = min(info.Version, c.config.Version)
		c.state = StateReady
		c.info = info
		c.logInfo("device ready", "version", info.Negotiated, "mode", protocol.ModeCommand.String())
		return info, nil

	case protocol.ReadData, protocol.ReadData64:
		return protocol.HelloInfo{}, c.fail(&SessionError{
			Kind:     KindUnsupportedMode,
			Step:     stepNegotiation,
			Expected: protocol.CmdCommandReady.String(),
			Actual:   fmt.Sprintf("%s (device wants an image)", p.Command()),
		})

	case protocol.EndOfImageTransfer:
		return protocol.HelloInfo{}, c.fail(&SessionError{
			Kind:     KindUnsupportedMode,
			Step:     stepNegotiation,
			Expected: protocol.CmdCommandReady.String(),
			Actual:   fmt.Sprintf("%s with status %s", p.Command(), p.Status),
		})

	default:
		return protocol.HelloInfo{}, c.violation(stepNegotiation, protocol.CmdCommandReady.String(), pkt.Command().String(), nil)
	}
}

// checkVersion fails unless the device can talk the version we advertise
// and is not older than the oldest version we accept.
func (c *Client) checkVersion(info protocol.HelloInfo) error {
	if info.MinCompatibleVersion <= c.config.Version && info.Version >= c.config.MinVersion {
		return nil
	}
	return c.fail(&SessionError{
		Kind:     KindVersionMismatch,
		Step:     stepHello,
		Expected: fmt.Sprintf("device range covering %d-%d", c.config.MinVersion, c.config.Version),
		Actual:   fmt.Sprintf("device version %d, compatible down to %d", info.Version, info.MinCompatibleVersion),
	})
}
