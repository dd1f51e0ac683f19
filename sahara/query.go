package sahara

import (
	"context"
	"fmt"

	"github.com/moffa90/go-sahara/attributes"
	"github.com/moffa90/go-sahara/protocol"
)

// Query steps, used in SessionError.Step.
const (
	stepExecute             = "execute"
	stepExecuteResponse     = "execute response"
	stepExecuteData         = "execute data"
	stepExecuteDataResponse = "execute data response"
)

// Query fetches one attribute with the two-step execute exchange. The
// client must be in StateReady.
//
// If the attribute table has no entry for kind at the negotiated version
// (HelloInfo.Negotiated),
// or the device refuses the command, Query returns an AttributeValue with
// Supported false together with an *UnsupportedAttributeError. The client
// stays Ready and further queries may be made.
//
// Any other failure is a *SessionError and moves the client to StateFailed.
func (c *Client) Query(ctx context.Context, kind attributes.Kind) (AttributeValue, error) {
	if c.state != StateReady {
		return AttributeValue{}, fmt.Errorf("query %s in state %s: %w", kind, c.state, ErrInvalidState)
	}

	entry, err := c.config.Table.Lookup(kind, c.info.Negotiated)
	if err != nil {
		return c.unsupported(&UnsupportedAttributeError{Kind: kind, Reason: err.Error(), Err: err})
	}
	code := entry.Code

	if err := c.send(ctx, stepExecute, protocol.Execute{ClientCommand: code}); err != nil {
		return AttributeValue{}, err
	}

	pkt, err := c.receive(ctx, stepExecuteResponse, c.config.Timeout)
	if err != nil {
		return AttributeValue{}, err
	}

	var declared uint32
	switch p := pkt.(type) {
	case protocol.ExecuteResponse:
		if p.ClientCommand != code {
			return AttributeValue{}, c.violation(stepExecuteResponse,
				fmt.Sprintf("client command 0x%02X", code),
				fmt.Sprintf("client command 0x%02X", p.ClientCommand), nil)
		}
		if p.DataLength == 0 {
			return c.unsupported(&UnsupportedAttributeError{
				Kind: kind, Code: code, Reason: "device has no data for this command",
			})
		}
		if uint64(p.DataLength) > uint64(c.config.MaxTransferSize) {
			return AttributeValue{}, c.violation(stepExecuteResponse,
				fmt.Sprintf("data length <= %d", c.config.MaxTransferSize),
				fmt.Sprintf("%d", p.DataLength), nil)
		}
		declared = p.DataLength

	case protocol.EndOfImageTransfer:
		if !p.Status.IsCommandUnsupported() {
			return AttributeValue{}, c.violation(stepExecuteResponse,
				protocol.CmdExecuteResponse.String(),
				fmt.Sprintf("%s with status %s", p.Command(), p.Status), nil)
		}
		return c.unsupported(&UnsupportedAttributeError{
			Kind: kind, Code: code, Status: p.Status, Reason: p.Status.String(),
		})

	case protocol.Hello:
		return AttributeValue{}, c.violation(stepExecuteResponse,
			protocol.CmdExecuteResponse.String(), "repeated Hello while ready", nil)

	default:
		return AttributeValue{}, c.violation(stepExecuteResponse,
			protocol.CmdExecuteResponse.String(), pkt.Command().String(), nil)
	}

	if err := c.send(ctx, stepExecuteData, protocol.ExecuteData{ClientCommand: code}); err != nil {
		return AttributeValue{}, err
	}

	raw, err := c.receiveRaw(ctx, stepExecuteDataResponse, c.config.Timeout)
	if err != nil {
		return AttributeValue{}, err
	}

	// The data phase has no header, so a clean Hello or End of Image
	// Transfer frame here is the device restarting or bailing out.
	if pkt, err := protocol.Decode(raw); err == nil {
		switch p := pkt.(type) {
		case protocol.Hello:
			return AttributeValue{}, c.violation(stepExecuteDataResponse,
				fmt.Sprintf("%d payload bytes", declared), "repeated Hello while ready", nil)
		case protocol.EndOfImageTransfer:
			return AttributeValue{}, c.violation(stepExecuteDataResponse,
				fmt.Sprintf("%d payload bytes", declared),
				fmt.Sprintf("%s with status %s", p.Command(), p.Status), nil)
		}
	}

	resp, err := protocol.DecodeExecuteData(raw, code, declared)
	if err != nil {
		return AttributeValue{}, c.violation(stepExecuteDataResponse,
			fmt.Sprintf("%d payload bytes", declared),
			fmt.Sprintf("%d", len(raw)), err)
	}

	v, err := entry.Decode(resp.Payload)
	if err != nil {
		return AttributeValue{}, c.violation(stepExecuteDataResponse,
			fmt.Sprintf("%s payload", entry.Encoding), fmt.Sprintf("%d bytes", len(resp.Payload)), err)
	}

	c.logDebug("attribute read", "kind", string(kind), "code", fmt.Sprintf("0x%02X", code), "bytes", len(resp.Payload))

	return AttributeValue{
		Kind:      kind,
		Code:      code,
		Supported: true,
		Status:    protocol.StatusSuccess,
		Value:     v.Uint,
		List:      v.List,
		Raw:       v.Raw,
	}, nil
}

func (c *Client) unsupported(err *UnsupportedAttributeError) (AttributeValue, error) {
	c.logInfo("attribute unsupported", "kind", string(err.Kind), "reason", err.Reason)
	return AttributeValue{
		Kind:   err.Kind,
		Code:   err.Code,
		Status: err.Status,
		Reason: err.Reason,
	}, err
}
