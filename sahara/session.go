package sahara

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/moffa90/go-sahara/attributes"
	"github.com/moffa90/go-sahara/protocol"
)

const stepReset = "reset"

// DefaultKinds is what RunSession queries when no kinds are given.
var DefaultKinds = []attributes.Kind{
	attributes.KindSerialNumber,
	attributes.KindHardwareID,
}

// RunSession performs the complete device interaction:
//  1. Handshake to command mode
//  2. Query each requested attribute in order
//  3. Reset the device, if WithResetOnComplete is set
//
// Unsupported attributes are recorded in the Result and do not stop the
// session. Any other failure ends it immediately and no Result is returned,
// with one exception: when every query succeeded and only the closing reset
// fails, the Result is returned together with the error.
//
// Nothing is retried. The operation can be cancelled via context between
// exchanges.
//
// Example:
//
//	result, err := client.RunSession(ctx, attributes.KindSerialNumber, attributes.KindHardwareID)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if sn, ok := result.SerialNumber(); ok {
//	    fmt.Println("serial:", sn)
//	}
func (c *Client) RunSession(ctx context.Context, kinds ...attributes.Kind) (*Result, error) {
	if len(kinds) == 0 {
		kinds = DefaultKinds
	}
	kinds = dedupe(kinds)

	startTime := time.Now()

	c.reportProgress(Progress{
		Phase:      PhaseHandshake,
		Total:      len(kinds),
		Percentage: 0,
	})

	info, err := c.Handshake(ctx)
	if err != nil {
		return nil, fmt.Errorf("handshake: %w", err)
	}

	result := &Result{
		Info:       info,
		Attributes: make([]AttributeValue, 0, len(kinds)),
	}

	for i, kind := range kinds {
		c.reportProgress(Progress{
			Phase:       PhaseQuerying,
			Attribute:   kind,
			Current:     i,
			Total:       len(kinds),
			Percentage:  5 + float64(i)/float64(len(kinds))*90,
			ElapsedTime: time.Since(startTime),
		})

		v, err := c.Query(ctx, kind)
		if err != nil && !errors.Is(err, ErrUnsupportedAttribute) {
			return nil, fmt.Errorf("query %s: %w", kind, err)
		}
		result.Attributes = append(result.Attributes, v)
	}

	if c.config.ResetOnComplete {
		c.reportProgress(Progress{
			Phase:       PhaseResetting,
			Current:     len(kinds),
			Total:       len(kinds),
			Percentage:  95,
			ElapsedTime: time.Since(startTime),
		})

		if err := c.Reset(ctx); err != nil {
			return result, fmt.Errorf("reset: %w", err)
		}
	}

	c.reportProgress(Progress{
		Phase:       PhaseComplete,
		Current:     len(kinds),
		Total:       len(kinds),
		Percentage:  100,
		ElapsedTime: time.Since(startTime),
	})

	c.logInfo("session complete",
		"attributes", len(kinds),
		"unsupported", len(result.Unsupported()),
		"elapsed", time.Since(startTime).String(),
	)

	return result, nil
}

// Reset asks the device to leave EDL and restart. The client must be in
// StateReady; afterwards it is in StateClosed.
func (c *Client) Reset(ctx context.Context) error {
	if c.state != StateReady {
		return fmt.Errorf("reset in state %s: %w", c.state, ErrInvalidState)
	}

	if err := c.send(ctx, stepReset, protocol.Reset{}); err != nil {
		return err
	}

	pkt, err := c.receive(ctx, stepReset, c.config.Timeout)
	if err != nil {
		return err
	}
	if _, ok := pkt.(protocol.ResetResponse); !ok {
		return c.violation(stepReset, protocol.CmdResetResponse.String(), pkt.Command().String(), nil)
	}

	c.state = StateClosed
	c.logInfo("device reset")
	return nil
}

func dedupe(kinds []attributes.Kind) []attributes.Kind {
	seen := make(map[attributes.Kind]bool, len(kinds))
	out := make([]attributes.Kind, 0, len(kinds))
	for _, k := range kinds {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}
