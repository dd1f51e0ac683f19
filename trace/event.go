// Package trace records the transfers of a Sahara session and replays them.
//
// A Recorder wraps any transport.Transport and appends one CBOR-encoded
// Event per Send or Receive to a writer. A Replayer turns a recorded session
// back into a Transport, so a failure seen on one machine can be reproduced
// in a test without the device.
//
//	f, _ := os.Create("session.cbor")
//	rec := trace.NewRecorder(port, f)
//	result, err := sahara.New(rec).RunSession(ctx)
//
//	events, _ := trace.Load("session.cbor")
//	replay := trace.NewReplayer(trace.Session(events, events[0].SessionID))
//	result, err = sahara.New(replay).RunSession(ctx)
package trace

import (
	"fmt"
	"time"
)

// Event is one transfer, or failed transfer attempt, on the transport.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the call returned (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID groups the events of one recording (UUID).
	SessionID string `cbor:"2,keyasint"`

	// Seq numbers events within a session, starting at 1.
	Seq uint32 `cbor:"3,keyasint"`

	// Direction of the transfer.
	Direction Direction `cbor:"4,keyasint"`

	// Data is the transfer as sent or received.
	Data []byte `cbor:"5,keyasint,omitempty"`

	// Outcome of the call.
	Outcome Outcome `cbor:"6,keyasint,omitempty"`

	// Error is the error text for OutcomeError.
	Error string `cbor:"7,keyasint,omitempty"`

	// Elapsed is how long the call took.
	Elapsed time.Duration `cbor:"8,keyasint,omitempty"`
}

// Direction indicates which side sent a transfer.
type Direction uint8

const (
	// DirectionIn is a transfer from the device.
	DirectionIn Direction = 0
	// DirectionOut is a transfer from the host.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Outcome is how a transport call ended.
type Outcome uint8

const (
	// OutcomeOK means the transfer went through.
	OutcomeOK Outcome = 0
	// OutcomeTimeout means Receive timed out.
	OutcomeTimeout Outcome = 1
	// OutcomeError means the call failed for another reason.
	OutcomeError Outcome = 2
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "OK"
	case OutcomeTimeout:
		return "TIMEOUT"
	case OutcomeError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Summary is a one-line description of the event for dumps.
func (e Event) Summary() string {
	switch e.Outcome {
	case OutcomeTimeout:
		return fmt.Sprintf("#%d %s timeout after %s", e.Seq, e.Direction, e.Elapsed)
	case OutcomeError:
		return fmt.Sprintf("#%d %s error: %s", e.Seq, e.Direction, e.Error)
	default:
		return fmt.Sprintf("#%d %s %d bytes", e.Seq, e.Direction, len(e.Data))
	}
}
