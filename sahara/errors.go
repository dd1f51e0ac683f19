package sahara

import (
	"errors"
	"fmt"
	"strings"

	"github.com/moffa90/go-sahara/attributes"
	"github.com/moffa90/go-sahara/protocol"
)

// ErrorKind classifies a session-ending failure.
type ErrorKind int

// Session failure kinds.
const (
	// KindTimeout means the device stayed silent past the receive timeout
	KindTimeout ErrorKind = iota + 1

	// KindVersionMismatch means the device's protocol versions do not overlap ours
	KindVersionMismatch

	// KindUnsupportedMode means the device would not enter command mode
	KindUnsupportedMode

	// KindProtocolViolation means the device sent something outside the protocol
	KindProtocolViolation

	// KindTransportFailure means the channel itself failed
	KindTransportFailure

	// KindCanceled means the caller cancelled the context between exchanges
	KindCanceled
)

// Sentinels matched by errors.Is against a *SessionError of the same kind.
var (
	ErrTimeout           = errors.New("sahara: timeout")
	ErrVersionMismatch   = errors.New("sahara: version mismatch")
	ErrUnsupportedMode   = errors.New("sahara: unsupported mode")
	ErrProtocolViolation = errors.New("sahara: protocol violation")
	ErrTransportFailure  = errors.New("sahara: transport failure")
	ErrCanceled          = errors.New("sahara: canceled")
)

var (
	// ErrUnsupportedAttribute matches every *UnsupportedAttributeError
	ErrUnsupportedAttribute = errors.New("sahara: attribute not supported")

	// ErrInvalidState is returned when an operation is not valid in the client's state
	ErrInvalidState = errors.New("sahara: operation not valid in current state")
)

func (k ErrorKind) sentinel() error {
	switch k {
	case KindTimeout:
		return ErrTimeout
	case KindVersionMismatch:
		return ErrVersionMismatch
	case KindUnsupportedMode:
		return ErrUnsupportedMode
	case KindProtocolViolation:
		return ErrProtocolViolation
	case KindTransportFailure:
		return ErrTransportFailure
	case KindCanceled:
		return ErrCanceled
	default:
		return nil
	}
}

func (k ErrorKind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindVersionMismatch:
		return "version mismatch"
	case KindUnsupportedMode:
		return "unsupported mode"
	case KindProtocolViolation:
		return "protocol violation"
	case KindTransportFailure:
		return "transport failure"
	case KindCanceled:
		return "canceled"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// SessionError is a session-ending failure. Step names the exchange that
// failed; Expected and Actual describe the mismatch when there is one.
type SessionError struct {
	Kind     ErrorKind
	Step     string
	Expected string
	Actual   string
	Err      error
}

func (e *SessionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "sahara: %s during %s", e.Kind, e.Step)
	if e.Expected != "" || e.Actual != "" {
		fmt.Fprintf(&b, ": expected %s, got %s", e.Expected, e.Actual)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *SessionError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e.Kind.
func (e *SessionError) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// UnsupportedAttributeError means the device, or the attribute table for
// the negotiated version, cannot provide an attribute. It does not end the
// session.
type UnsupportedAttributeError struct {
	Kind   attributes.Kind
	Code   uint32
	Status protocol.Status
	Reason string

	// Err is the attribute table lookup failure, if that is the cause
	Err error
}

func (e *UnsupportedAttributeError) Error() string {
	if e.Code == 0 {
		return fmt.Sprintf("attribute %s not supported: %s", e.Kind, e.Reason)
	}
	return fmt.Sprintf("attribute %s (command 0x%02X) not supported: %s", e.Kind, e.Code, e.Reason)
}

func (e *UnsupportedAttributeError) Is(target error) bool {
	return target == ErrUnsupportedAttribute
}

func (e *UnsupportedAttributeError) Unwrap() error {
	return e.Err
}

// KindOf returns the failure kind of err, or 0 if err is not a *SessionError.
func KindOf(err error) ErrorKind {
	var se *SessionError
	if errors.As(err, &se) {
		return se.Kind
	}
	return 0
}
