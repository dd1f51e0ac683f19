package protocol

import (
	"errors"
	"fmt"
)

// DecodeErrorKind classifies why a buffer could not be decoded.
type DecodeErrorKind int

const (
	// Truncated means the buffer is shorter than the packet header
	Truncated DecodeErrorKind = iota + 1

	// LengthMismatch means the declared length differs from the buffer size
	LengthMismatch

	// UnknownCommand means the command id is not recognized
	UnknownCommand

	// MalformedBody means the body is inconsistent with the command layout
	MalformedBody
)

// Sentinels matched by DecodeError via errors.Is.
var (
	ErrTruncated      = errors.New("truncated packet")
	ErrLengthMismatch = errors.New("packet length mismatch")
	ErrUnknownCommand = errors.New("unknown command")
	ErrMalformedBody  = errors.New("malformed packet body")
)

func (k DecodeErrorKind) sentinel() error {
	switch k {
	case Truncated:
		return ErrTruncated
	case LengthMismatch:
		return ErrLengthMismatch
	case UnknownCommand:
		return ErrUnknownCommand
	case MalformedBody:
		return ErrMalformedBody
	default:
		return nil
	}
}

// String returns the kind name.
func (k DecodeErrorKind) String() string {
	if err := k.sentinel(); err != nil {
		return err.Error()
	}
	return "unknown decode error"
}

// DecodeError describes a buffer that does not hold a valid packet.
type DecodeError struct {
	Kind DecodeErrorKind

	// Command is the command id read from the header, if one was present
	Command Command

	// Declared is the length the packet claims (header LEN or the length
	// announced by Execute Response)
	Declared int

	// Actual is the number of bytes supplied
	Actual int

	// Reason adds detail for MalformedBody
	Reason string
}

func (e *DecodeError) Error() string {
	switch e.Kind {
	case Truncated:
		return fmt.Sprintf("truncated packet: got %d bytes, header needs %d", e.Actual, HeaderSize)
	case LengthMismatch:
		return fmt.Sprintf("packet length mismatch for command 0x%02X: declared %d bytes, got %d",
			uint32(e.Command), e.Declared, e.Actual)
	case UnknownCommand:
		return fmt.Sprintf("unknown command 0x%02X", uint32(e.Command))
	case MalformedBody:
		return fmt.Sprintf("malformed %s packet: %s", e.Command, e.Reason)
	default:
		return "decode error"
	}
}

// Is reports whether target is the sentinel for this error's kind.
func (e *DecodeError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// IsDecodeError returns true if the error is, or wraps, a DecodeError.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}
