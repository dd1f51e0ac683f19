package main

import (
	"errors"

	"github.com/moffa90/go-sahara/sahara"
)

// Advice is the corrective action a failed session calls for.
type Advice int

const (
	AdviceNone Advice = iota

	// AdviceReconnect: the device stopped answering. The session cannot be
	// resumed, so the device has to be power-cycled back into EDL mode.
	AdviceReconnect

	// AdviceAcceptUnsupported: the device answered but refused. Running
	// again will get the same answer.
	AdviceAcceptUnsupported

	// AdviceCheckConnection: the device answered with something that is not
	// Sahara, or the host side of the link failed.
	AdviceCheckConnection
)

func (a Advice) String() string {
	switch a {
	case AdviceNone:
		return "none"
	case AdviceReconnect:
		return "reconnect"
	case AdviceAcceptUnsupported:
		return "accept-unsupported"
	case AdviceCheckConnection:
		return "check-connection"
	default:
		return "unknown"
	}
}

// Hint is the message shown to the user alongside the error.
func (a Advice) Hint() string {
	switch a {
	case AdviceReconnect:
		return "The device did not answer in time. Re-enter EDL mode (power-cycle or re-plug) and run again."
	case AdviceAcceptUnsupported:
		return "The device refused the request. This firmware does not provide it; retrying will not help."
	case AdviceCheckConnection:
		return "The link returned data that is not Sahara. Check the cable, the USB port and the QDLoader driver."
	default:
		return ""
	}
}

// Classify maps a session error to the action that can fix it.
func Classify(err error) Advice {
	if err == nil || errors.Is(err, sahara.ErrCanceled) {
		return AdviceNone
	}
	if errors.Is(err, sahara.ErrUnsupportedAttribute) {
		return AdviceAcceptUnsupported
	}

	switch sahara.KindOf(err) {
	case sahara.KindTimeout:
		return AdviceReconnect
	case sahara.KindVersionMismatch, sahara.KindUnsupportedMode:
		return AdviceAcceptUnsupported
	case sahara.KindProtocolViolation, sahara.KindTransportFailure:
		return AdviceCheckConnection
	default:
		return AdviceNone
	}
}
