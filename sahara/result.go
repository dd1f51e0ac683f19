package sahara

import (
	"github.com/moffa90/go-sahara/attributes"
	"github.com/moffa90/go-sahara/protocol"
)

// AttributeValue is the outcome of one attribute query.
type AttributeValue struct {
	Kind attributes.Kind

	// Code is the client command used, zero if none was sent
	Code uint32

	// Supported is false when the device or the table could not provide the attribute
	Supported bool

	// Status is the device status for a refused command
	Status protocol.Status

	// Reason explains why an attribute is unsupported
	Reason string

	// Value is the decoded integer for uint attributes
	Value uint64

	// List is the decoded words for uint32-list attributes
	List []uint32

	// Raw is the payload exactly as the device sent it
	Raw []byte
}

// Result is everything learned in one session. It belongs to the caller;
// nothing is kept by the client.
type Result struct {
	// Info is the device's Hello
	Info protocol.HelloInfo

	// Attributes holds one entry per requested kind, in request order
	Attributes []AttributeValue
}

// Get returns the value recorded for kind.
func (r *Result) Get(kind attributes.Kind) (AttributeValue, bool) {
	for _, v := range r.Attributes {
		if v.Kind == kind {
			return v, true
		}
	}
	return AttributeValue{}, false
}

// SerialNumber returns the serial number if it was requested and supported.
func (r *Result) SerialNumber() (attributes.SerialNumber, bool) {
	v, ok := r.Get(attributes.KindSerialNumber)
	if !ok || !v.Supported {
		return 0, false
	}
	return attributes.SerialNumber(v.Value), true
}

// HardwareID returns the hardware ID if it was requested and supported.
// The value is the full 64-bit word; the chip ID tools usually print
// (e.g. 007F10E1) is its MSMID().
func (r *Result) HardwareID() (attributes.HardwareID, bool) {
	v, ok := r.Get(attributes.KindHardwareID)
	if !ok || !v.Supported {
		return 0, false
	}
	return attributes.HardwareID(v.Value), true
}

// Unsupported returns the kinds that came back unsupported.
func (r *Result) Unsupported() []attributes.Kind {
	var kinds []attributes.Kind
	for _, v := range r.Attributes {
		if !v.Supported {
			kinds = append(kinds, v.Kind)
		}
	}
	return kinds
}
