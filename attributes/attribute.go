package attributes

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Kind names an attribute independent of its wire code.
type Kind string

// Attributes known to the default table.
const (
	KindSerialNumber  Kind = "serial-number"
	KindHardwareID    Kind = "hardware-id"
	KindOEMPKHash     Kind = "oem-pk-hash"
	KindSBLVersion    Kind = "sbl-version"
	KindCommandIDList Kind = "command-id-list"
)

// Encoding describes how an attribute payload is laid out.
type Encoding string

// Supported encodings.
const (
	EncodingUint       Encoding = "uint"
	EncodingBytes      Encoding = "bytes"
	EncodingUint32List Encoding = "uint32-list"
)

var (
	// ErrShortPayload is returned when a payload is smaller than the entry requires
	ErrShortPayload = errors.New("attribute payload too short")

	// ErrBadListLength is returned when a uint32 list is not a whole number of words
	ErrBadListLength = errors.New("attribute list length not a multiple of 4")
)

// Entry maps one attribute kind to its client command.
type Entry struct {
	Kind        Kind     `yaml:"kind"`
	Code        uint32   `yaml:"code"`
	Encoding    Encoding `yaml:"encoding"`
	Width       int      `yaml:"width,omitempty"`
	MinVersion  uint32   `yaml:"min_version,omitempty"`
	MaxVersion  uint32   `yaml:"max_version,omitempty"`
	Description string   `yaml:"description,omitempty"`
}

// Value is a decoded attribute payload.
type Value struct {
	// Uint holds the number for EncodingUint
	Uint uint64

	// List holds the words for EncodingUint32List
	List []uint32

	// Raw is a copy of the full payload as received
	Raw []byte
}

// Available reports whether the entry applies to the negotiated protocol version.
func (e Entry) Available(version uint32) bool {
	if e.MinVersion != 0 && version < e.MinVersion {
		return false
	}
	if e.MaxVersion != 0 && version > e.MaxVersion {
		return false
	}
	return true
}

// Decode interprets payload according to the entry's encoding.
// Bytes past the declared width of a uint are kept in Raw but ignored.
func (e Entry) Decode(payload []byte) (Value, error) {
	v := Value{Raw: append([]byte(nil), payload...)}

	switch e.Encoding {
	case EncodingUint:
		if len(payload) < e.Width {
			return Value{}, fmt.Errorf("%w: %s needs %d bytes, got %d", ErrShortPayload, e.Kind, e.Width, len(payload))
		}
		var buf [8]byte
		copy(buf[:], payload[:e.Width])
		v.Uint = binary.LittleEndian.Uint64(buf[:])

	case EncodingBytes:
		if len(payload) < e.Width {
			return Value{}, fmt.Errorf("%w: %s needs %d bytes, got %d", ErrShortPayload, e.Kind, e.Width, len(payload))
		}

	case EncodingUint32List:
		if len(payload)%4 != 0 {
			return Value{}, fmt.Errorf("%w: %s is %d bytes", ErrBadListLength, e.Kind, len(payload))
		}
		v.List = make([]uint32, 0, len(payload)/4)
		for off := 0; off < len(payload); off += 4 {
			v.List = append(v.List, binary.LittleEndian.Uint32(payload[off:]))
		}

	default:
		return Value{}, fmt.Errorf("unknown encoding %q for %s", e.Encoding, e.Kind)
	}

	return v, nil
}

func (e Entry) validate() error {
	if e.Kind == "" {
		return fmt.Errorf("kind cannot be empty")
	}
	if e.Code == 0 {
		return fmt.Errorf("%s: code cannot be zero", e.Kind)
	}

	switch e.Encoding {
	case EncodingUint:
		if e.Width < 1 || e.Width > 8 {
			return fmt.Errorf("%s: uint width must be 1-8, got %d", e.Kind, e.Width)
		}
	case EncodingBytes:
		if e.Width < 0 {
			return fmt.Errorf("%s: width cannot be negative", e.Kind)
		}
	case EncodingUint32List:
		if e.Width != 0 {
			return fmt.Errorf("%s: uint32-list takes no width", e.Kind)
		}
	default:
		return fmt.Errorf("%s: unknown encoding %q", e.Kind, e.Encoding)
	}

	if e.MaxVersion != 0 && e.MaxVersion < e.MinVersion {
		return fmt.Errorf("%s: max_version %d below min_version %d", e.Kind, e.MaxVersion, e.MinVersion)
	}
	return nil
}
