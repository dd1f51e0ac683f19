package attributes

import (
	"bytes"
	"fmt"
)

// PKHashSize is the size of one OEM public key hash digest.
const PKHashSize = 32

// SerialNumber is the chip serial number reported by the boot ROM.
type SerialNumber uint32

// String formats the serial the way EDL tools print it.
func (s SerialNumber) String() string {
	return fmt.Sprintf("0x%08X", uint32(s))
}

// HardwareID is the 64-bit MSM hardware identifier.
//
//	bits 32-63  MSM ID (chip family)
//	bits 16-31  OEM ID
//	bits  0-15  model ID
type HardwareID uint64

// MSMID returns the chip family identifier. This is the hardware ID as
// commonly published for a chip, e.g. 0x007F10E1.
func (h HardwareID) MSMID() uint32 {
	return uint32(h >> 32)
}

// OEMID returns the device manufacturer identifier.
func (h HardwareID) OEMID() uint16 {
	return uint16(h >> 16)
}

// ModelID returns the OEM's model identifier.
func (h HardwareID) ModelID() uint16 {
	return uint16(h)
}

func (h HardwareID) String() string {
	return fmt.Sprintf("0x%016X (MSM 0x%08X, OEM 0x%04X, model 0x%04X)",
		uint64(h), h.MSMID(), h.OEMID(), h.ModelID())
}

// PKHashes splits an OEM PK hash payload into its digests. Boot ROMs
// repeat the same digest several times; repeats are dropped.
func PKHashes(raw []byte) [][]byte {
	var out [][]byte
	for off := 0; off+PKHashSize <= len(raw); off += PKHashSize {
		digest := raw[off : off+PKHashSize]
		seen := false
		for _, d := range out {
			if bytes.Equal(d, digest) {
				seen = true
				break
			}
		}
		if !seen {
			out = append(out, append([]byte(nil), digest...))
		}
	}
	return out
}
