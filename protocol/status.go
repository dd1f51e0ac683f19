package protocol

import "fmt"

// Status is a Sahara status (NAK) code, as carried by Hello Response and
// End of Image Transfer.
type Status uint32

// Status codes.
const (
	StatusSuccess                  Status = 0x00
	StatusInvalidCommand           Status = 0x01
	StatusProtocolMismatch         Status = 0x02
	StatusInvalidTargetProtocol    Status = 0x03
	StatusInvalidHostProtocol      Status = 0x04
	StatusInvalidPacketSize        Status = 0x05
	StatusUnexpectedImageID        Status = 0x06
	StatusInvalidHeaderSize        Status = 0x07
	StatusInvalidDataSize          Status = 0x08
	StatusInvalidImageType         Status = 0x09
	StatusInvalidTxLength          Status = 0x0A
	StatusInvalidRxLength          Status = 0x0B
	StatusGeneralTxRxError         Status = 0x0C
	StatusReadDataError            Status = 0x0D
	StatusUnsupportedNumPhdrs      Status = 0x0E
	StatusInvalidPhdrSize          Status = 0x0F
	StatusMultipleSharedSegments   Status = 0x10
	StatusUninitPhdrLocation       Status = 0x11
	StatusInvalidDestAddress       Status = 0x12
	StatusInvalidImageHeaderSize   Status = 0x13
	StatusInvalidELFHeader         Status = 0x14
	StatusUnknownHostError         Status = 0x15
	StatusTimeoutRx                Status = 0x16
	StatusTimeoutTx                Status = 0x17
	StatusInvalidHostMode          Status = 0x18
	StatusInvalidMemoryRead        Status = 0x19
	StatusInvalidDataSizeRequest   Status = 0x1A
	StatusMemoryDebugNotSupported  Status = 0x1B
	StatusInvalidModeSwitch        Status = 0x1C
	StatusCommandExecFailure       Status = 0x1D
	StatusExecCmdInvalidParam      Status = 0x1E
	StatusExecCmdUnsupported       Status = 0x1F
	StatusExecDataInvalidClientCmd Status = 0x20
	StatusHashTableAuthFailure     Status = 0x21
	StatusHashVerificationFailure  Status = 0x22
	StatusHashTableNotFound        Status = 0x23
)

var statusNames = map[Status]string{
	StatusSuccess:                  "success",
	StatusInvalidCommand:           "invalid command",
	StatusProtocolMismatch:         "protocol mismatch",
	StatusInvalidTargetProtocol:    "invalid target protocol",
	StatusInvalidHostProtocol:      "invalid host protocol",
	StatusInvalidPacketSize:        "invalid packet size",
	StatusUnexpectedImageID:        "unexpected image id",
	StatusInvalidHeaderSize:        "invalid header size",
	StatusInvalidDataSize:          "invalid data size",
	StatusInvalidImageType:         "invalid image type",
	StatusInvalidTxLength:          "invalid tx length",
	StatusInvalidRxLength:          "invalid rx length",
	StatusGeneralTxRxError:         "general tx/rx error",
	StatusReadDataError:            "read data error",
	StatusUnsupportedNumPhdrs:      "unsupported number of program headers",
	StatusInvalidPhdrSize:          "invalid program header size",
	StatusMultipleSharedSegments:   "multiple shared segments",
	StatusUninitPhdrLocation:       "uninitialized program header location",
	StatusInvalidDestAddress:       "invalid destination address",
	StatusInvalidImageHeaderSize:   "invalid image header data size",
	StatusInvalidELFHeader:         "invalid ELF header",
	StatusUnknownHostError:         "unknown host error",
	StatusTimeoutRx:                "receive timeout",
	StatusTimeoutTx:                "transmit timeout",
	StatusInvalidHostMode:          "invalid host mode",
	StatusInvalidMemoryRead:        "invalid memory read",
	StatusInvalidDataSizeRequest:   "invalid data size request",
	StatusMemoryDebugNotSupported:  "memory debug not supported",
	StatusInvalidModeSwitch:        "invalid mode switch",
	StatusCommandExecFailure:       "command execution failure",
	StatusExecCmdInvalidParam:      "invalid client command parameter",
	StatusExecCmdUnsupported:       "client command unsupported",
	StatusExecDataInvalidClientCmd: "invalid client command for execute data",
	StatusHashTableAuthFailure:     "hash table authentication failure",
	StatusHashVerificationFailure:  "hash verification failure",
	StatusHashTableNotFound:        "hash table not found",
}

// String returns a human-readable name for the status.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("unknown status 0x%02X", uint32(s))
}

// IsCommandUnsupported reports whether the status is one the device uses to
// refuse a client command it does not implement.
func (s Status) IsCommandUnsupported() bool {
	switch s {
	case StatusExecCmdUnsupported, StatusExecCmdInvalidParam, StatusInvalidCommand:
		return true
	default:
		return false
	}
}
