package protocol

import (
	"encoding/binary"
	"fmt"
)

// Decode parses one complete packet.
//
// The buffer must hold exactly one packet: the header's LEN must equal
// len(data). Nothing is truncated or padded. Errors are *DecodeError.
func Decode(data []byte) (Packet, error) {
	if len(data) < HeaderSize {
		return nil, &DecodeError{Kind: Truncated, Actual: len(data)}
	}

	cmd := Command(binary.LittleEndian.Uint32(data[0:4]))
	declared := binary.LittleEndian.Uint32(data[4:8])

	if uint64(declared) != uint64(len(data)) {
		return nil, &DecodeError{
			Kind:     LengthMismatch,
			Command:  cmd,
			Declared: int(declared),
			Actual:   len(data),
		}
	}

	want, ok := fixedLength(cmd)
	if !ok {
		return nil, &DecodeError{Kind: UnknownCommand, Command: cmd, Declared: int(declared), Actual: len(data)}
	}
	if len(data) != want {
		return nil, &DecodeError{
			Kind:     MalformedBody,
			Command:  cmd,
			Declared: int(declared),
			Actual:   len(data),
			Reason:   fmt.Sprintf("body is %d bytes, layout needs %d", len(data)-HeaderSize, want-HeaderSize),
		}
	}

	body := data[HeaderSize:]

	switch cmd {
	case CmdHello:
		pkt := Hello{
			Version:           word(body, 0),
			VersionCompatible: word(body, 1),
			MaxCommandLength:  word(body, 2),
			Mode:              Mode(word(body, 3)),
		}
		for i := range pkt.Reserved {
			pkt.Reserved[i] = word(body, 4+i)
		}
		if pkt.VersionCompatible > pkt.Version {
			return nil, &DecodeError{
				Kind:     MalformedBody,
				Command:  cmd,
				Declared: int(declared),
				Actual:   len(data),
				Reason: fmt.Sprintf("compatible version %d is newer than version %d",
					pkt.VersionCompatible, pkt.Version),
			}
		}
		return pkt, nil

	case CmdHelloResponse:
		pkt := HelloResponse{
			Version:           word(body, 0),
			VersionCompatible: word(body, 1),
			Status:            Status(word(body, 2)),
			Mode:              Mode(word(body, 3)),
		}
		for i := range pkt.Reserved {
			pkt.Reserved[i] = word(body, 4+i)
		}
		return pkt, nil

	case CmdReadData:
		return ReadData{ImageID: word(body, 0), Offset: word(body, 1), Length: word(body, 2)}, nil

	case CmdReadData64:
		return ReadData64{
			ImageID: binary.LittleEndian.Uint64(body[0:8]),
			Offset:  binary.LittleEndian.Uint64(body[8:16]),
			Length:  binary.LittleEndian.Uint64(body[16:24]),
		}, nil

	case CmdEndOfImageTransfer:
		return EndOfImageTransfer{ImageID: word(body, 0), Status: Status(word(body, 1))}, nil

	case CmdDone:
		return Done{}, nil

	case CmdDoneResponse:
		return DoneResponse{ImageTransferStatus: word(body, 0)}, nil

	case CmdReset:
		return Reset{}, nil

	case CmdResetResponse:
		return ResetResponse{}, nil

	case CmdCommandReady:
		return CommandReady{}, nil

	case CmdCommandSwitchMode:
		return CommandSwitchMode{Mode: Mode(word(body, 0))}, nil

	case CmdExecute:
		return Execute{ClientCommand: word(body, 0)}, nil

	case CmdExecuteResponse:
		return ExecuteResponse{ClientCommand: word(body, 0), DataLength: word(body, 1)}, nil

	case CmdExecuteData:
		return ExecuteData{ClientCommand: word(body, 0)}, nil
	}

	// fixedLength and the switch above cover the same set.
	return nil, &DecodeError{Kind: UnknownCommand, Command: cmd, Declared: int(declared), Actual: len(data)}
}

// DecodeExecuteData wraps the bare data transfer that follows Execute Data.
// declared is the DataLength from the matching Execute Response; a transfer
// of any other size is a LengthMismatch.
func DecodeExecuteData(data []byte, clientCommand, declared uint32) (ExecuteDataResponse, error) {
	if uint64(len(data)) != uint64(declared) {
		return ExecuteDataResponse{}, &DecodeError{
			Kind:     LengthMismatch,
			Command:  CmdExecuteData,
			Declared: int(declared),
			Actual:   len(data),
		}
	}

	payload := make([]byte, len(data))
	copy(payload, data)

	return ExecuteDataResponse{ClientCommand: clientCommand, Payload: payload}, nil
}

// word reads the i-th little-endian 32-bit word of a body.
func word(body []byte, i int) uint32 {
	return binary.LittleEndian.Uint32(body[i*4 : i*4+4])
}
