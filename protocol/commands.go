package protocol

import (
	"encoding/binary"
)

// Encode serializes a packet into its wire representation.
//
// Frame structure (all fields little-endian):
//
//	[CMD(4)][LEN(4)][BODY...]
//
// LEN is the total packet length including the header. ExecuteDataResponse
// has no header on the wire, so its encoding is the bare payload.
func Encode(p Packet) []byte {
	switch pkt := p.(type) {
	case Hello:
		frame := newFrame(CmdHello, HelloLength)
		putWords(frame[HeaderSize:], pkt.Version, pkt.VersionCompatible, pkt.MaxCommandLength, uint32(pkt.Mode))
		putWords(frame[HeaderSize+16:], pkt.Reserved[:]...)
		return frame

	case HelloResponse:
		frame := newFrame(CmdHelloResponse, HelloResponseLength)
		putWords(frame[HeaderSize:], pkt.Version, pkt.VersionCompatible, uint32(pkt.Status), uint32(pkt.Mode))
		putWords(frame[HeaderSize+16:], pkt.Reserved[:]...)
		return frame

	case ReadData:
		frame := newFrame(CmdReadData, ReadDataLength)
		putWords(frame[HeaderSize:], pkt.ImageID, pkt.Offset, pkt.Length)
		return frame

	case ReadData64:
		frame := newFrame(CmdReadData64, ReadData64Length)
		binary.LittleEndian.PutUint64(frame[8:16], pkt.ImageID)
		binary.LittleEndian.PutUint64(frame[16:24], pkt.Offset)
		binary.LittleEndian.PutUint64(frame[24:32], pkt.Length)
		return frame

	case EndOfImageTransfer:
		frame := newFrame(CmdEndOfImageTransfer, EndOfImageTransferLength)
		putWords(frame[HeaderSize:], pkt.ImageID, uint32(pkt.Status))
		return frame

	case Done:
		return newFrame(CmdDone, DoneLength)

	case DoneResponse:
		frame := newFrame(CmdDoneResponse, DoneResponseLength)
		putWords(frame[HeaderSize:], pkt.ImageTransferStatus)
		return frame

	case Reset:
		return newFrame(CmdReset, ResetLength)

	case ResetResponse:
		return newFrame(CmdResetResponse, ResetResponseLength)

	case CommandReady:
		return newFrame(CmdCommandReady, CommandReadyLength)

	case CommandSwitchMode:
		frame := newFrame(CmdCommandSwitchMode, CommandSwitchModeLength)
		putWords(frame[HeaderSize:], uint32(pkt.Mode))
		return frame

	case Execute:
		frame := newFrame(CmdExecute, ExecuteLength)
		putWords(frame[HeaderSize:], pkt.ClientCommand)
		return frame

	case ExecuteResponse:
		frame := newFrame(CmdExecuteResponse, ExecuteResponseLength)
		putWords(frame[HeaderSize:], pkt.ClientCommand, pkt.DataLength)
		return frame

	case ExecuteData:
		frame := newFrame(CmdExecuteData, ExecuteDataLength)
		putWords(frame[HeaderSize:], pkt.ClientCommand)
		return frame

	case ExecuteDataResponse:
		out := make([]byte, len(pkt.Payload))
		copy(out, pkt.Payload)
		return out

	default:
		// Packet is sealed; every implementation is handled above.
		panic("protocol: unhandled packet type")
	}
}

// NewHelloResponse builds the Hello Response the host sends to request mode.
// The reserved words are filled with 1..6, matching what existing host tools
// send.
func NewHelloResponse(version, minVersion uint32, mode Mode) HelloResponse {
	resp := HelloResponse{
		Version:           version,
		VersionCompatible: minVersion,
		Status:            StatusSuccess,
		Mode:              mode,
	}
	for i := range resp.Reserved {
		resp.Reserved[i] = uint32(i + 1)
	}
	return resp
}

// newFrame allocates a frame and writes its header.
func newFrame(cmd Command, length int) []byte {
	frame := make([]byte, length)
	binary.LittleEndian.PutUint32(frame[0:4], uint32(cmd))
	binary.LittleEndian.PutUint32(frame[4:8], uint32(length))
	return frame
}

// putWords writes consecutive little-endian 32-bit words.
func putWords(dst []byte, words ...uint32) {
	for i, w := range words {
		binary.LittleEndian.PutUint32(dst[i*4:], w)
	}
}
