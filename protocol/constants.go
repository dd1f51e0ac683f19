package protocol

// Protocol versions implemented by this library.
const (
	// ProtocolVersion is the Sahara version advertised in the Hello response
	ProtocolVersion = 2

	// ProtocolMinVersion is the oldest Sahara version this library talks to
	ProtocolMinVersion = 1
)

// Frame structure constants.
const (
	// HeaderSize is the packet header size: CMD(4) + LEN(4)
	HeaderSize = 8

	// HelloReservedWords is the number of reserved 32-bit words trailing the
	// Hello and Hello Response bodies
	HelloReservedWords = 6

	// DefaultMaxTransferSize is the receive buffer size used for one logical
	// transfer when the caller does not configure one
	DefaultMaxTransferSize = 4096
)

// Command identifies a Sahara packet on the wire.
type Command uint32

// Command codes.
const (
	// CmdHello is sent by the device to start the handshake
	CmdHello Command = 0x01

	// CmdHelloResponse answers Hello and selects the operating mode
	CmdHelloResponse Command = 0x02

	// CmdReadData is an image-transfer request (32-bit fields)
	CmdReadData Command = 0x03

	// CmdEndOfImageTransfer ends an image transfer or reports an error status
	CmdEndOfImageTransfer Command = 0x04

	// CmdDone is sent by the host when image transfer is complete
	CmdDone Command = 0x05

	// CmdDoneResponse answers Done
	CmdDoneResponse Command = 0x06

	// CmdReset asks the device to reset
	CmdReset Command = 0x07

	// CmdResetResponse acknowledges Reset
	CmdResetResponse Command = 0x08

	// CmdCommandReady signals the device accepts execute requests
	CmdCommandReady Command = 0x0B

	// CmdCommandSwitchMode asks the device to switch operating mode
	CmdCommandSwitchMode Command = 0x0C

	// CmdExecute requests a client command
	CmdExecute Command = 0x0D

	// CmdExecuteResponse reports the length of a client command's result
	CmdExecuteResponse Command = 0x0E

	// CmdExecuteData asks the device to send a client command's result
	CmdExecuteData Command = 0x0F

	// CmdReadData64 is an image-transfer request (64-bit fields)
	CmdReadData64 Command = 0x12
)

// Fixed total lengths (header included) per command.
const (
	HelloLength              = 0x30
	HelloResponseLength      = 0x30
	ReadDataLength           = 0x14
	EndOfImageTransferLength = 0x10
	DoneLength               = 0x08
	DoneResponseLength       = 0x0C
	ResetLength              = 0x08
	ResetResponseLength      = 0x08
	CommandReadyLength       = 0x08
	CommandSwitchModeLength  = 0x0C
	ExecuteLength            = 0x0C
	ExecuteResponseLength    = 0x10
	ExecuteDataLength        = 0x0C
	ReadData64Length         = 0x20
)

// Mode is the Sahara operating mode carried by Hello and Hello Response.
type Mode uint32

// Operating modes.
const (
	ModeImageTransferPending  Mode = 0x00
	ModeImageTransferComplete Mode = 0x01
	ModeMemoryDebug           Mode = 0x02
	ModeCommand               Mode = 0x03
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeImageTransferPending:
		return "image-transfer-pending"
	case ModeImageTransferComplete:
		return "image-transfer-complete"
	case ModeMemoryDebug:
		return "memory-debug"
	case ModeCommand:
		return "command"
	default:
		return "unknown"
	}
}

// fixedLength returns the fixed total length for a recognized command.
func fixedLength(cmd Command) (int, bool) {
	switch cmd {
	case CmdHello:
		return HelloLength, true
	case CmdHelloResponse:
		return HelloResponseLength, true
	case CmdReadData:
		return ReadDataLength, true
	case CmdEndOfImageTransfer:
		return EndOfImageTransferLength, true
	case CmdDone:
		return DoneLength, true
	case CmdDoneResponse:
		return DoneResponseLength, true
	case CmdReset:
		return ResetLength, true
	case CmdResetResponse:
		return ResetResponseLength, true
	case CmdCommandReady:
		return CommandReadyLength, true
	case CmdCommandSwitchMode:
		return CommandSwitchModeLength, true
	case CmdExecute:
		return ExecuteLength, true
	case CmdExecuteResponse:
		return ExecuteResponseLength, true
	case CmdExecuteData:
		return ExecuteDataLength, true
	case CmdReadData64:
		return ReadData64Length, true
	default:
		return 0, false
	}
}

// String returns the command name.
func (c Command) String() string {
	switch c {
	case CmdHello:
		return "hello"
	case CmdHelloResponse:
		return "hello-response"
	case CmdReadData:
		return "read-data"
	case CmdEndOfImageTransfer:
		return "end-of-image-transfer"
	case CmdDone:
		return "done"
	case CmdDoneResponse:
		return "done-response"
	case CmdReset:
		return "reset"
	case CmdResetResponse:
		return "reset-response"
	case CmdCommandReady:
		return "command-ready"
	case CmdCommandSwitchMode:
		return "command-switch-mode"
	case CmdExecute:
		return "execute"
	case CmdExecuteResponse:
		return "execute-response"
	case CmdExecuteData:
		return "execute-data"
	case CmdReadData64:
		return "read-data-64"
	default:
		return "unknown"
	}
}
