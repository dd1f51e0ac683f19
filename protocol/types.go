package protocol

// Packet is one Sahara packet. The concrete types below are the only
// implementations; switch on them to handle a decoded packet.
type Packet interface {
	// Command returns the command identifier of the packet
	Command() Command

	isPacket()
}

// Hello is the first packet of a session, sent by the device.
type Hello struct {
	// Version is the protocol version the device runs
	Version uint32

	// VersionCompatible is the oldest version the device can talk to
	VersionCompatible uint32

	// MaxCommandLength is the largest command packet the device accepts
	MaxCommandLength uint32

	// Mode is the mode the device is currently in
	Mode Mode

	Reserved [HelloReservedWords]uint32
}

// HelloResponse is the host's answer to Hello.
type HelloResponse struct {
	Version           uint32
	VersionCompatible uint32

	// Status is StatusSuccess unless the host rejects the device
	Status Status

	// Mode is the operating mode the host asks for
	Mode Mode

	Reserved [HelloReservedWords]uint32
}

// ReadData is the device requesting a chunk of an image (32-bit fields).
type ReadData struct {
	ImageID uint32
	Offset  uint32
	Length  uint32
}

// ReadData64 is the device requesting a chunk of an image (64-bit fields).
type ReadData64 struct {
	ImageID uint64
	Offset  uint64
	Length  uint64
}

// EndOfImageTransfer ends a transfer. A non-success Status is how the
// device reports errors.
type EndOfImageTransfer struct {
	ImageID uint32
	Status  Status
}

// Done is sent by the host after an image transfer.
type Done struct{}

// DoneResponse answers Done.
type DoneResponse struct {
	ImageTransferStatus uint32
}

// Reset asks the device to reset.
type Reset struct{}

// ResetResponse acknowledges Reset.
type ResetResponse struct{}

// CommandReady tells the host the device is in command mode.
type CommandReady struct{}

// CommandSwitchMode asks the device to change operating mode.
type CommandSwitchMode struct {
	Mode Mode
}

// Execute requests a client command.
type Execute struct {
	ClientCommand uint32
}

// ExecuteResponse announces how many bytes the client command will return.
type ExecuteResponse struct {
	ClientCommand uint32
	DataLength    uint32
}

// ExecuteData asks the device to send the client command's result.
type ExecuteData struct {
	ClientCommand uint32
}

// ExecuteDataResponse is the result of a client command. The device sends
// the payload as a bare transfer without a header; see DecodeExecuteData.
type ExecuteDataResponse struct {
	ClientCommand uint32
	Payload       []byte
}

func (Hello) Command() Command               { return CmdHello }
func (HelloResponse) Command() Command       { return CmdHelloResponse }
func (ReadData) Command() Command            { return CmdReadData }
func (ReadData64) Command() Command          { return CmdReadData64 }
func (EndOfImageTransfer) Command() Command  { return CmdEndOfImageTransfer }
func (Done) Command() Command                { return CmdDone }
func (DoneResponse) Command() Command        { return CmdDoneResponse }
func (Reset) Command() Command               { return CmdReset }
func (ResetResponse) Command() Command       { return CmdResetResponse }
func (CommandReady) Command() Command        { return CmdCommandReady }
func (CommandSwitchMode) Command() Command   { return CmdCommandSwitchMode }
func (Execute) Command() Command             { return CmdExecute }
func (ExecuteResponse) Command() Command     { return CmdExecuteResponse }
func (ExecuteData) Command() Command         { return CmdExecuteData }
func (ExecuteDataResponse) Command() Command { return CmdExecuteData }

func (Hello) isPacket()               {}
func (HelloResponse) isPacket()       {}
func (ReadData) isPacket()            {}
func (ReadData64) isPacket()          {}
func (EndOfImageTransfer) isPacket()  {}
func (Done) isPacket()                {}
func (DoneResponse) isPacket()        {}
func (Reset) isPacket()               {}
func (ResetResponse) isPacket()       {}
func (CommandReady) isPacket()        {}
func (CommandSwitchMode) isPacket()   {}
func (Execute) isPacket()             {}
func (ExecuteResponse) isPacket()     {}
func (ExecuteData) isPacket()         {}
func (ExecuteDataResponse) isPacket() {}

// HelloInfo is what the handshake learned about the device.
type HelloInfo struct {
	// Version is the protocol version reported by the device
	Version uint32

	// MinCompatibleVersion is the oldest version the device accepts
	MinCompatibleVersion uint32

	// MaxCommandLength is the largest command packet the device accepts
	MaxCommandLength uint32

	// Mode is the mode the device reported in its Hello
	Mode Mode

	// Negotiated is the version the session runs at: the lower of Version
	// and the version the host advertised. Zero until a handshake sets it.
	Negotiated uint32
}

// Info extracts the HelloInfo carried by a Hello packet.
func (h Hello) Info() HelloInfo {
	return HelloInfo{
		Version:              h.Version,
		MinCompatibleVersion: h.VersionCompatible,
		MaxCommandLength:     h.MaxCommandLength,
		Mode:                 h.Mode,
	}
}
