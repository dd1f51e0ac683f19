// Package protocol implements the Qualcomm Sahara packet format.
//
// Sahara is the protocol spoken by the boot ROM of Qualcomm SoCs in
// Emergency Download (EDL) mode. This package converts between packet
// values and their wire representation; it does no I/O.
//
// # Packet Format
//
// Every packet starts with an 8-byte header followed by a fixed body:
//
//	[CMD(4)][LEN(4)][BODY...]
//
// Where:
//   - CMD = command id (little-endian)
//   - LEN = total packet length including the header (little-endian)
//   - BODY = command-specific 32-bit (or 64-bit) little-endian fields
//
// The one exception is the result of a client command: after the host sends
// Execute Data, the device answers with the bare payload and no header. That
// transfer is represented by ExecuteDataResponse and decoded with
// DecodeExecuteData.
//
// # Encoding
//
// Encode never fails:
//
//	frame := protocol.Encode(protocol.Execute{ClientCommand: 0x02})
//
// # Decoding
//
// Decode expects exactly one packet and switches on the concrete type:
//
//	pkt, err := protocol.Decode(buf)
//	if err != nil {
//	    return err
//	}
//	switch p := pkt.(type) {
//	case protocol.Hello:
//	    info := p.Info()
//	case protocol.EndOfImageTransfer:
//	    return fmt.Errorf("device error: %s", p.Status)
//	}
//
// # Error Handling
//
// Decode returns *DecodeError. Match its kind with errors.Is against
// ErrTruncated, ErrLengthMismatch, ErrUnknownCommand or ErrMalformedBody.
package protocol
