// Package sahara reads identifying attributes from Qualcomm devices in
// Emergency Download (EDL) mode.
//
// A device in EDL mode speaks Sahara. It opens the conversation itself by
// sending Hello; the host answers asking for command mode, and once the
// device replies CommandReady the host can run client commands such as
// "read serial number" or "read hardware ID" through a two-step exchange:
//
//	host                               device
//	                    <- Hello
//	HelloResponse(mode=command) ->
//	                    <- CommandReady
//	Execute(cmd) ->
//	                    <- ExecuteResponse(cmd, length)
//	ExecuteData(cmd) ->
//	                    <- payload (length bytes, no header)
//
// # Basic Usage
//
//	port, err := serialport.Open(serialport.Config{Path: "/dev/ttyUSB0"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer port.Close()
//
//	client := sahara.New(port)
//	result, err := client.RunSession(context.Background())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if hwid, ok := result.HardwareID(); ok {
//	    fmt.Printf("MSM ID: 0x%08X\n", hwid.MSMID())
//	}
//
// # Error Handling
//
// Failures that end the session are *SessionError values. Match their kind
// with errors.Is:
//
//	switch {
//	case errors.Is(err, sahara.ErrTimeout):
//	    // device unreachable: replug and retry
//	case errors.Is(err, sahara.ErrProtocolViolation):
//	    // device sent garbage: suspect cable or driver
//	}
//
// When the device answered with bytes that could not be framed, the
// *protocol.DecodeError is available through errors.As.
//
// An attribute the device does not implement is not an error at the
// session level: RunSession records it with Supported false and carries on.
//
// # Retries
//
// The client never retries. A device that failed mid-exchange is in an
// unknown state; reconnect it and run a new session with a new Client.
//
// # Thread Safety
//
// A Client is driven by one goroutine. Running two sessions against one
// device at the same time is undefined.
package sahara
