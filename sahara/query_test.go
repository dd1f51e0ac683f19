package sahara

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moffa90/go-sahara/attributes"
	"github.com/moffa90/go-sahara/protocol"
	"github.com/moffa90/go-sahara/simulator"
)

func readyClient(t *testing.T, dev *simulator.Device, opts ...Option) *Client {
	t.Helper()
	client := New(dev, opts...)
	_, err := client.Handshake(context.Background())
	require.NoError(t, err)
	return client
}

func TestQuerySupported(t *testing.T) {
	dev := simulator.New(
		simulator.WithSerialNumber(0x789EE21B),
		simulator.WithHardwareID(0x007F10E1_0000_0000),
		simulator.WithAttribute(simulator.CodeCommandIDList, []byte{0x01, 0, 0, 0, 0x02, 0, 0, 0, 0x03, 0, 0, 0}),
	)
	client := readyClient(t, dev)

	sn, err := client.Query(context.Background(), attributes.KindSerialNumber)
	require.NoError(t, err)
	assert.True(t, sn.Supported)
	assert.Equal(t, uint32(0x01), sn.Code)
	assert.Equal(t, uint64(0x789EE21B), sn.Value)
	assert.Equal(t, []byte{0x1B, 0xE2, 0x9E, 0x78}, sn.Raw)

	hwid, err := client.Query(context.Background(), attributes.KindHardwareID)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x007F10E1), attributes.HardwareID(hwid.Value).MSMID())

	list, err := client.Query(context.Background(), attributes.KindCommandIDList)
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 2, 3}, list.List)

	assert.Equal(t, StateReady, client.State())

	// Hello response, then Execute + ExecuteData per attribute.
	sent := dev.Received()
	require.Len(t, sent, 7)
	assert.Equal(t, protocol.Encode(protocol.Execute{ClientCommand: 0x01}), sent[1])
	assert.Equal(t, protocol.Encode(protocol.ExecuteData{ClientCommand: 0x01}), sent[2])
}

func TestQueryUnsupported(t *testing.T) {
	tests := []struct {
		name     string
		device   []simulator.Option
		kind     attributes.Kind
		status   protocol.Status
		onWire   bool
		contains string
	}{
		{
			name:     "device has no handler",
			device:   nil,
			kind:     attributes.KindSerialNumber,
			status:   protocol.StatusExecCmdUnsupported,
			onWire:   true,
			contains: "client command unsupported",
		},
		{
			name:     "device rejects parameter",
			device:   []simulator.Option{simulator.WithRefusal(simulator.CodeSBLVersion, protocol.StatusExecCmdInvalidParam)},
			kind:     attributes.KindSBLVersion,
			status:   protocol.StatusExecCmdInvalidParam,
			onWire:   true,
			contains: "invalid client command parameter",
		},
		{
			name:     "device declares zero bytes",
			device:   []simulator.Option{simulator.WithAttribute(simulator.CodeOEMPKHash, nil)},
			kind:     attributes.KindOEMPKHash,
			onWire:   true,
			contains: "no data",
		},
		{
			name:     "kind missing from table",
			kind:     "training-data",
			contains: "not in table",
		},
		{
			name:     "entry excludes negotiated version",
			device:   []simulator.Option{simulator.WithVersion(1, 1)},
			kind:     attributes.KindCommandIDList,
			contains: "version >= 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := simulator.New(tt.device...)
			client := readyClient(t, dev)
			before := len(dev.Received())

			v, err := client.Query(context.Background(), tt.kind)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUnsupportedAttribute)
			assert.Zero(t, KindOf(err))
			assert.Contains(t, err.Error(), tt.contains)

			var ue *UnsupportedAttributeError
			require.True(t, errors.As(err, &ue))
			assert.Equal(t, tt.kind, ue.Kind)
			assert.Equal(t, tt.status, ue.Status)

			assert.False(t, v.Supported)
			assert.Equal(t, tt.kind, v.Kind)
			assert.Equal(t, tt.status, v.Status)
			assert.NotEmpty(t, v.Reason)
			assert.Equal(t, StateReady, client.State(), "unsupported attributes keep the session alive")

			sent := len(dev.Received()) - before
			if tt.onWire {
				assert.Equal(t, 1, sent, "only Execute goes out")
			} else {
				assert.Zero(t, sent, "nothing goes out")
			}
		})
	}
}

func TestQueryPayloadLengthMismatch(t *testing.T) {
	for _, skew := range []int{-2, 3} {
		dev := simulator.New(simulator.WithHardwareID(0x000480E1_0000_0000), simulator.WithPayloadSkew(skew))
		client := readyClient(t, dev)

		_, err := client.Query(context.Background(), attributes.KindHardwareID)
		assert.ErrorIs(t, err, ErrProtocolViolation, "skew %d", skew)
		assert.ErrorIs(t, err, protocol.ErrLengthMismatch, "skew %d", skew)
		assert.Equal(t, StateFailed, client.State())

		var se *SessionError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, stepExecuteDataResponse, se.Step)
		assert.Equal(t, "8 payload bytes", se.Expected)
	}
}

func TestQueryProtocolViolations(t *testing.T) {
	tests := []struct {
		name     string
		reply    []byte
		contains string
	}{
		{
			name:     "wrong client command",
			reply:    protocol.Encode(protocol.ExecuteResponse{ClientCommand: 0x02, DataLength: 4}),
			contains: "expected client command 0x01, got client command 0x02",
		},
		{
			name:     "length above transfer size",
			reply:    protocol.Encode(protocol.ExecuteResponse{ClientCommand: 0x01, DataLength: 0x10000}),
			contains: "data length <= 4096",
		},
		{
			name:     "refusal with unrelated status",
			reply:    protocol.Encode(protocol.EndOfImageTransfer{Status: protocol.StatusHashTableAuthFailure}),
			contains: "hash table authentication failure",
		},
		{
			name:     "repeated Hello while ready",
			reply:    helloFrame(2, 1),
			contains: "repeated Hello while ready",
		},
		{
			name:     "unexpected packet",
			reply:    protocol.Encode(protocol.CommandReady{}),
			contains: "got command-ready",
		},
		{
			name:     "garbage",
			reply:    []byte{0x0E, 0x00, 0x00, 0x00, 0x10, 0x00},
			contains: "truncated",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockTransport{}
			m.expectRx(helloFrame(2, 1))
			m.expectTx(helloResponseFrame())
			m.expectRx(protocol.Encode(protocol.CommandReady{}))
			m.expectTx(protocol.Encode(protocol.Execute{ClientCommand: 0x01}))
			m.expectRx(tt.reply)

			client := New(m)
			_, err := client.Handshake(context.Background())
			require.NoError(t, err)

			_, err = client.Query(context.Background(), attributes.KindSerialNumber)
			assert.ErrorIs(t, err, ErrProtocolViolation)
			assert.NotErrorIs(t, err, ErrUnsupportedAttribute)
			assert.Contains(t, err.Error(), tt.contains)
			assert.Equal(t, StateFailed, client.State())
			m.AssertExpectations(t)
		})
	}
}

func TestQueryDataPhasePacket(t *testing.T) {
	tests := []struct {
		name     string
		payload  []byte
		contains string
	}{
		{
			name:     "Hello in place of payload",
			payload:  helloFrame(2, 1),
			contains: "repeated Hello while ready",
		},
		{
			name:     "End of Image Transfer in place of payload",
			payload:  protocol.Encode(protocol.EndOfImageTransfer{Status: protocol.StatusCommandExecFailure}),
			contains: "end-of-image-transfer with status command execution failure",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			declared := uint32(len(tt.payload))

			m := &mockTransport{}
			m.expectRx(helloFrame(2, 1))
			m.expectTx(helloResponseFrame())
			m.expectRx(protocol.Encode(protocol.CommandReady{}))
			m.expectTx(protocol.Encode(protocol.Execute{ClientCommand: 0x03}))
			m.expectRx(protocol.Encode(protocol.ExecuteResponse{ClientCommand: 0x03, DataLength: declared}))
			m.expectTx(protocol.Encode(protocol.ExecuteData{ClientCommand: 0x03}))
			m.expectRx(tt.payload)

			client := New(m)
			_, err := client.Handshake(context.Background())
			require.NoError(t, err)

			v, err := client.Query(context.Background(), attributes.KindOEMPKHash)
			assert.ErrorIs(t, err, ErrProtocolViolation)
			assert.Contains(t, err.Error(), tt.contains)
			assert.False(t, v.Supported)
			assert.Equal(t, StateFailed, client.State())

			var se *SessionError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, stepExecuteDataResponse, se.Step)
			m.AssertExpectations(t)
		})
	}
}

func TestQueryUsesNegotiatedVersion(t *testing.T) {
	table, err := attributes.ParseReader(strings.NewReader(`version: 1
attributes:
  - kind: serial-number
    code: 0x01
    encoding: uint
    width: 4
    max_version: 2
  - kind: sbl-version
    code: 0x07
    encoding: uint
    width: 4
    min_version: 3
`))
	require.NoError(t, err)

	// The device runs 3, the host advertises 2: the session runs at 2.
	dev := simulator.New(
		simulator.WithVersion(3, 1),
		simulator.WithSerialNumber(0xA8ED626B),
		simulator.WithAttribute(simulator.CodeSBLVersion, []byte{0x05, 0, 0, 0}),
	)
	client := readyClient(t, dev, WithAttributeTable(table))

	info := client.Info()
	assert.Equal(t, uint32(3), info.Version)
	assert.Equal(t, uint32(2), info.Negotiated)

	sn, err := client.Query(context.Background(), attributes.KindSerialNumber)
	require.NoError(t, err)
	assert.True(t, sn.Supported)
	assert.Equal(t, uint64(0xA8ED626B), sn.Value)

	sbl, err := client.Query(context.Background(), attributes.KindSBLVersion)
	assert.ErrorIs(t, err, ErrUnsupportedAttribute)
	assert.ErrorIs(t, err, attributes.ErrVersionRange)
	assert.False(t, sbl.Supported)
	assert.Contains(t, sbl.Reason, "session runs version 2")
	assert.Equal(t, StateReady, client.State())

	// Hello response plus one Execute/ExecuteData pair.
	assert.Len(t, dev.Received(), 3)
}

func TestQueryShortPayload(t *testing.T) {
	// Declared and delivered lengths agree, but 2 bytes cannot hold a u32.
	dev := simulator.New(simulator.WithAttribute(simulator.CodeSerialNumber, []byte{0x01, 0x02}))
	client := readyClient(t, dev)

	_, err := client.Query(context.Background(), attributes.KindSerialNumber)
	assert.ErrorIs(t, err, ErrProtocolViolation)
	assert.ErrorIs(t, err, attributes.ErrShortPayload)
}

func TestQueryCustomTable(t *testing.T) {
	table, err := attributes.ParseReader(strings.NewReader(`version: 1
attributes:
  - kind: serial-number
    code: 0x21
    encoding: uint
    width: 4
`))
	require.NoError(t, err)

	dev := simulator.New(simulator.WithAttribute(0x21, []byte{0x2A, 0, 0, 0}))
	client := readyClient(t, dev, WithAttributeTable(table))

	v, err := client.Query(context.Background(), attributes.KindSerialNumber)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), v.Value)
	assert.Equal(t, uint32(0x21), v.Code)
}

func TestQueryRequiresReady(t *testing.T) {
	client := New(simulator.New())
	_, err := client.Query(context.Background(), attributes.KindSerialNumber)
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, StateAwaitingHello, client.State())

	failed := New(simulator.New(simulator.Silent()))
	_, _ = failed.Handshake(context.Background())
	_, err = failed.Query(context.Background(), attributes.KindSerialNumber)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestQueryTimeout(t *testing.T) {
	dev := simulator.New(simulator.WithSerialNumber(1), simulator.HangAfter(2))
	client := readyClient(t, dev)

	_, err := client.Query(context.Background(), attributes.KindSerialNumber)
	assert.ErrorIs(t, err, ErrTimeout)

	var se *SessionError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, stepExecuteDataResponse, se.Step)
}
