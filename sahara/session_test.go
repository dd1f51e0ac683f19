package sahara

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moffa90/go-sahara/attributes"
	"github.com/moffa90/go-sahara/protocol"
	"github.com/moffa90/go-sahara/simulator"
)

// Captures from two devices in EDL mode. Each answers serial number and
// hardware ID over a version 2 command-mode session.
var referenceDevices = []struct {
	name       string
	serialData string
	hwidData   string
	serial     attributes.SerialNumber
	msmID      uint32
}{
	{
		name:       "device A",
		serialData: "1b e2 9e 78",
		hwidData:   "00 00 00 00 e1 10 7f 00",
		serial:     0x789EE21B,
		msmID:      0x007F10E1,
	},
	{
		name:       "device B",
		serialData: "6b 62 ed a8",
		hwidData:   "00 00 00 00 e1 80 04 00",
		serial:     0xA8ED626B,
		msmID:      0x000480E1,
	},
}

func TestRunSessionReferenceDevices(t *testing.T) {
	for _, dev := range referenceDevices {
		t.Run(dev.name, func(t *testing.T) {
			m := &mockTransport{}

			m.expectRx(hexBytes(t, `01000000 30000000 02000000 01000000 00040000 00000000
				00000000 00000000 00000000 00000000 00000000 00000000`))
			m.expectTx(hexBytes(t, `02000000 30000000 02000000 01000000 00000000 03000000
				01000000 02000000 03000000 04000000 05000000 06000000`))
			m.expectRx(hexBytes(t, "0b000000 08000000"))

			m.expectTx(hexBytes(t, "0d000000 0c000000 01000000"))
			m.expectRx(hexBytes(t, "0e000000 10000000 01000000 04000000"))
			m.expectTx(hexBytes(t, "0f000000 0c000000 01000000"))
			m.expectRx(hexBytes(t, dev.serialData))

			m.expectTx(hexBytes(t, "0d000000 0c000000 02000000"))
			m.expectRx(hexBytes(t, "0e000000 10000000 02000000 08000000"))
			m.expectTx(hexBytes(t, "0f000000 0c000000 02000000"))
			m.expectRx(hexBytes(t, dev.hwidData))

			result, err := New(m).RunSession(context.Background(),
				attributes.KindSerialNumber, attributes.KindHardwareID)
			require.NoError(t, err)
			m.AssertExpectations(t)

			sn, ok := result.SerialNumber()
			require.True(t, ok)
			assert.Equal(t, dev.serial, sn)

			hwid, ok := result.HardwareID()
			require.True(t, ok)
			assert.Equal(t, dev.msmID, hwid.MSMID())

			assert.Equal(t, uint32(2), result.Info.Version)
		})
	}
}

func TestRunSessionPartialSupport(t *testing.T) {
	dev := simulator.New(simulator.WithHardwareID(0x007F10E1_0000_0000))

	result, err := New(dev).RunSession(context.Background(),
		attributes.KindSerialNumber, attributes.KindHardwareID)
	require.NoError(t, err)
	require.Len(t, result.Attributes, 2)

	_, ok := result.SerialNumber()
	assert.False(t, ok)
	sv, ok := result.Get(attributes.KindSerialNumber)
	require.True(t, ok)
	assert.False(t, sv.Supported)
	assert.Equal(t, protocol.StatusExecCmdUnsupported, sv.Status)

	hwid, ok := result.HardwareID()
	require.True(t, ok)
	assert.Equal(t, uint32(0x007F10E1), hwid.MSMID())

	assert.Equal(t, []attributes.Kind{attributes.KindSerialNumber}, result.Unsupported())
}

func TestRunSessionDefaultsAndOrder(t *testing.T) {
	dev := simulator.New(simulator.WithSerialNumber(7), simulator.WithHardwareID(9))

	result, err := New(dev).RunSession(context.Background())
	require.NoError(t, err)

	kinds := make([]attributes.Kind, len(result.Attributes))
	for i, v := range result.Attributes {
		kinds[i] = v.Kind
	}
	assert.Equal(t, DefaultKinds, kinds)

	dev = simulator.New(simulator.WithSerialNumber(7), simulator.WithHardwareID(9))
	result, err = New(dev).RunSession(context.Background(),
		attributes.KindHardwareID, attributes.KindSerialNumber, attributes.KindHardwareID)
	require.NoError(t, err)
	require.Len(t, result.Attributes, 2)
	assert.Equal(t, attributes.KindHardwareID, result.Attributes[0].Kind)
	assert.Equal(t, attributes.KindSerialNumber, result.Attributes[1].Kind)
}

func TestRunSessionHardFailures(t *testing.T) {
	tests := []struct {
		name    string
		device  *simulator.Device
		wantErr error
		queries int
	}{
		{
			name:    "silent device",
			device:  simulator.New(simulator.Silent()),
			wantErr: ErrTimeout,
		},
		{
			name:    "image transfer only",
			device:  simulator.New(simulator.ImageTransferOnly()),
			wantErr: ErrUnsupportedMode,
		},
		{
			name:    "version mismatch",
			device:  simulator.New(simulator.WithVersion(9, 8)),
			wantErr: ErrVersionMismatch,
		},
		{
			name: "payload longer than declared",
			device: simulator.New(
				simulator.WithSerialNumber(1),
				simulator.WithHardwareID(2),
				simulator.WithPayloadSkew(1),
			),
			wantErr: ErrProtocolViolation,
			queries: 1,
		},
		{
			name:    "device stops answering mid-session",
			device:  simulator.New(simulator.WithSerialNumber(1), simulator.WithHardwareID(2), simulator.HangAfter(3)),
			wantErr: ErrTimeout,
			queries: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var executes int
			client := New(tt.device)

			result, err := client.RunSession(context.Background())
			assert.Nil(t, result, "no partial result on a hard failure")
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, StateFailed, client.State())

			for _, b := range tt.device.Received() {
				if pkt, err := protocol.Decode(b); err == nil {
					if _, ok := pkt.(protocol.Execute); ok {
						executes++
					}
				}
			}
			assert.Equal(t, tt.queries, executes, "queries stop at the first hard failure")
		})
	}
}

func TestRunSessionReset(t *testing.T) {
	dev := simulator.New(simulator.WithSerialNumber(1), simulator.WithHardwareID(2))
	client := New(dev, WithResetOnComplete(true))

	result, err := client.RunSession(context.Background())
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, 1, dev.Resets())
	assert.Equal(t, StateClosed, client.State())

	assert.ErrorIs(t, client.Reset(context.Background()), ErrInvalidState)
}

func TestRunSessionResetFailureKeepsResult(t *testing.T) {
	// Hello response, 2x (Execute, ExecuteData), then Reset goes unanswered.
	dev := simulator.New(simulator.WithSerialNumber(1), simulator.WithHardwareID(2), simulator.HangAfter(5))

	result, err := New(dev, WithResetOnComplete(true)).RunSession(context.Background())
	assert.ErrorIs(t, err, ErrTimeout)
	require.NotNil(t, result)
	_, ok := result.SerialNumber()
	assert.True(t, ok)
}

func TestRunSessionProgress(t *testing.T) {
	var phases []string
	var last Progress

	dev := simulator.New(simulator.WithSerialNumber(1), simulator.WithHardwareID(2))
	client := New(dev,
		WithResetOnComplete(true),
		WithProgressCallback(func(p Progress) {
			phases = append(phases, p.Phase)
			last = p
		}),
	)

	_, err := client.RunSession(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		PhaseHandshake,
		PhaseQuerying,
		PhaseQuerying,
		PhaseResetting,
		PhaseComplete,
	}, phases)
	assert.Equal(t, 100.0, last.Percentage)
	assert.Equal(t, 2, last.Current)
	assert.Equal(t, 2, last.Total)
}

func TestRunSessionCancelledBetweenQueries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dev := simulator.New(simulator.WithSerialNumber(1), simulator.WithHardwareID(2))
	client := New(dev, WithProgressCallback(func(p Progress) {
		if p.Phase == PhaseQuerying && p.Attribute == attributes.KindHardwareID {
			cancel()
		}
	}))

	result, err := client.RunSession(ctx)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrCanceled)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRunSessionLogsFailure(t *testing.T) {
	logger := newRecordingLogger()
	_, err := New(simulator.New(simulator.Silent()), WithLogger(logger)).RunSession(context.Background())
	require.Error(t, err)
	assert.Equal(t, []string{"session failed"}, logger.get("error"))
}

func TestSessionErrorFormatting(t *testing.T) {
	err := &SessionError{
		Kind:     KindProtocolViolation,
		Step:     "execute response",
		Expected: "execute-response",
		Actual:   "command-ready",
	}
	assert.Equal(t, "sahara: protocol violation during execute response: expected execute-response, got command-ready", err.Error())

	wrapped := &SessionError{Kind: KindTimeout, Step: "hello", Err: errors.New("no data")}
	assert.Equal(t, "sahara: timeout during hello: no data", wrapped.Error())
	assert.ErrorIs(t, wrapped, ErrTimeout)
	assert.NotErrorIs(t, wrapped, ErrProtocolViolation)
	assert.Equal(t, KindTimeout, KindOf(wrapped))
	assert.Zero(t, KindOf(errors.New("other")))
}
