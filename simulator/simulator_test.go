package simulator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moffa90/go-sahara/protocol"
	"github.com/moffa90/go-sahara/transport"
)

func receive(t *testing.T, d *Device) protocol.Packet {
	t.Helper()
	b, err := d.Receive(context.Background(), protocol.DefaultMaxTransferSize, time.Second)
	require.NoError(t, err)
	pkt, err := protocol.Decode(b)
	require.NoError(t, err)
	return pkt
}

func send(t *testing.T, d *Device, p protocol.Packet) {
	t.Helper()
	require.NoError(t, d.Send(context.Background(), protocol.Encode(p)))
}

func TestDeviceOpensWithHello(t *testing.T) {
	d := New(WithVersion(3, 2))

	assert.Equal(t, protocol.Hello{
		Version:           3,
		VersionCompatible: 2,
		MaxCommandLength:  0x400,
		Mode:              protocol.ModeImageTransferPending,
	}, receive(t, d))

	_, err := d.Receive(context.Background(), 64, time.Second)
	assert.ErrorIs(t, err, transport.ErrTimeout)
}

func TestDeviceCommandExchange(t *testing.T) {
	d := New(WithSerialNumber(0xA8ED626B))
	receive(t, d)

	send(t, d, protocol.NewHelloResponse(2, 1, protocol.ModeCommand))
	assert.Equal(t, protocol.CommandReady{}, receive(t, d))

	send(t, d, protocol.Execute{ClientCommand: CodeSerialNumber})
	assert.Equal(t, protocol.ExecuteResponse{ClientCommand: CodeSerialNumber, DataLength: 4}, receive(t, d))

	send(t, d, protocol.ExecuteData{ClientCommand: CodeSerialNumber})
	b, err := d.Receive(context.Background(), 64, time.Second)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x6B, 0x62, 0xED, 0xA8}, b)

	send(t, d, protocol.Execute{ClientCommand: CodeHardwareID})
	assert.Equal(t, protocol.EndOfImageTransfer{Status: protocol.StatusExecCmdUnsupported}, receive(t, d))

	send(t, d, protocol.Reset{})
	assert.Equal(t, protocol.ResetResponse{}, receive(t, d))
	assert.Equal(t, 1, d.Resets())

	assert.Len(t, d.Received(), 5)
}

func TestDeviceModes(t *testing.T) {
	t.Run("image only", func(t *testing.T) {
		d := New(ImageTransferOnly())
		receive(t, d)
		send(t, d, protocol.NewHelloResponse(2, 1, protocol.ModeCommand))
		assert.IsType(t, protocol.ReadData{}, receive(t, d))
	})

	t.Run("host asks for image mode", func(t *testing.T) {
		d := New()
		receive(t, d)
		send(t, d, protocol.NewHelloResponse(2, 1, protocol.ModeImageTransferPending))
		assert.Equal(t, protocol.EndOfImageTransfer{Status: protocol.StatusInvalidHostMode}, receive(t, d))
	})

	t.Run("silent", func(t *testing.T) {
		d := New(Silent())
		_, err := d.Receive(context.Background(), 64, time.Second)
		assert.ErrorIs(t, err, transport.ErrTimeout)
	})

	t.Run("garbage from host", func(t *testing.T) {
		d := New()
		receive(t, d)
		require.NoError(t, d.Send(context.Background(), []byte{0x01}))
		assert.Equal(t, protocol.EndOfImageTransfer{Status: protocol.StatusInvalidCommand}, receive(t, d))
	})
}

func TestDeviceRefusalAndSkew(t *testing.T) {
	d := New(
		WithHardwareID(0x000480E1_0000_0000),
		WithRefusal(CodeSBLVersion, protocol.StatusExecCmdInvalidParam),
		WithPayloadSkew(-3),
	)
	receive(t, d)

	send(t, d, protocol.Execute{ClientCommand: CodeSBLVersion})
	assert.Equal(t, protocol.EndOfImageTransfer{Status: protocol.StatusExecCmdInvalidParam}, receive(t, d))

	send(t, d, protocol.ExecuteData{ClientCommand: CodeHardwareID})
	b, err := d.Receive(context.Background(), 64, time.Second)
	require.NoError(t, err)
	assert.Len(t, b, 5)
}

func TestDeviceHangAfter(t *testing.T) {
	d := New(HangAfter(1))
	receive(t, d)

	send(t, d, protocol.NewHelloResponse(2, 1, protocol.ModeCommand))
	receive(t, d)

	send(t, d, protocol.Execute{ClientCommand: CodeSerialNumber})
	_, err := d.Receive(context.Background(), 64, time.Second)
	assert.ErrorIs(t, err, transport.ErrTimeout)
}

func TestDeviceCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := New()
	assert.ErrorIs(t, d.Send(ctx, []byte{0x00}), context.Canceled)
	_, err := d.Receive(ctx, 64, time.Second)
	assert.ErrorIs(t, err, context.Canceled)
}
