package sahara

import (
	"context"
	"encoding/hex"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/moffa90/go-sahara/protocol"
)

// mockTransport is a scripted transport. Receive expectations are consumed
// in the order they were registered.
type mockTransport struct {
	mock.Mock
}

func (m *mockTransport) Send(ctx context.Context, data []byte) error {
	args := m.Called(data)
	return args.Error(0)
}

func (m *mockTransport) Receive(ctx context.Context, maxLen int, timeout time.Duration) ([]byte, error) {
	args := m.Called(maxLen)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

// expectRx queues a device transfer.
func (m *mockTransport) expectRx(data []byte) {
	m.On("Receive", mock.Anything).Return(data, nil).Once()
}

// expectRxErr queues a receive failure.
func (m *mockTransport) expectRxErr(err error) {
	m.On("Receive", mock.Anything).Return(nil, err).Once()
}

// expectTx expects the host to send exactly data.
func (m *mockTransport) expectTx(data []byte) {
	m.On("Send", data).Return(nil).Once()
}

// hexBytes decodes a hex dump with arbitrary whitespace.
func hexBytes(t testing.TB, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(strings.Join(strings.Fields(s), ""))
	if err != nil {
		t.Fatalf("bad hex %q: %v", s, err)
	}
	return b
}

// recordingLogger collects log messages.
type recordingLogger struct {
	mu       sync.Mutex
	messages map[string][]string
}

func newRecordingLogger() *recordingLogger {
	return &recordingLogger{messages: make(map[string][]string)}
}

func (l *recordingLogger) record(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages[level] = append(l.messages[level], msg)
}

func (l *recordingLogger) Debug(msg string, _ ...interface{}) { l.record("debug", msg) }
func (l *recordingLogger) Info(msg string, _ ...interface{})  { l.record("info", msg) }
func (l *recordingLogger) Error(msg string, _ ...interface{}) { l.record("error", msg) }

func (l *recordingLogger) get(level string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.messages[level]...)
}

func helloFrame(version, compat uint32) []byte {
	return protocol.Encode(protocol.Hello{
		Version:           version,
		VersionCompatible: compat,
		MaxCommandLength:  0x400,
		Mode:              protocol.ModeImageTransferPending,
	})
}

func helloResponseFrame() []byte {
	return protocol.Encode(protocol.NewHelloResponse(protocol.ProtocolVersion, protocol.ProtocolMinVersion, protocol.ModeCommand))
}
