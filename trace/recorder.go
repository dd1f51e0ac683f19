package trace

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"

	"github.com/moffa90/go-sahara/transport"
)

// Recorder is a transport.Transport that forwards to another transport and
// records every call. It is safe for concurrent use.
//
// Encoding failures never reach the session; Err reports the first one.
type Recorder struct {
	inner     transport.Transport
	sessionID string

	mu      sync.Mutex
	encoder *cbor.Encoder
	closer  io.Closer
	seq     uint32
	err     error
	closed  bool
}

var _ transport.Transport = (*Recorder)(nil)

// NewRecorder records the transfers of inner to w under a new session ID.
func NewRecorder(inner transport.Transport, w io.Writer) *Recorder {
	if inner == nil {
		panic("transport cannot be nil")
	}
	return &Recorder{
		inner:     inner,
		sessionID: uuid.New().String(),
		encoder:   encMode.NewEncoder(w),
	}
}

// Create records the transfers of inner to a file. If the file exists, new
// events are appended. Close the Recorder to close the file.
func Create(path string, inner transport.Transport) (*Recorder, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	r := NewRecorder(inner, f)
	r.closer = f
	return r, nil
}

// SessionID returns the ID stamped on every event of this recording.
func (r *Recorder) SessionID() string {
	return r.sessionID
}

// Send forwards to the wrapped transport and records the outcome.
func (r *Recorder) Send(ctx context.Context, data []byte) error {
	start := time.Now()
	err := r.inner.Send(ctx, data)
	r.record(DirectionOut, data, err, time.Since(start))
	return err
}

// Receive forwards to the wrapped transport and records the outcome.
func (r *Recorder) Receive(ctx context.Context, maxLen int, timeout time.Duration) ([]byte, error) {
	start := time.Now()
	data, err := r.inner.Receive(ctx, maxLen, timeout)
	r.record(DirectionIn, data, err, time.Since(start))
	return data, err
}

// Err returns the first error hit while writing events.
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Close closes the trace file opened by Create. It does not close the
// wrapped transport. It is safe to call Close multiple times.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

func (r *Recorder) record(dir Direction, data []byte, callErr error, elapsed time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}

	r.seq++
	event := Event{
		Timestamp: time.Now(),
		SessionID: r.sessionID,
		Seq:       r.seq,
		Direction: dir,
		Elapsed:   elapsed,
	}
	switch {
	case callErr == nil:
		event.Data = append([]byte(nil), data...)
	case transport.IsTimeout(callErr):
		event.Outcome = OutcomeTimeout
	default:
		event.Outcome = OutcomeError
		event.Error = callErr.Error()
	}

	if err := r.encoder.Encode(event); err != nil && r.err == nil {
		r.err = err
	}
}
