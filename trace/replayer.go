package trace

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/moffa90/go-sahara/transport"
)

// ErrDiverged is returned when the host does something other than what the
// recording shows at that point.
var ErrDiverged = errors.New("trace: replay diverged from recording")

// Replayer is a transport.Transport that plays back one recorded session.
// Sends are checked against the recording; receives return what the device
// sent, or the timeout or error that was recorded.
type Replayer struct {
	mu     sync.Mutex
	events []Event
	pos    int
}

var _ transport.Transport = (*Replayer)(nil)

// NewReplayer plays back events in order. Pass the events of a single
// session, see Session.
func NewReplayer(events []Event) *Replayer {
	return &Replayer{events: append([]Event(nil), events...)}
}

// Send checks data against the next recorded host transfer.
func (r *Replayer) Send(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	event, err := r.next(DirectionOut)
	if err != nil {
		return err
	}
	if event.Outcome != OutcomeOK {
		return event.err()
	}
	if !bytes.Equal(event.Data, data) {
		return fmt.Errorf("%w: event %d: host sent % X, recorded % X", ErrDiverged, event.Seq, data, event.Data)
	}
	return nil
}

// Receive returns the next recorded device transfer. Once the recording is
// exhausted the device reads as silent.
func (r *Replayer) Receive(ctx context.Context, maxLen int, timeout time.Duration) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pos >= len(r.events) {
		return nil, transport.ErrTimeout
	}

	event, err := r.next(DirectionIn)
	if err != nil {
		return nil, err
	}
	if event.Outcome != OutcomeOK {
		return nil, event.err()
	}

	data := append([]byte(nil), event.Data...)
	if len(data) > maxLen {
		data = data[:maxLen]
	}
	return data, nil
}

// Remaining returns the number of events not yet replayed.
func (r *Replayer) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events) - r.pos
}

// next must be called with r.mu held.
func (r *Replayer) next(dir Direction) (Event, error) {
	if r.pos >= len(r.events) {
		return Event{}, fmt.Errorf("%w: recording ended, host still sending", ErrDiverged)
	}
	event := r.events[r.pos]
	if event.Direction != dir {
		return Event{}, fmt.Errorf("%w: event %d is %s, host did %s", ErrDiverged, event.Seq, event.Direction, dir)
	}
	r.pos++
	return event, nil
}

func (e Event) err() error {
	if e.Outcome == OutcomeTimeout {
		return transport.ErrTimeout
	}
	return fmt.Errorf("recorded error: %s", e.Error)
}
