// Package transport defines the channel a Sahara session runs over.
//
// A Transport moves opaque transfers between host and device. It knows
// nothing about packets; one Receive returns exactly one logical transfer,
// never part of one and never two merged together. USB bulk endpoints give
// this for free; stream-oriented channels (serial ports) approximate it by
// waiting for an idle gap.
package transport

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrTimeout is returned by Receive when nothing arrives in time
	ErrTimeout = errors.New("transport: receive timed out")

	// ErrClosed is returned after the transport has been closed
	ErrClosed = errors.New("transport: closed")
)

// Transport is a half-duplex, transfer-oriented channel to one device.
//
// Implementations need not be safe for concurrent use; a session drives
// the transport from a single goroutine.
type Transport interface {
	// Send transmits data as one logical transfer.
	Send(ctx context.Context, data []byte) error

	// Receive returns the next logical transfer of at most maxLen bytes.
	// It returns an error matching ErrTimeout if nothing arrives within
	// timeout.
	Receive(ctx context.Context, maxLen int, timeout time.Duration) ([]byte, error)
}

// IsTimeout reports whether err means the peer stayed silent.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded)
}
