// Package channel carries the JSON envelopes between peers. The engines
// require ordered, reliable delivery; both implementations here satisfy it
// (WebSocket over TCP, and an in-process loopback used by tests). Nothing
// in this package interprets frame contents.
package channel

import (
	"errors"
	"sync"
)

// ErrClosed is returned when sending on a closed channel end.
var ErrClosed = errors.New("channel: closed")

// Handler receives one inbound frame. Handlers are invoked sequentially in
// arrival order on the reading goroutine.
type Handler func(frame []byte)

// Channel is a bidirectional, ordered, reliable frame transport.
type Channel interface {
	Send(frame []byte) error
	Close() error
}

// Loopback is an in-process channel end. Frames sent on one end are
// delivered synchronously and in order to the other end's handler.
type Loopback struct {
	mu      sync.Mutex
	peer    *Loopback
	handler Handler
	closed  bool
}

// NewLoopbackPair returns two connected loopback ends.
func NewLoopbackPair() (*Loopback, *Loopback) {
	a := &Loopback{}
	b := &Loopback{}
	a.peer = b
	b.peer = a
	return a, b
}

// SetHandler installs the inbound handler for this end.
func (l *Loopback) SetHandler(h Handler) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.handler = h
}

func (l *Loopback) Send(frame []byte) error {
	l.mu.Lock()
	closed := l.closed
	peer := l.peer
	l.mu.Unlock()
	if closed {
		return ErrClosed
	}

	peer.mu.Lock()
	h := peer.handler
	peer.mu.Unlock()
	if h != nil {
		// Copy: the caller may reuse the buffer after Send returns.
		cp := make([]byte, len(frame))
		copy(cp, frame)
		h(cp)
	}
	return nil
}

func (l *Loopback) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	return nil
}
