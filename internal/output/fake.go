package output

import (
	"sync"
)

// FakeChannel records emitted bytes for test assertions.
type FakeChannel struct {
	gate *Gate

	mu    sync.Mutex
	bytes []byte
	// EmitError, if set, is returned by EmitRaw after the byte is recorded.
	EmitError error
	closed    bool
}

// NewFakeChannel creates a FakeChannel gated by g.
func NewFakeChannel(g *Gate) *FakeChannel {
	return &FakeChannel{gate: g}
}

// IsOpen reports the gate status.
func (f *FakeChannel) IsOpen() bool {
	return f.gate.IsOpen()
}

// EmitRaw records b.
func (f *FakeChannel) EmitRaw(b byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bytes = append(f.bytes, b)
	return f.EmitError
}

// Close marks the channel as closed.
func (f *FakeChannel) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

// Bytes returns a copy of every emitted byte.
func (f *FakeChannel) Bytes() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]byte(nil), f.bytes...)
}

// Closed reports whether Close was called.
func (f *FakeChannel) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// Reset clears recorded bytes.
func (f *FakeChannel) Reset() {
	f.mu.Lock()
	f.bytes = nil
	f.mu.Unlock()
}
