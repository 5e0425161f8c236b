// Package output provides the keyboard byte sink the poller writes scan codes to.
// Emission is gated by a shared Gate that stays closed until a consumer opens a channel.
package output

import "go.uber.org/atomic"

// Status is the two-state consumer status of the output.
type Status int

const (
	StatusClosed Status = iota
	StatusOpen
)

func (s Status) String() string {
	if s == StatusOpen {
		return "OPEN"
	}
	return "CLOSED"
}

// Channel is an ordered byte sink.
type Channel interface {
	// IsOpen reports whether a consumer has opened the output.
	IsOpen() bool

	// EmitRaw writes one byte. Callers treat failures as fire-and-forget.
	EmitRaw(b byte) error

	// Close releases the channel.
	Close() error
}

// Gate is the process-wide inhibit flag. It starts closed and opens exactly
// once, when the first consumer opens any channel sharing it.
type Gate struct {
	open *atomic.Bool
}

// NewGate returns a closed gate.
func NewGate() *Gate {
	return &Gate{open: atomic.NewBool(false)}
}

// Open lifts the inhibit. It reports whether this call did the flip.
func (g *Gate) Open() bool {
	return g.open.CompareAndSwap(false, true)
}

// IsOpen reports whether emission is allowed.
func (g *Gate) IsOpen() bool {
	return g.open.Load()
}

// Status returns the gate as a Status value.
func (g *Gate) Status() Status {
	if g.IsOpen() {
		return StatusOpen
	}
	return StatusClosed
}
