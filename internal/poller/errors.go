package poller

import (
	"errors"
	"fmt"
)

// ErrAlreadyStarted is returned by Start on a poller that is not idle.
var ErrAlreadyStarted = errors.New("poller: already started")

// TransportError is a failed bus transfer during a tick. The tick is
// abandoned and the next one is still scheduled.
type TransportError struct {
	Op  string // "read" or "trigger"
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// InitError is a failed initialization handshake. No tick is scheduled.
type InitError struct {
	Step int // index of the failed handshake write
	Err  error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("init handshake step %d: %v", e.Step, e.Err)
}

func (e *InitError) Unwrap() error {
	return e.Err
}
