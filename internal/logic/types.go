// Package logic contains the pure decode and key-transition logic for the nunchuk keyboard.
// This package has NO external dependencies (no I2C, serial, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import "time"

// Key identifies one of the six logical keys driven by the controller.
type Key int

const (
	KeyUp Key = iota
	KeyDown
	KeyLeft
	KeyRight
	KeyCtrl
	KeySpace

	// NumKeys is the number of logical keys.
	NumKeys = 6
)

// Keys lists every key in edge order.
var Keys = [NumKeys]Key{KeyUp, KeyDown, KeyLeft, KeyRight, KeyCtrl, KeySpace}

var keyNames = [NumKeys]string{"UP", "DOWN", "LEFT", "RIGHT", "CTRL", "SPACE"}

func (k Key) String() string {
	if k < 0 || int(k) >= NumKeys {
		return "UNKNOWN"
	}
	return keyNames[k]
}

// KeyState holds the pressed state of every key, indexed by Key.
type KeyState [NumKeys]bool

// Any reports whether at least one key is pressed.
func (s KeyState) Any() bool {
	for _, pressed := range s {
		if pressed {
			return true
		}
	}
	return false
}

// Edge is a change of one key between two ticks. Old and New always differ.
type Edge struct {
	Key Key
	Old bool
	New bool
}

// EventType is the keyboard framing of an edge.
type EventType string

const (
	EventMake  EventType = "MAKE"
	EventBreak EventType = "BREAK"
)

// Event is a timestamped edge handed to observers.
type Event struct {
	Timestamp time.Time
	Key       Key
	Type      EventType
	// Bytes is the output sequence for this edge, whether or not it was emitted.
	Bytes []byte
	// State is the key state after the tick that produced this event.
	State KeyState
}

// EventCounts tracks make and break events per key since startup.
type EventCounts struct {
	Make  [NumKeys]int
	Break [NumKeys]int
}

// Total returns the sum of all make and break events.
func (c EventCounts) Total() int {
	n := 0
	for i := 0; i < NumKeys; i++ {
		n += c.Make[i] + c.Break[i]
	}
	return n
}
