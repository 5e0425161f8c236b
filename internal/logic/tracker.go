package logic

import "time"

// Deadzone thresholds around the joystick center. There is no hysteresis:
// a sample on either side of a threshold flips the key immediately.
const (
	JoyCenter = 127
	Deadzone  = 50
)

// Step derives the key state for report r and lists the keys that changed
// since prior, in Keys order. It has no hidden state.
func Step(r SensorReport, prior KeyState) (KeyState, []Edge) {
	var next KeyState
	next[KeyUp] = r.JoyY > JoyCenter+Deadzone
	next[KeyDown] = r.JoyY < JoyCenter-Deadzone
	next[KeyRight] = r.JoyX > JoyCenter+Deadzone
	next[KeyLeft] = r.JoyX < JoyCenter-Deadzone
	next[KeyCtrl] = r.ButtonC
	next[KeySpace] = r.ButtonZ

	var edges []Edge
	for _, k := range Keys {
		if next[k] != prior[k] {
			edges = append(edges, Edge{Key: k, Old: prior[k], New: next[k]})
		}
	}
	return next, edges
}

// Apply replays edges on top of s.
func Apply(s KeyState, edges []Edge) KeyState {
	for _, e := range edges {
		s[e.Key] = e.New
	}
	return s
}

// Tracker holds the key state between ticks. Not safe for concurrent use;
// the poller serializes ticks.
type Tracker struct {
	state  KeyState
	counts EventCounts
}

// NewTracker creates a tracker with every key released.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Process folds a report into the tracked state and returns the edges and
// their events. The stored state is replaced unconditionally.
func (t *Tracker) Process(r SensorReport, now time.Time) ([]Edge, []Event) {
	next, edges := Step(r, t.state)
	t.state = next

	if len(edges) == 0 {
		return nil, nil
	}
	events := make([]Event, 0, len(edges))
	for _, e := range edges {
		typ := EventTypeOf(e)
		if typ == EventMake {
			t.counts.Make[e.Key]++
		} else {
			t.counts.Break[e.Key]++
		}
		events = append(events, Event{
			Timestamp: now,
			Key:       e.Key,
			Type:      typ,
			Bytes:     Encode(e),
			State:     next,
		})
	}
	return edges, events
}

// State returns the current key state.
func (t *Tracker) State() KeyState {
	return t.state
}

// Counts returns the make/break counts since startup.
func (t *Tracker) Counts() EventCounts {
	return t.counts
}
