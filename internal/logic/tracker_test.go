package logic

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func centered() SensorReport {
	return SensorReport{JoyX: JoyCenter, JoyY: JoyCenter}
}

func TestStepCenteredNoKeys(t *testing.T) {
	next, edges := Step(centered(), KeyState{})
	if next.Any() {
		t.Errorf("expected no keys pressed, got %v", next)
	}
	if len(edges) != 0 {
		t.Errorf("expected no edges, got %v", edges)
	}
}

func TestStepDeadzoneBoundaries(t *testing.T) {
	tests := []struct {
		name string
		x, y uint8
		key  Key
		want bool
	}{
		{"up at 178", 127, 178, KeyUp, true},
		{"up at 177", 127, 177, KeyUp, false},
		{"down at 76", 127, 76, KeyDown, true},
		{"down at 77", 127, 77, KeyDown, false},
		{"right at 178", 178, 127, KeyRight, true},
		{"right at 177", 177, 127, KeyRight, false},
		{"left at 76", 76, 127, KeyLeft, true},
		{"left at 77", 77, 127, KeyLeft, false},
		{"up at max", 127, 255, KeyUp, true},
		{"down at min", 127, 0, KeyDown, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, _ := Step(SensorReport{JoyX: tt.x, JoyY: tt.y}, KeyState{})
			if next[tt.key] != tt.want {
				t.Errorf("%s: got %v, want %v", tt.key, next[tt.key], tt.want)
			}
		})
	}
}

func TestStepOppositeDirectionsExclusive(t *testing.T) {
	for v := 0; v <= 255; v++ {
		next, _ := Step(SensorReport{JoyX: uint8(v), JoyY: uint8(v)}, KeyState{})
		if next[KeyUp] && next[KeyDown] {
			t.Errorf("joy_y=%d: up and down both pressed", v)
		}
		if next[KeyLeft] && next[KeyRight] {
			t.Errorf("joy_x=%d: left and right both pressed", v)
		}
	}
}

func TestStepButtonsMirror(t *testing.T) {
	r := centered()
	r.ButtonC = true
	next, edges := Step(r, KeyState{})
	if !next[KeyCtrl] || next[KeySpace] {
		t.Errorf("expected ctrl only, got %v", next)
	}
	want := []Edge{{Key: KeyCtrl, Old: false, New: true}}
	if diff := cmp.Diff(want, edges); diff != "" {
		t.Errorf("edges (-want +got):\n%s", diff)
	}
}

func TestStepEdgeOrder(t *testing.T) {
	prior := KeyState{KeyDown: true, KeyRight: true}
	r := SensorReport{JoyX: 10, JoyY: 200, ButtonC: true, ButtonZ: true}

	_, edges := Step(r, prior)
	want := []Edge{
		{Key: KeyUp, Old: false, New: true},
		{Key: KeyDown, Old: true, New: false},
		{Key: KeyLeft, Old: false, New: true},
		{Key: KeyRight, Old: true, New: false},
		{Key: KeyCtrl, Old: false, New: true},
		{Key: KeySpace, Old: false, New: true},
	}
	if diff := cmp.Diff(want, edges); diff != "" {
		t.Errorf("edges (-want +got):\n%s", diff)
	}
}

func TestStepDeterministic(t *testing.T) {
	prior := KeyState{KeyUp: true, KeyCtrl: true}
	r := SensorReport{JoyX: 30, JoyY: 127, ButtonZ: true}

	n1, e1 := Step(r, prior)
	n2, e2 := Step(r, prior)
	if n1 != n2 {
		t.Errorf("state differs: %v vs %v", n1, n2)
	}
	if diff := cmp.Diff(e1, e2); diff != "" {
		t.Errorf("edges differ:\n%s", diff)
	}
}

func TestApplyEdgesReproducesState(t *testing.T) {
	reports := []SensorReport{
		centered(),
		{JoyX: 255, JoyY: 0, ButtonC: true},
		{JoyX: 0, JoyY: 255, ButtonZ: true},
		{JoyX: 178, JoyY: 76, ButtonC: true, ButtonZ: true},
		centered(),
	}
	var state KeyState
	for i, r := range reports {
		next, edges := Step(r, state)
		for _, e := range edges {
			if e.Old == e.New {
				t.Errorf("report %d: edge %v does not change state", i, e)
			}
		}
		if got := Apply(state, edges); got != next {
			t.Errorf("report %d: Apply got %v, want %v", i, got, next)
		}
		state = next
	}
}

func TestStepNoHysteresis(t *testing.T) {
	// Oscillating across the boundary toggles the key every sample.
	var state KeyState
	for i, y := range []uint8{178, 177, 178, 177} {
		var edges []Edge
		state, edges = Step(SensorReport{JoyX: 127, JoyY: y}, state)
		if len(edges) != 1 || edges[0].Key != KeyUp {
			t.Fatalf("sample %d: expected one UP edge, got %v", i, edges)
		}
	}
}

func TestTrackerProcess(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tr := NewTracker()

	edges, events := tr.Process(SensorReport{JoyX: 127, JoyY: 200}, now)
	if len(edges) != 1 || len(events) != 1 {
		t.Fatalf("expected 1 edge and event, got %d and %d", len(edges), len(events))
	}
	e := events[0]
	if e.Key != KeyUp || e.Type != EventMake {
		t.Errorf("event: got %s %s, want UP MAKE", e.Key, e.Type)
	}
	if diff := cmp.Diff([]byte{0xe0, 0x75}, e.Bytes); diff != "" {
		t.Errorf("bytes (-want +got):\n%s", diff)
	}
	if !e.Timestamp.Equal(now) {
		t.Errorf("timestamp: got %v, want %v", e.Timestamp, now)
	}
	if !e.State[KeyUp] {
		t.Error("event state should have UP pressed")
	}

	// Held: no events
	edges, events = tr.Process(SensorReport{JoyX: 127, JoyY: 220}, now.Add(10*time.Millisecond))
	if edges != nil || events != nil {
		t.Errorf("expected nothing while held, got %v %v", edges, events)
	}

	// Release
	_, events = tr.Process(centered(), now.Add(20*time.Millisecond))
	if len(events) != 1 || events[0].Type != EventBreak {
		t.Fatalf("expected one BREAK, got %v", events)
	}
	if diff := cmp.Diff([]byte{0xe0, 0xf0, 0x75}, events[0].Bytes); diff != "" {
		t.Errorf("bytes (-want +got):\n%s", diff)
	}

	counts := tr.Counts()
	if counts.Make[KeyUp] != 1 || counts.Break[KeyUp] != 1 {
		t.Errorf("counts: got make=%d break=%d, want 1/1", counts.Make[KeyUp], counts.Break[KeyUp])
	}
	if counts.Total() != 2 {
		t.Errorf("total: got %d, want 2", counts.Total())
	}
	if tr.State().Any() {
		t.Errorf("expected all released, got %v", tr.State())
	}
}

func TestNewTrackerAllReleased(t *testing.T) {
	tr := NewTracker()
	if tr.State() != (KeyState{}) {
		t.Errorf("expected zero state, got %v", tr.State())
	}
	if tr.Counts().Total() != 0 {
		t.Errorf("expected zero counts, got %d", tr.Counts().Total())
	}
}
