// Package status provides a thread-safe status tracker for the nunchuk-kbd daemon.
// It is read by the HTTP handlers and the heartbeat publisher.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/nunchuk-kbd/internal/output"
	"github.com/sweeney/nunchuk-kbd/internal/poller"
)

// Config contains daemon configuration for display.
type Config struct {
	Instance    int
	I2CBus      string
	Address     uint16
	PeriodMs    int64
	SettleMs    int64
	OutputPort  string
	Baud        int
	HeartbeatMs int64
	Broker      string
	HTTPAddr    string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type and safe to use after the lock is released.
type Snapshot struct {
	Poller        poller.Stats
	PollerState   poller.State
	Output        output.Status
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
	now  func() time.Time
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
		now: time.Now,
	}
}

// Update records the latest poller counters and output status.
// Called from runLoop whenever an event arrives and on each refresh.
func (t *Tracker) Update(stats poller.Stats, state poller.State, out output.Status) {
	t.mu.Lock()
	t.snap.Poller = stats
	t.snap.PollerState = state
	t.snap.Output = out
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = t.now()
	return s
}
