// Package poller drives the controller on a fixed period: read a report,
// fold it into the key state, and forward edges to the output channel.
package poller

import (
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/sweeney/nunchuk-kbd/internal/bus"
	"github.com/sweeney/nunchuk-kbd/internal/logic"
	"github.com/sweeney/nunchuk-kbd/internal/output"
)

// Default timing. The first tick waits longer so the controller can settle
// after the handshake.
const (
	DefaultPeriod      = 10 * time.Millisecond
	DefaultSettleDelay = 50 * time.Millisecond
)

// ReadTrigger arms the controller for the next report.
const ReadTrigger byte = 0x00

// handshake is written once at start-up. These registers enable reporting
// on genuine and third-party controllers alike.
var handshake = [...]struct{ reg, value byte }{
	{0xF0, 0x55},
	{0xFB, 0x00},
}

// eventBuffer bounds the observer queue; events beyond it are dropped.
const eventBuffer = 64

// State is the scheduling state of a Poller.
type State int

const (
	StateIdle State = iota
	StateArmed
	StateTicking
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateArmed:
		return "ARMED"
	case StateTicking:
		return "TICKING"
	case StateStopped:
		return "STOPPED"
	}
	return "UNKNOWN"
}

// Config holds per-device poller settings.
type Config struct {
	Instance    int
	Period      time.Duration
	SettleDelay time.Duration
}

// Stats is a point-in-time view of poller counters.
type Stats struct {
	Ticks           uint64
	TransportErrors uint64
	BytesEmitted    uint64
	// Suppressed counts edges not emitted because the output was inhibited.
	Suppressed uint64
	LastError  string
	Keys       logic.KeyState
	Counts     logic.EventCounts
}

// Poller runs one tick at a time on its own timer goroutine.
type Poller struct {
	cfg    Config
	bus    bus.Bus
	out    output.Channel
	clock  clock.Clock
	logger *zap.SugaredLogger

	// tracker is only touched from a tick, and ticks never overlap.
	tracker *logic.Tracker
	events  chan logic.Event

	mu       sync.Mutex
	state    State
	timer    *clock.Timer
	inflight sync.WaitGroup
	stats    Stats
}

// New creates an idle poller. A nil clock uses the wall clock and a nil
// logger discards output.
func New(cfg Config, b bus.Bus, out output.Channel, clk clock.Clock, logger *zap.SugaredLogger) *Poller {
	if cfg.Period <= 0 {
		cfg.Period = DefaultPeriod
	}
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = DefaultSettleDelay
	}
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Poller{
		cfg:     cfg,
		bus:     b,
		out:     out,
		clock:   clk,
		logger:  logger.With("instance", cfg.Instance),
		tracker: logic.NewTracker(),
		events:  make(chan logic.Event, eventBuffer),
	}
}

// Start performs the initialization handshake and schedules the first tick.
// On handshake failure nothing is scheduled and the poller stays idle.
func (p *Poller) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StateIdle {
		return ErrAlreadyStarted
	}
	if err := initReporting(p.bus); err != nil {
		return err
	}

	p.state = StateArmed
	p.timer = p.clock.AfterFunc(p.cfg.SettleDelay, p.tick)
	p.logger.Infow("polling started", "period", p.cfg.Period, "settle", p.cfg.SettleDelay)
	return nil
}

func initReporting(b bus.Bus) error {
	for i, w := range handshake {
		if err := b.WriteRegister(w.reg, w.value); err != nil {
			return &InitError{Step: i, Err: err}
		}
	}
	if err := b.WriteByte(ReadTrigger); err != nil {
		return &InitError{Step: len(handshake), Err: err}
	}
	return nil
}

// Stop cancels the pending tick and waits for one in flight to finish.
// The events channel is closed afterwards. Stop is idempotent.
func (p *Poller) Stop() {
	p.mu.Lock()
	if p.state == StateStopped {
		p.mu.Unlock()
		return
	}
	p.state = StateStopped
	if p.timer != nil {
		p.timer.Stop()
	}
	p.mu.Unlock()

	p.inflight.Wait()
	close(p.events)
	p.logger.Infow("polling stopped")
}

// State returns the current scheduling state.
func (p *Poller) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Stats returns a copy of the poller counters.
func (p *Poller) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// Events delivers every edge as an event. Delivery never blocks a tick:
// when the buffer is full the event is dropped.
func (p *Poller) Events() <-chan logic.Event {
	return p.events
}

func (p *Poller) tick() {
	p.mu.Lock()
	if p.state != StateArmed {
		p.mu.Unlock()
		return
	}
	p.state = StateTicking
	p.inflight.Add(1)
	p.mu.Unlock()
	defer p.inflight.Done()

	if err := p.runTick(); err != nil {
		p.logger.Warnw("tick failed", "err", err)
	}

	p.mu.Lock()
	if p.state == StateTicking {
		p.state = StateArmed
		p.timer = p.clock.AfterFunc(p.cfg.Period, p.tick)
	}
	p.mu.Unlock()
}

// runTick is one read, decode, track, emit, trigger cycle.
func (p *Poller) runTick() error {
	now := p.clock.Now()

	report, err := readReport(p.bus)
	if err != nil {
		return p.transportError("read", err)
	}

	open := p.out.IsOpen()
	_, events := p.tracker.Process(report, now)

	var emitted, suppressed uint64
	for _, ev := range events {
		if !open {
			suppressed++
		} else {
			for _, b := range ev.Bytes {
				if err := p.out.EmitRaw(b); err != nil {
					p.logger.Debugw("emit failed", "key", ev.Key, "err", err)
				}
				emitted++
			}
		}
		p.publish(ev)
	}

	p.mu.Lock()
	p.stats.Ticks++
	p.stats.BytesEmitted += emitted
	p.stats.Suppressed += suppressed
	p.stats.Keys = p.tracker.State()
	p.stats.Counts = p.tracker.Counts()
	p.mu.Unlock()

	if err := p.bus.WriteByte(ReadTrigger); err != nil {
		return p.transportError("trigger", err)
	}
	return nil
}

// readReport reads and decodes one report. A short read is an error.
func readReport(b bus.Bus) (logic.SensorReport, error) {
	raw, err := b.ReadBytes(logic.ReportSize)
	if err != nil {
		return logic.SensorReport{}, err
	}
	if len(raw) != logic.ReportSize {
		return logic.SensorReport{}, fmt.Errorf("short report: got %d bytes, want %d", len(raw), logic.ReportSize)
	}
	var buf [logic.ReportSize]byte
	copy(buf[:], raw)
	return logic.Decode(buf), nil
}

func (p *Poller) transportError(op string, err error) error {
	terr := &TransportError{Op: op, Err: err}
	p.mu.Lock()
	if op == "read" {
		p.stats.Ticks++
	}
	p.stats.TransportErrors++
	p.stats.LastError = terr.Error()
	p.mu.Unlock()
	return terr
}

func (p *Poller) publish(ev logic.Event) {
	select {
	case p.events <- ev:
	default:
		p.logger.Debugw("event dropped", "key", ev.Key, "type", ev.Type)
	}
}
