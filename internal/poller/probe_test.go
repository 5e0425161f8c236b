package poller

import (
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/sweeney/nunchuk-kbd/internal/bus"
	"github.com/sweeney/nunchuk-kbd/internal/logic"
)

type probeResult struct {
	report logic.SensorReport
	err    error
}

// runProbe drives a mock clock until Probe returns.
func runProbe(t *testing.T, b bus.Bus) probeResult {
	t.Helper()
	mock := clock.NewMock()
	done := make(chan probeResult, 1)
	go func() {
		r, err := Probe(b, mock, DefaultSettleDelay)
		done <- probeResult{r, err}
	}()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case res := <-done:
			return res
		case <-deadline:
			t.Fatal("Probe did not return")
		case <-time.After(time.Millisecond):
			mock.Add(DefaultSettleDelay)
		}
	}
}

func TestProbeReadsOneReport(t *testing.T) {
	b := bus.NewFakeBus(rawLeftCtrl)
	res := runProbe(t, b)
	if res.err != nil {
		t.Fatalf("unexpected error: %v", res.err)
	}
	if res.report.JoyX != 20 || !res.report.ButtonC || res.report.ButtonZ {
		t.Errorf("report: got %+v", res.report)
	}
	if b.Reads() != 1 {
		t.Errorf("reads: got %d, want 1", b.Reads())
	}
	if got := len(b.Writes()); got != 3 {
		t.Errorf("writes: got %d, want 3 (handshake only)", got)
	}
}

func TestProbeInitError(t *testing.T) {
	b := bus.NewFakeBus(rawCentered)
	b.FailWrite(0, errors.New("nack"))

	_, err := Probe(b, clock.NewMock(), DefaultSettleDelay)
	var ierr *InitError
	if !errors.As(err, &ierr) {
		t.Fatalf("expected *InitError, got %v", err)
	}
	if b.Reads() != 0 {
		t.Errorf("reads after init failure: got %d, want 0", b.Reads())
	}
}

func TestProbeShortRead(t *testing.T) {
	res := runProbe(t, bus.NewFakeBus([]byte{1, 2, 3}))
	var terr *TransportError
	if !errors.As(res.err, &terr) || terr.Op != "read" {
		t.Fatalf("expected read TransportError, got %v", res.err)
	}
}
