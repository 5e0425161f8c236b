package poller

import (
	"time"

	"github.com/benbjohnson/clock"

	"github.com/sweeney/nunchuk-kbd/internal/bus"
	"github.com/sweeney/nunchuk-kbd/internal/logic"
)

// Probe runs the handshake, waits settle, and reads a single report without
// starting the poll loop. Errors are *InitError or *TransportError.
func Probe(b bus.Bus, clk clock.Clock, settle time.Duration) (logic.SensorReport, error) {
	if clk == nil {
		clk = clock.New()
	}
	if err := initReporting(b); err != nil {
		return logic.SensorReport{}, err
	}
	clk.Sleep(settle)
	r, err := readReport(b)
	if err != nil {
		return logic.SensorReport{}, &TransportError{Op: "read", Err: err}
	}
	return r, nil
}
