//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
	"go.uber.org/multierr"
)

// RealIndicator drives an LED from a Linux GPIO character device line.
type RealIndicator struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
	lit  bool
}

// NewRealIndicator requests pin on chip as an output, initially off.
func NewRealIndicator(chipName string, pin int) (*RealIndicator, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", chipName, err)
	}

	line, err := chip.RequestLine(pin, gpiocdev.AsOutput(0), gpiocdev.WithConsumer("nunchuk-kbd"))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request LED pin %d: %w", pin, err)
	}

	return &RealIndicator{chip: chip, line: line}, nil
}

// Set drives the LED. Repeated values are not rewritten.
func (r *RealIndicator) Set(on bool) error {
	if on == r.lit {
		return nil
	}
	v := 0
	if on {
		v = 1
	}
	if err := r.line.SetValue(v); err != nil {
		return fmt.Errorf("set LED: %w", err)
	}
	r.lit = on
	return nil
}

// Close turns the LED off and returns the line to an input with pull-down,
// matching Raspberry Pi boot defaults.
func (r *RealIndicator) Close() error {
	var err error
	if r.line != nil {
		err = multierr.Combine(
			r.line.SetValue(0),
			r.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown),
			r.line.Close(),
		)
	}
	if r.chip != nil {
		err = multierr.Append(err, r.chip.Close())
	}
	return err
}
