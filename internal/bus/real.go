//go:build linux

package bus

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

// RealBus talks to the controller over a Linux I2C adapter.
type RealBus struct {
	bus i2c.BusCloser
	dev *i2c.Dev
}

// NewRealBus opens the named I2C bus ("" selects the first one) and addresses
// the peripheral at addr. A zero speedHz leaves the adapter speed unchanged.
func NewRealBus(name string, addr uint16, speedHz int64) (*RealBus, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init host drivers: %w", err)
	}

	b, err := i2creg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %q: %w", name, err)
	}

	if speedHz > 0 {
		if err := b.SetSpeed(physic.Frequency(speedHz) * physic.Hertz); err != nil {
			b.Close()
			return nil, fmt.Errorf("set i2c speed %dHz: %w", speedHz, err)
		}
	}

	return &RealBus{
		bus: b,
		dev: &i2c.Dev{Addr: addr, Bus: b},
	}, nil
}

// ReadBytes reads n bytes in a single read transaction.
func (r *RealBus) ReadBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if err := r.dev.Tx(nil, buf); err != nil {
		return nil, fmt.Errorf("i2c read %d bytes: %w", n, err)
	}
	return buf, nil
}

// WriteByte writes a single byte.
func (r *RealBus) WriteByte(b byte) error {
	if err := r.dev.Tx([]byte{b}, nil); err != nil {
		return fmt.Errorf("i2c write 0x%02x: %w", b, err)
	}
	return nil
}

// WriteRegister writes value into register reg.
func (r *RealBus) WriteRegister(reg, value byte) error {
	if err := r.dev.Tx([]byte{reg, value}, nil); err != nil {
		return fmt.Errorf("i2c write reg 0x%02x=0x%02x: %w", reg, value, err)
	}
	return nil
}

// Close releases the I2C bus.
func (r *RealBus) Close() error {
	if r.bus == nil {
		return nil
	}
	return r.bus.Close()
}

// String describes the bus for logs.
func (r *RealBus) String() string {
	return r.dev.String()
}
