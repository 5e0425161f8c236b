// Package bus provides the two-wire (I2C) link to the controller with hardware abstraction.
// The real implementation uses periph.io I2C drivers.
// The fake implementation allows testing without hardware.
package bus

// Bus is the set of transfers the poller needs from the controller link.
// Every call blocks until the transfer completes and fails only on transport error.
type Bus interface {
	// ReadBytes reads exactly n raw bytes from the peripheral.
	ReadBytes(n int) ([]byte, error)

	// WriteByte writes a single byte (used as the read trigger).
	WriteByte(b byte) error

	// WriteRegister writes value into register reg.
	WriteRegister(reg, value byte) error

	// Close releases the bus.
	Close() error
}

// DefaultAddress is the controller's 7-bit I2C address.
const DefaultAddress = 0x52
