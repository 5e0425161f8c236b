//go:build !linux

package bus

import "errors"

// RealBus is not available on non-Linux platforms.
type RealBus struct{}

// NewRealBus returns an error on non-Linux platforms.
func NewRealBus(name string, addr uint16, speedHz int64) (*RealBus, error) {
	return nil, errors.New("bus: not supported on this platform (requires Linux)")
}

// ReadBytes is not implemented on non-Linux platforms.
func (r *RealBus) ReadBytes(n int) ([]byte, error) {
	return nil, errors.New("bus: not supported")
}

// WriteByte is not implemented on non-Linux platforms.
func (r *RealBus) WriteByte(b byte) error {
	return errors.New("bus: not supported")
}

// WriteRegister is not implemented on non-Linux platforms.
func (r *RealBus) WriteRegister(reg, value byte) error {
	return errors.New("bus: not supported")
}

// Close is not implemented on non-Linux platforms.
func (r *RealBus) Close() error {
	return nil
}

// String describes the bus for logs.
func (r *RealBus) String() string {
	return "unsupported"
}
