package output

import (
	"fmt"
	"time"

	"go.bug.st/serial"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// DefaultBaud is the serial speed of the keyboard bridge.
const DefaultBaud = 115200

// dsrPollInterval is how often the modem lines are checked for a consumer.
const dsrPollInterval = 100 * time.Millisecond

// SerialConfig selects the serial port carrying the keyboard bytes.
type SerialConfig struct {
	Port string
	Baud int
	// AssumeOpen opens the gate immediately instead of waiting for DSR.
	AssumeOpen bool
	// Instance names the channel ("nunchuk-kbd.<instance>").
	Instance int
}

// SerialChannel writes scan codes to a serial port. The consumer on the other
// end signals it is ready by asserting DSR, which opens the shared gate.
type SerialChannel struct {
	port   serial.Port
	name   string
	gate   *Gate
	logger *zap.SugaredLogger

	stop chan struct{}
	done chan struct{}
}

// OpenSerial opens the port and starts watching for the consumer.
func OpenSerial(cfg SerialConfig, gate *Gate, logger *zap.SugaredLogger) (*SerialChannel, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	baud := cfg.Baud
	if baud == 0 {
		baud = DefaultBaud
	}
	port, err := serial.Open(cfg.Port, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", cfg.Port, err)
	}

	c := &SerialChannel{
		port:   port,
		name:   ChannelName(cfg.Instance),
		gate:   gate,
		logger: logger.With("channel", ChannelName(cfg.Instance), "port", cfg.Port),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}

	if cfg.AssumeOpen {
		c.markOpen()
		close(c.done)
		return c, nil
	}
	go c.watch()
	return c, nil
}

// ChannelName returns the name of the channel for an instance.
func ChannelName(instance int) string {
	return fmt.Sprintf("nunchuk-kbd.%d", instance)
}

// Name returns the channel name.
func (c *SerialChannel) Name() string {
	return c.name
}

func (c *SerialChannel) watch() {
	defer close(c.done)
	ticker := time.NewTicker(dsrPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			bits, err := c.port.GetModemStatusBits()
			if err != nil {
				c.logger.Debugw("read modem status", "err", err)
				continue
			}
			if bits.DSR {
				c.markOpen()
				return
			}
		}
	}
}

func (c *SerialChannel) markOpen() {
	if c.gate.Open() {
		c.logger.Infow("output opened by consumer")
	}
}

// IsOpen reports the shared gate status.
func (c *SerialChannel) IsOpen() bool {
	return c.gate.IsOpen()
}

// EmitRaw writes one byte to the port.
func (c *SerialChannel) EmitRaw(b byte) error {
	_, err := c.port.Write([]byte{b})
	return err
}

// Close stops the watcher and closes the port.
func (c *SerialChannel) Close() error {
	select {
	case <-c.stop:
	default:
		close(c.stop)
	}
	<-c.done
	return multierr.Combine(c.port.Drain(), c.port.Close())
}
