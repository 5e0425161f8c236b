// Package config loads daemon settings from an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/sweeney/nunchuk-kbd/internal/bus"
	"github.com/sweeney/nunchuk-kbd/internal/gpio"
	"github.com/sweeney/nunchuk-kbd/internal/output"
	"github.com/sweeney/nunchuk-kbd/internal/poller"
)

// Config is the complete daemon configuration.
type Config struct {
	Instance int    `yaml:"instance"`
	I2C      I2C    `yaml:"i2c"`
	Poll     Poll   `yaml:"poll"`
	Output   Output `yaml:"output"`
	MQTT     MQTT   `yaml:"mqtt"`
	HTTP     HTTP   `yaml:"http"`
	LED      LED    `yaml:"led"`
}

// I2C selects the bus and peripheral address.
type I2C struct {
	// Bus is the periph bus name; empty means the first available bus.
	Bus     string `yaml:"bus"`
	Address uint16 `yaml:"address"`
	// SpeedHz is applied when non-zero.
	SpeedHz int64 `yaml:"speed_hz"`
}

// Poll holds the sampling schedule.
type Poll struct {
	Period time.Duration `yaml:"period"`
	Settle time.Duration `yaml:"settle"`
}

// Output is the serial port the scancodes are written to.
type Output struct {
	Port string `yaml:"port"`
	Baud int    `yaml:"baud"`
	// AssumeOpen opens the gate at start instead of waiting for DSR.
	AssumeOpen bool `yaml:"assume_open"`
}

// MQTT configures event publishing. An empty broker disables it.
type MQTT struct {
	Broker    string        `yaml:"broker"`
	Heartbeat time.Duration `yaml:"heartbeat"`
}

// HTTP configures the status server. An empty address disables it.
type HTTP struct {
	Addr string `yaml:"addr"`
}

// LED configures the activity indicator. A negative pin disables it.
type LED struct {
	Chip string `yaml:"chip"`
	Pin  int    `yaml:"pin"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		I2C: I2C{Address: bus.DefaultAddress},
		Poll: Poll{
			Period: poller.DefaultPeriod,
			Settle: poller.DefaultSettleDelay,
		},
		Output: Output{Baud: output.DefaultBaud},
		MQTT:   MQTT{Heartbeat: 15 * time.Minute},
		HTTP:   HTTP{Addr: ":8080"},
		LED:    LED{Chip: gpio.DefaultChip, Pin: gpio.DisabledPin},
	}
}

// Load reads path over Default. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := Parse(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML into cfg, leaving unset fields untouched.
func Parse(data []byte, cfg *Config) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// Validate reports every invalid field.
func (c Config) Validate() error {
	var err error
	if c.Instance < 0 {
		err = multierr.Append(err, fmt.Errorf("instance must not be negative, got %d", c.Instance))
	}
	if c.I2C.Address > 0x7f {
		err = multierr.Append(err, fmt.Errorf("i2c.address 0x%x is not a 7-bit address", c.I2C.Address))
	}
	if c.I2C.SpeedHz < 0 {
		err = multierr.Append(err, fmt.Errorf("i2c.speed_hz must not be negative, got %d", c.I2C.SpeedHz))
	}
	if c.Poll.Period <= 0 {
		err = multierr.Append(err, fmt.Errorf("poll.period must be positive, got %v", c.Poll.Period))
	}
	if c.Poll.Settle <= 0 {
		err = multierr.Append(err, fmt.Errorf("poll.settle must be positive, got %v", c.Poll.Settle))
	}
	if c.Output.Port == "" {
		err = multierr.Append(err, errors.New("output.port is required"))
	}
	if c.Output.Baud <= 0 {
		err = multierr.Append(err, fmt.Errorf("output.baud must be positive, got %d", c.Output.Baud))
	}
	if c.MQTT.Heartbeat < 0 {
		err = multierr.Append(err, fmt.Errorf("mqtt.heartbeat must not be negative, got %v", c.MQTT.Heartbeat))
	}
	return err
}
