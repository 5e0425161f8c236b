// Command nunchuk-kbd polls a nunchuk-style controller over I2C and types
// its joystick and buttons as PS/2 keys on a serial keyboard bridge.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sweeney/nunchuk-kbd/internal/bus"
	"github.com/sweeney/nunchuk-kbd/internal/config"
	"github.com/sweeney/nunchuk-kbd/internal/gpio"
	"github.com/sweeney/nunchuk-kbd/internal/logic"
	"github.com/sweeney/nunchuk-kbd/internal/mqtt"
	"github.com/sweeney/nunchuk-kbd/internal/output"
	"github.com/sweeney/nunchuk-kbd/internal/poller"
	"github.com/sweeney/nunchuk-kbd/internal/status"
	"github.com/sweeney/nunchuk-kbd/internal/web"
)

// statusRefresh is how often counters are copied into the status tracker
// when no key events arrive.
const statusRefresh = time.Second

func main() {
	configPath := flag.String("config", "", "YAML config file")
	debug := flag.Bool("debug", false, "Enable debug logging")
	printReport := flag.Bool("print-report", false, "Read and print one report and exit")

	defineConfigFlags(flag.CommandLine, config.Default())
	flag.Parse()

	logger, err := newLogger(*debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Sugar()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalw("load config", "err", err)
	}
	if err := applyFlags(flag.CommandLine, &cfg); err != nil {
		log.Fatalw("parse flags", "err", err)
	}

	if *printReport {
		if err := printOneReport(cfg); err != nil {
			log.Fatalw("print report", "err", err)
		}
		return
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalw("invalid config", "err", err)
	}
	if err := run(cfg, log); err != nil {
		log.Fatalw("fatal", "err", err)
	}
}

// defineConfigFlags registers one flag per config field, defaulting to def.
func defineConfigFlags(fs *flag.FlagSet, def config.Config) {
	fs.Int("instance", def.Instance, "Controller instance number")
	fs.String("i2c-bus", def.I2C.Bus, "I2C bus name (empty for the first bus)")
	fs.Uint("i2c-addr", uint(def.I2C.Address), "I2C peripheral address")
	fs.Duration("period", def.Poll.Period, "Polling period")
	fs.Duration("settle", def.Poll.Settle, "Delay before the first read after the handshake")
	fs.String("port", def.Output.Port, "Serial port of the keyboard bridge")
	fs.Int("baud", def.Output.Baud, "Serial baud rate")
	fs.Bool("assume-open", def.Output.AssumeOpen, "Do not wait for DSR before emitting")
	fs.String("broker", def.MQTT.Broker, "MQTT broker address (empty to disable)")
	fs.Duration("heartbeat", def.MQTT.Heartbeat, "Heartbeat interval (0 to disable)")
	fs.String("http", def.HTTP.Addr, "HTTP status address (empty to disable)")
	fs.Int("led-pin", def.LED.Pin, "GPIO line of the activity LED (-1 to disable)")
	fs.String("led-chip", def.LED.Chip, "GPIO chip of the activity LED")
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// applyFlags copies explicitly set flags over the loaded config.
func applyFlags(fs *flag.FlagSet, cfg *config.Config) error {
	var errs error
	fs.Visit(func(f *flag.Flag) {
		g, ok := f.Value.(flag.Getter)
		if !ok {
			return
		}
		v := g.Get()
		switch f.Name {
		case "instance":
			cfg.Instance = v.(int)
		case "i2c-bus":
			cfg.I2C.Bus = v.(string)
		case "i2c-addr":
			addr := v.(uint)
			if addr > 0xffff {
				errs = multierr.Append(errs, fmt.Errorf("-i2c-addr 0x%x out of range", addr))
				return
			}
			cfg.I2C.Address = uint16(addr)
		case "period":
			cfg.Poll.Period = v.(time.Duration)
		case "settle":
			cfg.Poll.Settle = v.(time.Duration)
		case "port":
			cfg.Output.Port = v.(string)
		case "baud":
			cfg.Output.Baud = v.(int)
		case "assume-open":
			cfg.Output.AssumeOpen = v.(bool)
		case "broker":
			cfg.MQTT.Broker = v.(string)
		case "heartbeat":
			cfg.MQTT.Heartbeat = v.(time.Duration)
		case "http":
			cfg.HTTP.Addr = v.(string)
		case "led-pin":
			cfg.LED.Pin = v.(int)
		case "led-chip":
			cfg.LED.Chip = v.(string)
		}
	})
	return errs
}

func printOneReport(cfg config.Config) error {
	b, err := bus.NewRealBus(cfg.I2C.Bus, cfg.I2C.Address, cfg.I2C.SpeedHz)
	if err != nil {
		return fmt.Errorf("init i2c: %w", err)
	}
	defer b.Close()

	r, err := poller.Probe(b, clock.New(), cfg.Poll.Settle)
	if err != nil {
		return err
	}
	fmt.Println(formatReport(r))
	return nil
}

func formatReport(r logic.SensorReport) string {
	keys, _ := logic.Step(r, logic.KeyState{})
	pressed := ""
	for _, k := range logic.Keys {
		if keys[k] {
			pressed += " " + k.String()
		}
	}
	if pressed == "" {
		pressed = " none"
	}
	return fmt.Sprintf("joy=(%d,%d) acc=(%d,%d,%d) c=%v z=%v keys:%s",
		r.JoyX, r.JoyY, r.AccX, r.AccY, r.AccZ, r.ButtonC, r.ButtonZ, pressed)
}

func run(cfg config.Config, log *zap.SugaredLogger) (err error) {
	b, err := bus.NewRealBus(cfg.I2C.Bus, cfg.I2C.Address, cfg.I2C.SpeedHz)
	if err != nil {
		return fmt.Errorf("init i2c: %w", err)
	}
	defer func() { err = multierr.Append(err, b.Close()) }()

	gate := output.NewGate()
	ch, err := output.OpenSerial(output.SerialConfig{
		Port:       cfg.Output.Port,
		Baud:       cfg.Output.Baud,
		AssumeOpen: cfg.Output.AssumeOpen,
		Instance:   cfg.Instance,
	}, gate, log)
	if err != nil {
		return fmt.Errorf("init output: %w", err)
	}
	defer func() { err = multierr.Append(err, ch.Close()) }()

	var led gpio.Indicator = gpio.Nop{}
	if cfg.LED.Pin >= 0 {
		ind, err := gpio.NewRealIndicator(cfg.LED.Chip, cfg.LED.Pin)
		if err != nil {
			return fmt.Errorf("init led: %w", err)
		}
		led = ind
	}
	defer func() { err = multierr.Append(err, led.Close()) }()

	var publisher interface {
		mqtt.Publisher
		mqtt.ConnectionStatus
	} = mqtt.Discard{}
	if cfg.MQTT.Broker != "" {
		p, err := mqtt.NewRealPublisher(mqtt.Options{
			Broker:   cfg.MQTT.Broker,
			Instance: cfg.Instance,
			Logger:   log,
		})
		if err != nil {
			return fmt.Errorf("init mqtt: %w", err)
		}
		publisher = p
	}
	defer publisher.Close()

	tracker := status.NewTracker(time.Now(), status.Config{
		Instance:    cfg.Instance,
		I2CBus:      cfg.I2C.Bus,
		Address:     cfg.I2C.Address,
		PeriodMs:    cfg.Poll.Period.Milliseconds(),
		SettleMs:    cfg.Poll.Settle.Milliseconds(),
		OutputPort:  cfg.Output.Port,
		Baud:        cfg.Output.Baud,
		HeartbeatMs: cfg.MQTT.Heartbeat.Milliseconds(),
		Broker:      cfg.MQTT.Broker,
		HTTPAddr:    cfg.HTTP.Addr,
	})

	p := poller.New(poller.Config{
		Instance:    cfg.Instance,
		Period:      cfg.Poll.Period,
		SettleDelay: cfg.Poll.Settle,
	}, b, ch, clock.New(), log)
	if err := p.Start(); err != nil {
		return fmt.Errorf("start poller: %w", err)
	}
	defer p.Stop()

	// Publish startup event with full status snapshot
	tracker.Update(p.Stats(), p.State(), gate.Status())
	snap := tracker.Snapshot()
	if err := publisher.PublishSystem(mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}); err != nil {
		log.Warnw("failed to publish startup event", "err", err)
	}

	log.Infow("started",
		"instance", cfg.Instance,
		"channel", ch.Name(),
		"period", cfg.Poll.Period,
		"broker", cfg.MQTT.Broker,
		"heartbeat", cfg.MQTT.Heartbeat)

	var heartbeat <-chan time.Time
	if cfg.MQTT.Heartbeat > 0 {
		hb := time.NewTicker(cfg.MQTT.Heartbeat)
		defer hb.Stop()
		heartbeat = hb.C
	}
	refresh := time.NewTicker(statusRefresh)
	defer refresh.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	if cfg.HTTP.Addr != "" {
		srv := web.New(cfg.HTTP.Addr, tracker, log)
		g.Go(func() error {
			log.Infow("http status server listening", "addr", cfg.HTTP.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, done := context.WithTimeout(context.Background(), 2*time.Second)
			defer done()
			return srv.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		defer cancel()
		return runLoop(gctx, loopDeps{
			Poller:    p,
			Gate:      gate,
			Publisher: publisher,
			MQTT:      publisher,
			Tracker:   tracker,
			LED:       led,
			Logger:    log,
			Now:       time.Now,
		}, heartbeat, refresh.C, sigCh)
	})

	return g.Wait()
}

// loopDeps are the collaborators of runLoop.
type loopDeps struct {
	Poller    *poller.Poller
	Gate      *output.Gate
	Publisher mqtt.Publisher
	MQTT      mqtt.ConnectionStatus
	Tracker   *status.Tracker
	LED       gpio.Indicator
	Logger    *zap.SugaredLogger
	Now       func() time.Time
}

// runLoop fans poller events out to the observers until a signal arrives,
// ctx is cancelled, or the poller stops.
func runLoop(ctx context.Context, d loopDeps, heartbeat, refresh <-chan time.Time, sig <-chan os.Signal) error {
	events := d.Poller.Events()
	wasOpen := d.Gate.IsOpen()

	update := func() {
		d.Tracker.Update(d.Poller.Stats(), d.Poller.State(), d.Gate.Status())
		d.Tracker.SetMQTTConnected(d.MQTT.IsConnected())
		if open := d.Gate.IsOpen(); open != wasOpen {
			wasOpen = open
			d.Logger.Infow("output opened, emitting scancodes")
		}
	}

	for {
		select {
		case s := <-sig:
			reason := signalName(s)
			d.Logger.Infow("shutting down", "signal", reason)
			update()
			snap := d.Tracker.Snapshot()
			if err := d.Publisher.PublishSystem(mqtt.SystemEvent{
				Timestamp:  d.Now(),
				Event:      "SHUTDOWN",
				Reason:     reason,
				Retained:   true,
				RawPayload: status.FormatStatusEvent(snap, "SHUTDOWN", reason),
			}); err != nil {
				d.Logger.Warnw("failed to publish shutdown event", "err", err)
			}
			return nil

		case <-ctx.Done():
			return nil

		case ev, ok := <-events:
			if !ok {
				d.Logger.Infow("poller stopped")
				return nil
			}
			d.Logger.Debugw("key", "key", ev.Key, "type", ev.Type, "bytes", fmt.Sprintf("% x", ev.Bytes))
			if err := d.LED.Set(ev.State.Any()); err != nil {
				d.Logger.Debugw("led update failed", "err", err)
			}
			if err := d.Publisher.Publish(ev); err != nil {
				// Don't stop on publish failure
				d.Logger.Warnw("publish error", "err", err)
			}
			update()

		case <-refresh:
			update()

		case <-heartbeat:
			update()
			snap := d.Tracker.Snapshot()
			d.Logger.Infow("heartbeat",
				"uptime", snap.Uptime().Truncate(time.Second),
				"ticks", snap.Poller.Ticks,
				"transport_errors", snap.Poller.TransportErrors,
				"events", snap.Poller.Counts.Total())
			if err := d.Publisher.PublishSystem(mqtt.SystemEvent{
				Timestamp:  snap.Now,
				Event:      "HEARTBEAT",
				RawPayload: status.FormatStatusEvent(snap, "HEARTBEAT", ""),
			}); err != nil {
				d.Logger.Warnw("heartbeat publish error", "err", err)
			}
		}
	}
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}
