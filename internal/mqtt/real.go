package mqtt

import (
	"errors"
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/sweeney/nunchuk-kbd/internal/logic"
)

// BufferCapacity is the number of messages held while the broker is unreachable.
const BufferCapacity = 100

const (
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second
)

// Options configures a RealPublisher.
type Options struct {
	Broker   string
	Instance int
	Logger   *zap.SugaredLogger

	// Now overrides the clock used for the will message timestamp.
	Now func() time.Time
}

// RealPublisher publishes to an actual MQTT broker. Messages published while
// disconnected are buffered and replayed in order on reconnect.
type RealPublisher struct {
	client      paho.Client
	eventsTopic string
	systemTopic string
	logger      *zap.SugaredLogger

	mu          sync.Mutex
	buf         *ringBuffer
	overflowing bool
}

// NewRealPublisher creates a publisher connected to the given broker.
// The initial connection is retried in the background if the broker is down.
func NewRealPublisher(o Options) (*RealPublisher, error) {
	if o.Logger == nil {
		o.Logger = zap.NewNop().Sugar()
	}
	if o.Now == nil {
		o.Now = time.Now
	}

	p := &RealPublisher{
		eventsTopic: EventsTopic(o.Instance),
		systemTopic: SystemTopic(o.Instance),
		logger:      o.Logger.Named("mqtt"),
		buf:         newRingBuffer(BufferCapacity),
	}

	will, err := FormatSystemPayload(SystemEvent{
		Timestamp: o.Now(),
		Event:     "SHUTDOWN",
		Reason:    "MQTT_DISCONNECT",
	})
	if err != nil {
		return nil, fmt.Errorf("format will: %w", err)
	}

	opts := paho.NewClientOptions().
		AddBroker(o.Broker).
		SetClientID(fmt.Sprintf("nunchuk-kbd-%d", o.Instance)).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetBinaryWill(p.systemTopic, will, 1, false).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			p.logger.Warnw("connection lost", "error", err)
		})

	p.client = paho.NewClient(opts)
	token := p.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		p.logger.Warnw("broker not reachable yet, retrying in background", "broker", o.Broker)
		return p, nil
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}
	return p, nil
}

// onConnect replays anything buffered while the link was down.
func (p *RealPublisher) onConnect(_ paho.Client) {
	p.mu.Lock()
	pending := p.buf.drainAll()
	p.overflowing = false
	p.mu.Unlock()

	p.logger.Infow("connected", "replaying", len(pending))
	for i, m := range pending {
		if err := p.send(m); err != nil {
			p.logger.Warnw("replay failed, rebuffering", "error", err, "remaining", len(pending)-i)
			p.mu.Lock()
			for _, rest := range pending[i:] {
				p.buffer(rest)
			}
			p.mu.Unlock()
			return
		}
	}
}

// buffer stores m for later replay. Caller holds p.mu.
func (p *RealPublisher) buffer(m bufferedMsg) {
	if p.buf.push(m) && !p.overflowing {
		p.overflowing = true
		p.logger.Warnw("offline buffer full, dropping oldest messages", "capacity", BufferCapacity)
	}
}

func (p *RealPublisher) send(m bufferedMsg) error {
	token := p.client.Publish(m.topic, m.qos, m.retained, m.payload)
	if !token.WaitTimeout(publishTimeout) {
		return errors.New("publish timeout")
	}
	return token.Error()
}

func (p *RealPublisher) publish(m bufferedMsg) error {
	if !p.client.IsConnectionOpen() {
		p.mu.Lock()
		p.buffer(m)
		p.mu.Unlock()
		return nil
	}
	if err := p.send(m); err != nil {
		p.mu.Lock()
		p.buffer(m)
		p.mu.Unlock()
		return fmt.Errorf("publish %s: %w", m.topic, err)
	}
	return nil
}

// Publish sends a key event to the MQTT broker.
func (p *RealPublisher) Publish(event logic.Event) error {
	payload, err := FormatPayload(event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}
	// QoS 0 (at-most-once), not retained
	return p.publish(bufferedMsg{topic: p.eventsTopic, payload: payload})
}

// PublishSystem sends a system lifecycle event to the MQTT broker.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	return p.publish(bufferedMsg{topic: p.systemTopic, payload: payload, qos: 1, retained: event.Retained})
}

// IsConnected reports whether the broker connection is currently up.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// Buffered returns the number of messages waiting for a connection.
func (p *RealPublisher) Buffered() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buf.len()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}
