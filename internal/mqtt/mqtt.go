// Package mqtt publishes key and lifecycle events with abstraction for testing.
package mqtt

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sweeney/nunchuk-kbd/internal/logic"
)

// TopicPrefix is the root of every topic this daemon publishes to.
const TopicPrefix = "input/nunchuk"

// EventsTopic is the topic for key make/break events of one controller.
func EventsTopic(instance int) string {
	return fmt.Sprintf("%s/%d/events", TopicPrefix, instance)
}

// SystemTopic is the topic for lifecycle events of one controller.
func SystemTopic(instance int) string {
	return fmt.Sprintf("%s/%d/system", TopicPrefix, instance)
}

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a key event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event logic.Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool
}

// Payload is the MQTT message for a key event.
type Payload struct {
	Key KeyPayload `json:"key"`
}

// KeyPayload contains the key event details.
type KeyPayload struct {
	Timestamp string `json:"timestamp"`
	Key       string `json:"key"`
	Event     string `json:"event"`
	Scancode  string `json:"scancode"`
}

// FormatPayload creates the JSON payload for a key event.
func FormatPayload(event logic.Event) ([]byte, error) {
	return json.Marshal(Payload{
		Key: KeyPayload{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Key:       event.Key.String(),
			Event:     string(event.Type),
			Scancode:  hex.EncodeToString(event.Bytes),
		},
	})
}

// SystemPayload is the MQTT message for simple system events (LWT, RECONNECTED)
// that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly.
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}
	return json.Marshal(SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	})
}

// Discard is a Publisher that drops everything. Used when no broker is configured.
type Discard struct{}

func (Discard) Publish(logic.Event) error { return nil }
func (Discard) PublishSystem(SystemEvent) error { return nil }
func (Discard) Close() error { return nil }
func (Discard) IsConnected() bool { return false }
