package status

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sweeney/nunchuk-kbd/internal/logic"
	"github.com/sweeney/nunchuk-kbd/internal/output"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string                  `json:"event,omitempty"`
	Reason        string                  `json:"reason,omitempty"`
	Instance      int                     `json:"instance"`
	Output        string                  `json:"output"`
	Inhibited     bool                    `json:"inhibited"`
	Poller        string                  `json:"poller"`
	Keys          map[string]bool         `json:"keys"`
	UptimeSeconds int64                   `json:"uptime_seconds"`
	StartTime     string                  `json:"start_time"`
	Timestamp     string                  `json:"timestamp"`
	MQTT          MQTTStatus              `json:"mqtt"`
	Counters      CountersJSON            `json:"counters"`
	Counts        map[string]KeyCountJSON `json:"event_counts"`
	Config        ConfigJSON              `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountersJSON holds the poll loop counters.
type CountersJSON struct {
	Ticks           uint64 `json:"ticks"`
	TransportErrors uint64 `json:"transport_errors"`
	BytesEmitted    uint64 `json:"bytes_emitted"`
	Suppressed      uint64 `json:"suppressed"`
	LastError       string `json:"last_error,omitempty"`
}

// KeyCountJSON is the number of make and break events for one key.
type KeyCountJSON struct {
	Make  int `json:"make"`
	Break int `json:"break"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	I2CBus      string `json:"i2c_bus"`
	Address     string `json:"i2c_address"`
	PeriodMs    int64  `json:"period_ms"`
	SettleMs    int64  `json:"settle_ms"`
	OutputPort  string `json:"output_port"`
	Baud        int    `json:"baud"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Broker      string `json:"broker"`
	HTTPAddr    string `json:"http_addr"`
}

func buildInner(snap Snapshot) StatusInner {
	keys := make(map[string]bool, logic.NumKeys)
	counts := make(map[string]KeyCountJSON, logic.NumKeys)
	for _, k := range logic.Keys {
		keys[k.String()] = snap.Poller.Keys[k]
		counts[k.String()] = KeyCountJSON{
			Make:  snap.Poller.Counts.Make[k],
			Break: snap.Poller.Counts.Break[k],
		}
	}

	return StatusInner{
		Instance:      snap.Config.Instance,
		Output:        snap.Output.String(),
		Inhibited:     snap.Output != output.StatusOpen,
		Poller:        snap.PollerState.String(),
		Keys:          keys,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counters: CountersJSON{
			Ticks:           snap.Poller.Ticks,
			TransportErrors: snap.Poller.TransportErrors,
			BytesEmitted:    snap.Poller.BytesEmitted,
			Suppressed:      snap.Poller.Suppressed,
			LastError:       snap.Poller.LastError,
		},
		Counts: counts,
		Config: ConfigJSON{
			I2CBus:      snap.Config.I2CBus,
			Address:     fmt.Sprintf("0x%02x", snap.Config.Address),
			PeriodMs:    snap.Config.PeriodMs,
			SettleMs:    snap.Config.SettleMs,
			OutputPort:  snap.Config.OutputPort,
			Baud:        snap.Config.Baud,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Broker:      snap.Config.Broker,
			HTTPAddr:    snap.Config.HTTPAddr,
		},
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
