package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/nunchuk-kbd/internal/logic"
	"github.com/sweeney/nunchuk-kbd/internal/output"
	"github.com/sweeney/nunchuk-kbd/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": formatUptime,
}).Parse(indexHTML))

func formatUptime(d time.Duration) string {
	d = d.Truncate(time.Second)
	days := int(d.Hours()) / 24
	h := int(d.Hours()) % 24
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
	}
	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="2">
<title>Nunchuk Keyboard {{.Config.Instance}}</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.down { color: green; font-weight: bold; }
.up { color: #888; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Nunchuk Keyboard {{.Config.Instance}}</h1>

<h2>Keys</h2>
<table>
{{range .Keys}}<tr><th>{{.Name}}</th><td id="key-{{.Name}}" class="{{if .Pressed}}down{{else}}up{{end}}">{{if .Pressed}}pressed{{else}}released{{end}}</td><td>{{.Make}} / {{.Break}}</td></tr>
{{end}}</table>

<h2>Output</h2>
<table>
<tr><th>Port</th><td>{{.Config.OutputPort}}</td></tr>
<tr><th>Status</th><td id="output" class="{{if .Open}}connected{{else}}disconnected{{end}}">{{if .Open}}open{{else}}inhibited{{end}}</td></tr>
<tr><th>Bytes emitted</th><td>{{.Poller.BytesEmitted}}</td></tr>
<tr><th>Suppressed edges</th><td>{{.Poller.Suppressed}}</td></tr>
</table>

<h2>Bus</h2>
<table>
<tr><th>I2C</th><td>{{if .Config.I2CBus}}{{.Config.I2CBus}}{{else}}default{{end}} @ {{printf "0x%02x" .Config.Address}}</td></tr>
<tr><th>Poller</th><td>{{.PollerState}}</td></tr>
<tr><th>Ticks</th><td>{{.Poller.Ticks}}</td></tr>
<tr><th>Transport errors</th><td>{{.Poller.TransportErrors}}</td></tr>
{{if .Poller.LastError}}<tr><th>Last error</th><td>{{.Poller.LastError}}</td></tr>{{end}}
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{if .Config.Broker}}{{.Config.Broker}}{{else}}disabled{{end}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Period</th><td>{{.Config.PeriodMs}}ms</td></tr>
<tr><th>Settle</th><td>{{.Config.SettleMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

type keyRow struct {
	Name    string
	Pressed bool
	Make    int
	Break   int
}

func renderHTML(w io.Writer, snap status.Snapshot) error {
	rows := make([]keyRow, 0, logic.NumKeys)
	for _, k := range logic.Keys {
		rows = append(rows, keyRow{
			Name:    k.String(),
			Pressed: snap.Poller.Keys[k],
			Make:    snap.Poller.Counts.Make[k],
			Break:   snap.Poller.Counts.Break[k],
		})
	}
	data := struct {
		status.Snapshot
		Uptime time.Duration
		Open   bool
		Keys   []keyRow
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
		Open:     snap.Output == output.StatusOpen,
		Keys:     rows,
	}
	return indexTmpl.Execute(w, data)
}
