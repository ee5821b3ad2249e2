package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommand_DevicePayload(t *testing.T) {
	tests := []struct {
		name string
		cmd  Command
		want map[string]any
	}{
		{
			name: "hardware only",
			cmd:  Command{Method: MethodRead, HardwareID: "mcp", Payload: map[string]any{"pin": 3}},
			want: map[string]any{"pin": 3, "id": "mcp"},
		},
		{
			name: "relay overrides user keys",
			cmd:  Command{Method: MethodCall, HardwareID: "mcp", RelayID: "pump", Payload: map[string]any{"id": "x", "relay": "y", "duration": 10}},
			want: map[string]any{"id": "mcp", "relay": "pump", "duration": 10},
		},
		{
			name: "nil payload",
			cmd:  Command{Method: MethodRead, HardwareID: "mcp"},
			want: map[string]any{"id": "mcp"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cmd.DevicePayload())
		})
	}
}

func TestCommand_DevicePayloadDoesNotMutateInput(t *testing.T) {
	payload := map[string]any{"state": "on"}
	cmd := Command{Method: MethodCall, HardwareID: "mcp", RelayID: "lamp", Payload: payload}
	cmd.DevicePayload()
	assert.Equal(t, map[string]any{"state": "on"}, payload)
}

func TestCommand_Target(t *testing.T) {
	assert.Equal(t, "mcp", Command{HardwareID: "mcp"}.Target())
	assert.Equal(t, "mcp/pump", Command{HardwareID: "mcp", RelayID: "pump"}.Target())
}

func TestHardwareDefinition_Supports(t *testing.T) {
	h := HardwareDefinition{ID: "dht", Readable: true, Relays: []HardwareDefinition{{ID: "r1", Callable: true}}}

	assert.True(t, h.Supports(MethodRead))
	assert.False(t, h.Supports(MethodCall))
	assert.False(t, h.Supports("reboot"))

	relay, ok := h.Relay("r1")
	assert.True(t, ok)
	assert.True(t, relay.Supports(MethodCall))

	_, ok = h.Relay("missing")
	assert.False(t, ok)
}

func TestDocument_Accessors(t *testing.T) {
	d := Document{"timestamp": "2023-01-01T00:00:00Z", "measures": map[string]any{"temp": 21.5}, "device_id": "pi"}

	ts, ok := d.Timestamp()
	assert.True(t, ok)
	assert.Equal(t, "2023-01-01T00:00:00Z", ts)

	m, ok := d.Measures()
	assert.True(t, ok)
	assert.Equal(t, 21.5, m["temp"])
	assert.Equal(t, "pi", d.DeviceID())

	c := d.Clone()
	c["extra"] = true
	_, found := d["extra"]
	assert.False(t, found)
}
