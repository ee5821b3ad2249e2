package hardware

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
hardware:
  - id: mcp23017
    name: Greenhouse relays
    driver: MCP23017
    readable: true
    callable: false
    relays:
      - id: pump
        name: Water pump
        callable: true
        callPayload:
          duration: 10
      - id: lamp
        name: Grow lamp
        readable: true
        callable: true
  - id: dht22
    name: Air sensor
    driver: DHT22
    readable: true
`

func TestLoad(t *testing.T) {
	reg, err := Load(strings.NewReader(sample))
	require.NoError(t, err)

	list := reg.List()
	require.Len(t, list, 2)
	assert.Equal(t, "Greenhouse relays", list[0].Name)
	require.Len(t, list[0].Relays, 2)
	assert.Equal(t, 10, list[0].Relays[0].CallPayload["duration"])

	hw, ok := reg.Find("dht22", "")
	require.True(t, ok)
	assert.True(t, hw.Readable)

	relay, ok := reg.Find("mcp23017", "lamp")
	require.True(t, ok)
	assert.Equal(t, "Grow lamp", relay.Name)

	_, ok = reg.Find("mcp23017", "fan")
	assert.False(t, ok)
	_, ok = reg.Find("missing", "")
	assert.False(t, ok)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "missing id", doc: "hardware:\n  - name: x\n"},
		{name: "duplicate root", doc: "hardware:\n  - id: a\n  - id: a\n"},
		{name: "duplicate relay", doc: "hardware:\n  - id: a\n    relays:\n      - id: r\n      - id: r\n"},
		{name: "relay without id", doc: "hardware:\n  - id: a\n    relays:\n      - name: r\n"},
		{name: "unknown field", doc: "hardware:\n  - id: a\n    colour: red\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	reg, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.NotNil(t, reg.List())
	assert.Empty(t, reg.List())

	path := filepath.Join(t.TempDir(), "hardware.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))
	reg, err = LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, reg.List(), 2)
}

func TestLoad_Empty(t *testing.T) {
	reg, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, reg.List())
}
