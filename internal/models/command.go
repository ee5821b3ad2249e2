package models

import "encoding/json"

type CommandMethod string

const (
	MethodRead CommandMethod = "read"
	MethodCall CommandMethod = "call"
)

func (m CommandMethod) Valid() bool {
	return m == MethodRead || m == MethodCall
}

// Command is a user initiated action against a hardware item or one of its relays.
type Command struct {
	Method     CommandMethod  `json:"method"`
	HardwareID string         `json:"hardwareId"`
	RelayID    string         `json:"relayId,omitempty"`
	Payload    map[string]any `json:"payload,omitempty"`
}

// Target is the throttle key for the command.
func (c Command) Target() string {
	if c.RelayID == "" {
		return c.HardwareID
	}
	return c.HardwareID + "/" + c.RelayID
}

// DevicePayload is the payload forwarded to the device: the user payload with
// id, and relay when present, set last so they cannot be overridden.
func (c Command) DevicePayload() map[string]any {
	out := make(map[string]any, len(c.Payload)+2)
	for k, v := range c.Payload {
		out[k] = v
	}
	out["id"] = c.HardwareID
	if c.RelayID != "" {
		out["relay"] = c.RelayID
	}
	return out
}

// CommandResult is what the device answered.
type CommandResult struct {
	Status  int             `json:"status"`
	Payload json.RawMessage `json:"payload,omitempty"`
}
