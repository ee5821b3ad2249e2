package models

// HardwareDefinition describes a readable/callable device. Relays are child
// capabilities of the same shape, addressed by their own id.
type HardwareDefinition struct {
	ID          string               `json:"id" yaml:"id"`
	Name        string               `json:"name" yaml:"name"`
	Driver      string               `json:"driver,omitempty" yaml:"driver"`
	Readable    bool                 `json:"readable" yaml:"readable"`
	Callable    bool                 `json:"callable" yaml:"callable"`
	ReadPayload map[string]any       `json:"readPayload,omitempty" yaml:"readPayload"`
	CallPayload map[string]any       `json:"callPayload,omitempty" yaml:"callPayload"`
	Relays      []HardwareDefinition `json:"relays,omitempty" yaml:"relays"`
}

// Relay finds a direct child relay by id.
func (h *HardwareDefinition) Relay(id string) (*HardwareDefinition, bool) {
	for i := range h.Relays {
		if h.Relays[i].ID == id {
			return &h.Relays[i], true
		}
	}
	return nil, false
}

// Supports reports whether the definition allows the given command method.
func (h *HardwareDefinition) Supports(method CommandMethod) bool {
	switch method {
	case MethodRead:
		return h.Readable
	case MethodCall:
		return h.Callable
	}
	return false
}
