// Package hardware serves the hardware definition tree shown on the dashboard.
package hardware

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"IotMonitor.api/internal/models"
)

type file struct {
	Hardware []models.HardwareDefinition `yaml:"hardware"`
}

// Registry is an immutable, validated list of hardware definitions.
type Registry struct {
	items []models.HardwareDefinition
	byID  map[string]int
}

// LoadFile reads definitions from a YAML file. A missing file gives an empty registry.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return NewRegistry(nil)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return Load(bytes.NewReader(data))
}

func Load(r io.Reader) (*Registry, error) {
	var f file
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "decode hardware definitions")
	}
	return NewRegistry(f.Hardware)
}

func NewRegistry(items []models.HardwareDefinition) (*Registry, error) {
	reg := &Registry{
		items: items,
		byID:  make(map[string]int, len(items)),
	}
	if reg.items == nil {
		reg.items = []models.HardwareDefinition{}
	}

	for i, item := range reg.items {
		if item.ID == "" {
			return nil, fmt.Errorf("hardware #%d has no id", i)
		}
		if _, dup := reg.byID[item.ID]; dup {
			return nil, fmt.Errorf("duplicate hardware id %q", item.ID)
		}
		if err := validateRelays(item); err != nil {
			return nil, err
		}
		reg.byID[item.ID] = i
	}
	return reg, nil
}

func validateRelays(parent models.HardwareDefinition) error {
	seen := make(map[string]bool, len(parent.Relays))
	for i, relay := range parent.Relays {
		if relay.ID == "" {
			return fmt.Errorf("relay #%d of %q has no id", i, parent.ID)
		}
		if seen[relay.ID] {
			return fmt.Errorf("duplicate relay id %q in %q", relay.ID, parent.ID)
		}
		seen[relay.ID] = true
		if err := validateRelays(relay); err != nil {
			return err
		}
	}
	return nil
}

// List returns the root definitions.
func (r *Registry) List() []models.HardwareDefinition {
	return r.items
}

// Find resolves a hardware id and, when relayID is non-empty, one of its relays.
func (r *Registry) Find(hardwareID, relayID string) (*models.HardwareDefinition, bool) {
	i, ok := r.byID[hardwareID]
	if !ok {
		return nil, false
	}
	item := &r.items[i]
	if relayID == "" {
		return item, true
	}
	return item.Relay(relayID)
}
