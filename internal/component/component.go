// Package component implements editor-side component operations: creation
// with per-type default ports, structural validation, port management and
// connection checking.
package component

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/blueprinthq/blueprintd/internal/blueprint"
)

const (
	defaultWidth  = 200
	defaultHeight = 100
)

// portDefaults describes the ports a freshly created component starts with
type portDefaults struct {
	inputs  []blueprint.Port
	outputs []blueprint.Port
}

var defaultsByType = map[string]portDefaults{
	blueprint.TypeFunction: {
		inputs:  []blueprint.Port{{Name: "input1", Type: "any"}},
		outputs: []blueprint.Port{{Name: "output1", Type: "any"}},
	},
	blueprint.TypeClass: {
		inputs:  []blueprint.Port{{Name: "constructor", Type: "any"}},
		outputs: []blueprint.Port{{Name: "instance", Type: "object"}},
	},
	blueprint.TypeModule: {
		inputs:  []blueprint.Port{{Name: "import", Type: "any"}},
		outputs: []blueprint.Port{{Name: "export", Type: "any"}},
	},
}

// Create builds a new component of the given type at (x, y) with fresh port
// ids. An empty name defaults to "New <type>".
func Create(componentType string, x, y float64, name string) (*blueprint.Component, error) {
	defaults, ok := defaultsByType[componentType]
	if !ok {
		return nil, fmt.Errorf("invalid component type: %s", componentType)
	}

	if name == "" {
		name = "New " + componentType
	}

	return &blueprint.Component{
		ID:       uuid.NewString(),
		Type:     componentType,
		Name:     name,
		X:        x,
		Y:        y,
		Width:    defaultWidth,
		Height:   defaultHeight,
		Inputs:   withFreshIDs(defaults.inputs),
		Outputs:  withFreshIDs(defaults.outputs),
		Metadata: map[string]interface{}{},
	}, nil
}

func withFreshIDs(ports []blueprint.Port) []blueprint.Port {
	out := make([]blueprint.Port, len(ports))
	for i, p := range ports {
		p.ID = uuid.NewString()
		out[i] = p
	}
	return out
}

// Validation is the outcome of a structural component check
type Validation struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// ValidateComponent collects every structural problem instead of stopping at
// the first, so the editor can show them all.
func ValidateComponent(comp *blueprint.Component) Validation {
	errors := []string{}

	if comp.ID == "" {
		errors = append(errors, "missing required field: id")
	}
	if comp.Type == "" {
		errors = append(errors, "missing required field: type")
	} else if _, ok := defaultsByType[comp.Type]; !ok {
		errors = append(errors, fmt.Sprintf("invalid component type: %s", comp.Type))
	}
	if comp.Name == "" {
		errors = append(errors, "missing required field: name")
	}

	for i, port := range comp.Inputs {
		if port.Name == "" {
			errors = append(errors, fmt.Sprintf("inputs[%d] missing 'name' field", i))
		}
	}
	for i, port := range comp.Outputs {
		if port.Name == "" {
			errors = append(errors, fmt.Sprintf("outputs[%d] missing 'name' field", i))
		}
	}

	return Validation{Valid: len(errors) == 0, Errors: errors}
}

// portHeight grows a component to fit its widest port column
func portHeight(comp *blueprint.Component) int {
	maxPorts := len(comp.Inputs)
	if len(comp.Outputs) > maxPorts {
		maxPorts = len(comp.Outputs)
	}
	h := 25 + (maxPorts+1)*30
	if h < defaultHeight {
		return defaultHeight
	}
	return h
}

// AddPort appends a port to the named side ("inputs" or "outputs") and
// resizes the component. An empty name gets a positional default.
func AddPort(comp *blueprint.Component, side, name string) (*blueprint.Port, error) {
	var ports *[]blueprint.Port
	var label string
	switch side {
	case "inputs":
		ports, label = &comp.Inputs, "input"
	case "outputs":
		ports, label = &comp.Outputs, "output"
	default:
		return nil, fmt.Errorf(`invalid port side, must be "inputs" or "outputs"`)
	}

	if name == "" {
		name = fmt.Sprintf("%s%d", label, len(*ports)+1)
	}

	port := blueprint.Port{
		ID:   uuid.NewString(),
		Name: name,
		Type: "any",
	}
	*ports = append(*ports, port)
	comp.Height = portHeight(comp)
	return &port, nil
}

// RemovePort deletes the port with the given id from either side and
// resizes the component.
func RemovePort(comp *blueprint.Component, portID string) error {
	for _, ports := range []*[]blueprint.Port{&comp.Inputs, &comp.Outputs} {
		for i, p := range *ports {
			if p.ID == portID {
				*ports = append((*ports)[:i], (*ports)[i+1:]...)
				comp.Height = portHeight(comp)
				return nil
			}
		}
	}
	return fmt.Errorf("port not found: %s", portID)
}

// ConnectionCheck is the outcome of validating a single connection
type ConnectionCheck struct {
	Valid   bool   `json:"valid"`
	Error   string `json:"error,omitempty"`
	Warning string `json:"warning,omitempty"`
}

// ValidateConnection checks that both endpoints of a connection resolve to
// an existing component and port. Endpoint ids use the "componentID-portID"
// form; since both halves may contain hyphens, components are matched by id
// prefix. A type mismatch between ports is a warning, not an error.
func ValidateConnection(components []blueprint.Component, conn blueprint.Connection) ConnectionCheck {
	if conn.From == "" || conn.To == "" {
		return ConnectionCheck{Valid: false, Error: "invalid connection format"}
	}

	source, sourcePortID := findByPrefix(components, conn.From)
	if source == nil {
		return ConnectionCheck{Valid: false, Error: "source component not found"}
	}
	target, targetPortID := findByPrefix(components, conn.To)
	if target == nil {
		return ConnectionCheck{Valid: false, Error: "target component not found"}
	}

	sourcePort := findPort(source.Outputs, sourcePortID)
	if sourcePort == nil {
		return ConnectionCheck{Valid: false, Error: "source port not found"}
	}
	targetPort := findPort(target.Inputs, targetPortID)
	if targetPort == nil {
		return ConnectionCheck{Valid: false, Error: "target port not found"}
	}

	if sourcePort.Type != "any" && targetPort.Type != "any" && sourcePort.Type != targetPort.Type {
		return ConnectionCheck{
			Valid:   true,
			Warning: fmt.Sprintf("type mismatch: %s -> %s", sourcePort.Type, targetPort.Type),
		}
	}
	return ConnectionCheck{Valid: true}
}

func findByPrefix(components []blueprint.Component, endpoint string) (*blueprint.Component, string) {
	for i := range components {
		prefix := components[i].ID + "-"
		if strings.HasPrefix(endpoint, prefix) {
			return &components[i], endpoint[len(prefix):]
		}
	}
	return nil, ""
}

func findPort(ports []blueprint.Port, id string) *blueprint.Port {
	for i := range ports {
		if ports[i].ID == id {
			return &ports[i]
		}
	}
	return nil
}

// Stats summarizes a component set for the editor sidebar
type Stats struct {
	Total      int            `json:"total"`
	ByType     map[string]int `json:"by_type"`
	TotalPorts PortTotals     `json:"total_ports"`
}

// PortTotals counts ports across all components
type PortTotals struct {
	Inputs  int `json:"inputs"`
	Outputs int `json:"outputs"`
}

// ComputeStats tallies components by type and counts their ports
func ComputeStats(components []blueprint.Component) Stats {
	stats := Stats{ByType: map[string]int{}}
	stats.Total = len(components)
	for _, comp := range components {
		ctype := comp.Type
		if ctype == "" {
			ctype = "unknown"
		}
		stats.ByType[ctype]++
		stats.TotalPorts.Inputs += len(comp.Inputs)
		stats.TotalPorts.Outputs += len(comp.Outputs)
	}
	return stats
}
