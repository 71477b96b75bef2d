package blueprint

import (
	"fmt"
	"strings"
)

// Size caps applied during validation
const (
	MaxComponents  = 10000
	MaxConnections = 50000
)

var validTypes = map[string]bool{
	TypeFunction: true,
	TypeClass:    true,
	TypeModule:   true,
}

// Validate checks the structural rules a persisted blueprint must satisfy:
// known component types, unique ids, and connection endpoints that reference
// existing components in "<componentID>-<portID>" form.
func Validate(bp *Blueprint) error {
	if bp == nil {
		return fmt.Errorf("blueprint is nil")
	}
	if len(bp.Components) > MaxComponents {
		return fmt.Errorf("too many components: %d (max %d)", len(bp.Components), MaxComponents)
	}
	if len(bp.Connections) > MaxConnections {
		return fmt.Errorf("too many connections: %d (max %d)", len(bp.Connections), MaxConnections)
	}

	ids := make(map[string]bool, len(bp.Components))
	for i, comp := range bp.Components {
		if comp.ID == "" {
			return fmt.Errorf("component %d: missing id", i)
		}
		if comp.Name == "" {
			return fmt.Errorf("component %d: missing name", i)
		}
		if !validTypes[comp.Type] {
			return fmt.Errorf("component %d: invalid type %q", i, comp.Type)
		}
		if ids[comp.ID] {
			return fmt.Errorf("duplicate component id %q", comp.ID)
		}
		ids[comp.ID] = true
	}

	for i, conn := range bp.Connections {
		fromID, err := endpointComponent(conn.From)
		if err != nil {
			return fmt.Errorf("connection %d: %w", i, err)
		}
		toID, err := endpointComponent(conn.To)
		if err != nil {
			return fmt.Errorf("connection %d: %w", i, err)
		}
		if !ids[fromID] {
			return fmt.Errorf("connection %d references unknown component %q", i, fromID)
		}
		if !ids[toID] {
			return fmt.Errorf("connection %d references unknown component %q", i, toID)
		}
	}

	return nil
}

// Validate reports whether the blueprint satisfies the persistence rules
func (bp *Blueprint) Validate() error {
	return Validate(bp)
}

// endpointComponent extracts the component id from an endpoint string by
// splitting off the port id after the last hyphen.
func endpointComponent(endpoint string) (string, error) {
	idx := strings.LastIndex(endpoint, "-")
	if idx <= 0 || idx == len(endpoint)-1 {
		return "", fmt.Errorf("invalid endpoint %q", endpoint)
	}
	return endpoint[:idx], nil
}
