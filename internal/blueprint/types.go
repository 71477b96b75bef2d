// Package blueprint defines the diagram wire format shared by the mapper,
// the file store, and the HTTP API.
package blueprint

// Component types
const (
	TypeFunction = "function"
	TypeClass    = "class"
	TypeModule   = "module"
)

// Default component geometry
const (
	DefaultWidth  = 220
	DefaultHeight = 120
)

// Port represents a named attachment point on a component
type Port struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// Component represents one visual node in a blueprint
type Component struct {
	ID          string                 `json:"id"`
	Type        string                 `json:"type"`
	Name        string                 `json:"name"`
	X           float64                `json:"x"`
	Y           float64                `json:"y"`
	Width       int                    `json:"width"`
	Height      int                    `json:"height"`
	Inputs      []Port                 `json:"inputs"`
	Outputs     []Port                 `json:"outputs"`
	Description string                 `json:"description,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// Connection represents a directed edge between two ports.
// Endpoints use the form "<componentID>-<portID>".
type Connection struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Blueprint represents a full diagram: components, connections, and metadata
type Blueprint struct {
	Components  []Component            `json:"components"`
	Connections []Connection           `json:"connections"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// DefaultInputs returns the single "in" port mapper-generated components carry
func DefaultInputs() []Port {
	return []Port{{ID: "in", Name: "input", Type: "any"}}
}

// DefaultOutputs returns the single "out" port mapper-generated components carry
func DefaultOutputs() []Port {
	return []Port{{ID: "out", Name: "output", Type: "any"}}
}

// FirstInput returns the id of the component's first input port, or "" if none
func (c *Component) FirstInput() string {
	if len(c.Inputs) == 0 {
		return ""
	}
	return c.Inputs[0].ID
}

// FirstOutput returns the id of the component's first output port, or "" if none
func (c *Component) FirstOutput() string {
	if len(c.Outputs) == 0 {
		return ""
	}
	return c.Outputs[0].ID
}
