package codemap

import "github.com/blueprinthq/blueprintd/internal/blueprint"

// Grid layout parameters
const (
	layoutColumns  = 4
	layoutSpacingX = 260
	layoutSpacingY = 180
	layoutStartX   = 80
	layoutStartY   = 120
)

// assignLayout assigns deterministic grid positions. Placement is purely a
// function of slice order and length: component i goes to row i/columns,
// column i%columns.
func assignLayout(components []blueprint.Component) {
	for i := range components {
		row := i / layoutColumns
		col := i % layoutColumns
		components[i].X = float64(layoutStartX + col*layoutSpacingX)
		components[i].Y = float64(layoutStartY + row*layoutSpacingY)
	}
}
