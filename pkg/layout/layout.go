// Package layout places graph vertices on a raster canvas.
package layout

import (
	"math"

	"github.com/dhikaid/graphview/pkg/graph"
)

// Canvas geometry shared by the layout engine and the renderer.
const (
	CanvasWidth  = 400
	CanvasHeight = 400
	CircleRadius = 100
)

// PositionedVertex is a vertex with canvas coordinates assigned. Positions
// are derived per render and never persisted.
type PositionedVertex struct {
	graph.Vertex
	X float64
	Y float64
}

// Circular places vertices evenly on a circle of radius r centered at
// (cx, cy), in input order: vertex i sits at angle i*2π/N. An empty input
// yields an empty result.
func Circular(vertices []graph.Vertex, cx, cy, r float64) []PositionedVertex {
	positioned := make([]PositionedVertex, 0, len(vertices))
	if len(vertices) == 0 {
		return positioned
	}

	step := 2 * math.Pi / float64(len(vertices))
	for i, v := range vertices {
		angle := float64(i) * step
		positioned = append(positioned, PositionedVertex{
			Vertex: v,
			X:      cx + r*math.Cos(angle),
			Y:      cy + r*math.Sin(angle),
		})
	}
	return positioned
}

// CircularDefault applies the fixed canvas geometry used by the service.
func CircularDefault(vertices []graph.Vertex) []PositionedVertex {
	return Circular(vertices, CanvasWidth/2, CanvasHeight/2, CircleRadius)
}
