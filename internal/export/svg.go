package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/metaheur/internal/core"
	"github.com/san-kum/metaheur/internal/operators"
)

type Point struct{ X, Y float64 }

// PathToSVG draws points as one polyline scaled to the canvas with 10%
// padding around the data bounds.
func PathToSVG(points []Point, width, height int, strokeColor string) string {
	if len(points) < 2 {
		return ""
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	var sb strings.Builder

	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor)

	for i, p := range points {
		x := (p.X - minX) / rangeX * float64(width)
		y := float64(height) - (p.Y-minY)/rangeY*float64(height)

		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}

// ConvergencePoints pairs each iteration with the best value of goal.
// Snapshots without that goal are skipped.
func ConvergencePoints(history []operators.Snapshot, goal int) []Point {
	points := make([]Point, 0, len(history))
	for _, s := range history {
		if goal < len(s.Best) {
			points = append(points, Point{X: float64(s.Iteration), Y: s.Best[goal]})
		}
	}
	return points
}

// ConvergenceSVG charts the best value of goal over iterations.
func ConvergenceSVG(history []operators.Snapshot, goal, width, height int) (string, error) {
	points := ConvergencePoints(history, goal)
	if len(points) < 2 {
		return "", fmt.Errorf("goal %d has %d recorded iterations, need at least 2: %w", goal, len(points), core.ErrInvalidArgument)
	}
	return PathToSVG(points, width, height, "#00ff00"), nil
}
