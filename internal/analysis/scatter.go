package analysis

import (
	"strings"

	"github.com/san-kum/metaheur/internal/core"
)

// Series is a set of points drawn with one marker. Only the first two
// scores of each vector are plotted.
type Series struct {
	Marker rune
	Points []core.ObjectiveVector
}

// Scatter renders series onto a width x height character canvas. Later
// series draw over earlier ones.
func Scatter(width, height int, series ...Series) string {
	var minX, maxX, minY, maxY float64
	first := true
	for _, s := range series {
		for _, p := range s.Points {
			if len(p) < 2 {
				continue
			}
			if first {
				minX, maxX, minY, maxY = p[0], p[0], p[1], p[1]
				first = false
				continue
			}
			minX, maxX = min(minX, p[0]), max(maxX, p[0])
			minY, maxY = min(minY, p[1]), max(maxY, p[1])
		}
	}
	if first || width < 2 || height < 2 {
		return ""
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.05
	maxX += rangeX * 0.05
	minY -= rangeY * 0.05
	maxY += rangeY * 0.05
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for _, s := range series {
		for _, p := range s.Points {
			if len(p) < 2 {
				continue
			}
			col := int((p[0] - minX) / rangeX * float64(width-1))
			row := height - 1 - int((p[1]-minY)/rangeY*float64(height-1))
			if row >= 0 && row < height && col >= 0 && col < width {
				canvas[row][col] = s.Marker
			}
		}
	}

	// Draw axes if they cross the visible area
	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
