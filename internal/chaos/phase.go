package chaos

import "strings"

// PhasePortrait pairs two state components of a sampled trajectory for
// phase-space plotting.
type PhasePortrait struct {
	XIndex, YIndex int
	X, Y           []float64
}

// NewPhasePortrait extracts components xIdx and yIdx from component-wise
// trajectory data.
func NewPhasePortrait(components [][]float64, xIdx, yIdx int) *PhasePortrait {
	if xIdx >= len(components) || yIdx >= len(components) {
		return nil
	}
	return &PhasePortrait{
		XIndex: xIdx,
		YIndex: yIdx,
		X:      components[xIdx],
		Y:      components[yIdx],
	}
}

// ASCII renders the portrait as a scatter plot on a rune canvas with axes
// drawn where they cross the visible range.
func (p *PhasePortrait) ASCII(width, height int) string {
	if p == nil || len(p.X) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := p.X[0], p.X[0]
	minY, maxY := p.Y[0], p.Y[0]
	for i := range p.X {
		minX = min(minX, p.X[i])
		maxX = max(maxX, p.X[i])
		minY = min(minY, p.Y[i])
		maxY = max(maxY, p.Y[i])
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
		canvas[i] = make([]rune, width)
		for j := range canvas[i] {
			canvas[i][j] = ' '
		}
	}

	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			canvas[row][col] = '│'
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

	for i := range p.X {
		col := int((p.X[i] - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y[i]-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
