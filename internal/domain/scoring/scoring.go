// Package scoring maps a pitch location inside the strike zone to its outcome.
//
// The zone is the unit square with (0,0) at the top-left corner, split into a
// 3x3 grid by lines at 1/3 and 2/3 on both axes.
package scoring

import "math"

// Label names the kind of pitch outcome.
type Label string

// Outcome labels.
const (
	CornerStrike Label = "CornerStrike"
	EdgeStrike   Label = "EdgeStrike"
	CenterStrike Label = "CenterStrike"
	Ball         Label = "Ball"
)

// Points awarded per label.
const (
	cornerPoints = 3
	edgePoints   = 2
	centerPoints = 1
	ballPoints   = 0
)

const gridSize = 3

// Coordinate is a normalized position in the zone.
type Coordinate struct {
	X float64
	Y float64
}

// InBounds reports whether both components lie in [0,1]. NaN is out of bounds.
func (c Coordinate) InBounds() bool {
	return inUnit(c.X) && inUnit(c.Y)
}

// Clamp returns c with both components forced into [0,1]. NaN becomes 0.
func (c Coordinate) Clamp() Coordinate {
	return Coordinate{X: clampUnit(c.X), Y: clampUnit(c.Y)}
}

// Outcome is the scored result of one pitch.
type Outcome struct {
	Coordinate Coordinate
	Label      Label
	Points     int
}

// Score classifies a raw, unclamped coordinate. A component outside [0,1] is a
// Ball regardless of the other; the stored coordinate is always clamped.
func Score(raw Coordinate) Outcome {
	clamped := raw.Clamp()
	if !raw.InBounds() {
		return Outcome{Coordinate: clamped, Label: Ball, Points: ballPoints}
	}

	col, row := band(clamped.X), band(clamped.Y)
	edgeCol := col != 1
	edgeRow := row != 1

	switch {
	case edgeCol && edgeRow:
		return Outcome{Coordinate: clamped, Label: CornerStrike, Points: cornerPoints}
	case edgeCol || edgeRow:
		return Outcome{Coordinate: clamped, Label: EdgeStrike, Points: edgePoints}
	default:
		return Outcome{Coordinate: clamped, Label: CenterStrike, Points: centerPoints}
	}
}

// band returns 0, 1 or 2. A value exactly on 1/3 or 2/3 belongs to the higher band.
func band(v float64) int {
	switch {
	case v >= 2.0/gridSize:
		return 2
	case v >= 1.0/gridSize:
		return 1
	default:
		return 0
	}
}

func inUnit(v float64) bool {
	return v >= 0 && v <= 1
}

func clampUnit(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
