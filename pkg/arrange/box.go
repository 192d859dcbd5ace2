package arrange

import (
	"math"
	"strconv"
)

// Box is one annotation on the timeline. All dimensions are in pixels.
type Box struct {
	// Position is the anchor point the box should be centered over.
	Position float64
	// Width is the natural width of the box content.
	Width float64
	// Left is the left edge of the box. It is overwritten by Arrange.
	Left float64
}

// NewBox creates a box anchored at percent (0-100) of totalWidth.
func NewBox(percent, width, totalWidth float64) Box {
	pos := totalWidth * percent / 100
	return Box{Position: pos, Width: width, Left: pos}
}

// Right returns the right edge of the box.
func (b Box) Right() float64 { return b.Left + b.Width }

// Center returns the horizontal center of the box.
func (b Box) Center() float64 { return b.Left + b.Width/2 }

// Overlaps reports whether b and next overlap or touch, assuming b is the
// left one of the two.
func (b Box) Overlaps(next Box) bool {
	return b.Right() >= next.Left
}

// overlapWidth returns how far left's right edge reaches past right's left edge.
func overlapWidth(left, right Box) float64 {
	return left.Right() - right.Left
}

// clamp keeps b inside [0, totalWidth]. The right edge is checked first, so a
// box wider than the container ends up with a negative Left.
func (b *Box) clamp(totalWidth float64) {
	if b.Right() > totalWidth {
		b.Left = totalWidth - b.Width
	} else if b.Left < 0 {
		b.Left = 0
	}
}

// Percent converts a pixel offset to a percentage of totalWidth rounded to
// one decimal place. Halves round up.
func Percent(left, totalWidth float64) float64 {
	if totalWidth <= 0 {
		return 0
	}
	return math.Floor(1000*left/totalWidth+0.5) / 10
}

// FormatPercent renders a percentage with exactly one decimal, e.g. "37.4%".
func FormatPercent(pct float64) string {
	if pct == 0 {
		pct = 0 // normalize -0
	}
	return strconv.FormatFloat(pct, 'f', 1, 64) + "%"
}
