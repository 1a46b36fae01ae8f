// Package geometry maps clock fractions onto the border of a rectangular
// panel. A round clock face does not fit a 64x32 matrix, so hands point at
// the rectangle perimeter instead of a circle.
package geometry

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidDimension is returned when a rectangle has a non-positive side.
var ErrInvalidDimension = errors.New("invalid dimension")

// Point is a position on or inside the panel in real coordinates.
type Point struct {
	X, Y float64
}

// PixelPoint is a position snapped to the pixel grid.
type PixelPoint struct {
	X, Y int
}

// PerimeterPoint converts f in [0,1) to a point on the border of a w x h
// rectangle, moving clockwise from top-center.
//
// The distance is measured from the top-left corner, so the w/2 offset
// rotates the zero point to top-center. Edge checks are inclusive: a
// point exactly on a corner belongs to the edge that precedes it in the
// top, right, bottom, left order.
func PerimeterPoint(f, w, h float64) (Point, error) {
	if !(w > 0) || !(h > 0) {
		return Point{}, fmt.Errorf("%w: width=%v height=%v", ErrInvalidDimension, w, h)
	}

	perimeter := 2 * (w + h)
	dist := math.Mod(f*perimeter+w/2, perimeter)
	if dist < 0 {
		dist += perimeter
	}

	switch {
	case dist <= w:
		return Point{X: dist, Y: 0}, nil
	case dist <= w+h:
		return Point{X: w, Y: dist - w}, nil
	case dist <= 2*w+h:
		return Point{X: w - (dist - w - h), Y: h}, nil
	default:
		return Point{X: 0, Y: h - (dist - 2*w - h)}, nil
	}
}

// HandPoint returns the pixel at lengthRatio along the segment from the
// center to the perimeter point. Ratios outside [0,1] extrapolate.
func HandPoint(cx, cy, px, py, lengthRatio float64) PixelPoint {
	return PixelPoint{
		X: int(math.Round(cx + lengthRatio*(px-cx))),
		Y: int(math.Round(cy + lengthRatio*(py-cy))),
	}
}

// Pixel snaps a point to the nearest pixel.
func (p Point) Pixel() PixelPoint {
	return PixelPoint{X: int(math.Round(p.X)), Y: int(math.Round(p.Y))}
}

// OnBorder reports whether p lies on the border of a w x h rectangle.
func (p Point) OnBorder(w, h float64) bool {
	onVertical := (p.X == 0 || p.X == w) && p.Y >= 0 && p.Y <= h
	onHorizontal := (p.Y == 0 || p.Y == h) && p.X >= 0 && p.X <= w
	return onVertical || onHorizontal
}
