// Package geom holds the small amount of 2D math the drawing engine needs:
// clamping captured points, mapping device coordinates onto the raster and
// rotating points for symmetric drawing.
package geom

import "math"

// Point is a position in canvas raster coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Size is a width and height in pixels.
type Size struct {
	Width  float64
	Height float64
}

// Center returns the middle of a surface of this size.
func (s Size) Center() Point {
	return Point{X: s.Width / 2, Y: s.Height / 2}
}

// Rect is the on-screen rectangle an input surface is displayed in.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Clamp limits v to [min, max]. NaN clamps to min.
func Clamp(v, min, max float64) float64 {
	if v < min || math.IsNaN(v) {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// MapInputToCanvas converts a pointer position given in the same space as
// rect into canvas raster coordinates. The ratio between the displayed
// rectangle and the raster resolution is applied per axis and the result is
// clamped into the raster bounds.
func MapInputToCanvas(input Point, rect Rect, res Size) Point {
	sx, sy := 1.0, 1.0
	if rect.Width > 0 {
		sx = res.Width / rect.Width
	}
	if rect.Height > 0 {
		sy = res.Height / rect.Height
	}
	return Point{
		X: Clamp((input.X-rect.X)*sx, 0, res.Width),
		Y: Clamp((input.Y-rect.Y)*sy, 0, res.Height),
	}
}

// RotatePoint rotates p about center by angle radians.
func RotatePoint(p, center Point, angle float64) Point {
	sin, cos := math.Sincos(angle)
	dx, dy := p.X-center.X, p.Y-center.Y
	return Point{
		X: center.X + dx*cos - dy*sin,
		Y: center.Y + dx*sin + dy*cos,
	}
}

// Distance returns the euclidean distance between a and b.
func Distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
