// Package symmetry replicates drawing input under N-fold rotational
// symmetry about the canvas center.
package symmetry

import (
	"math"

	"CalmCanvas/internal/geom"
	"CalmCanvas/internal/state"
)

// Angle returns the rotation applied to the i-th of order replicas.
func Angle(i, order int) float64 {
	return float64(i) * 2 * math.Pi / float64(order)
}

// Replicate returns base followed by order-1 rotated copies. Copy i has
// every anchor point rotated by i*2π/order about center and a fresh
// identifier. An order of one or less returns base alone.
func Replicate(base state.Stroke, center geom.Point, order int) []state.Stroke {
	if order <= 1 {
		return []state.Stroke{base}
	}
	out := make([]state.Stroke, 0, order)
	out = append(out, base)
	for i := 1; i < order; i++ {
		angle := Angle(i, order)
		out = append(out, base.Transformed(func(p geom.Point) geom.Point {
			return geom.RotatePoint(p, center, angle)
		}))
	}
	return out
}

// ReplicatePoint returns the positions of one captured sample for every
// replica, in the same order Replicate produces strokes.
func ReplicatePoint(p, center geom.Point, order int) []geom.Point {
	if order <= 1 {
		return []geom.Point{p}
	}
	out := make([]geom.Point, order)
	out[0] = p
	for i := 1; i < order; i++ {
		out[i] = geom.RotatePoint(p, center, Angle(i, order))
	}
	return out
}
