// Package stamp generates the vector outlines of the procedural stamps.
//
// Every generator is pure: it builds a fresh path around a local origin
// (0,0) that the renderer translates to the stamp's center.
package stamp

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/gogpu/gg"
)

// Kind identifies a stamp shape.
type Kind string

const (
	Heart Kind = "heart"
	Star  Kind = "star"
	Smile Kind = "smile"
)

// Kinds lists every stamp kind in toolbar order.
var Kinds = []Kind{Heart, Star, Smile}

var ErrUnknownKind = errors.New("unknown stamp kind")

// ParseKind accepts a kind name in any case.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case Heart, Star, Smile:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Shape is the geometry of one stamp.
//
// Fill is painted with the stamp color. Detail and Outline are drawn on top
// in a contrasting ink: Detail filled, Outline stroked with OutlineWidth.
// Only the smiling face uses them.
type Shape struct {
	Fill         *gg.Path
	Detail       *gg.Path
	Outline      *gg.Path
	OutlineWidth float64
}

// Generate returns the shape for kind at the given size.
func Generate(kind Kind, size float64) (Shape, error) {
	switch kind {
	case Heart:
		return Shape{Fill: HeartPath(size)}, nil
	case Star:
		return Shape{Fill: StarPath(size)}, nil
	case Smile:
		return SmileShape(size), nil
	}
	return Shape{}, fmt.Errorf("%w: %q", ErrUnknownKind, string(kind))
}

// HeartPath builds two mirrored cubic lobes running from the tip below the
// origin up to the cusp above it and back down.
func HeartPath(size float64) *gg.Path {
	h := size / 2
	tipY := 0.9 * h
	cuspY := -0.35 * h

	p := gg.NewPath()
	p.MoveTo(0, tipY)
	p.CubicTo(-1.2*h, 0.1*h, -0.9*h, -1.1*h, 0, cuspY)
	p.CubicTo(0.9*h, -1.1*h, 1.2*h, 0.1*h, 0, tipY)
	p.Close()
	return p
}

// StarPath builds a five pointed star pointing up, alternating between an
// outer radius of size/2 and an inner radius of size/5 every 36 degrees.
func StarPath(size float64) *gg.Path {
	outer, inner := size/2, size/5
	step := math.Pi / 5

	p := gg.NewPath()
	var first gg.Point
	for i := 0; i < 10; i++ {
		r := outer
		if i%2 == 1 {
			r = inner
		}
		a := -math.Pi/2 + float64(i)*step
		pt := gg.Pt(r*math.Cos(a), r*math.Sin(a))
		if i == 0 {
			first = pt
			p.MoveTo(pt.X, pt.Y)
			continue
		}
		p.LineTo(pt.X, pt.Y)
	}
	p.LineTo(first.X, first.Y)
	p.Close()
	return p
}

// SmileShape builds a face disc of radius size/2, two eye discs and an open
// mouth arc across the lower half of the face.
func SmileShape(size float64) Shape {
	r := size / 2

	face := gg.NewPath()
	face.Circle(0, 0, r)

	eyes := gg.NewPath()
	eyeR := size / 16
	eyes.Circle(-size/6, -size/8, eyeR)
	eyes.Circle(size/6, -size/8, eyeR)

	mouth := gg.NewPath()
	mouth.Arc(0, 0, size/4, 0.2*math.Pi, 0.8*math.Pi)

	return Shape{
		Fill:         face,
		Detail:       eyes,
		Outline:      mouth,
		OutlineWidth: math.Max(size/20, 1),
	}
}
