package state

import (
	"errors"
	"math"
	"slices"

	"CalmCanvas/internal/geom"
	"CalmCanvas/internal/stamp"
)

const (
	DefaultWidth     = 3.0
	DefaultStampSize = 48.0
)

var ErrNoPoints = errors.New("freehand stroke needs at least one point")

// Stroke is one drawing operation in a document's history: either a
// Freehand polyline or a Stamp. Strokes are values and never change after
// construction.
type Stroke interface {
	ID() string
	Color() string
	Opacity() float64

	// Transformed returns a copy with every anchor point mapped through f
	// and a freshly generated identifier.
	Transformed(f func(geom.Point) geom.Point) Stroke

	isStroke()
}

// Freehand is a polyline captured while the pointer was pressed.
type Freehand struct {
	id      string
	points  []geom.Point
	color   string
	width   float64
	opacity float64
}

// NewFreehand begins a freehand stroke at first.
func NewFreehand(first geom.Point, color string, width, opacity float64) Freehand {
	return Freehand{
		id:      NewID(),
		points:  []geom.Point{first},
		color:   color,
		width:   normalizeWidth(width),
		opacity: ClampOpacity(opacity),
	}
}

// NewFreehandPath builds a freehand stroke from an already captured polyline.
func NewFreehandPath(points []geom.Point, color string, width, opacity float64) (Freehand, error) {
	if len(points) == 0 {
		return Freehand{}, ErrNoPoints
	}
	f := NewFreehand(points[0], color, width, opacity)
	f.points = append(f.points, points[1:]...)
	return f, nil
}

// AppendPoint returns the stroke extended by p. The receiver is unchanged.
func (f Freehand) AppendPoint(p geom.Point) Freehand {
	f.points = append(f.points[:len(f.points):len(f.points)], p)
	return f
}

func (f Freehand) ID() string       { return f.id }
func (f Freehand) Color() string    { return f.color }
func (f Freehand) Opacity() float64 { return f.opacity }
func (f Freehand) Width() float64   { return f.width }
func (f Freehand) Len() int         { return len(f.points) }

// Points returns a copy of the polyline in drawing order.
func (f Freehand) Points() []geom.Point {
	return slices.Clone(f.points)
}

// Last returns the most recently captured point.
func (f Freehand) Last() geom.Point {
	return f.points[len(f.points)-1]
}

func (f Freehand) Transformed(fn func(geom.Point) geom.Point) Stroke {
	out := f
	out.id = NewID()
	out.points = make([]geom.Point, len(f.points))
	for i, p := range f.points {
		out.points[i] = fn(p)
	}
	return out
}

func (Freehand) isStroke() {}

// Stamp is a procedurally generated filled shape placed at a center point.
type Stamp struct {
	id      string
	kind    stamp.Kind
	center  geom.Point
	size    float64
	color   string
	opacity float64
}

// NewStamp constructs a stamp of the given kind. Non-positive sizes fall back
// to DefaultStampSize.
func NewStamp(kind stamp.Kind, center geom.Point, size float64, color string, opacity float64) (Stamp, error) {
	if _, err := stamp.ParseKind(string(kind)); err != nil {
		return Stamp{}, err
	}
	if size <= 0 {
		size = DefaultStampSize
	}
	return Stamp{
		id:      NewID(),
		kind:    kind,
		center:  center,
		size:    size,
		color:   color,
		opacity: ClampOpacity(opacity),
	}, nil
}

func (s Stamp) ID() string         { return s.id }
func (s Stamp) Color() string      { return s.color }
func (s Stamp) Opacity() float64   { return s.opacity }
func (s Stamp) Kind() stamp.Kind   { return s.kind }
func (s Stamp) Center() geom.Point { return s.center }
func (s Stamp) Size() float64      { return s.size }

func (s Stamp) Transformed(fn func(geom.Point) geom.Point) Stroke {
	out := s
	out.id = NewID()
	out.center = fn(s.center)
	return out
}

func (Stamp) isStroke() {}

// ClampOpacity limits o to [0,1]. NaN means fully opaque.
func ClampOpacity(o float64) float64 {
	if math.IsNaN(o) {
		return 1
	}
	return geom.Clamp(o, 0, 1)
}

func normalizeWidth(w float64) float64 {
	if w <= 0 {
		return DefaultWidth
	}
	return w
}
