// Package render owns the raster surface of a drawing and replays stroke
// history onto it.
package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"io"

	"github.com/gogpu/gg"

	"CalmCanvas/internal/geom"
	"CalmCanvas/internal/stamp"
	"CalmCanvas/internal/state"
)

const pngDataURIPrefix = "data:image/png;base64,"

// Renderer exclusively owns one raster surface. Nothing else touches its
// pixels. It is not safe for concurrent use.
type Renderer struct {
	dc         *gg.Context
	width      int
	height     int
	background gg.RGBA
}

// New allocates a width x height surface filled with background. An
// unparseable background falls back to white.
func New(width, height int, background string) *Renderer {
	bg, ok := ParseColor(background)
	if !ok {
		bg = gg.White
	}
	r := &Renderer{
		dc:         gg.NewContext(width, height),
		width:      width,
		height:     height,
		background: bg,
	}
	r.dc.ClearWithColor(bg)
	return r
}

func (r *Renderer) Width() int  { return r.width }
func (r *Renderer) Height() int { return r.height }

// Size returns the raster resolution.
func (r *Renderer) Size() geom.Size {
	return geom.Size{Width: float64(r.width), Height: float64(r.height)}
}

// Background returns the color the surface is cleared to.
func (r *Renderer) Background() gg.RGBA {
	return r.background
}

// Render clears the surface and paints strokes in order, later strokes on
// top. Calling it without an allocated surface is a programming error and
// panics.
func (r *Renderer) Render(strokes []state.Stroke) error {
	r.mustSurface()
	r.dc.ClearWithColor(r.background)
	for _, s := range strokes {
		if err := r.draw(s); err != nil {
			return fmt.Errorf("render stroke %s: %w", s.ID(), err)
		}
	}
	return nil
}

func (r *Renderer) draw(s state.Stroke) error {
	switch s := s.(type) {
	case state.Freehand:
		return r.drawFreehand(s)
	case state.Stamp:
		return r.drawStamp(s)
	default:
		panic(fmt.Sprintf("render: unhandled stroke type %T", s))
	}
}

func (r *Renderer) drawFreehand(f state.Freehand) error {
	pts := f.Points()
	if len(pts) == 0 {
		return nil
	}
	c, err := strokeColor(f)
	if err != nil {
		return err
	}
	r.dc.SetRGBA(c.R, c.G, c.B, c.A)

	if isDot(pts) {
		r.dc.DrawCircle(pts[0].X, pts[0].Y, f.Width()/2)
		return r.dc.Fill()
	}

	r.dc.SetLineWidth(f.Width())
	r.dc.SetLineCap(gg.LineCapRound)
	r.dc.SetLineJoin(gg.LineJoinRound)
	r.dc.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		r.dc.LineTo(p.X, p.Y)
	}
	return r.dc.Stroke()
}

func strokeColor(s state.Stroke) (gg.RGBA, error) {
	c, ok := ParseColor(s.Color())
	if !ok {
		return c, fmt.Errorf("%w: %q", ErrUnknownColor, s.Color())
	}
	return withOpacity(c, s.Opacity()), nil
}

func (r *Renderer) drawStamp(s state.Stamp) error {
	shape, err := stamp.Generate(s.Kind(), s.Size())
	if err != nil {
		return err
	}
	c, err := strokeColor(s)
	if err != nil {
		return err
	}

	r.dc.Push()
	defer r.dc.Pop()
	r.dc.Translate(s.Center().X, s.Center().Y)

	r.dc.SetRGBA(c.R, c.G, c.B, c.A)
	r.trace(shape.Fill)
	if err := r.dc.Fill(); err != nil {
		return err
	}

	ink := inkFor(c)
	if shape.Detail != nil {
		r.dc.SetRGBA(ink.R, ink.G, ink.B, ink.A)
		r.trace(shape.Detail)
		if err := r.dc.Fill(); err != nil {
			return err
		}
	}
	if shape.Outline != nil {
		r.dc.SetRGBA(ink.R, ink.G, ink.B, ink.A)
		r.dc.SetLineWidth(shape.OutlineWidth)
		r.dc.SetLineCap(gg.LineCapRound)
		r.dc.SetLineJoin(gg.LineJoinRound)
		r.trace(shape.Outline)
		if err := r.dc.Stroke(); err != nil {
			return err
		}
	}
	return nil
}

// trace replays p onto the context's current path under the current
// transform.
func (r *Renderer) trace(p *gg.Path) {
	for _, el := range p.Elements() {
		switch e := el.(type) {
		case gg.MoveTo:
			r.dc.MoveTo(e.Point.X, e.Point.Y)
		case gg.LineTo:
			r.dc.LineTo(e.Point.X, e.Point.Y)
		case gg.QuadTo:
			r.dc.QuadraticTo(e.Control.X, e.Control.Y, e.Point.X, e.Point.Y)
		case gg.CubicTo:
			r.dc.CubicTo(e.Control1.X, e.Control1.Y, e.Control2.X, e.Control2.Y, e.Point.X, e.Point.Y)
		case gg.Close:
			r.dc.ClosePath()
		}
	}
}

func isDot(pts []geom.Point) bool {
	for _, p := range pts[1:] {
		if p != pts[0] {
			return false
		}
	}
	return true
}

// Image returns a copy of the current surface pixels.
func (r *Renderer) Image() *image.RGBA {
	r.mustSurface()
	return r.dc.Image().(*image.RGBA)
}

// EncodePNG writes the surface as a lossless PNG.
func (r *Renderer) EncodePNG(w io.Writer) error {
	r.mustSurface()
	return r.dc.EncodePNG(w)
}

// ExportDataURI returns the surface as a base64 PNG data URI. It only reads
// the surface.
func (r *Renderer) ExportDataURI() (string, error) {
	var buf bytes.Buffer
	if err := r.EncodePNG(&buf); err != nil {
		return "", fmt.Errorf("encode png: %w", err)
	}
	return pngDataURIPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// DecodeDataURI reverses ExportDataURI.
func DecodeDataURI(uri string) ([]byte, error) {
	if len(uri) < len(pngDataURIPrefix) || uri[:len(pngDataURIPrefix)] != pngDataURIPrefix {
		return nil, fmt.Errorf("not a png data uri")
	}
	return base64.StdEncoding.DecodeString(uri[len(pngDataURIPrefix):])
}

func (r *Renderer) mustSurface() {
	if r == nil || r.dc == nil {
		panic("render: no raster surface allocated")
	}
}
