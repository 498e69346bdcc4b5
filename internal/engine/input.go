package engine

import (
	"CalmCanvas/internal/geom"
	"CalmCanvas/internal/stamp"
)

// The *At variants take a pointer position in device space together with the
// rectangle the canvas is displayed in, and map it onto the raster first.

func (c *Canvas) PointerDownAt(input geom.Point, displayed geom.Rect) error {
	return c.PointerDown(c.ToCanvas(input, displayed))
}

func (c *Canvas) PointerMoveAt(input geom.Point, displayed geom.Rect) error {
	return c.PointerMove(c.ToCanvas(input, displayed))
}

func (c *Canvas) PlaceStampAt(kind stamp.Kind, input geom.Point, displayed geom.Rect) error {
	return c.PlaceStamp(kind, c.ToCanvas(input, displayed))
}

func (c *Canvas) BlobFillAt(input geom.Point, displayed geom.Rect, radius float64) error {
	return c.BlobFill(c.ToCanvas(input, displayed), radius)
}

// ToCanvas maps a device position onto the raster, clamping to its bounds.
func (c *Canvas) ToCanvas(input geom.Point, displayed geom.Rect) geom.Point {
	return geom.MapInputToCanvas(input, displayed, c.Size())
}
