package engine

import (
	"fmt"

	"CalmCanvas/internal/geom"
	"CalmCanvas/internal/render"
	"CalmCanvas/internal/state"
)

// Brush returns the current tool settings.
func (c *Canvas) Brush() Brush {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.brush
}

// SetColor changes the color used by new strokes and stamps. Colors the
// renderer cannot parse are refused and the brush keeps its color.
func (c *Canvas) SetColor(color string) error {
	if err := render.CheckColor(color); err != nil {
		return fmt.Errorf("set color: %w", err)
	}
	c.mu.Lock()
	c.brush.Color = color
	c.mu.Unlock()
	return nil
}

// SetWidth changes the freehand line width. Non-positive widths fall back to
// the default when the stroke is built.
func (c *Canvas) SetWidth(w float64) {
	c.mu.Lock()
	c.brush.Width = w
	c.mu.Unlock()
}

// SetOpacity changes the opacity of new strokes, clamped to [0,1].
func (c *Canvas) SetOpacity(o float64) {
	c.mu.Lock()
	c.brush.Opacity = state.ClampOpacity(o)
	c.mu.Unlock()
}

// SetStampSize changes the size of new stamps.
func (c *Canvas) SetStampSize(size float64) {
	if size <= 0 {
		size = state.DefaultStampSize
	}
	c.mu.Lock()
	c.brush.StampSize = size
	c.mu.Unlock()
}

// SetSymmetry changes the number of rotational replicas for new input,
// clamped to [1, max symmetry]. Strokes already in progress keep their
// replica count.
func (c *Canvas) SetSymmetry(order int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.symmetry = c.clampSymmetry(order)
	return c.symmetry
}

// Symmetry returns the current symmetry order.
func (c *Canvas) Symmetry() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.symmetry
}

// MaxSymmetry is the largest order SetSymmetry accepts.
func (c *Canvas) MaxSymmetry() int {
	return c.maxSymmetry
}

func (c *Canvas) clampSymmetry(order int) int {
	return int(geom.Clamp(float64(order), 1, float64(c.maxSymmetry)))
}
