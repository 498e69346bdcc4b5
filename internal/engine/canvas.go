// Package engine is the single-document drawing engine: it turns pointer
// input into strokes, keeps the undo/redo history and keeps the raster
// surface in sync with it.
package engine

import (
	"errors"
	"fmt"
	"image"
	"io"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"CalmCanvas/internal/geom"
	"CalmCanvas/internal/logging"
	"CalmCanvas/internal/metrics"
	"CalmCanvas/internal/render"
	"CalmCanvas/internal/stamp"
	"CalmCanvas/internal/state"
	"CalmCanvas/internal/symmetry"
)

var (
	ErrNotDrawing    = errors.New("no stroke in progress")
	ErrInvalidStroke = errors.New("invalid stroke")
)

// Brush is the tool state applied to new strokes.
type Brush struct {
	Color     string
	Width     float64
	Opacity   float64
	StampSize float64
}

// Options configures a Canvas.
type Options struct {
	Width       int
	Height      int
	Background  string
	Brush       Brush
	Symmetry    int
	MaxSymmetry int
	RedoLimit   int

	Logger  *zap.Logger
	Metrics *metrics.Collector
}

// Snapshot describes the editing state at one instant.
type Snapshot struct {
	History  int  `json:"history"`
	Redo     int  `json:"redo"`
	Drawing  bool `json:"drawing"`
	Symmetry int  `json:"symmetry"`
}

// Canvas is one drawing document. A single mutex guards the history, the
// in-progress strokes and the raster surface so every render sees a
// consistent state.
type Canvas struct {
	mu       sync.Mutex
	history  *state.History
	renderer *render.Renderer
	pending  []state.Freehand

	brush       Brush
	symmetry    int
	maxSymmetry int

	log     *zap.Logger
	metrics *metrics.Collector

	// OnChange is called after every change to the visible drawing, outside
	// the lock.
	OnChange func()
}

// New allocates the surface and returns an empty canvas.
func New(opts Options) *Canvas {
	if opts.MaxSymmetry < 1 {
		opts.MaxSymmetry = 12
	}
	c := &Canvas{
		history:     state.NewHistory(opts.RedoLimit),
		renderer:    render.New(opts.Width, opts.Height, opts.Background),
		brush:       opts.Brush,
		maxSymmetry: opts.MaxSymmetry,
		log:         logging.OrNop(opts.Logger).Named("engine"),
		metrics:     opts.Metrics,
	}
	c.symmetry = c.clampSymmetry(opts.Symmetry)
	if err := render.CheckColor(c.brush.Color); err != nil {
		if c.brush.Color != "" {
			c.log.Warn("unusable brush color, using black", zap.Error(err))
		}
		c.brush.Color = "#000000"
	}
	if c.brush.StampSize <= 0 {
		c.brush.StampSize = state.DefaultStampSize
	}
	c.brush.Opacity = state.ClampOpacity(c.brush.Opacity)
	return c
}

// Size returns the raster resolution.
func (c *Canvas) Size() geom.Size {
	return c.renderer.Size()
}

// Center is the point symmetric input rotates about.
func (c *Canvas) Center() geom.Point {
	return c.renderer.Size().Center()
}

// PointerDown starts one freehand stroke per symmetry replica at p. A press
// that arrives while strokes are in progress discards them.
func (c *Canvas) PointerDown(p geom.Point) error {
	return c.mutate(func() (bool, error) {
		if len(c.pending) > 0 {
			c.log.Debug("discarding unfinished stroke", zap.Int("replicas", len(c.pending)))
		}
		base := state.NewFreehand(p, c.brush.Color, c.brush.Width, c.brush.Opacity)
		replicas := symmetry.Replicate(base, c.Center(), c.symmetry)
		c.pending = make([]state.Freehand, len(replicas))
		for i, s := range replicas {
			c.pending[i] = s.(state.Freehand)
		}
		return true, c.renderLocked()
	})
}

// PointerMove extends every in-progress replica by the rotated sample.
// Without a preceding PointerDown it does nothing.
func (c *Canvas) PointerMove(p geom.Point) error {
	return c.mutate(func() (bool, error) {
		if len(c.pending) == 0 {
			return false, nil
		}
		pts := symmetry.ReplicatePoint(p, c.Center(), len(c.pending))
		for i := range c.pending {
			c.pending[i] = c.pending[i].AppendPoint(pts[i])
		}
		return true, c.renderLocked()
	})
}

// PointerUp commits the in-progress replicas to history in replica order.
func (c *Canvas) PointerUp() error {
	return c.mutate(func() (bool, error) {
		if len(c.pending) == 0 {
			return false, ErrNotDrawing
		}
		for _, f := range c.pending {
			c.history.Append(f)
			c.log.Debug("stroke committed", zap.String("stroke_id", f.ID()), zap.Int("points", f.Len()))
		}
		if c.metrics != nil {
			c.metrics.StrokesCommitted.Add(float64(len(c.pending)))
		}
		c.pending = nil
		return true, c.renderLocked()
	})
}

// CancelStroke abandons the in-progress strokes without touching history.
func (c *Canvas) CancelStroke() error {
	return c.mutate(func() (bool, error) {
		if len(c.pending) == 0 {
			return false, nil
		}
		c.pending = nil
		return true, c.renderLocked()
	})
}

// PlaceStamp appends a stamp of kind at p, plus its symmetry replicas.
func (c *Canvas) PlaceStamp(kind stamp.Kind, p geom.Point) error {
	return c.mutate(func() (bool, error) {
		base, err := state.NewStamp(kind, p, c.brush.StampSize, c.brush.Color, c.brush.Opacity)
		if err != nil {
			return false, fmt.Errorf("place stamp: %w", err)
		}
		replicas := symmetry.Replicate(base, c.Center(), c.symmetry)
		for _, s := range replicas {
			c.history.Append(s)
		}
		if c.metrics != nil {
			c.metrics.StampsPlaced.Add(float64(len(replicas)))
		}
		c.log.Debug("stamp placed", zap.String("kind", string(kind)), zap.Int("replicas", len(replicas)))
		return true, c.renderLocked()
	})
}

// BlobFill paints a filled disc of radius at p. It stands in for a flood
// fill: it does not look at existing pixels.
func (c *Canvas) BlobFill(p geom.Point, radius float64) error {
	if radius <= 0 || math.IsNaN(radius) {
		return fmt.Errorf("blob fill: radius must be positive, got %v", radius)
	}
	return c.mutate(func() (bool, error) {
		base := state.NewFreehand(p, c.brush.Color, 2*radius, c.brush.Opacity)
		replicas := symmetry.Replicate(base, c.Center(), c.symmetry)
		for _, s := range replicas {
			c.history.Append(s)
		}
		if c.metrics != nil {
			c.metrics.StrokesCommitted.Add(float64(len(replicas)))
		}
		return true, c.renderLocked()
	})
}

// Append adds an already built stroke to history. Strokes the renderer
// could not draw are refused and history is left untouched.
func (c *Canvas) Append(s state.Stroke) error {
	if err := validate(s); err != nil {
		return err
	}
	return c.mutate(func() (bool, error) {
		c.history.Append(s)
		c.log.Debug("stroke appended", zap.String("stroke_id", s.ID()))
		return true, c.renderLocked()
	})
}

func validate(s state.Stroke) error {
	switch s := s.(type) {
	case nil:
		return fmt.Errorf("%w: nil stroke", ErrInvalidStroke)
	case state.Freehand:
		if s.Len() == 0 {
			return fmt.Errorf("%w: %w", ErrInvalidStroke, state.ErrNoPoints)
		}
	case state.Stamp:
		if _, err := stamp.Generate(s.Kind(), s.Size()); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidStroke, err)
		}
		if s.Size() <= 0 {
			return fmt.Errorf("%w: stamp size %v", ErrInvalidStroke, s.Size())
		}
	default:
		return fmt.Errorf("%w: unsupported type %T", ErrInvalidStroke, s)
	}
	if err := render.CheckColor(s.Color()); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidStroke, err)
	}
	return nil
}

// Undo moves the newest stroke to the redo pool. It is a no-op on an empty
// history.
func (c *Canvas) Undo() error {
	return c.mutate(func() (bool, error) {
		s, ok := c.history.Undo()
		if !ok {
			return false, nil
		}
		if c.metrics != nil {
			c.metrics.Undos.Inc()
		}
		c.log.Debug("undo", zap.String("stroke_id", s.ID()))
		return true, c.renderLocked()
	})
}

// Redo restores the most recently undone stroke. It is a no-op on an empty
// redo pool.
func (c *Canvas) Redo() error {
	return c.mutate(func() (bool, error) {
		s, ok := c.history.Redo()
		if !ok {
			return false, nil
		}
		if c.metrics != nil {
			c.metrics.Redos.Inc()
		}
		c.log.Debug("redo", zap.String("stroke_id", s.ID()))
		return true, c.renderLocked()
	})
}

// Clear empties history, the redo pool and any in-progress stroke.
func (c *Canvas) Clear() error {
	return c.mutate(func() (bool, error) {
		c.history.Clear()
		c.pending = nil
		if c.metrics != nil {
			c.metrics.Clears.Inc()
		}
		c.log.Info("canvas cleared")
		return true, c.renderLocked()
	})
}

// Strokes returns the committed history, oldest first.
func (c *Canvas) Strokes() []state.Stroke {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history.Strokes()
}

// RedoStrokes returns the redo pool, bottom of the stack first.
func (c *Canvas) RedoStrokes() []state.Stroke {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history.RedoStrokes()
}

// Snapshot reports the current stack sizes and drawing state.
func (c *Canvas) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		History:  c.history.Len(),
		Redo:     c.history.RedoLen(),
		Drawing:  len(c.pending) > 0,
		Symmetry: c.symmetry,
	}
}

// ExportDataURI encodes the current surface as a PNG data URI.
func (c *Canvas) ExportDataURI() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	uri, err := c.renderer.ExportDataURI()
	if err != nil {
		return "", err
	}
	c.exported()
	return uri, nil
}

// EncodePNG writes the current surface as PNG.
func (c *Canvas) EncodePNG(w io.Writer) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.renderer.EncodePNG(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	c.exported()
	return nil
}

// Image returns a copy of the current surface.
func (c *Canvas) Image() *image.RGBA {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.renderer.Image()
}

func (c *Canvas) exported() {
	if c.metrics != nil {
		c.metrics.Exports.Inc()
	}
	c.log.Info("canvas exported", zap.Int("history", c.history.Len()))
}

// renderLocked replays history followed by the in-progress strokes.
func (c *Canvas) renderLocked() error {
	start := time.Now()
	strokes := c.history.Strokes()
	for _, f := range c.pending {
		strokes = append(strokes, f)
	}
	err := c.renderer.Render(strokes)
	c.metrics.ObserveRender(time.Since(start))
	c.metrics.SetDepths(c.history.Len(), c.history.RedoLen())
	if err != nil {
		c.log.Error("render failed", zap.Error(err))
	}
	return err
}

// mutate runs fn under the lock, then fires OnChange outside it when fn
// reports a visible change.
func (c *Canvas) mutate(fn func() (bool, error)) error {
	changed, err := c.locked(fn)
	if changed && c.OnChange != nil {
		c.OnChange()
	}
	return err
}

func (c *Canvas) locked(fn func() (bool, error)) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fn()
}
