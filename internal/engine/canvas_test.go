package engine

import (
	"bytes"
	"image/color"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"CalmCanvas/internal/geom"
	"CalmCanvas/internal/metrics"
	"CalmCanvas/internal/render"
	"CalmCanvas/internal/stamp"
	"CalmCanvas/internal/state"
)

var white = color.RGBA{R: 255, G: 255, B: 255, A: 255}

func newCanvas(t *testing.T, symmetryOrder int) *Canvas {
	t.Helper()
	return New(Options{
		Width:      100,
		Height:     100,
		Background: "white",
		Brush:      Brush{Color: "#000000", Width: 4, Opacity: 1, StampSize: 20},
		Symmetry:   symmetryOrder,
		Logger:     zap.NewNop(),
		Metrics:    metrics.NewCollector("test"),
	})
}

func TestFreehandLifecycle(t *testing.T) {
	c := newCanvas(t, 1)
	var changes int
	c.OnChange = func() { changes++ }

	require.NoError(t, c.PointerDown(geom.Pt(10, 10)))
	assert.True(t, c.Snapshot().Drawing)
	require.NoError(t, c.PointerMove(geom.Pt(40, 10)))
	require.NoError(t, c.PointerMove(geom.Pt(40, 40)))

	// the live preview already shows the stroke
	assert.NotEqual(t, white, c.Image().RGBAAt(25, 10))
	assert.Equal(t, 0, c.Snapshot().History)

	require.NoError(t, c.PointerUp())
	strokes := c.Strokes()
	require.Len(t, strokes, 1)
	f := strokes[0].(state.Freehand)
	assert.Equal(t, []geom.Point{{X: 10, Y: 10}, {X: 40, Y: 10}, {X: 40, Y: 40}}, f.Points())
	assert.Equal(t, 4.0, f.Width())
	assert.Equal(t, 4, changes)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.StrokesCommitted))
}

func TestPointerUpWithoutDown(t *testing.T) {
	c := newCanvas(t, 1)
	assert.ErrorIs(t, c.PointerUp(), ErrNotDrawing)
	assert.NoError(t, c.PointerMove(geom.Pt(1, 1)))
	assert.Equal(t, 0, c.Snapshot().History)
}

func TestTapCommitsDot(t *testing.T) {
	c := newCanvas(t, 1)
	require.NoError(t, c.PointerDown(geom.Pt(50, 50)))
	require.NoError(t, c.PointerUp())
	assert.Equal(t, 1, c.Snapshot().History)
	assert.NotEqual(t, white, c.Image().RGBAAt(50, 50))
}

func TestCancelStrokeLeavesHistory(t *testing.T) {
	c := newCanvas(t, 1)
	require.NoError(t, c.PointerDown(geom.Pt(10, 10)))
	require.NoError(t, c.PointerMove(geom.Pt(90, 10)))
	require.NoError(t, c.CancelStroke())

	assert.False(t, c.Snapshot().Drawing)
	assert.Equal(t, 0, c.Snapshot().History)
	assert.Equal(t, white, c.Image().RGBAAt(50, 10))
}

func TestSymmetricFreehand(t *testing.T) {
	c := newCanvas(t, 4)
	require.NoError(t, c.PointerDown(geom.Pt(50, 10)))
	require.NoError(t, c.PointerMove(geom.Pt(60, 10)))
	require.NoError(t, c.PointerUp())

	strokes := c.Strokes()
	require.Len(t, strokes, 4)
	want := []geom.Point{{X: 60, Y: 10}, {X: 90, Y: 60}, {X: 40, Y: 90}, {X: 10, Y: 40}}
	for i, s := range strokes {
		f := s.(state.Freehand)
		require.Equal(t, 2, f.Len())
		assert.InDelta(t, want[i].X, f.Last().X, 1e-9, "replica %d", i)
		assert.InDelta(t, want[i].Y, f.Last().Y, 1e-9, "replica %d", i)
	}
}

func TestSymmetryChangeMidStrokeKeepsReplicaCount(t *testing.T) {
	c := newCanvas(t, 3)
	require.NoError(t, c.PointerDown(geom.Pt(50, 20)))
	c.SetSymmetry(6)
	require.NoError(t, c.PointerMove(geom.Pt(50, 25)))
	require.NoError(t, c.PointerUp())
	assert.Len(t, c.Strokes(), 3)
	assert.Equal(t, 6, c.Symmetry())
}

func TestPlaceStampWithSymmetry(t *testing.T) {
	c := newCanvas(t, 4)
	require.NoError(t, c.PlaceStamp(stamp.Star, geom.Pt(50, 10)))

	strokes := c.Strokes()
	require.Len(t, strokes, 4)
	want := []geom.Point{{X: 50, Y: 10}, {X: 90, Y: 50}, {X: 50, Y: 90}, {X: 10, Y: 50}}
	for i, s := range strokes {
		st := s.(state.Stamp)
		assert.InDelta(t, want[i].X, st.Center().X, 1e-9)
		assert.InDelta(t, want[i].Y, st.Center().Y, 1e-9)
		assert.Equal(t, 20.0, st.Size())
		assert.NotEqual(t, white, c.Image().RGBAAt(int(want[i].X), int(want[i].Y)))
	}

	assert.ErrorIs(t, c.PlaceStamp(stamp.Kind("moon"), geom.Pt(1, 1)), stamp.ErrUnknownKind)
	assert.Len(t, c.Strokes(), 4)
}

func TestBlobFill(t *testing.T) {
	c := newCanvas(t, 1)
	require.NoError(t, c.SetColor("#ff0000"))
	require.NoError(t, c.BlobFill(geom.Pt(50, 50), 20))

	img := c.Image()
	for _, x := range []int{50, 62} {
		px := img.RGBAAt(x, 50)
		assert.Greater(t, px.R, uint8(250))
		assert.Less(t, px.G, uint8(5))
	}
	assert.Equal(t, white, img.RGBAAt(80, 50))

	assert.Error(t, c.BlobFill(geom.Pt(1, 1), 0))
}

func TestUndoRedoScenario(t *testing.T) {
	c := newCanvas(t, 1)
	for _, x := range []float64{10, 30, 50} {
		require.NoError(t, c.PointerDown(geom.Pt(x, 50)))
		require.NoError(t, c.PointerUp())
	}
	first := c.Strokes()[0].ID()

	require.NoError(t, c.Undo())
	require.NoError(t, c.Undo())
	require.NoError(t, c.PointerDown(geom.Pt(70, 50)))
	require.NoError(t, c.PointerUp())

	strokes := c.Strokes()
	require.Len(t, strokes, 2)
	assert.Equal(t, first, strokes[0].ID())
	assert.Len(t, c.RedoStrokes(), 2)

	assert.Equal(t, white, c.Image().RGBAAt(30, 50), "undone stroke is no longer drawn")
	require.NoError(t, c.Redo())
	assert.NotEqual(t, white, c.Image().RGBAAt(30, 50))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.Redos))
}

func TestUndoRedoUnderflow(t *testing.T) {
	c := newCanvas(t, 1)
	var changes int
	c.OnChange = func() { changes++ }
	assert.NoError(t, c.Undo())
	assert.NoError(t, c.Redo())
	assert.Equal(t, Snapshot{Symmetry: 1}, c.Snapshot())
	assert.Equal(t, 0, changes)
}

func TestClear(t *testing.T) {
	c := newCanvas(t, 2)
	require.NoError(t, c.PlaceStamp(stamp.Heart, geom.Pt(20, 20)))
	require.NoError(t, c.Undo())
	require.NoError(t, c.PointerDown(geom.Pt(5, 5)))
	require.NoError(t, c.Clear())

	snap := c.Snapshot()
	assert.Equal(t, 0, snap.History)
	assert.Equal(t, 0, snap.Redo)
	assert.False(t, snap.Drawing)
	for _, v := range c.Image().Pix {
		require.Equal(t, uint8(255), v)
	}
}

func TestExportBlank(t *testing.T) {
	c := newCanvas(t, 1)
	uri, err := c.ExportDataURI()
	require.NoError(t, err)
	raw, err := render.DecodeDataURI(uri)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 100, img.Bounds().Dy())

	var buf bytes.Buffer
	require.NoError(t, c.EncodePNG(&buf))
	assert.Equal(t, raw, buf.Bytes())
	assert.Equal(t, 2.0, testutil.ToFloat64(c.metrics.Exports))
	assert.Equal(t, 0, c.Snapshot().History, "export does not touch history")
}

func TestDeviceSpaceInput(t *testing.T) {
	c := newCanvas(t, 1)
	displayed := geom.Rect{X: 0, Y: 0, Width: 50, Height: 50}

	require.NoError(t, c.PointerDownAt(geom.Pt(5, 5), displayed))
	require.NoError(t, c.PointerMoveAt(geom.Pt(500, 5), displayed))
	require.NoError(t, c.PointerUp())

	f := c.Strokes()[0].(state.Freehand)
	assert.Equal(t, []geom.Point{{X: 10, Y: 10}, {X: 100, Y: 10}}, f.Points())

	require.NoError(t, c.PlaceStampAt(stamp.Smile, geom.Pt(25, 25), displayed))
	assert.Equal(t, geom.Pt(50, 50), c.Strokes()[1].(state.Stamp).Center())
}

func TestBrushSetters(t *testing.T) {
	c := newCanvas(t, 1)
	c.SetOpacity(3)
	c.SetWidth(9)
	c.SetStampSize(-1)
	require.NoError(t, c.SetColor("teal"))
	assert.ErrorIs(t, c.SetColor("mauvish"), render.ErrUnknownColor)

	b := c.Brush()
	assert.Equal(t, 1.0, b.Opacity)
	assert.Equal(t, 9.0, b.Width)
	assert.Equal(t, state.DefaultStampSize, b.StampSize)
	assert.Equal(t, "teal", b.Color)

	assert.Equal(t, 1, c.SetSymmetry(0))
	assert.Equal(t, 12, c.SetSymmetry(100))
	assert.Equal(t, 12, c.MaxSymmetry())
}

func TestNewFallsBackToBlackBrush(t *testing.T) {
	c := New(Options{Width: 10, Height: 10, Brush: Brush{Color: "nope"}})
	assert.Equal(t, "#000000", c.Brush().Color)
}

func TestConcurrentInputIsSerialized(t *testing.T) {
	c := newCanvas(t, 2)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = c.PlaceStamp(stamp.Star, geom.Pt(float64(10+i*5), 30))
			_ = c.Undo()
			_ = c.Redo()
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 16, c.Snapshot().History)
}

func TestAppendGrowsHistoryByOne(t *testing.T) {
	c := newCanvas(t, 1)
	var changes int
	c.OnChange = func() { changes++ }

	f, err := state.NewFreehandPath([]geom.Point{{X: 10, Y: 10}, {X: 40, Y: 40}}, "coral", 5, 1)
	require.NoError(t, err)
	s, err := state.NewStamp(stamp.Heart, geom.Pt(60, 60), 20, "#6a5acd", 0.5)
	require.NoError(t, err)

	for i, st := range []state.Stroke{f, s} {
		require.NoError(t, c.Append(st))
		assert.Equal(t, i+1, c.Snapshot().History)
		assert.Equal(t, st.ID(), c.Strokes()[i].ID())
	}
	assert.Equal(t, 2, changes)
	assert.NotEqual(t, white, c.Image().RGBAAt(25, 25))
}

func TestAppendRefusesUndrawableStrokes(t *testing.T) {
	c := newCanvas(t, 1)
	var changes int
	c.OnChange = func() { changes++ }

	badColor, err := state.NewStamp(stamp.Star, geom.Pt(50, 50), 20, "mauvish", 1)
	require.NoError(t, err)

	tests := []struct {
		name   string
		stroke state.Stroke
		is     error
	}{
		{"nil", nil, ErrInvalidStroke},
		{"zero stamp", state.Stamp{}, stamp.ErrUnknownKind},
		{"zero freehand", state.Freehand{}, state.ErrNoPoints},
		{"unknown color", badColor, render.ErrUnknownColor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.Append(tt.stroke)
			assert.ErrorIs(t, err, ErrInvalidStroke)
			assert.ErrorIs(t, err, tt.is)
			assert.Equal(t, 0, c.Snapshot().History)
		})
	}
	assert.Zero(t, changes)

	// the document keeps working afterwards
	require.NoError(t, c.PlaceStamp(stamp.Star, geom.Pt(50, 50)))
	assert.Equal(t, 1, c.Snapshot().History)
}

func TestLockReleasedAfterPanic(t *testing.T) {
	c := newCanvas(t, 1)
	assert.Panics(t, func() {
		_ = c.mutate(func() (bool, error) { panic("boom") })
	})

	done := make(chan Snapshot, 1)
	go func() { done <- c.Snapshot() }()
	select {
	case snap := <-done:
		assert.Equal(t, 0, snap.History)
	case <-time.After(time.Second):
		t.Fatal("canvas still locked")
	}
}
