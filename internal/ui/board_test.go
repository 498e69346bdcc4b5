package ui

import (
	"strconv"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CalmCanvas/internal/engine"
	"CalmCanvas/internal/geom"
	"CalmCanvas/internal/stamp"
	"CalmCanvas/internal/state"
)

func newTestBoard(t *testing.T) (*BoardWidget, *engine.Canvas) {
	t.Helper()
	test.NewTempApp(t)
	doc := engine.New(engine.Options{
		Width:      100,
		Height:     100,
		Background: "white",
		Brush:      engine.Brush{Color: "black", Width: 3, Opacity: 1, StampSize: 20},
	})
	b := NewBoardWidget(doc, nil)
	b.Resize(fyne.NewSize(200, 200))
	return b, doc
}

func press(x, y float32) *desktop.MouseEvent {
	return &desktop.MouseEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(x, y)},
		Button:     desktop.MouseButtonPrimary,
	}
}

func drag(x, y float32) *fyne.DragEvent {
	return &fyne.DragEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(x, y)}}
}

func TestBoardDrawsScaledStroke(t *testing.T) {
	b, doc := newTestBoard(t)

	b.MouseDown(press(20, 20))
	b.Dragged(drag(100, 20))
	b.DragEnd()
	b.MouseUp(press(100, 20))

	strokes := doc.Strokes()
	require.Len(t, strokes, 1)
	f := strokes[0].(state.Freehand)
	assert.Equal(t, []geom.Point{{X: 10, Y: 10}, {X: 50, Y: 10}}, f.Points())
	assert.False(t, doc.Snapshot().Drawing)
}

func TestBoardStampTool(t *testing.T) {
	b, doc := newTestBoard(t)
	b.SetTool(StampTool(stamp.Star))

	b.MouseDown(press(100, 100))
	b.Dragged(drag(150, 150))
	b.MouseUp(press(150, 150))

	strokes := doc.Strokes()
	require.Len(t, strokes, 1)
	s := strokes[0].(state.Stamp)
	assert.Equal(t, stamp.Star, s.Kind())
	assert.Equal(t, geom.Pt(50, 50), s.Center())
}

func TestBoardBlobTool(t *testing.T) {
	b, doc := newTestBoard(t)
	b.SetTool(ToolBlob)
	b.MouseDown(press(40, 40))

	strokes := doc.Strokes()
	require.Len(t, strokes, 1)
	assert.Equal(t, 20.0, strokes[0].(state.Freehand).Width())
}

func TestBoardIgnoresSecondaryButton(t *testing.T) {
	b, doc := newTestBoard(t)
	ev := press(10, 10)
	ev.Button = desktop.MouseButtonSecondary
	b.MouseDown(ev)

	assert.False(t, doc.Snapshot().Drawing)
	assert.Empty(t, doc.Strokes())
}

func TestBoardRedrawFollowsDocument(t *testing.T) {
	b, doc := newTestBoard(t)
	require.NoError(t, doc.BlobFill(geom.Pt(50, 50), 10))

	img := b.image.Image
	r, g, _, _ := img.At(50, 50).RGBA()
	assert.Less(t, r, uint32(0x1000))
	assert.Less(t, g, uint32(0x1000))
}

func TestToolOptions(t *testing.T) {
	labels, tools := toolOptions()
	assert.Equal(t, []string{"Pen", "Heart", "Star", "Smile", "Blob"}, labels)
	assert.Equal(t, Tool("smile"), tools["Smile"])
	assert.Equal(t, ToolBlob, tools["Blob"])
}

func TestHexColor(t *testing.T) {
	assert.Equal(t, "#008080", hexColor(palette[2]))
}

func TestSymmetryOptionsCoverEveryOrder(t *testing.T) {
	opts := symmetryOptions(24)
	assert.Len(t, opts, 24)
	assert.Equal(t, "1", opts[0])
	assert.Contains(t, opts, "7")
	assert.Equal(t, "24", opts[23])

	b, doc := newTestBoard(t)
	doc.SetSymmetry(7)
	bar := NewToolbar(b, func(string) {})
	assert.NotNil(t, bar)
	assert.Contains(t, symmetryOptions(doc.MaxSymmetry()), strconv.Itoa(doc.Symmetry()))
}
