package ui

import (
	"errors"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"CalmCanvas/internal/engine"
	"CalmCanvas/internal/geom"
	"CalmCanvas/internal/logging"
	"CalmCanvas/internal/stamp"
)

// Tool is what a press on the board does.
type Tool string

const (
	ToolPen  Tool = "pen"
	ToolBlob Tool = "blob"
)

// StampTool returns the tool that places stamps of kind.
func StampTool(kind stamp.Kind) Tool {
	return Tool(kind)
}

// BoardWidget shows the canvas raster stretched over the widget and feeds
// mouse input back into the engine.
type BoardWidget struct {
	widget.BaseWidget

	doc   *engine.Canvas
	image *canvas.Image
	log   *zap.Logger

	tool    Tool
	drawing bool

	// OnStatus receives short messages for the status bar.
	OnStatus func(string)
}

var _ fyne.Widget = (*BoardWidget)(nil)
var _ fyne.Draggable = (*BoardWidget)(nil)
var _ desktop.Mouseable = (*BoardWidget)(nil)

func NewBoardWidget(doc *engine.Canvas, log *zap.Logger) *BoardWidget {
	b := &BoardWidget{
		doc:  doc,
		log:  logging.OrNop(log).Named("board"),
		tool: ToolPen,
	}
	b.image = canvas.NewImageFromImage(doc.Image())
	b.image.FillMode = canvas.ImageFillStretch
	b.image.ScaleMode = canvas.ImageScaleSmooth
	b.image.SetMinSize(fyne.NewSize(300, 300))
	b.ExtendBaseWidget(b)

	doc.OnChange = func() {
		fyne.Do(b.Redraw)
	}
	return b
}

// Redraw copies the current raster into the widget.
func (b *BoardWidget) Redraw() {
	b.image.Image = b.doc.Image()
	b.image.Refresh()
}

func (b *BoardWidget) SetTool(t Tool) {
	b.tool = t
}

func (b *BoardWidget) Tool() Tool {
	return b.tool
}

func (b *BoardWidget) displayed() geom.Rect {
	size := b.Size()
	return geom.Rect{Width: float64(size.Width), Height: float64(size.Height)}
}

func toPoint(p fyne.Position) geom.Point {
	return geom.Pt(float64(p.X), float64(p.Y))
}

func (b *BoardWidget) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	at := toPoint(e.Position)

	var err error
	switch b.tool {
	case ToolPen:
		b.drawing = true
		err = b.doc.PointerDownAt(at, b.displayed())
	case ToolBlob:
		err = b.doc.BlobFillAt(at, b.displayed(), b.doc.Brush().StampSize/2)
	default:
		var kind stamp.Kind
		kind, err = stamp.ParseKind(string(b.tool))
		if err == nil {
			err = b.doc.PlaceStampAt(kind, at, b.displayed())
		}
	}
	b.report("press", err)
}

func (b *BoardWidget) Dragged(e *fyne.DragEvent) {
	if !b.drawing {
		return
	}
	b.report("drag", b.doc.PointerMoveAt(toPoint(e.Position), b.displayed()))
}

// DragEnd and MouseUp both finish the stroke; whichever arrives second finds
// nothing in progress.
func (b *BoardWidget) DragEnd() {
	b.finish()
}

func (b *BoardWidget) MouseUp(e *desktop.MouseEvent) {
	if e.Button == desktop.MouseButtonPrimary {
		b.finish()
	}
}

func (b *BoardWidget) finish() {
	if !b.drawing {
		return
	}
	b.drawing = false
	if err := b.doc.PointerUp(); err != nil && !errors.Is(err, engine.ErrNotDrawing) {
		b.report("release", err)
	}
}

func (b *BoardWidget) report(action string, err error) {
	if err == nil {
		return
	}
	b.log.Warn("input failed", zap.String("action", action), zap.Error(err))
	b.status(err.Error())
}

func (b *BoardWidget) status(text string) {
	if b.OnStatus != nil {
		b.OnStatus(text)
	}
}

func (b *BoardWidget) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(b.image)
}
