package ui

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"golang.org/x/image/colornames"

	"CalmCanvas/internal/stamp"
)

// palette is the set of calm colors offered as swatches.
var palette = []color.RGBA{
	colornames.Black,
	colornames.Slategray,
	colornames.Teal,
	colornames.Cornflowerblue,
	colornames.Mediumpurple,
	colornames.Palevioletred,
	colornames.Coral,
	colornames.Goldenrod,
	colornames.Olivedrab,
	colornames.White,
}

func hexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// --- Custom Widget for Color Swatches ---
type colorSwatch struct {
	widget.BaseWidget
	Color    color.RGBA
	OnTapped func(color.RGBA)
}

func newColorSwatch(c color.RGBA, tapped func(color.RGBA)) *colorSwatch {
	s := &colorSwatch{Color: c, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(s.Color)
	rect.SetMinSize(fyne.NewSize(28, 28))

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1

	return widget.NewSimpleRenderer(container.NewStack(rect, border))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Color)
	}
}

func kindLabel(k stamp.Kind) string {
	s := string(k)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// toolOptions maps the tool picker labels to tools.
func toolOptions() ([]string, map[string]Tool) {
	labels := []string{"Pen"}
	tools := map[string]Tool{"Pen": ToolPen}
	for _, k := range stamp.Kinds {
		label := kindLabel(k)
		labels = append(labels, label)
		tools[label] = StampTool(k)
	}
	labels = append(labels, "Blob")
	tools["Blob"] = ToolBlob
	return labels, tools
}

// symmetryOptions lists every order from 1 to max.
func symmetryOptions(max int) []string {
	orders := make([]string, 0, max)
	for n := 1; n <= max; n++ {
		orders = append(orders, strconv.Itoa(n))
	}
	return orders
}

// NewToolbar builds the controls above the board. save is called with
// "png" or "pdf".
func NewToolbar(board *BoardWidget, save func(format string)) fyne.CanvasObject {
	doc := board.doc
	brush := doc.Brush()

	labels, tools := toolOptions()
	toolSelect := widget.NewSelect(labels, func(label string) {
		board.SetTool(tools[label])
	})
	toolSelect.SetSelected("Pen")

	onColorTapped := func(c color.RGBA) {
		board.report("color", doc.SetColor(hexColor(c)))
	}
	colorBox := container.NewHBox()
	for _, c := range palette {
		colorBox.Add(newColorSwatch(c, onColorTapped))
	}

	widthSlider := widget.NewSlider(1, 50)
	widthSlider.SetValue(brush.Width)
	widthSlider.OnChanged = doc.SetWidth
	sizeSlider := widget.NewSlider(12, 200)
	sizeSlider.SetValue(brush.StampSize)
	sizeSlider.OnChanged = doc.SetStampSize
	sliders := container.New(layout.NewGridWrapLayout(fyne.NewSize(120, 35)), widthSlider, sizeSlider)

	symmetrySelect := widget.NewSelect(symmetryOptions(doc.MaxSymmetry()), func(s string) {
		n, err := strconv.Atoi(s)
		if err == nil {
			doc.SetSymmetry(n)
		}
	})
	symmetrySelect.SetSelected(strconv.Itoa(doc.Symmetry()))

	actions := widget.NewToolbar(
		widget.NewToolbarAction(theme.ContentUndoIcon(), func() { board.report("undo", doc.Undo()) }),
		widget.NewToolbarAction(theme.ContentRedoIcon(), func() { board.report("redo", doc.Redo()) }),
		widget.NewToolbarAction(theme.ContentClearIcon(), func() { board.report("clear", doc.Clear()) }),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.FileImageIcon(), func() { save("png") }),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), func() { save("pdf") }),
	)

	return container.NewHBox(
		widget.NewLabel("Tool:"),
		toolSelect,
		widget.NewSeparator(),
		colorBox,
		widget.NewSeparator(),
		widget.NewLabel("Width / Size:"),
		sliders,
		widget.NewLabel("Symmetry:"),
		symmetrySelect,
		layout.NewSpacer(),
		actions,
	)
}
