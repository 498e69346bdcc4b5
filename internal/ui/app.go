package ui

import (
	"fmt"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"CalmCanvas/internal/engine"
	"CalmCanvas/internal/export"
	"CalmCanvas/internal/logging"
)

// RunApp opens the drawing window and blocks until it is closed. shareLink,
// when set, is shown so a tablet can connect to the remote input bridge.
func RunApp(doc *engine.Canvas, shareLink string, log *zap.Logger) {
	log = logging.OrNop(log).Named("ui")

	myApp := app.NewWithID("app.calmcanvas")
	myWindow := myApp.NewWindow("CalmCanvas")
	size := doc.Size()
	myWindow.Resize(fyne.NewSize(float32(size.Width), float32(size.Height)+80))

	status := widget.NewLabel("Ready")
	if shareLink != "" {
		status.SetText("Remote drawing: " + shareLink)
	}

	board := NewBoardWidget(doc, log)
	board.OnStatus = status.SetText

	save := func(format string) {
		d := dialog.NewFileSave(func(w fyne.URIWriteCloser, err error) {
			if err != nil {
				dialog.ShowError(err, myWindow)
				return
			}
			if w == nil {
				return // cancelled
			}
			if err := saveTo(w, doc, format); err != nil {
				log.Error("save failed", zap.String("uri", w.URI().String()), zap.Error(err))
				dialog.ShowError(err, myWindow)
				return
			}
			status.SetText("Saved " + w.URI().Name())
		}, myWindow)
		d.SetFileName("drawing." + format)
		d.SetFilter(storage.NewExtensionFileFilter([]string{"." + format}))
		d.Show()
	}

	toolbar := NewToolbar(board, save)
	content := container.NewBorder(toolbar, status, nil, nil, board)

	myWindow.SetContent(content)
	myWindow.ShowAndRun()
}

// saveTo writes the drawing to w as PNG or PDF and closes it.
func saveTo(w fyne.URIWriteCloser, doc *engine.Canvas, format string) error {
	var err error
	switch strings.ToLower(format) {
	case "pdf":
		err = export.WritePDF(w, doc)
	case "png":
		err = doc.EncodePNG(w)
	default:
		err = fmt.Errorf("unsupported format %q", format)
	}
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	return err
}
