// Package export writes a rendered drawing to files for download or upload
// by an external storage collaborator.
package export

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/jung-kurt/gofpdf"

	"CalmCanvas/internal/geom"
)

// Source is anything that can encode its raster as PNG.
type Source interface {
	EncodePNG(w io.Writer) error
	Size() geom.Size
}

const imageName = "drawing"

// WritePDF writes a single page PDF the size of the canvas, in points, with
// the PNG raster covering the page.
func WritePDF(w io.Writer, src Source) error {
	var raster bytes.Buffer
	if err := src.EncodePNG(&raster); err != nil {
		return fmt.Errorf("encode raster: %w", err)
	}

	size := src.Size()
	p := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: size.Width, Ht: size.Height},
	})
	p.SetMargins(0, 0, 0)
	p.SetAutoPageBreak(false, 0)
	p.AddPage()

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	p.RegisterImageOptionsReader(imageName, opts, &raster)
	p.ImageOptions(imageName, 0, 0, size.Width, size.Height, false, opts, 0, "")

	if err := p.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// WritePDFFile writes the PDF to path.
func WritePDFFile(path string, src Source) error {
	return writeFile(path, func(w io.Writer) error { return WritePDF(w, src) })
}

// WritePNGFile writes the lossless PNG raster to path.
func WritePNGFile(path string, src Source) error {
	return writeFile(path, src.EncodePNG)
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
