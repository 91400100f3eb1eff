package export

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
)

var ErrEmptyImage = errors.New("export: empty image")

const imageName = "board"

// WritePDF writes a single-page PDF whose page is exactly the size of the
// PNG raster, one point per pixel.
func WritePDF(w io.Writer, pngData []byte, width, height int) error {
	if len(pngData) == 0 || width <= 0 || height <= 0 {
		return ErrEmptyImage
	}
	wd, ht := float64(width), float64(height)
	orientation := "P"
	if wd > ht {
		orientation = "L"
	}

	p := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: orientation,
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: wd, Ht: ht},
	})
	p.SetMargins(0, 0, 0)
	p.SetAutoPageBreak(false, 0)
	p.AddPage()

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	p.RegisterImageOptionsReader(imageName, opts, bytes.NewReader(pngData))
	p.ImageOptions(imageName, 0, 0, wd, ht, false, opts, 0, "")
	if err := p.Error(); err != nil {
		return fmt.Errorf("build pdf: %w", err)
	}
	return p.Output(w)
}
