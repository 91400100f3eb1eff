package surface

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/gogpu/gg"
)

const jpegQuality = 90

type pathOp struct {
	move bool
	x, y float64
}

// Raster is a Surface rendered in software by gogpu/gg. The pixmap stores
// premultiplied RGBA, which is also the PixelBuffer layout.
type Raster struct {
	dc      *gg.Context
	scratch *gg.Context // coverage target for erase strokes

	path      []pathOp
	lineWidth float64
	lineCap   LineCap
	color     color.Color
	mode      CompositeMode
}

var _ Surface = (*Raster)(nil)

// NewRaster creates a transparent raster of the given size.
func NewRaster(width, height int) (*Raster, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	return &Raster{
		dc:        gg.NewContext(width, height),
		lineWidth: 1,
		lineCap:   CapRound,
		color:     color.Black,
	}, nil
}

func (r *Raster) Width() int  { return r.dc.Width() }
func (r *Raster) Height() int { return r.dc.Height() }

func (r *Raster) SetSize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	if width == r.dc.Width() && height == r.dc.Height() {
		// gg keeps the pixmap on a same-size resize; match a real reallocation.
		r.dc.Clear()
		return nil
	}
	if err := r.dc.Resize(width, height); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSize, err)
	}
	r.scratch = nil
	return nil
}

func (r *Raster) BeginPath() {
	r.path = r.path[:0]
}

func (r *Raster) MoveTo(x, y float64) {
	r.path = append(r.path, pathOp{move: true, x: x, y: y})
}

func (r *Raster) LineTo(x, y float64) {
	r.path = append(r.path, pathOp{x: x, y: y})
}

func (r *Raster) SetLineWidth(width float64)   { r.lineWidth = width }
func (r *Raster) SetLineCap(lineCap LineCap)   { r.lineCap = lineCap }
func (r *Raster) SetStrokeColor(c color.Color) { r.color = c }

func (r *Raster) SetCompositeMode(mode CompositeMode) { r.mode = mode }
func (r *Raster) CompositeMode() CompositeMode        { return r.mode }

func (r *Raster) Stroke() error {
	if len(r.path) == 0 {
		return nil
	}
	if r.mode == CompositeErase {
		return r.strokeErase()
	}
	r.trace(r.dc, r.color)
	return r.dc.Stroke()
}

// trace replays the recorded path into dc with the current style.
func (r *Raster) trace(dc *gg.Context, c color.Color) {
	dc.ClearPath()
	dc.SetColor(c)
	dc.SetLineWidth(r.lineWidth)
	if r.lineCap == CapSquare {
		dc.SetLineCap(gg.LineCapSquare)
	} else {
		dc.SetLineCap(gg.LineCapRound)
	}
	for _, op := range r.path {
		if op.move {
			dc.MoveTo(op.x, op.y)
		} else {
			dc.LineTo(op.x, op.y)
		}
	}
}

// strokeErase renders the path coverage into the scratch context and removes
// that much alpha from the destination.
func (r *Raster) strokeErase() error {
	w, h := r.dc.Width(), r.dc.Height()
	if r.scratch == nil || r.scratch.Width() != w || r.scratch.Height() != h {
		r.scratch = gg.NewContext(w, h)
	} else {
		r.scratch.Clear()
	}
	r.trace(r.scratch, color.White)
	if err := r.scratch.Stroke(); err != nil {
		return fmt.Errorf("erase stroke: %w", err)
	}

	pm := r.dc.ResizeTarget()
	dst := pm.Data()
	cov := r.scratch.ResizeTarget().Data()
	for i := 0; i+3 < len(dst) && i+3 < len(cov); i += 4 {
		c := cov[i+3]
		if c == 0 {
			continue
		}
		keep := uint32(255 - c)
		for k := 0; k < 4; k++ {
			dst[i+k] = uint8(uint32(dst[i+k]) * keep / 255)
		}
	}
	pm.NotifyPixelsChanged()
	return nil
}

func (r *Raster) ClearRect(x, y, width, height int) {
	rect := image.Rect(x, y, x+width, y+height).Intersect(r.bounds())
	if rect.Empty() {
		return
	}
	if rect == r.bounds() {
		r.dc.Clear()
		return
	}
	r.dc.ResizeTarget().FillRect(rect, 0, 0, 0, 0)
}

func (r *Raster) PixelBuffer() *PixelBuffer {
	_ = r.dc.FlushGPU()
	data := r.dc.ResizeTarget().Data()
	pix := make([]uint8, len(data))
	copy(pix, data)
	return &PixelBuffer{Width: r.dc.Width(), Height: r.dc.Height(), Pix: pix}
}

// PutPixelBuffer writes buf with its top-left corner at (x, y), replacing
// the destination pixels. Rows and columns outside the surface are clipped.
func (r *Raster) PutPixelBuffer(buf *PixelBuffer, x, y int) {
	if buf == nil {
		return
	}
	dstRect := image.Rect(x, y, x+buf.Width, y+buf.Height).Intersect(r.bounds())
	if dstRect.Empty() {
		return
	}
	pm := r.dc.ResizeTarget()
	data := pm.Data()
	dstStride := r.dc.Width() * 4
	srcStride := buf.Width * 4
	n := dstRect.Dx() * 4
	for row := dstRect.Min.Y; row < dstRect.Max.Y; row++ {
		src := (row-y)*srcStride + (dstRect.Min.X-x)*4
		dst := row*dstStride + dstRect.Min.X*4
		copy(data[dst:dst+n], buf.Pix[src:src+n])
	}
	pm.NotifyPixelsChanged()
}

func (r *Raster) DrawBitmap(img image.Image, x, y, width, height int) {
	if img == nil || width <= 0 || height <= 0 {
		return
	}
	r.dc.DrawImageEx(gg.ImageBufFromImage(img), gg.DrawImageOptions{
		X:         float64(x),
		Y:         float64(y),
		DstWidth:  float64(width),
		DstHeight: float64(height),
	})
}

func (r *Raster) Export(format Format) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case FormatPNG:
		if err := r.dc.EncodePNG(&buf); err != nil {
			return nil, fmt.Errorf("encode png: %w", err)
		}
	case FormatJPEG:
		if err := r.dc.EncodeJPEG(&buf, jpegQuality); err != nil {
			return nil, fmt.Errorf("encode jpeg: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	return buf.Bytes(), nil
}

func (r *Raster) Image() image.Image {
	_ = r.dc.FlushGPU()
	return r.dc.Image()
}

// Close releases the gg contexts.
func (r *Raster) Close() error {
	if r.scratch != nil {
		_ = r.scratch.Close()
	}
	return r.dc.Close()
}

func (r *Raster) bounds() image.Rectangle {
	return image.Rect(0, 0, r.dc.Width(), r.dc.Height())
}
