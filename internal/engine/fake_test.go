package engine

import (
	"image"
	"image/color"

	"FreehandBoard/internal/surface"
)

type strokeCall struct {
	from, to  [2]float64
	width     float64
	lineCap   surface.LineCap
	color     color.Color
	composite surface.CompositeMode
}

type bitmapCall struct {
	x, y, w, h int
}

// recorder is a Surface that records what was asked of it.
type recorder struct {
	w, h      int
	lineWidth float64
	lineCap   surface.LineCap
	color     color.Color
	mode      surface.CompositeMode
	path      [][2]float64

	strokes []strokeCall
	clears  int
	bitmaps []bitmapCall
	puts    int
}

var _ surface.Surface = (*recorder)(nil)

func newRecorder(w, h int) *recorder {
	return &recorder{w: w, h: h}
}

func (r *recorder) Width() int  { return r.w }
func (r *recorder) Height() int { return r.h }

func (r *recorder) SetSize(w, h int) error {
	if w <= 0 || h <= 0 {
		return surface.ErrInvalidSize
	}
	r.w, r.h = w, h
	return nil
}

func (r *recorder) BeginPath()          { r.path = nil }
func (r *recorder) MoveTo(x, y float64) { r.path = append(r.path, [2]float64{x, y}) }
func (r *recorder) LineTo(x, y float64) { r.path = append(r.path, [2]float64{x, y}) }

func (r *recorder) SetLineWidth(w float64)                   { r.lineWidth = w }
func (r *recorder) SetLineCap(c surface.LineCap)             { r.lineCap = c }
func (r *recorder) SetStrokeColor(c color.Color)             { r.color = c }
func (r *recorder) SetCompositeMode(m surface.CompositeMode) { r.mode = m }
func (r *recorder) CompositeMode() surface.CompositeMode     { return r.mode }

func (r *recorder) Stroke() error {
	if len(r.path) < 2 {
		return nil
	}
	r.strokes = append(r.strokes, strokeCall{
		from:      r.path[0],
		to:        r.path[len(r.path)-1],
		width:     r.lineWidth,
		lineCap:   r.lineCap,
		color:     r.color,
		composite: r.mode,
	})
	return nil
}

func (r *recorder) ClearRect(x, y, w, h int) { r.clears++ }

func (r *recorder) PixelBuffer() *surface.PixelBuffer {
	return &surface.PixelBuffer{Width: r.w, Height: r.h, Pix: make([]uint8, r.w*r.h*4)}
}

func (r *recorder) PutPixelBuffer(buf *surface.PixelBuffer, x, y int) { r.puts++ }

func (r *recorder) DrawBitmap(img image.Image, x, y, w, h int) {
	r.bitmaps = append(r.bitmaps, bitmapCall{x, y, w, h})
}

func (r *recorder) Export(f surface.Format) ([]byte, error) {
	return nil, surface.ErrUnsupportedFormat
}

func (r *recorder) Image() image.Image {
	return image.NewRGBA(image.Rect(0, 0, r.w, r.h))
}
