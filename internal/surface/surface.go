// Package surface defines the raster target strokes are rendered onto and
// a software implementation of it backed by gogpu/gg.
package surface

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"
)

var (
	ErrInvalidSize       = errors.New("surface: invalid size")
	ErrUnsupportedFormat = errors.New("surface: unsupported export format")
	ErrInvalidLineCap    = errors.New("surface: invalid line cap")
)

// LineCap is the shape drawn at both ends of a stroked segment.
type LineCap int

const (
	CapRound LineCap = iota
	CapSquare
)

func (c LineCap) String() string {
	switch c {
	case CapRound:
		return "round"
	case CapSquare:
		return "square"
	}
	return fmt.Sprintf("LineCap(%d)", int(c))
}

// Valid reports whether c is one of the supported caps.
func (c LineCap) Valid() bool {
	return c == CapRound || c == CapSquare
}

// ParseLineCap accepts "round" or "square", case-insensitively.
func ParseLineCap(s string) (LineCap, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "round":
		return CapRound, nil
	case "square":
		return CapSquare, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidLineCap, s)
}

// CompositeMode selects how stroked pixels combine with the existing raster.
type CompositeMode int

const (
	// CompositeNormal paints source over destination.
	CompositeNormal CompositeMode = iota
	// CompositeErase removes destination coverage where the source paints
	// (destination-out).
	CompositeErase
)

func (m CompositeMode) String() string {
	if m == CompositeErase {
		return "erase"
	}
	return "normal"
}

// Format is an encoding understood by Export.
type Format int

const (
	FormatPNG Format = iota
	FormatJPEG
	FormatPDF
)

func (f Format) String() string {
	switch f {
	case FormatPNG:
		return "png"
	case FormatJPEG:
		return "jpeg"
	case FormatPDF:
		return "pdf"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// Ext returns the file extension for f including the dot.
func (f Format) Ext() string {
	switch f {
	case FormatJPEG:
		return ".jpg"
	case FormatPDF:
		return ".pdf"
	}
	return ".png"
}

// FormatFromName picks a format from a file name's extension, defaulting to PNG.
func FormatFromName(name string) Format {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".jpg"), strings.HasSuffix(lower, ".jpeg"):
		return FormatJPEG
	case strings.HasSuffix(lower, ".pdf"):
		return FormatPDF
	}
	return FormatPNG
}

// PixelBuffer is a raw copy of a surface's pixels: premultiplied RGBA,
// four bytes per pixel, rows packed without padding.
type PixelBuffer struct {
	Width  int
	Height int
	Pix    []uint8
}

// Surface is the raster target the drawing engine renders onto. Path and
// style state follow the immediate-mode canvas model: BeginPath resets the
// path, Stroke paints it with the current style and leaves it in place.
type Surface interface {
	Width() int
	Height() int
	// SetSize changes the dimensions. Existing content is not preserved.
	SetSize(width, height int) error

	BeginPath()
	MoveTo(x, y float64)
	LineTo(x, y float64)
	SetLineWidth(width float64)
	SetLineCap(lineCap LineCap)
	SetStrokeColor(c color.Color)
	Stroke() error

	ClearRect(x, y, width, height int)
	PixelBuffer() *PixelBuffer
	PutPixelBuffer(buf *PixelBuffer, x, y int)
	// DrawBitmap scales img into the given region.
	DrawBitmap(img image.Image, x, y, width, height int)

	SetCompositeMode(mode CompositeMode)
	CompositeMode() CompositeMode

	Export(format Format) ([]byte, error)
	// Image returns a snapshot of the current raster for display.
	Image() image.Image
}
