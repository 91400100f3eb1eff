package surface

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func alphaAt(buf *PixelBuffer, x, y int) uint8 {
	return buf.Pix[(y*buf.Width+x)*4+3]
}

func strokeLine(t *testing.T, r *Raster, x1, y1, x2, y2 float64) {
	t.Helper()
	r.BeginPath()
	r.MoveTo(x1, y1)
	r.LineTo(x2, y2)
	require.NoError(t, r.Stroke())
}

func TestNewRasterRejectsEmptySize(t *testing.T) {
	_, err := NewRaster(0, 10)
	assert.ErrorIs(t, err, ErrInvalidSize)

	_, err = NewRaster(10, -1)
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestRasterStrokePaintsAlongSegment(t *testing.T) {
	r, err := NewRaster(100, 100)
	require.NoError(t, err)

	r.SetLineWidth(10)
	r.SetStrokeColor(color.Black)
	strokeLine(t, r, 10, 50, 90, 50)

	buf := r.PixelBuffer()
	assert.Equal(t, uint8(255), alphaAt(buf, 50, 50))
	assert.Equal(t, uint8(0), alphaAt(buf, 50, 10), "far from the line")
}

func TestRasterEraseRemovesCoverage(t *testing.T) {
	r, err := NewRaster(100, 100)
	require.NoError(t, err)

	r.SetLineWidth(20)
	strokeLine(t, r, 0, 50, 100, 50)
	require.Equal(t, uint8(255), alphaAt(r.PixelBuffer(), 50, 50))

	r.SetCompositeMode(CompositeErase)
	r.SetLineWidth(10)
	strokeLine(t, r, 50, 0, 50, 100)

	buf := r.PixelBuffer()
	assert.Equal(t, uint8(0), alphaAt(buf, 50, 50), "erased crossing")
	assert.Equal(t, uint8(255), alphaAt(buf, 20, 50), "untouched part of the first line")
	assert.Equal(t, CompositeErase, r.CompositeMode())
}

func TestRasterStrokeWithoutPathIsNoop(t *testing.T) {
	r, err := NewRaster(10, 10)
	require.NoError(t, err)

	r.BeginPath()
	require.NoError(t, r.Stroke())
	for _, b := range r.PixelBuffer().Pix {
		require.Zero(t, b)
	}
}

func TestRasterPixelBufferRoundTrip(t *testing.T) {
	r, err := NewRaster(40, 30)
	require.NoError(t, err)
	r.SetLineWidth(6)
	strokeLine(t, r, 0, 0, 40, 30)

	before := r.PixelBuffer()
	r.ClearRect(0, 0, 40, 30)
	r.PutPixelBuffer(before, 0, 0)

	assert.Equal(t, before.Pix, r.PixelBuffer().Pix)
}

func TestRasterPutPixelBufferClips(t *testing.T) {
	r, err := NewRaster(4, 4)
	require.NoError(t, err)

	src := &PixelBuffer{Width: 3, Height: 3, Pix: bytes.Repeat([]byte{1, 2, 3, 255}, 9)}
	r.PutPixelBuffer(src, 2, 2)

	buf := r.PixelBuffer()
	assert.Equal(t, uint8(255), alphaAt(buf, 2, 2))
	assert.Equal(t, uint8(255), alphaAt(buf, 3, 3))
	assert.Equal(t, uint8(0), alphaAt(buf, 1, 1))
}

func TestRasterClearRectPartial(t *testing.T) {
	r, err := NewRaster(10, 10)
	require.NoError(t, err)
	r.PutPixelBuffer(&PixelBuffer{Width: 10, Height: 10, Pix: bytes.Repeat([]byte{0, 0, 0, 255}, 100)}, 0, 0)

	r.ClearRect(0, 0, 5, 10)

	buf := r.PixelBuffer()
	assert.Equal(t, uint8(0), alphaAt(buf, 4, 9))
	assert.Equal(t, uint8(255), alphaAt(buf, 5, 0))
}

func TestRasterSetSizeDropsContent(t *testing.T) {
	r, err := NewRaster(20, 20)
	require.NoError(t, err)
	r.SetLineWidth(8)
	strokeLine(t, r, 0, 10, 20, 10)

	require.NoError(t, r.SetSize(30, 15))
	assert.Equal(t, 30, r.Width())
	assert.Equal(t, 15, r.Height())
	for _, b := range r.PixelBuffer().Pix {
		require.Zero(t, b)
	}

	assert.ErrorIs(t, r.SetSize(0, 15), ErrInvalidSize)
}

func TestRasterDrawBitmapScalesIntoRegion(t *testing.T) {
	r, err := NewRaster(40, 40)
	require.NoError(t, err)

	src := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	for i := 0; i < len(src.Pix); i += 4 {
		src.Pix[i], src.Pix[i+3] = 255, 255
	}
	r.DrawBitmap(src, 0, 0, 20, 20)

	buf := r.PixelBuffer()
	i := (10*buf.Width + 10) * 4
	assert.Equal(t, []uint8{255, 0, 0, 255}, buf.Pix[i:i+4])
	assert.Equal(t, uint8(0), alphaAt(buf, 30, 30))
}

func TestRasterExportPNG(t *testing.T) {
	r, err := NewRaster(25, 15)
	require.NoError(t, err)

	data, err := r.Export(FormatPNG)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 25, 15), img.Bounds())

	_, err = r.Export(FormatPDF)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestParseLineCap(t *testing.T) {
	tests := []struct {
		in      string
		want    LineCap
		wantErr bool
	}{
		{"round", CapRound, false},
		{"SQUARE", CapSquare, false},
		{" square ", CapSquare, false},
		{"butt", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLineCap(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidLineCap)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatFromName(t *testing.T) {
	assert.Equal(t, FormatPNG, FormatFromName("myImage.png"))
	assert.Equal(t, FormatJPEG, FormatFromName("photo.JPEG"))
	assert.Equal(t, FormatPDF, FormatFromName("board.pdf"))
	assert.Equal(t, FormatPNG, FormatFromName("noext"))
}
