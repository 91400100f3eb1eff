package export

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	img.Set(1, 1, color.NRGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestWritePDF(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, WritePDF(&out, samplePNG(t, 40, 20), 40, 20))

	assert.True(t, bytes.HasPrefix(out.Bytes(), []byte("%PDF-")))
	assert.Contains(t, out.String(), "/Image")
}

func TestWritePDFRejectsEmpty(t *testing.T) {
	var out bytes.Buffer
	assert.ErrorIs(t, WritePDF(&out, nil, 10, 10), ErrEmptyImage)
	assert.ErrorIs(t, WritePDF(&out, samplePNG(t, 2, 2), 0, 2), ErrEmptyImage)
	assert.Zero(t, out.Len())
}

func TestWritePDFBadImage(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, WritePDF(&out, []byte("not a png"), 10, 10))
}
