package engine

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"FreehandBoard/internal/export"
	"FreehandBoard/internal/surface"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DefaultFileName is the suggested name for a saved drawing.
const DefaultFileName = "myImage.png"

// maxImageBytes caps what FetchImage will read from a remote source.
const maxImageBytes = 64 << 20

// ExportImage encodes the current raster. PDF wraps the PNG encoding in a
// page of the same size.
func (e *Engine) ExportImage(format surface.Format) ([]byte, error) {
	e.mu.Lock()
	w, h := e.surface.Width(), e.surface.Height()
	if format != surface.FormatPDF {
		data, err := e.surface.Export(format)
		e.mu.Unlock()
		return data, err
	}
	data, err := e.surface.Export(surface.FormatPNG)
	e.mu.Unlock()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := export.WritePDF(&buf, data, w, h); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SaveImage writes the encoded raster to w.
func (e *Engine) SaveImage(w io.Writer, format surface.Format) error {
	data, err := e.ExportImage(format)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write image: %w", err)
	}
	e.log.Info("image saved", "format", format, "bytes", len(data))
	return nil
}

// Snapshot is the PNG encoding of the raster, used to seed late joiners.
func (e *Engine) Snapshot() ([]byte, error) {
	return e.ExportImage(surface.FormatPNG)
}

// DecodeImage decodes any registered raster format. It touches no engine
// state, so it can run off the UI goroutine.
func DecodeImage(r io.Reader) (image.Image, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if b := img.Bounds(); b.Empty() {
		return nil, fmt.Errorf("%w: %s image has no pixels", ErrDecode, format)
	}
	return img, nil
}

// ApplyImage stretches img over the whole surface, drawing over what is
// already there.
func (e *Engine) ApplyImage(img image.Image) {
	if img == nil {
		return
	}
	e.mu.Lock()
	w, h := e.surface.Width(), e.surface.Height()
	e.surface.DrawBitmap(img, 0, 0, w, h)
	e.mu.Unlock()

	e.log.Info("image loaded", "src", img.Bounds().Size(), "dst", image.Pt(w, h))
	e.changed()
}

// LoadImage decodes r and applies it. A decode failure leaves the surface
// untouched.
func (e *Engine) LoadImage(r io.Reader) error {
	img, err := DecodeImage(r)
	if err != nil {
		return err
	}
	e.ApplyImage(img)
	return nil
}

// ApplySnapshot replaces the raster with a peer's snapshot, drawn at its own
// size from the origin.
func (e *Engine) ApplySnapshot(data []byte) error {
	img, err := DecodeImage(bytes.NewReader(data))
	if err != nil {
		return err
	}
	b := img.Bounds()
	e.mu.Lock()
	e.surface.ClearRect(0, 0, e.surface.Width(), e.surface.Height())
	e.surface.DrawBitmap(img, 0, 0, b.Dx(), b.Dy())
	e.mu.Unlock()
	e.changed()
	return nil
}

// FetchImage decodes an image from an http(s) URL, a file:// URL or a local
// path.
func FetchImage(ctx context.Context, src string) (image.Image, error) {
	u, err := url.Parse(src)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// Windows drive letters parse as a one-letter scheme.
		return openImage(src)
	}
	switch strings.ToLower(u.Scheme) {
	case "file":
		return openImage(u.Path)
	case "http", "https":
	default:
		return nil, fmt.Errorf("%w: unsupported source %q", ErrDecode, src)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", src, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: %s", src, resp.Status)
	}
	return DecodeImage(io.LimitReader(resp.Body, maxImageBytes))
}

func openImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()
	return DecodeImage(f)
}
