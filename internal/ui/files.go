package ui

import (
	"context"
	"time"

	"FreehandBoard/internal/engine"
	"FreehandBoard/internal/surface"

	"fyne.io/fyne/v2"
)

// SaveToFile encodes the board in the format the file name asks for and
// closes the writer.
func (b *BoardWidget) SaveToFile(writer fyne.URIWriteCloser) {
	defer func() {
		if err := writer.Close(); err != nil {
			b.log.Warn("closing writer failed", "err", err)
		}
	}()

	name := writer.URI().Name()
	format := surface.FormatFromName(name)
	if err := b.engine.SaveImage(writer, format); err != nil {
		b.log.Error("save failed", "file", name, "err", err)
		b.SetStatusf("Error saving %s", name)
		return
	}
	b.SetStatusf("Saved %s", name)
}

// LoadFromFile decodes an image and draws it stretched over the board. It
// may run off the UI goroutine; a decode failure leaves the board as it was.
func (b *BoardWidget) LoadFromFile(reader fyne.URIReadCloser) {
	defer func() {
		if err := reader.Close(); err != nil {
			b.log.Warn("closing reader failed", "err", err)
		}
	}()

	name := reader.URI().Name()
	b.SetStatusf("Loading %s...", name)
	img, err := engine.DecodeImage(reader)
	if err != nil {
		b.log.Warn("load failed", "file", name, "err", err)
		b.SetStatusf("Could not read %s as an image", name)
		return
	}
	b.engine.ApplyImage(img)
	b.SetStatusf("Loaded %s", name)
}

const fetchTimeout = 30 * time.Second

// LoadFromURL fetches an image from an http(s) URL, file URL or path and
// draws it like LoadFromFile. It blocks; the toolbar runs it on its own
// goroutine.
func (b *BoardWidget) LoadFromURL(ctx context.Context, src string) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	b.SetStatusf("Loading %s...", src)
	img, err := engine.FetchImage(ctx, src)
	if err != nil {
		b.log.Warn("load failed", "src", src, "err", err)
		b.SetStatusf("Could not load %s", src)
		return
	}
	b.engine.ApplyImage(img)
	b.SetStatusf("Loaded %s", src)
}
