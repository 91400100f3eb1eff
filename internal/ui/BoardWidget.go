package ui

import (
	"fmt"
	"image/color"
	"log/slog"

	"FreehandBoard/internal/engine"
	"FreehandBoard/internal/input"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/driver/mobile"
	"fyne.io/fyne/v2/widget"
)

// BoardWidget shows the engine's raster and feeds pointer input back into it.
// The raster follows the widget size one unit to one pixel.
type BoardWidget struct {
	widget.BaseWidget

	engine  *engine.Engine
	adapter *input.Adapter
	log     *slog.Logger

	image     *canvas.Image
	statusBar *widget.Label
	touching  bool

	// OnStatus mirrors status messages, mainly for tests.
	OnStatus func(text string)
}

var _ fyne.Widget = (*BoardWidget)(nil)
var _ fyne.Draggable = (*BoardWidget)(nil)
var _ desktop.Mouseable = (*BoardWidget)(nil)
var _ desktop.Hoverable = (*BoardWidget)(nil)
var _ mobile.Touchable = (*BoardWidget)(nil)

func NewBoardWidget(e *engine.Engine, logger *slog.Logger) *BoardWidget {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	b := &BoardWidget{
		engine:    e,
		log:       logger,
		statusBar: widget.NewLabel("Ready"),
	}
	b.adapter = input.NewAdapter(e, b.origin)
	b.image = canvas.NewImageFromImage(e.Image())
	b.image.FillMode = canvas.ImageFillStretch
	b.image.ScaleMode = canvas.ImageScalePixels

	e.OnChange = func() { do(b.refreshImage) }
	b.ExtendBaseWidget(b)
	return b
}

// Engine returns the engine behind the board.
func (b *BoardWidget) Engine() *engine.Engine { return b.engine }

// StatusBar is the label status messages are written to.
func (b *BoardWidget) StatusBar() *widget.Label { return b.statusBar }

// SetStatus can be called from any goroutine.
func (b *BoardWidget) SetStatus(text string) {
	b.log.Debug("status", "text", text)
	do(func() { b.statusBar.SetText(text) })
	if b.OnStatus != nil {
		b.OnStatus(text)
	}
}

func (b *BoardWidget) SetStatusf(format string, args ...any) {
	b.SetStatus(fmt.Sprintf(format, args...))
}

// do runs fn on the UI goroutine. Before the app exists there is nothing on
// screen to update, and the first layout picks up the current state.
func do(fn func()) {
	if fyne.CurrentApp() == nil {
		return
	}
	fyne.Do(fn)
}

func (b *BoardWidget) refreshImage() {
	b.image.Image = b.engine.Image()
	b.image.Refresh()
}

// origin is the board's top-left corner in window coordinates, used to turn
// absolute touch positions into board positions.
func (b *BoardWidget) origin() (float64, float64) {
	app := fyne.CurrentApp()
	if app == nil {
		return 0, 0
	}
	pos := app.Driver().AbsolutePositionForObject(b)
	return float64(pos.X), float64(pos.Y)
}

func mouseEvent(pos fyne.Position) input.MouseEvent {
	return input.MouseEvent{OffsetX: float64(pos.X), OffsetY: float64(pos.Y)}
}

func touchEvent(ev *mobile.TouchEvent) *input.TouchEvent {
	return &input.TouchEvent{Touches: []input.TouchPoint{{
		ClientX: float64(ev.AbsolutePosition.X),
		ClientY: float64(ev.AbsolutePosition.Y),
	}}}
}

func (b *BoardWidget) MouseDown(e *desktop.MouseEvent) {
	if e.Button == desktop.MouseButtonPrimary {
		b.adapter.MouseDown(mouseEvent(e.Position))
	}
}

func (b *BoardWidget) MouseUp(e *desktop.MouseEvent) {
	if e.Button == desktop.MouseButtonPrimary {
		b.adapter.MouseUp()
	}
}

func (b *BoardWidget) MouseIn(*desktop.MouseEvent) {}

func (b *BoardWidget) MouseMoved(e *desktop.MouseEvent) {
	b.adapter.MouseMove(mouseEvent(e.Position))
}

func (b *BoardWidget) MouseOut() {
	b.adapter.MouseOut()
}

// Dragged carries pointer motion while a button or finger is down; the
// driver stops sending MouseMoved and MouseOut to a widget it is dragging,
// so leaving the board is detected here.
func (b *BoardWidget) Dragged(e *fyne.DragEvent) {
	if b.touching {
		b.adapter.TouchMove(&input.TouchEvent{Touches: []input.TouchPoint{{
			ClientX: float64(e.AbsolutePosition.X),
			ClientY: float64(e.AbsolutePosition.Y),
		}}})
		return
	}
	if !b.contains(e.Position) {
		b.adapter.MouseOut()
		return
	}
	b.adapter.MouseMove(mouseEvent(e.Position))
}

func (b *BoardWidget) contains(pos fyne.Position) bool {
	size := b.Size()
	return pos.X >= 0 && pos.Y >= 0 && pos.X <= size.Width && pos.Y <= size.Height
}

func (b *BoardWidget) DragEnd() {
	if b.touching {
		return
	}
	b.adapter.MouseUp()
}

func (b *BoardWidget) TouchDown(e *mobile.TouchEvent) {
	b.touching = true
	b.adapter.TouchStart(touchEvent(e))
}

func (b *BoardWidget) TouchUp(e *mobile.TouchEvent) {
	b.touching = false
	b.adapter.TouchEnd(touchEvent(e))
}

func (b *BoardWidget) TouchCancel(e *mobile.TouchEvent) {
	b.touching = false
	b.adapter.TouchEnd(touchEvent(e))
}

func (b *BoardWidget) CreateRenderer() fyne.WidgetRenderer {
	r := &boardWidgetRenderer{board: b}
	r.background = canvas.NewRectangle(color.White)
	r.objects = []fyne.CanvasObject{r.background, b.image}
	return r
}

type boardWidgetRenderer struct {
	board      *BoardWidget
	background *canvas.Rectangle
	objects    []fyne.CanvasObject
}

func (r *boardWidgetRenderer) Objects() []fyne.CanvasObject { return r.objects }

// Layout keeps the raster the size of the widget. The engine carries the
// existing pixels across the resize.
func (r *boardWidgetRenderer) Layout(size fyne.Size) {
	r.background.Resize(size)
	r.board.image.Resize(size)

	w, h := int(size.Width), int(size.Height)
	if w <= 0 || h <= 0 {
		return
	}
	if cw, ch := r.board.engine.Size(); cw == w && ch == h {
		return
	}
	if err := r.board.engine.Resize(w, h); err != nil {
		r.board.log.Warn("resize failed", "width", w, "height", h, "err", err)
		return
	}
	r.board.refreshImage()
}

func (r *boardWidgetRenderer) MinSize() fyne.Size { return fyne.NewSize(300, 300) }

func (r *boardWidgetRenderer) Refresh() {
	r.board.refreshImage()
	r.background.Refresh()
}

func (r *boardWidgetRenderer) Destroy() {}
