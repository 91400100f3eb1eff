package ui

import (
	"context"
	"image/color"
	"strings"

	"FreehandBoard/internal/engine"
	"FreehandBoard/internal/surface"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

var palette = []color.Color{
	color.Black,
	color.NRGBA{R: 255, A: 255},
	color.NRGBA{G: 255, A: 255},
	color.NRGBA{B: 255, A: 255},
	color.NRGBA{R: 255, G: 255, A: 255},
}

var imageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp", ".tif", ".tiff"}

// --- Custom Widget for Color Swatches ---
type colorSwatch struct {
	widget.BaseWidget
	Color    color.Color
	OnTapped func(color.Color)
}

func newColorSwatch(c color.Color, tapped func(color.Color)) *colorSwatch {
	s := &colorSwatch{Color: c, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(s.Color)
	rect.SetMinSize(fyne.NewSize(32, 32))

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1

	return widget.NewSimpleRenderer(container.NewStack(rect, border))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Color)
	}
}

// Toolbar holds the controls that change the engine's settings. The mode
// checks always show the engine's state, never their own.
type Toolbar struct {
	board    *BoardWidget
	window   fyne.Window
	saveName string

	Width      *widget.Slider
	Cap        *widget.RadioGroup
	Rainbow    *widget.Check
	Multicolor *widget.Check
	Eraser     *widget.Check
	Mirror     *widget.Check

	modeChecks map[engine.ColorMode]*widget.Check
	syncing    bool
	content    fyne.CanvasObject
}

// NewToolbar builds the controls for board. saveName seeds the save dialog.
func NewToolbar(board *BoardWidget, window fyne.Window, saveName string) *Toolbar {
	if saveName == "" {
		saveName = engine.DefaultFileName
	}
	t := &Toolbar{board: board, window: window, saveName: saveName}
	e := board.Engine()
	style := e.Style()

	actions := widget.NewToolbar(
		widget.NewToolbarAction(theme.DeleteIcon(), t.clear),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), t.showSave),
		widget.NewToolbarAction(theme.FolderOpenIcon(), t.showLoad),
		widget.NewToolbarAction(theme.DownloadIcon(), t.showOpenURL),
		widget.NewToolbarAction(theme.DocumentPrintIcon(), t.showExportPDF),
	)

	// --- Color Palette ---
	swatches := container.NewHBox()
	for _, c := range palette {
		swatches.Add(newColorSwatch(c, t.pickColor))
	}
	more := widget.NewButtonWithIcon("", theme.ColorPaletteIcon(), t.showColorPicker)

	// --- Stroke Width Slider ---
	t.Width = widget.NewSlider(1.0, 50.0)
	t.Width.SetValue(style.LineWidth)
	t.Width.OnChanged = func(val float64) {
		if err := e.SetLineWidth(val); err != nil {
			board.SetStatus(err.Error())
		}
	}
	sliderContainer := container.New(layout.NewGridWrapLayout(fyne.NewSize(150, 35)), t.Width)

	t.Cap = widget.NewRadioGroup([]string{surface.CapRound.String(), surface.CapSquare.String()}, func(s string) {
		c, err := surface.ParseLineCap(s)
		if err != nil {
			return
		}
		if err := e.SetLineCap(c); err != nil {
			board.SetStatus(err.Error())
		}
	})
	t.Cap.Horizontal = true
	t.Cap.Required = true
	t.Cap.SetSelected(style.LineCap.String())

	t.Rainbow = t.modeCheck("Rainbow", engine.Rainbow)
	t.Multicolor = t.modeCheck("Multicolor", engine.Multicolor)
	t.Eraser = t.modeCheck("Eraser", engine.Eraser)
	t.modeChecks = map[engine.ColorMode]*widget.Check{
		engine.Rainbow:    t.Rainbow,
		engine.Multicolor: t.Multicolor,
		engine.Eraser:     t.Eraser,
	}
	t.Mirror = widget.NewCheck("Mirror", e.SetMirrorMode)
	t.Mirror.SetChecked(e.MirrorMode())
	t.Sync()

	t.content = container.NewHBox(
		actions,
		widget.NewSeparator(),
		widget.NewLabel("Color:"),
		swatches,
		more,
		widget.NewSeparator(),
		widget.NewLabel("Size:"),
		sliderContainer,
		t.Cap,
		widget.NewSeparator(),
		t.Rainbow,
		t.Multicolor,
		t.Eraser,
		t.Mirror,
		layout.NewSpacer(),
	)
	return t
}

// Object is the toolbar's canvas object.
func (t *Toolbar) Object() fyne.CanvasObject { return t.content }

func (t *Toolbar) modeCheck(label string, m engine.ColorMode) *widget.Check {
	return widget.NewCheck(label, func(on bool) {
		if t.syncing {
			return
		}
		if err := t.board.Engine().SetMode(m, on); err != nil {
			t.board.SetStatus(err.Error())
		}
		t.Sync()
	})
}

// Sync sets the mode checks from the engine.
func (t *Toolbar) Sync() {
	t.syncing = true
	defer func() { t.syncing = false }()
	mode := t.board.Engine().Mode()
	for m, check := range t.modeChecks {
		check.SetChecked(m == mode)
	}
}

func (t *Toolbar) pickColor(c color.Color) {
	t.board.Engine().PickColor(c)
	t.Sync()
}

func (t *Toolbar) showColorPicker() {
	picker := dialog.NewColorPicker("Pick a Color", "Stroke color", t.pickColor, t.window)
	picker.Advanced = true
	picker.SetColor(t.board.Engine().Style().BaseColor)
	picker.Show()
}

func (t *Toolbar) clear() {
	t.board.Engine().Clear()
	t.board.SetStatus("Cleared")
}

func (t *Toolbar) showSave() {
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			t.board.SetStatusf("Save failed: %v", err)
			return
		}
		if writer == nil {
			return
		}
		t.board.SaveToFile(writer)
	}, t.window)
	d.SetFileName(t.saveName)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".png", ".jpg", ".jpeg"}))
	d.Show()
}

func (t *Toolbar) showExportPDF() {
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			t.board.SetStatusf("Export failed: %v", err)
			return
		}
		if writer == nil {
			return
		}
		t.board.SaveToFile(writer)
	}, t.window)
	d.SetFileName(strings.TrimSuffix(t.saveName, surface.FormatFromName(t.saveName).Ext()) + surface.FormatPDF.Ext())
	d.SetFilter(storage.NewExtensionFileFilter([]string{".pdf"}))
	d.Show()
}

func (t *Toolbar) showLoad() {
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			t.board.SetStatusf("Load failed: %v", err)
			return
		}
		if reader == nil {
			return
		}
		go t.board.LoadFromFile(reader)
	}, t.window)
	d.SetFilter(storage.NewExtensionFileFilter(imageExtensions))
	d.Show()
}

func (t *Toolbar) showOpenURL() {
	entry := widget.NewEntry()
	entry.SetPlaceHolder("https://example.com/picture.png")
	items := []*widget.FormItem{widget.NewFormItem("URL", entry)}
	d := dialog.NewForm("Open Image URL", "Open", "Cancel", items, func(ok bool) {
		src := strings.TrimSpace(entry.Text)
		if !ok || src == "" {
			return
		}
		go t.board.LoadFromURL(context.Background(), src)
	}, t.window)
	d.Resize(fyne.NewSize(420, d.MinSize().Height))
	d.Show()
}
