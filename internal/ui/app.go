package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

type Options struct {
	Title        string
	Width        float32
	Height       float32
	SaveFileName string
	// ShareLink is shown with a copy button when the board is hosted.
	ShareLink string
}

// BuildWindow lays out the toolbar, board and status bar in w.
func BuildWindow(w fyne.Window, board *BoardWidget, opts Options) *Toolbar {
	toolbar := NewToolbar(board, w, opts.SaveFileName)

	bottom := []fyne.CanvasObject{board.StatusBar()}
	if opts.ShareLink != "" {
		link := opts.ShareLink
		copyButton := widget.NewButtonWithIcon("Copy link", theme.ContentCopyIcon(), func() {
			fyne.CurrentApp().Clipboard().SetContent(link)
			board.SetStatus("Share link copied")
		})
		bottom = append(bottom, widget.NewLabel("Share: "+link), copyButton)
	}

	content := container.NewBorder(toolbar.Object(), container.NewHBox(bottom...), nil, nil, board)
	w.SetContent(content)
	return toolbar
}

// RunApp shows the board in a new window of myApp and blocks until it closes.
func RunApp(myApp fyne.App, board *BoardWidget, opts Options) {
	title := opts.Title
	if title == "" {
		title = "Freehand"
	}
	myWindow := myApp.NewWindow(title)
	myWindow.Resize(fyne.NewSize(opts.Width, opts.Height))

	BuildWindow(myWindow, board, opts)
	myWindow.ShowAndRun()
}
