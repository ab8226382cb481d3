// Package gui hosts the volume explorer in a desktop window: three linked
// views, each with a slider selecting its section.
package gui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/rs/zerolog"

	"opticalct/pkg/logging"
	"opticalct/pkg/visualization"
)

// AppID identifies the application to fyne preferences storage
const AppID = "io.opticalct.volume-explorer"

const (
	ViewWidth    = 360
	ViewHeight   = 360
	WindowWidth  = 3*ViewWidth + 60
	WindowHeight = ViewHeight + 140
)

// Window owns the fyne application and the widgets of one explorer session.
type Window struct {
	explorer *visualization.Explorer
	log      zerolog.Logger

	app     fyne.App
	window  fyne.Window
	images  [3]*canvas.Image
	sliders [3]*widget.Slider
	labels  [3]*widget.Label
	cmap    *widget.Select
}

// New builds the window and its widgets. Nothing is shown until Run.
func New(explorer *visualization.Explorer, title string, log zerolog.Logger) *Window {
	w := &Window{
		explorer: explorer,
		log:      logging.Component(log, "gui"),
	}

	w.app = app.NewWithID(AppID)
	w.window = w.app.NewWindow(title)
	w.window.SetMaster()
	w.window.Resize(fyne.NewSize(WindowWidth, WindowHeight))

	views := make([]fyne.CanvasObject, 0, len(visualization.Planes))
	for _, p := range visualization.Planes {
		img := canvas.NewImageFromImage(explorer.Render(p))
		img.FillMode = canvas.ImageFillContain
		img.ScaleMode = canvas.ImageScalePixels
		img.SetMinSize(fyne.NewSize(ViewWidth, ViewHeight))
		w.images[p] = img

		n := explorer.Length(p)
		slider := widget.NewSlider(1, float64(max(n, 2)))
		slider.Step = 1
		if n < 2 {
			slider.Disable()
		}
		w.sliders[p] = slider

		w.labels[p] = widget.NewLabel(w.caption(p))
		views = append(views, container.NewBorder(w.labels[p], slider, nil, nil, img))
	}

	w.cmap = widget.NewSelect(visualization.ColormapNames(), nil)
	w.cmap.SetSelected(explorer.Colormap().Name())
	toolbar := container.NewHBox(widget.NewLabel("Colormap"), w.cmap)

	w.window.SetContent(container.NewBorder(toolbar, nil, nil, nil,
		container.NewGridWithColumns(len(views), views...)))
	return w
}

// Bind connects the widgets to the explorer.
func (w *Window) Bind() {
	for _, p := range visualization.Planes {
		w.sliders[p].OnChanged = func(value float64) {
			w.explorer.OnSlider(p, value)
		}
	}
	w.cmap.OnChanged = func(name string) {
		if err := w.explorer.SetColormap(name); err != nil {
			w.log.Warn().Err(err).Msg("Colormap rejected")
		}
	}
	w.explorer.Attach(w)
}

// Run shows the window and blocks until it is closed.
func (w *Window) Run() {
	w.window.SetOnClosed(w.teardown)
	w.log.Info().Str("volume", w.explorer.Volume().Shape()).Msg("Explorer window opened")
	w.window.ShowAndRun()
}

// Refresh redraws the view of plane p.
func (w *Window) Refresh(p visualization.Plane) {
	img := w.explorer.Render(p)
	caption := w.caption(p)
	fyne.Do(func() {
		w.images[p].Image = img
		w.images[p].Refresh()
		w.labels[p].SetText(caption)
	})
}

func (w *Window) caption(p visualization.Plane) string {
	return fmt.Sprintf("%s %d/%d", p.Title(), w.explorer.State()[p]+1, w.explorer.Length(p))
}

func (w *Window) teardown() {
	w.explorer.Attach(nil)
	for _, s := range w.sliders {
		s.OnChanged = nil
	}
	w.log.Info().Msg("Explorer window closed")
}
